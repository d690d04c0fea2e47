package power

import (
	"errors"
	"testing"
	"time"
)

func TestNewWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	w, err := NewWindow(start, end)
	if err != nil {
		t.Fatalf("new window: %v", err)
	}
	if !w.Start.Equal(start) || !w.End.Equal(end) {
		t.Fatalf("unexpected bounds: %+v", w)
	}
	if w.Span() != 24*time.Hour {
		t.Fatalf("expected 24h span, got %s", w.Span())
	}
}

func TestNewWindow_NormalizesToUTC(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, IST)
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, IST)

	w, err := NewWindow(start, end)
	if err != nil {
		t.Fatalf("new window: %v", err)
	}
	if w.Start.Location() != time.UTC || w.End.Location() != time.UTC {
		t.Fatalf("expected UTC bounds, got %s/%s", w.Start.Location(), w.End.Location())
	}
	if w.Start.Hour() != 4 || w.Start.Minute() != 30 {
		t.Fatalf("expected 04:30 UTC, got %s", w.Start)
	}
}

func TestNewWindow_Invalid(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"zero start", time.Time{}, ts},
		{"zero end", ts, time.Time{}},
		{"equal bounds", ts, ts},
		{"backwards", ts.Add(time.Hour), ts},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewWindow(tc.start, tc.end); !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2026, 8, 21, 14, 35, 12, 0, time.UTC)

	w := DefaultWindow(now)
	wantStart := time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Fatalf("expected start %s, got %s", wantStart, w.Start)
	}
	if !w.End.Equal(wantEnd) {
		t.Fatalf("expected end %s, got %s", wantEnd, w.End)
	}
	if w.Span() != 4*24*time.Hour {
		t.Fatalf("expected 4 day span, got %s", w.Span())
	}
}

func TestWindowContains(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w, err := NewWindow(start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("new window: %v", err)
	}

	if !w.Contains(start) {
		t.Fatalf("start must be inside")
	}
	if w.Contains(start.Add(time.Hour)) {
		t.Fatalf("end must be outside")
	}
	if !w.Contains(start.Add(59 * time.Minute)) {
		t.Fatalf("interior point must be inside")
	}
	if w.Contains(start.Add(-time.Nanosecond)) {
		t.Fatalf("point before start must be outside")
	}
}
