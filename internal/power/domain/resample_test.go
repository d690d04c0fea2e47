package power

import (
	"math"
	"testing"
	"time"
)

func mustWindow(t *testing.T, start time.Time, span time.Duration) Window {
	t.Helper()
	w, err := NewWindow(start, start.Add(span))
	if err != nil {
		t.Fatalf("new window: %v", err)
	}
	return w
}

func pt(base time.Time, offset time.Duration, value float64) TimePoint {
	return TimePoint{At: base.Add(offset), PowerMW: value}
}

func TestResample_BucketMean(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, base, time.Hour)

	points := []TimePoint{
		pt(base, 0, 10),
		pt(base, 5*time.Minute, 20),
		pt(base, 10*time.Minute, 30),
		pt(base, 16*time.Minute, 40),
	}

	out := Resample(points, w, 15*time.Minute, time.Hour)
	if len(out) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(out))
	}
	if out[0].PowerMW != 20 {
		t.Fatalf("expected bucket mean 20, got %v", out[0].PowerMW)
	}
	if !out[0].At.Equal(base) {
		t.Fatalf("expected bucket stamped at start, got %s", out[0].At)
	}
	if out[1].PowerMW != 40 {
		t.Fatalf("expected 40, got %v", out[1].PowerMW)
	}
	// Empty trailing buckets repeat the last value within the fill gap.
	if out[2].PowerMW != 40 || out[3].PowerMW != 40 {
		t.Fatalf("expected forward fill, got %v and %v", out[2].PowerMW, out[3].PowerMW)
	}
}

func TestResample_GapBeyondMaxFillOmitted(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, base, time.Hour)

	points := []TimePoint{
		pt(base, 0, 10),
		pt(base, 16*time.Minute, 40),
	}

	out := Resample(points, w, 15*time.Minute, 15*time.Minute)
	// Bucket at 0:30 is 14m after the last sample and fills; 0:45 is
	// 29m after and is omitted.
	if len(out) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(out))
	}
	last := out[len(out)-1]
	if !last.At.Equal(base.Add(30 * time.Minute)) {
		t.Fatalf("expected last bucket at 0:30, got %s", last.At)
	}
	if last.PowerMW != 40 {
		t.Fatalf("expected filled value 40, got %v", last.PowerMW)
	}
}

func TestResample_NoFillBeforeFirstSample(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, base, time.Hour)

	points := []TimePoint{pt(base, 31*time.Minute, 25)}

	out := Resample(points, w, 15*time.Minute, time.Hour)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	if !out[0].At.Equal(base.Add(30 * time.Minute)) {
		t.Fatalf("expected first bucket at 0:30, got %s", out[0].At)
	}
}

func TestResample_Empty(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, base, time.Hour)

	if out := Resample(nil, w, 15*time.Minute, time.Hour); out != nil {
		t.Fatalf("expected nil for empty input, got %v", out)
	}
	if out := Resample([]TimePoint{pt(base, 0, 1)}, w, 0, time.Hour); out != nil {
		t.Fatalf("expected nil for zero resolution, got %v", out)
	}
}

func TestResample_PartialTrailingBucket(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, base, 50*time.Minute)

	points := []TimePoint{
		pt(base, 0, 10),
		pt(base, 46*time.Minute, 30),
	}

	out := Resample(points, w, 15*time.Minute, time.Hour)
	if len(out) != 4 {
		t.Fatalf("expected 4 buckets for a 50m window at 15m, got %d", len(out))
	}
	if out[3].PowerMW != 30 {
		t.Fatalf("expected trailing bucket 30, got %v", out[3].PowerMW)
	}
}

func TestSmooth_TrailingMean(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []TimePoint{
		pt(base, 0, 1),
		pt(base, 15*time.Minute, 2),
		pt(base, 30*time.Minute, 3),
		pt(base, 45*time.Minute, 4),
		pt(base, 60*time.Minute, 5),
	}

	out := Smooth(points, 4)
	want := []float64{1, 1.5, 2, 2.5, 3.5}
	if len(out) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(out))
	}
	for i := range want {
		if math.Abs(out[i].PowerMW-want[i]) > 1e-9 {
			t.Fatalf("point %d: expected %v, got %v", i, want[i], out[i].PowerMW)
		}
		if !out[i].At.Equal(points[i].At) {
			t.Fatalf("point %d: timestamp changed", i)
		}
	}
}

func TestSmooth_WindowOneIsIdentity(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []TimePoint{pt(base, 0, 7), pt(base, time.Minute, 9)}

	out := Smooth(points, 1)
	if out[0].PowerMW != 7 || out[1].PowerMW != 9 {
		t.Fatalf("expected identity, got %v", out)
	}
}

func TestClampToCapacity(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []TimePoint{
		pt(base, 0, -5),
		pt(base, time.Minute, 50),
		pt(base, 2*time.Minute, 120),
	}

	out := ClampToCapacity(points, 100)
	if out[0].PowerMW != 0 {
		t.Fatalf("expected negative clamped to 0, got %v", out[0].PowerMW)
	}
	if out[1].PowerMW != 50 {
		t.Fatalf("expected in-range untouched, got %v", out[1].PowerMW)
	}
	if out[2].PowerMW != 100 {
		t.Fatalf("expected clamp to capacity, got %v", out[2].PowerMW)
	}
}
