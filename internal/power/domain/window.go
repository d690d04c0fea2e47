package power

import (
	"fmt"
	"time"
)

// Window is a half-open query interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates bound ordering and returns a UTC window.
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, fmt.Errorf("%w: zero bound", ErrInvalidRange)
	}
	if !start.Before(end) {
		return Window{}, fmt.Errorf("%w: start %s not before end %s",
			ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

// DefaultWindow is the served interval when the caller names no bounds:
// UTC midnight two days back through UTC midnight two days ahead.
func DefaultWindow(now time.Time) Window {
	day := 24 * time.Hour
	start := now.UTC().Add(-2 * day).Truncate(day)
	end := now.UTC().Add(2 * day).Truncate(day)
	return Window{Start: start, End: end}
}

// Span returns the window length.
func (w Window) Span() time.Duration { return w.End.Sub(w.Start) }

// Contains reports whether t falls inside the half-open interval.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
