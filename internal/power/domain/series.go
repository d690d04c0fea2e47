package power

import (
	"fmt"
	"time"
)

// TimePoint is one resampled bucket value. At is the bucket start.
type TimePoint struct {
	At      time.Time
	PowerMW float64
}

// TimeSeries is a resampled, clamped series for one site.
type TimeSeries struct {
	SiteID     string
	AssetType  AssetType
	Resolution time.Duration
	Points     []TimePoint
}

// Validate checks series invariants: strictly ascending timestamps,
// every point inside the window.
func (s TimeSeries) Validate(w Window) error {
	var prev time.Time
	for i, p := range s.Points {
		if !w.Contains(p.At) {
			return fmt.Errorf("%w: point %d at %s outside window",
				ErrInvalidRange, i, p.At.Format(time.RFC3339))
		}
		if i > 0 && !p.At.After(prev) {
			return fmt.Errorf("%w: timestamps not strictly ascending at point %d",
				ErrInvalidRange, i)
		}
		prev = p.At
	}
	return nil
}
