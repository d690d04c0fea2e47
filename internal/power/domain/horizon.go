package power

import (
	"fmt"
	"time"
)

// Horizon selects which forecast issue is served per target time.
type Horizon string

const (
	// HorizonLatest serves the most recently issued value per target.
	HorizonLatest Horizon = "latest"
	// HorizonDayAhead serves the newest value issued before the 09:00
	// IST submission deadline on the day before each target's IST day.
	HorizonDayAhead Horizon = "day_ahead"
)

// ParseHorizon validates a raw horizon string; empty means latest.
func ParseHorizon(raw string) (Horizon, error) {
	switch Horizon(raw) {
	case "", HorizonLatest:
		return HorizonLatest, nil
	case HorizonDayAhead:
		return HorizonDayAhead, nil
	default:
		return "", fmt.Errorf("%w: unknown horizon %q", ErrInvalidRange, raw)
	}
}

// IsValid reports whether the horizon is a supported value.
func (h Horizon) IsValid() bool {
	return h == HorizonLatest || h == HorizonDayAhead
}

// IST is the submission timezone. India has no DST, so a fixed offset
// is exact.
var IST = time.FixedZone("IST", 5*3600+1800)

// dayAheadDeadlineHour is the IST hour of the day-ahead cutoff.
const dayAheadDeadlineHour = 9

// DayAheadDeadline returns the submission deadline for a forecast
// targeting the given time: 09:00 IST on the day before the target's
// IST date. A forecast counts as day-ahead only when issued strictly
// before this instant.
func DayAheadDeadline(target time.Time) time.Time {
	t := target.In(IST)
	return time.Date(t.Year(), t.Month(), t.Day()-1, dayAheadDeadlineHour, 0, 0, 0, IST)
}

// IssuedInTime reports whether a forecast issued at issue for the given
// target meets the day-ahead submission deadline.
func IssuedInTime(target, issue time.Time) bool {
	return issue.Before(DayAheadDeadline(target))
}
