package power

import "errors"

var (
	// ErrInvalidRange is returned when a query window, resolution or
	// horizon cannot be used.
	ErrInvalidRange = errors.New("power: invalid range")
	// ErrSiteNotFound is returned when the requested site is not served
	// by the active source.
	ErrSiteNotFound = errors.New("power: site not found")
	// ErrSourceUnavailable is returned when the backing source cannot be
	// reached or answers with an error.
	ErrSourceUnavailable = errors.New("power: source unavailable")
	// ErrCapacityExceeded is returned when an ingested reading exceeds
	// the plausible maximum for the site.
	ErrCapacityExceeded = errors.New("power: reading exceeds site capacity")
)
