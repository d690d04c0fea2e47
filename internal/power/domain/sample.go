package power

import "time"

// GenerationSample is one observed power reading for a site.
// Samples are read-only to the core once a source hands them over.
type GenerationSample struct {
	SiteID  string
	At      time.Time
	PowerMW float64
}

// ForecastSample is one predicted power value for a site. IssuedAt is
// when the prediction was made; sources reduce competing issues for the
// same target before returning.
type ForecastSample struct {
	SiteID     string
	TargetTime time.Time
	IssuedAt   time.Time
	PowerMW    float64
}
