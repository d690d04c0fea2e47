package power

import "context"

// Source provides sites and their time series from one backing system.
//
// Implementations must return samples strictly inside the window, in
// ascending timestamp order, with no duplicate timestamps. Forecast
// rows arrive already reduced to a single issue per target time
// according to the horizon. An unknown site id yields an empty slice
// and a nil error; existence checks belong to the caller. Backend
// failures wrap ErrSourceUnavailable. Implementations hold no mutable
// state across calls and never retry on the caller's behalf.
type Source interface {
	ListSites(ctx context.Context) ([]Site, error)
	Generation(ctx context.Context, siteID string, w Window) ([]GenerationSample, error)
	Forecast(ctx context.Context, siteID string, w Window, h Horizon) ([]ForecastSample, error)
}

// Recorder accepts generation readings pushed by site operators.
// Sources without persistence may validate and discard.
type Recorder interface {
	RecordGeneration(ctx context.Context, siteID string, readings []GenerationSample) error
}
