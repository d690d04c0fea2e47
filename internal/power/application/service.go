// Package application orchestrates the aggregation pipeline between
// the HTTP layer and a power source.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quartz-india-api/internal/observability/metrics"
	power "quartz-india-api/internal/power/domain"
)

// capacityFactorLimit bounds ingested readings relative to capacity.
// Readings slightly above nameplate are real; anything beyond 110% is
// rejected.
const capacityFactorLimit = 1.1

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Params tune the aggregation pipeline. Zero values fall back to the
// serving defaults.
type Params struct {
	MaxWindow         time.Duration
	DefaultResolution time.Duration
	MaxFillGap        time.Duration
	SmoothWindow      int
}

func (p Params) withDefaults() Params {
	if p.MaxWindow <= 0 {
		p.MaxWindow = 31 * 24 * time.Hour
	}
	if p.DefaultResolution <= 0 {
		p.DefaultResolution = 15 * time.Minute
	}
	if p.MaxFillGap <= 0 {
		p.MaxFillGap = time.Hour
	}
	if p.SmoothWindow <= 0 {
		p.SmoothWindow = 4
	}
	return p
}

// SeriesQuery names the caller's window, resolution and horizon. Nil
// bounds select the default window around now.
type SeriesQuery struct {
	Start      *time.Time
	End        *time.Time
	Resolution time.Duration
	Horizon    power.Horizon
}

// Service validates queries, resolves sites and shapes raw samples
// into served series. It keeps no state between requests; the site set
// is consulted at most once per call.
type Service struct {
	source   power.Source
	recorder power.Recorder
	params   Params
	clock    Clock
}

// NewService constructs the service. The recorder may be nil when the
// active source cannot accept readings.
func NewService(source power.Source, recorder power.Recorder, params Params, clock Clock) (*Service, error) {
	if source == nil {
		return nil, errors.New("power service: nil source")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		source:   source,
		recorder: recorder,
		params:   params.withDefaults(),
		clock:    clock,
	}, nil
}

// Sites lists every site served by the active source.
func (s *Service) Sites(ctx context.Context) ([]power.Site, error) {
	return s.listSites(ctx)
}

// Site resolves a single site or reports ErrSiteNotFound.
func (s *Service) Site(ctx context.Context, siteID string) (power.Site, error) {
	return s.findSite(ctx, siteID)
}

// GenerationSeries serves observed generation resampled to the query's
// resolution, gap-filled and clamped to site capacity.
func (s *Service) GenerationSeries(ctx context.Context, siteID string, q SeriesQuery) (power.TimeSeries, error) {
	start := time.Now()
	series, err := s.generationSeries(ctx, siteID, q)
	metrics.ObserveSeriesQuery("generation", callResult(err), time.Since(start))
	return series, err
}

// ForecastSeries serves predicted generation for the query's horizon,
// resampled, smoothed and clamped to site capacity.
func (s *Service) ForecastSeries(ctx context.Context, siteID string, q SeriesQuery) (power.TimeSeries, error) {
	start := time.Now()
	series, err := s.forecastSeries(ctx, siteID, q)
	metrics.ObserveSeriesQuery("forecast", callResult(err), time.Since(start))
	return series, err
}

// RecordGeneration validates pushed readings against the site capacity
// and hands them to the recorder.
func (s *Service) RecordGeneration(ctx context.Context, siteID string, readings []power.GenerationSample) error {
	start := time.Now()
	err := s.recordGeneration(ctx, siteID, readings)
	metrics.ObserveIngest(callResult(err), len(readings), time.Since(start))
	return err
}

func (s *Service) generationSeries(ctx context.Context, siteID string, q SeriesQuery) (power.TimeSeries, error) {
	w, res, err := s.resolveQuery(q)
	if err != nil {
		return power.TimeSeries{}, err
	}
	site, err := s.findSite(ctx, siteID)
	if err != nil {
		return power.TimeSeries{}, err
	}

	callStart := time.Now()
	samples, err := s.source.Generation(ctx, site.ID, w)
	metrics.ObserveSourceCall("generation", callResult(err), time.Since(callStart))
	if err != nil {
		return power.TimeSeries{}, err
	}

	points := make([]power.TimePoint, 0, len(samples))
	for _, sample := range samples {
		points = append(points, power.TimePoint{At: sample.At, PowerMW: sample.PowerMW})
	}
	buckets := power.Resample(points, w, res, s.params.MaxFillGap)
	buckets = power.ClampToCapacity(buckets, site.CapacityMW)

	return power.TimeSeries{
		SiteID:     site.ID,
		AssetType:  site.AssetType,
		Resolution: res,
		Points:     buckets,
	}, nil
}

func (s *Service) forecastSeries(ctx context.Context, siteID string, q SeriesQuery) (power.TimeSeries, error) {
	w, res, err := s.resolveQuery(q)
	if err != nil {
		return power.TimeSeries{}, err
	}
	horizon := q.Horizon
	if horizon == "" {
		horizon = power.HorizonLatest
	}
	if !horizon.IsValid() {
		return power.TimeSeries{}, fmt.Errorf("%w: unknown horizon %q", power.ErrInvalidRange, horizon)
	}
	site, err := s.findSite(ctx, siteID)
	if err != nil {
		return power.TimeSeries{}, err
	}

	callStart := time.Now()
	samples, err := s.source.Forecast(ctx, site.ID, w, horizon)
	metrics.ObserveSourceCall("forecast", callResult(err), time.Since(callStart))
	if err != nil {
		return power.TimeSeries{}, err
	}

	points := make([]power.TimePoint, 0, len(samples))
	for _, sample := range samples {
		points = append(points, power.TimePoint{At: sample.TargetTime, PowerMW: sample.PowerMW})
	}
	buckets := power.Resample(points, w, res, s.params.MaxFillGap)
	buckets = power.Smooth(buckets, s.params.SmoothWindow)
	buckets = power.ClampToCapacity(buckets, site.CapacityMW)

	return power.TimeSeries{
		SiteID:     site.ID,
		AssetType:  site.AssetType,
		Resolution: res,
		Points:     buckets,
	}, nil
}

func (s *Service) recordGeneration(ctx context.Context, siteID string, readings []power.GenerationSample) error {
	if s.recorder == nil {
		return fmt.Errorf("%w: active source does not accept readings", power.ErrSourceUnavailable)
	}
	if len(readings) == 0 {
		return fmt.Errorf("%w: no readings", power.ErrInvalidRange)
	}
	site, err := s.findSite(ctx, siteID)
	if err != nil {
		return err
	}

	limit := site.CapacityMW * capacityFactorLimit
	for i := range readings {
		if readings[i].At.IsZero() {
			return fmt.Errorf("%w: reading %d without timestamp", power.ErrInvalidRange, i)
		}
		if readings[i].PowerMW < 0 || readings[i].PowerMW > limit {
			return fmt.Errorf("%w: reading %d of %.3f MW against %.3f MW capacity",
				power.ErrCapacityExceeded, i, readings[i].PowerMW, site.CapacityMW)
		}
		readings[i].SiteID = site.ID
	}

	callStart := time.Now()
	err = s.recorder.RecordGeneration(ctx, site.ID, readings)
	metrics.ObserveSourceCall("record_generation", callResult(err), time.Since(callStart))
	return err
}

// resolveQuery applies default window and resolution, then validates
// both against the configured limits.
func (s *Service) resolveQuery(q SeriesQuery) (power.Window, time.Duration, error) {
	var w power.Window
	switch {
	case q.Start == nil && q.End == nil:
		w = power.DefaultWindow(s.clock.Now())
	case q.Start == nil || q.End == nil:
		return power.Window{}, 0, fmt.Errorf("%w: start and end must be given together", power.ErrInvalidRange)
	default:
		var err error
		w, err = power.NewWindow(*q.Start, *q.End)
		if err != nil {
			return power.Window{}, 0, err
		}
	}
	if w.Span() > s.params.MaxWindow {
		return power.Window{}, 0, fmt.Errorf("%w: span %s exceeds maximum %s",
			power.ErrInvalidRange, w.Span(), s.params.MaxWindow)
	}

	res := q.Resolution
	if res == 0 {
		res = s.params.DefaultResolution
	}
	if res < time.Minute {
		return power.Window{}, 0, fmt.Errorf("%w: resolution %s below one minute", power.ErrInvalidRange, res)
	}
	if res > w.Span() {
		return power.Window{}, 0, fmt.Errorf("%w: resolution %s exceeds window span %s",
			power.ErrInvalidRange, res, w.Span())
	}
	return w, res, nil
}

func (s *Service) listSites(ctx context.Context) ([]power.Site, error) {
	start := time.Now()
	sites, err := s.source.ListSites(ctx)
	metrics.ObserveSourceCall("list_sites", callResult(err), time.Since(start))
	return sites, err
}

func (s *Service) findSite(ctx context.Context, siteID string) (power.Site, error) {
	if siteID == "" {
		return power.Site{}, fmt.Errorf("%w: empty site id", power.ErrSiteNotFound)
	}
	sites, err := s.listSites(ctx)
	if err != nil {
		return power.Site{}, err
	}
	for _, site := range sites {
		if site.ID == siteID {
			return site, nil
		}
	}
	return power.Site{}, fmt.Errorf("%w: %s", power.ErrSiteNotFound, siteID)
}

func callResult(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
