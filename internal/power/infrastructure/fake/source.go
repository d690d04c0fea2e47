// Package fake provides a deterministic synthetic power source for
// development and tests. Every value is a pure function of site id and
// timestamp, so repeated calls agree without any stored state.
package fake

import (
	"context"
	"hash/fnv"
	"io"
	"math"
	"strconv"
	"time"

	"quartz-india-api/internal/geo"
	power "quartz-india-api/internal/power/domain"
)

// step is the spacing of synthetic samples.
const step = 15 * time.Minute

// forecast issue lags per horizon, subtracted from the target time.
const (
	latestIssueLag   = 6 * time.Hour
	dayAheadIssueLag = time.Hour
)

// defaultSites are stable demo sites with Indian locations. IDs never
// change across restarts.
func defaultSites() []power.Site {
	return []power.Site{
		{
			ID:         "1b4e29b1-4f5e-4b8a-9c7d-6f2a3d3f9f01",
			Name:       "Bhadla Solar Park Block C",
			AssetType:  power.AssetSolar,
			CapacityMW: 245,
			Location:   geo.Point{Lat: 27.539, Lon: 71.916},
		},
		{
			ID:         "2c5f3ac2-6a1b-4c9d-8e2f-7a4b5c6d0e02",
			Name:       "Pavagada Solar Park Block E",
			AssetType:  power.AssetSolar,
			CapacityMW: 200,
			Location:   geo.Point{Lat: 14.100, Lon: 77.280},
		},
		{
			ID:         "3d6a4bd3-7b2c-4dae-9f30-8b5c6d7e1f03",
			Name:       "Muppandal Wind Farm",
			AssetType:  power.AssetWind,
			CapacityMW: 150,
			Location:   geo.Point{Lat: 8.260, Lon: 77.552},
		},
		{
			ID:         "4e7b5ce4-8c3d-4ebf-a041-9c6d7e8f2a04",
			Name:       "Jaisalmer Wind Park Phase II",
			AssetType:  power.AssetWind,
			CapacityMW: 120,
			Location:   geo.Point{Lat: 26.920, Lon: 70.900},
		},
	}
}

// Source serves synthetic sites and series.
type Source struct {
	sites []power.Site
}

// Option configures a fake source.
type Option func(*Source)

// WithSites replaces the default site set.
func WithSites(sites []power.Site) Option {
	return func(s *Source) { s.sites = sites }
}

// NewSource constructs a fake source with the default demo sites.
func NewSource(opts ...Option) *Source {
	s := &Source{sites: defaultSites()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListSites returns a copy of the fixed site set.
func (s *Source) ListSites(ctx context.Context) ([]power.Site, error) {
	out := make([]power.Site, len(s.sites))
	copy(out, s.sites)
	return out, nil
}

// Generation returns synthetic readings on the 15-minute grid inside w.
func (s *Source) Generation(ctx context.Context, siteID string, w power.Window) ([]power.GenerationSample, error) {
	site, ok := s.site(siteID)
	if !ok {
		return nil, nil
	}

	var out []power.GenerationSample
	for t := alignToStep(w.Start); t.Before(w.End); t = t.Add(step) {
		out = append(out, power.GenerationSample{
			SiteID:  siteID,
			At:      t,
			PowerMW: powerAt(site, t),
		})
	}
	return out, nil
}

// Forecast returns synthetic predictions, one issue per target time.
// Day-ahead values carry a larger deterministic error and an issue time
// that meets the 09:00 IST submission deadline.
func (s *Source) Forecast(ctx context.Context, siteID string, w power.Window, h power.Horizon) ([]power.ForecastSample, error) {
	site, ok := s.site(siteID)
	if !ok {
		return nil, nil
	}

	errScale := 0.05
	if h == power.HorizonDayAhead {
		errScale = 0.15
	}

	var out []power.ForecastSample
	for t := alignToStep(w.Start); t.Before(w.End); t = t.Add(step) {
		spread := (unit(site.ID, t, "forecast") - 0.5) * 2 * errScale
		value := powerAt(site, t) * (1 + spread)
		if value < 0 {
			value = 0
		}
		if value > site.CapacityMW {
			value = site.CapacityMW
		}

		issued := t.Add(-latestIssueLag)
		if h == power.HorizonDayAhead {
			issued = power.DayAheadDeadline(t).Add(-dayAheadIssueLag)
		}
		out = append(out, power.ForecastSample{
			SiteID:     siteID,
			TargetTime: t,
			IssuedAt:   issued,
			PowerMW:    value,
		})
	}
	return out, nil
}

// RecordGeneration accepts and discards pushed readings.
func (s *Source) RecordGeneration(ctx context.Context, siteID string, readings []power.GenerationSample) error {
	return nil
}

func (s *Source) site(id string) (power.Site, bool) {
	for _, site := range s.sites {
		if site.ID == id {
			return site, true
		}
	}
	return power.Site{}, false
}

func alignToStep(t time.Time) time.Time {
	aligned := t.Truncate(step)
	if aligned.Before(t) {
		aligned = aligned.Add(step)
	}
	return aligned
}

// powerAt dispatches to the asset curve, scaled to site capacity.
func powerAt(site power.Site, t time.Time) float64 {
	switch site.AssetType {
	case power.AssetSolar:
		return solarAt(site.ID, t, site.CapacityMW)
	default:
		return windAt(site.ID, t, site.CapacityMW)
	}
}

// solarAt is a daylight bell curve: a sine with a 24 hour period
// peaking at 12:00, shifted by a seasonal term over the month, floored
// at zero and steepened, then scaled by a small deterministic jitter.
func solarAt(siteID string, t time.Time, capacityMW float64) float64 {
	u := t.UTC()
	hour := float64(u.Day()*24+u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600

	scaleX := math.Pi / 12
	translateX := -math.Pi / 2
	translateY := math.Sin((math.Pi/6)*float64(u.Month())+translateX) / 2

	base := math.Sin(scaleX*hour+translateX) + translateY
	if base < 0 {
		base = 0
	}
	base = math.Pow(base, 4) / math.Pow(1.5, 4)

	jitter := 0.97 + 0.05*unit(siteID, t, "solar")
	return base * jitter * capacityMW
}

// windAt is a bounded walk built from two site-phased sines plus
// per-step jitter, expressed as a capacity factor.
func windAt(siteID string, t time.Time, capacityMW float64) float64 {
	phase := sitePhase(siteID) * 2 * math.Pi
	hrs := float64(t.UTC().Unix()) / 3600

	slow := math.Sin(2*math.Pi*hrs/36 + phase)
	fast := math.Sin(2*math.Pi*hrs/7 + 2*phase)
	factor := 0.45 + 0.30*slow + 0.12*fast
	factor += (unit(siteID, t, "wind") - 0.5) * 0.08

	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return factor * capacityMW
}

// unit hashes (siteID, t, salt) into [0, 1).
func unit(siteID string, t time.Time, salt string) float64 {
	h := fnv.New64a()
	io.WriteString(h, siteID)
	io.WriteString(h, salt)
	io.WriteString(h, strconv.FormatInt(t.UTC().Unix(), 10))
	return float64(h.Sum64()%1_000_000) / 1_000_000
}

// sitePhase hashes the site id alone into [0, 1).
func sitePhase(siteID string) float64 {
	h := fnv.New64a()
	io.WriteString(h, siteID)
	return float64(h.Sum64()%1_000_000) / 1_000_000
}
