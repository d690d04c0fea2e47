package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"quartz-india-api/internal/geo"
	"quartz-india-api/internal/power/application"
	power "quartz-india-api/internal/power/domain"
)

const rfc3339Layout = "2006-01-02T15:04:05Z07:00"

// seriesQueryParams carries the raw query string values before they are
// parsed into an application.SeriesQuery.
type seriesQueryParams struct {
	Start      string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	End        string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Resolution string `validate:"omitempty,max=32"`
	Horizon    string `validate:"omitempty,oneof=latest day_ahead"`
}

func parseSeriesQuery(validate *validator.Validate, r *http.Request) (application.SeriesQuery, error) {
	values := r.URL.Query()
	raw := seriesQueryParams{
		Start:      values.Get("start"),
		End:        values.Get("end"),
		Resolution: values.Get("resolution"),
		Horizon:    values.Get("horizon"),
	}
	if err := validate.Struct(raw); err != nil {
		return application.SeriesQuery{}, fmt.Errorf("%w: %v", power.ErrInvalidRange, err)
	}

	var query application.SeriesQuery
	if raw.Start != "" {
		start, err := time.Parse(rfc3339Layout, raw.Start)
		if err != nil {
			return application.SeriesQuery{}, fmt.Errorf("%w: start: %v", power.ErrInvalidRange, err)
		}
		query.Start = &start
	}
	if raw.End != "" {
		end, err := time.Parse(rfc3339Layout, raw.End)
		if err != nil {
			return application.SeriesQuery{}, fmt.Errorf("%w: end: %v", power.ErrInvalidRange, err)
		}
		query.End = &end
	}
	if raw.Resolution != "" {
		resolution, err := time.ParseDuration(raw.Resolution)
		if err != nil {
			return application.SeriesQuery{}, fmt.Errorf("%w: resolution: %v", power.ErrInvalidRange, err)
		}
		query.Resolution = resolution
	}
	if raw.Horizon != "" {
		horizon, err := power.ParseHorizon(raw.Horizon)
		if err != nil {
			return application.SeriesQuery{}, err
		}
		query.Horizon = horizon
	}
	return query, nil
}

// proximityFilter is the optional ?near=lat,lon&within_km=x filter on the
// site listing.
type proximityFilter struct {
	Center   geo.Point
	RadiusKm float64
}

const defaultRadiusKm = 100

func parseProximityFilter(r *http.Request) (*proximityFilter, error) {
	values := r.URL.Query()
	near := values.Get("near")
	if near == "" {
		return nil, nil
	}
	parts := strings.Split(near, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: near must be lat,lon", geo.ErrInvalidCoordinate)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: near latitude: %v", geo.ErrInvalidCoordinate, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: near longitude: %v", geo.ErrInvalidCoordinate, err)
	}
	center, err := geo.Normalize(geo.WGS84, lat, lon)
	if err != nil {
		return nil, err
	}

	radius := float64(defaultRadiusKm)
	if within := values.Get("within_km"); within != "" {
		radius, err = strconv.ParseFloat(within, 64)
		if err != nil || radius <= 0 {
			return nil, fmt.Errorf("%w: within_km must be a positive number", power.ErrInvalidRange)
		}
	}
	return &proximityFilter{Center: center, RadiusKm: radius}, nil
}

func (f *proximityFilter) matches(site power.Site) bool {
	return geo.Distance(f.Center, site.Location) <= f.RadiusKm
}
