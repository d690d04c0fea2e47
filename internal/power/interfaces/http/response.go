package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"quartz-india-api/internal/auth"
	"quartz-india-api/internal/geo"
	power "quartz-india-api/internal/power/domain"
)

// siteResponse is the JSON shape of one site.
type siteResponse struct {
	SiteID     string  `json:"site_id"`
	Name       string  `json:"name"`
	AssetType  string  `json:"asset_type"`
	CapacityMW float64 `json:"capacity_mw"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

func toSiteResponse(site power.Site) siteResponse {
	return siteResponse{
		SiteID:     site.ID,
		Name:       site.Name,
		AssetType:  string(site.AssetType),
		CapacityMW: site.CapacityMW,
		Latitude:   site.Location.Lat,
		Longitude:  site.Location.Lon,
	}
}

// seriesResponse is the JSON shape of a resampled series.
type seriesResponse struct {
	SiteID            string          `json:"site_id"`
	AssetType         string          `json:"asset_type"`
	ResolutionMinutes int             `json:"resolution_minutes"`
	Points            []pointResponse `json:"points"`
}

type pointResponse struct {
	Time    time.Time `json:"time"`
	PowerMW float64   `json:"power_mw"`
}

func toSeriesResponse(series power.TimeSeries) seriesResponse {
	points := make([]pointResponse, 0, len(series.Points))
	for _, p := range series.Points {
		points = append(points, pointResponse{Time: p.At, PowerMW: p.PowerMW})
	}
	return seriesResponse{
		SiteID:            series.SiteID,
		AssetType:         string(series.AssetType),
		ResolutionMinutes: int(series.Resolution.Minutes()),
		Points:            points,
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, RequestID: RequestIDFromContext(r.Context())})
}

// respondServiceError maps the service error taxonomy onto HTTP status
// codes. Unknown errors stay opaque to the caller.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, power.ErrSiteNotFound):
		writeError(w, r, http.StatusNotFound, "site not found")
	case errors.Is(err, power.ErrInvalidRange),
		errors.Is(err, power.ErrCapacityExceeded),
		errors.Is(err, geo.ErrInvalidCoordinate):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, power.ErrSourceUnavailable):
		writeError(w, r, http.StatusBadGateway, "source unavailable")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
