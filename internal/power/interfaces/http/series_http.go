package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"quartz-india-api/internal/observability/metrics"
	power "quartz-india-api/internal/power/domain"
)

func (h *Handler) handleGeneration(w http.ResponseWriter, r *http.Request) {
	siteID := mux.Vars(r)["siteID"]
	query, err := parseSeriesQuery(h.validate, r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	series, err := h.service.GenerationSeries(r.Context(), siteID, query)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.logAudit(r, "generation.series", siteID, http.StatusOK, map[string]int{"points": len(series.Points)})
	writeJSON(w, http.StatusOK, toSeriesResponse(series))
}

func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	siteID := mux.Vars(r)["siteID"]
	query, err := parseSeriesQuery(h.validate, r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if query.Horizon == "" {
		query.Horizon = power.HorizonLatest
	}
	series, err := h.service.ForecastSeries(r.Context(), siteID, query)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.logAudit(r, "forecast.series", siteID, http.StatusOK, map[string]any{
		"points":  len(series.Points),
		"horizon": string(query.Horizon),
	})
	writeJSON(w, http.StatusOK, toSeriesResponse(series))
}

type ingestRequest struct {
	Readings []ingestReading `json:"readings" validate:"required,min=1,max=10000,dive"`
}

type ingestReading struct {
	Time    string  `json:"time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	PowerMW float64 `json:"power_mw" validate:"gte=0"`
}

func (h *Handler) handleRecordGeneration(w http.ResponseWriter, r *http.Request) {
	siteID := mux.Vars(r)["siteID"]

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondServiceError(w, r, fmt.Errorf("%w: %v", power.ErrInvalidRange, err))
		return
	}

	samples := make([]power.GenerationSample, 0, len(req.Readings))
	for _, reading := range req.Readings {
		at, err := time.Parse(rfc3339Layout, reading.Time)
		if err != nil {
			respondServiceError(w, r, fmt.Errorf("%w: time: %v", power.ErrInvalidRange, err))
			return
		}
		samples = append(samples, power.GenerationSample{At: at.UTC(), PowerMW: reading.PowerMW})
	}

	if err := h.service.RecordGeneration(r.Context(), siteID, samples); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.logAudit(r, "generation.ingest", siteID, http.StatusAccepted, map[string]int{"readings": len(samples)})
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(samples)})
}

func (h *Handler) handleForecastExport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	siteID := vars["siteID"]
	format := vars["format"]

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(format, result, time.Since(start))
	}()

	if format != "csv" && format != "xlsx" && format != "pdf" {
		result = metrics.ResultError
		writeError(w, r, http.StatusNotFound, "unknown export format")
		return
	}

	query, err := parseSeriesQuery(h.validate, r)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, r, err)
		return
	}
	if query.Horizon == "" {
		query.Horizon = power.HorizonLatest
	}

	site, err := h.service.Site(r.Context(), siteID)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, r, err)
		return
	}
	series, err := h.service.ForecastSeries(r.Context(), siteID, query)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, r, err)
		return
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "csv":
		data, err = BuildForecastCSV(series)
		contentType = "text/csv"
	case "xlsx":
		data, err = BuildForecastXLSX(site, series, query.Horizon)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, err = BuildForecastPDF(site, series, query.Horizon)
		contentType = "application/pdf"
	}
	if err != nil {
		result = metrics.ResultError
		h.logger.Error("forecast export failed",
			zap.String("site_id", siteID),
			zap.String("format", format),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}

	h.logAudit(r, "forecast.export", siteID, http.StatusOK, map[string]any{
		"format": format,
		"points": len(series.Points),
	})
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(site, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func exportFilename(site power.Site, format string) string {
	return fmt.Sprintf("forecast_%s.%s", site.ID, format)
}
