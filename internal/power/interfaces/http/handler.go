// Package http exposes the power series service over a JSON HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"quartz-india-api/internal/audit"
	"quartz-india-api/internal/auth"
	"quartz-india-api/internal/power/application"
	power "quartz-india-api/internal/power/domain"
)

// Handler serves the site and series routes.
type Handler struct {
	service     *application.Service
	auditLogger audit.Logger
	logger      *zap.Logger
	validate    *validator.Validate
}

// NewHandler wires the handler. auditLogger may be nil, which disables
// call auditing.
func NewHandler(service *application.Service, auditLogger audit.Logger, logger *zap.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("http: service must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:     service,
		auditLogger: auditLogger,
		logger:      logger,
		validate:    validator.New(),
	}, nil
}

// Register mounts all routes on the router.
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sources", h.handleSources).Methods(http.MethodGet)
	api.HandleFunc("/sites", h.handleSites).Methods(http.MethodGet)
	api.HandleFunc("/sites/{siteID}", h.handleSite).Methods(http.MethodGet)
	api.HandleFunc("/sites/{siteID}/generation", h.handleGeneration).Methods(http.MethodGet)
	api.HandleFunc("/sites/{siteID}/generation", h.handleRecordGeneration).Methods(http.MethodPost)
	api.HandleFunc("/sites/{siteID}/forecast", h.handleForecast).Methods(http.MethodGet)
	api.HandleFunc("/sites/{siteID}/forecast/export.{format}", h.handleForecastExport).Methods(http.MethodGet)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSources(w http.ResponseWriter, r *http.Request) {
	types := power.AssetTypes()
	sources := make([]string, 0, len(types))
	for _, t := range types {
		sources = append(sources, string(t))
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *Handler) handleSites(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProximityFilter(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	sites, err := h.service.Sites(r.Context())
	if err != nil {
		h.logger.Error("list sites failed", zap.Error(err))
		respondServiceError(w, r, err)
		return
	}

	out := make([]siteResponse, 0, len(sites))
	for _, site := range sites {
		if filter != nil && !filter.matches(site) {
			continue
		}
		out = append(out, toSiteResponse(site))
	}
	h.logAudit(r, "sites.list", "", http.StatusOK, map[string]int{"count": len(out)})
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSite(w http.ResponseWriter, r *http.Request) {
	siteID := mux.Vars(r)["siteID"]
	site, err := h.service.Site(r.Context(), siteID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.logAudit(r, "sites.get", siteID, http.StatusOK, nil)
	writeJSON(w, http.StatusOK, toSiteResponse(site))
}

// logAudit records a served call. Failures are logged and dropped so that
// auditing never blocks a response.
func (h *Handler) logAudit(r *http.Request, action, siteID string, status int, metadata any) {
	if h.auditLogger == nil {
		return
	}
	entry := audit.Entry{
		Actor:     auth.SubjectFromContext(r.Context()),
		Email:     auth.EmailFromContext(r.Context()),
		Action:    action,
		Route:     routeLabel(r),
		SiteID:    siteID,
		RequestID: RequestIDFromContext(r.Context()),
		Status:    status,
		IP:        audit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = raw
		}
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.Warn("audit log failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
