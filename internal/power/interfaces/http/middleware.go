package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"quartz-india-api/internal/audit"
	"quartz-india-api/internal/observability/metrics"
)

type contextKey string

const requestIDKey contextKey = "http.request_id"

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, keeping an inbound X-Request-ID
// when the caller supplied one. The id is echoed on the response and carried
// in the request context for log and audit correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogging writes one structured line per served request.
func RequestLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Int("bytes", recorder.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("remote_ip", audit.ClientIP(r)),
		)
	})
}

// Metrics records request counts, latency and in-flight gauge per route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.IncHTTPInFlight()
		defer metrics.DecHTTPInFlight()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.ObserveHTTPRequest(r.Method, routeLabel(r), recorder.status, time.Since(start))
	})
}

// RateLimit applies a process-wide token bucket. Requests over the limit are
// rejected with 429 before reaching auth or the source.
func RateLimit(next http.Handler, limiter *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow() {
			metrics.IncRateLimited()
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// routeLabel collapses request paths onto their route templates so metric
// cardinality stays bounded.
func routeLabel(r *http.Request) string {
	path := r.URL.Path
	switch {
	case path == "/health":
		return "/health"
	case path == "/metrics":
		return "/metrics"
	case path == "/api/v1/sources":
		return "/api/v1/sources"
	case path == "/api/v1/sites":
		return "/api/v1/sites"
	case strings.HasPrefix(path, "/api/v1/sites/"):
		rest := strings.TrimPrefix(path, "/api/v1/sites/")
		switch {
		case strings.Contains(rest, "/forecast/export."):
			return "/api/v1/sites/{site_id}/forecast/export.{format}"
		case strings.HasSuffix(rest, "/forecast"):
			return "/api/v1/sites/{site_id}/forecast"
		case strings.HasSuffix(rest, "/generation"):
			return "/api/v1/sites/{site_id}/generation"
		default:
			return "/api/v1/sites/{site_id}"
		}
	default:
		return "other"
	}
}
