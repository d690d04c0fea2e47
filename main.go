package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"quartz-india-api/internal/audit"
	"quartz-india-api/internal/auth"
	"quartz-india-api/internal/config"
	"quartz-india-api/internal/observability/logging"
	"quartz-india-api/internal/observability/metrics"
	"quartz-india-api/internal/power/application"
	power "quartz-india-api/internal/power/domain"
	"quartz-india-api/internal/power/infrastructure/fake"
	powerpostgres "quartz-india-api/internal/power/infrastructure/postgres"
	powerhttp "quartz-india-api/internal/power/interfaces/http"
)

const dbPingTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	var (
		source   power.Source
		recorder power.Recorder
		db       *sql.DB
	)
	switch cfg.Source {
	case config.SourcePostgres:
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db open error", zap.Error(err))
		}
		defer db.Close()

		pgSource, err := powerpostgres.NewSource(db, powerpostgres.WithLogger(logger))
		if err != nil {
			logger.Fatal("source error", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
		err = pgSource.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Fatal("db ping error", zap.Error(err))
		}
		source = pgSource
		recorder = pgSource
	case config.SourceFake:
		fakeSource := fake.NewSource()
		source = fakeSource
		recorder = fakeSource
	default:
		logger.Fatal("unknown source", zap.String("source", string(cfg.Source)))
	}

	metrics.Init(db, logger)

	service, err := application.NewService(source, recorder, application.Params{
		MaxWindow:         cfg.MaxWindow,
		DefaultResolution: cfg.DefaultResolution,
		MaxFillGap:        cfg.MaxFillGap,
		SmoothWindow:      cfg.SmoothWindow,
	}, nil)
	if err != nil {
		logger.Fatal("service error", zap.Error(err))
	}

	var auditLogger audit.Logger
	if db != nil {
		auditLogger = audit.NewRepository(db)
	}

	handler, err := powerhttp.NewHandler(service, auditLogger, logger)
	if err != nil {
		logger.Fatal("handler error", zap.Error(err))
	}

	router := mux.NewRouter()
	handler.Register(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	policy := auth.NewDefaultPolicy([]string{"/health", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	var root http.Handler = router
	root = authMiddleware.Wrap(root)
	root = powerhttp.RateLimit(root, limiter)
	root = powerhttp.Metrics(root)
	root = powerhttp.RequestLogging(root, logger)
	root = powerhttp.RequestID(root)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("http listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("source", string(cfg.Source)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
