package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func registerDBMetrics(db *sql.DB, logger *zap.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "sites_total",
			Help: "Sites currently served from the database",
		},
		func() float64 {
			return queryValue(db, logger, "SELECT COUNT(*) FROM sites")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "newest_reading_age_seconds",
			Help: "Seconds since the most recent generation reading",
		},
		func() float64 {
			return queryValue(db, logger,
				"SELECT COALESCE(EXTRACT(EPOCH FROM (NOW() - MAX(ts))), 0) FROM generation_readings")
		},
	))
}

func queryValue(db *sql.DB, logger *zap.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var value float64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		if logger != nil {
			logger.Warn("metrics query failed", zap.Error(err))
		}
		return 0
	}
	if value < 0 {
		return 0
	}
	return value
}
