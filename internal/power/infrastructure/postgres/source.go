// Package postgres implements the power source against a Postgres
// database using the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"quartz-india-api/internal/geo"
	power "quartz-india-api/internal/power/domain"
)

const (
	defaultSitesTable      = "sites"
	defaultGenerationTable = "generation_readings"
	defaultForecastTable   = "forecast_values"
)

// Source reads sites and series from Postgres. Every database failure
// surfaces as power.ErrSourceUnavailable; an unknown site simply yields
// no rows.
type Source struct {
	db              *sql.DB
	sitesTable      string
	generationTable string
	forecastTable   string
	logger          *zap.Logger
}

// Option configures the source.
type Option func(*Source)

// WithSitesTable overrides the default sites table name.
func WithSitesTable(table string) Option {
	return func(s *Source) {
		if table != "" {
			s.sitesTable = table
		}
	}
}

// WithGenerationTable overrides the default generation table name.
func WithGenerationTable(table string) Option {
	return func(s *Source) {
		if table != "" {
			s.generationTable = table
		}
	}
}

// WithForecastTable overrides the default forecast table name.
func WithForecastTable(table string) Option {
	return func(s *Source) {
		if table != "" {
			s.forecastTable = table
		}
	}
}

// WithLogger attaches a logger for row-level warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSource constructs a Postgres source.
func NewSource(db *sql.DB, opts ...Option) (*Source, error) {
	if db == nil {
		return nil, errors.New("postgres source: nil db")
	}
	s := &Source{
		db:              db,
		sitesTable:      defaultSitesTable,
		generationTable: defaultGenerationTable,
		forecastTable:   defaultForecastTable,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ping checks connectivity. Used at startup only; the health endpoint
// never reaches the database.
func (s *Source) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// ListSites loads all sites with coordinates normalized to WGS84.
// Rows with broken coordinates are skipped and logged rather than
// failing the listing.
func (s *Source) ListSites(ctx context.Context) ([]power.Site, error) {
	query := fmt.Sprintf(`
SELECT id, name, asset_type, capacity_mw, coord_a, coord_b, coord_system
FROM %s
ORDER BY name ASC`, s.sitesTable)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, unavailable("list sites", err)
	}
	defer rows.Close()

	var sites []power.Site
	for rows.Next() {
		var (
			site     power.Site
			rawType  string
			a, b     float64
			coordSys string
		)
		if err := rows.Scan(&site.ID, &site.Name, &rawType, &site.CapacityMW, &a, &b, &coordSys); err != nil {
			return nil, unavailable("scan site", err)
		}

		assetType, err := power.ParseAssetType(rawType)
		if err != nil {
			s.logger.Warn("skipping site with unknown asset type",
				zap.String("site_id", site.ID), zap.String("asset_type", rawType))
			continue
		}
		site.AssetType = assetType

		point, err := geo.Normalize(geo.System(coordSys), a, b)
		if err != nil {
			s.logger.Warn("skipping site with invalid coordinates",
				zap.String("site_id", site.ID), zap.Error(err))
			continue
		}
		site.Location = point

		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list sites", err)
	}
	return sites, nil
}

// Generation returns readings within [w.Start, w.End) in ascending
// timestamp order.
func (s *Source) Generation(ctx context.Context, siteID string, w power.Window) ([]power.GenerationSample, error) {
	if siteID == "" {
		return nil, nil
	}

	query := fmt.Sprintf(`
SELECT ts, power_mw
FROM %s
WHERE site_id = $1
	AND ts >= $2
	AND ts < $3
ORDER BY ts ASC`, s.generationTable)

	rows, err := s.db.QueryContext(ctx, query, siteID, w.Start, w.End)
	if err != nil {
		return nil, unavailable("query generation", err)
	}
	defer rows.Close()

	var samples []power.GenerationSample
	for rows.Next() {
		sample := power.GenerationSample{SiteID: siteID}
		if err := rows.Scan(&sample.At, &sample.PowerMW); err != nil {
			return nil, unavailable("scan generation", err)
		}
		sample.At = sample.At.UTC()
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query generation", err)
	}
	return samples, nil
}

// Forecast returns one row per target time within the window: the most
// recently issued value, additionally bounded by the 09:00 IST
// day-ahead submission deadline when the horizon asks for it.
func (s *Source) Forecast(ctx context.Context, siteID string, w power.Window, h power.Horizon) ([]power.ForecastSample, error) {
	if siteID == "" {
		return nil, nil
	}

	deadline := ""
	if h == power.HorizonDayAhead {
		deadline = `
	AND issued_at < ((date_trunc('day', target_ts AT TIME ZONE 'Asia/Kolkata') - interval '1 day' + interval '9 hours') AT TIME ZONE 'Asia/Kolkata')`
	}

	query := fmt.Sprintf(`
SELECT DISTINCT ON (target_ts) target_ts, issued_at, power_mw
FROM %s
WHERE site_id = $1
	AND target_ts >= $2
	AND target_ts < $3%s
ORDER BY target_ts ASC, issued_at DESC`, s.forecastTable, deadline)

	rows, err := s.db.QueryContext(ctx, query, siteID, w.Start, w.End)
	if err != nil {
		return nil, unavailable("query forecast", err)
	}
	defer rows.Close()

	var samples []power.ForecastSample
	for rows.Next() {
		sample := power.ForecastSample{SiteID: siteID}
		if err := rows.Scan(&sample.TargetTime, &sample.IssuedAt, &sample.PowerMW); err != nil {
			return nil, unavailable("scan forecast", err)
		}
		sample.TargetTime = sample.TargetTime.UTC()
		sample.IssuedAt = sample.IssuedAt.UTC()
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query forecast", err)
	}
	return samples, nil
}

// RecordGeneration upserts pushed readings in one transaction.
func (s *Source) RecordGeneration(ctx context.Context, siteID string, readings []power.GenerationSample) error {
	if siteID == "" || len(readings) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	site_id,
	ts,
	power_mw
) VALUES (
	$1, $2, $3
)
ON CONFLICT (site_id, ts)
DO UPDATE SET
	power_mw = EXCLUDED.power_mw,
	updated_at = NOW()`, s.generationTable)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin record generation", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return unavailable("prepare record generation", err)
	}
	defer stmt.Close()

	for _, reading := range readings {
		if reading.At.IsZero() {
			_ = tx.Rollback()
			return errors.New("postgres source: reading without timestamp")
		}
		if _, err := stmt.ExecContext(ctx, siteID, reading.At.UTC(), reading.PowerMW); err != nil {
			_ = tx.Rollback()
			return unavailable("record generation", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit record generation", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", power.ErrSourceUnavailable, op, err)
}
