package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"quartz-india-api/internal/geo"
	power "quartz-india-api/internal/power/domain"
	"quartz-india-api/internal/power/infrastructure/fake"
)

type config struct {
	dsn          string
	siteCount    int
	startDate    string
	days         int
	aheadDays    int
	createTables bool
	seedForecast bool
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.siteCount <= 0 {
		log.Fatal("sites must be > 0")
	}
	if cfg.days <= 0 {
		log.Fatal("days must be > 0")
	}

	start, err := parseStartDate(cfg.startDate, cfg.days)
	if err != nil {
		log.Fatalf("invalid start-date: %v", err)
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if cfg.createTables {
		if err := createTables(ctx, db); err != nil {
			log.Fatalf("create tables: %v", err)
		}
		log.Printf("tables ready")
	}

	sites := buildSites(cfg.siteCount)
	if err := seedSites(ctx, db, sites); err != nil {
		log.Fatalf("seed sites: %v", err)
	}
	log.Printf("seeded %d sites", len(sites))

	source := fake.NewSource(fake.WithSites(sites))

	readingsWindow, err := power.NewWindow(start, start.AddDate(0, 0, cfg.days))
	if err != nil {
		log.Fatalf("readings window: %v", err)
	}
	if err := seedReadings(ctx, db, source, sites, readingsWindow); err != nil {
		log.Fatalf("seed readings: %v", err)
	}

	if cfg.seedForecast {
		forecastWindow, err := power.NewWindow(start, start.AddDate(0, 0, cfg.days+cfg.aheadDays))
		if err != nil {
			log.Fatalf("forecast window: %v", err)
		}
		if err := seedForecasts(ctx, db, source, sites, forecastWindow); err != nil {
			log.Fatalf("seed forecasts: %v", err)
		}
	}

	log.Printf("seed completed")
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN")
	flag.IntVar(&cfg.siteCount, "sites", envOrInt("SITES", len(siteCatalog)), "number of sites to seed")
	flag.StringVar(&cfg.startDate, "start-date", envOrDefault("START_DATE", ""), "start date (YYYY-MM-DD or RFC3339)")
	flag.IntVar(&cfg.days, "days", envOrInt("DAYS", 7), "number of days of readings")
	flag.IntVar(&cfg.aheadDays, "ahead-days", envOrInt("AHEAD_DAYS", 2), "extra days of forecast beyond the readings")
	flag.BoolVar(&cfg.createTables, "create-tables", envOrBool("CREATE_TABLES", true), "create tables when missing")
	flag.BoolVar(&cfg.seedForecast, "seed-forecast", envOrBool("SEED_FORECAST", true), "seed forecast values")
	flag.Parse()
	return cfg
}

func parseStartDate(value string, days int) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour), nil
	}
	value = strings.TrimSpace(value)
	if strings.Contains(value, "T") {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

type catalogSite struct {
	name       string
	assetType  power.AssetType
	capacityMW float64
	lat        float64
	lon        float64
}

var siteCatalog = []catalogSite{
	{"Bhadla Solar Park Unit II", power.AssetSolar, 245, 27.539, 71.916},
	{"Pavagada Shakti Sthala", power.AssetSolar, 200, 14.100, 77.280},
	{"Rewa Ultra Mega Solar", power.AssetSolar, 250, 24.480, 81.290},
	{"Kamuthi Solar Power Project", power.AssetSolar, 180, 9.350, 78.390},
	{"Muppandal Wind Farm", power.AssetWind, 150, 8.260, 77.550},
	{"Jaisalmer Wind Park", power.AssetWind, 120, 26.920, 70.910},
	{"Kutch Wind Cluster", power.AssetWind, 110, 23.240, 69.670},
	{"Tuticorin Coastal Wind", power.AssetWind, 95, 8.760, 78.130},
}

// buildSites returns the catalog sites, extended with generated ones when
// more are requested. Site ids are derived from the name so reseeding is
// idempotent.
func buildSites(count int) []power.Site {
	sites := make([]power.Site, 0, count)
	for i := 0; i < count; i++ {
		var entry catalogSite
		if i < len(siteCatalog) {
			entry = siteCatalog[i]
		} else {
			n := i - len(siteCatalog) + 1
			entry = catalogSite{
				name:       fmt.Sprintf("Perf Site %04d", n),
				assetType:  power.AssetSolar,
				capacityMW: 50 + float64(n%40),
				lat:        20.0 + float64(n%140)*0.05,
				lon:        72.0 + float64(n%190)*0.05,
			}
			if n%2 == 0 {
				entry.assetType = power.AssetWind
			}
		}
		sites = append(sites, power.Site{
			ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(entry.name)).String(),
			Name:       entry.name,
			AssetType:  entry.assetType,
			CapacityMW: entry.capacityMW,
			Location:   geo.Point{Lat: entry.lat, Lon: entry.lon},
		})
	}
	return sites
}

func createTables(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sites (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			asset_type TEXT NOT NULL,
			capacity_mw DOUBLE PRECISION NOT NULL,
			coord_a DOUBLE PRECISION NOT NULL,
			coord_b DOUBLE PRECISION NOT NULL,
			coord_system TEXT NOT NULL DEFAULT 'wgs84',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS generation_readings (
			site_id TEXT NOT NULL REFERENCES sites(id),
			ts TIMESTAMPTZ NOT NULL,
			power_mw DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (site_id, ts)
		)`,
		`CREATE TABLE IF NOT EXISTS forecast_values (
			site_id TEXT NOT NULL REFERENCES sites(id),
			target_ts TIMESTAMPTZ NOT NULL,
			issued_at TIMESTAMPTZ NOT NULL,
			power_mw DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (site_id, target_ts, issued_at)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_site_target
			ON forecast_values (site_id, target_ts, issued_at DESC)`,
		`CREATE TABLE IF NOT EXISTS api_calls (
			id TEXT PRIMARY KEY,
			actor TEXT,
			email TEXT,
			action TEXT NOT NULL,
			route TEXT,
			site_id TEXT,
			request_id TEXT,
			status INT,
			metadata JSONB,
			payload_digest TEXT,
			ip TEXT,
			user_agent TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func seedSites(ctx context.Context, db *sql.DB, sites []power.Site) error {
	const insertSQL = `
INSERT INTO sites (id, name, asset_type, capacity_mw, coord_a, coord_b, coord_system, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	asset_type = EXCLUDED.asset_type,
	capacity_mw = EXCLUDED.capacity_mw,
	coord_a = EXCLUDED.coord_a,
	coord_b = EXCLUDED.coord_b,
	coord_system = EXCLUDED.coord_system,
	updated_at = NOW()`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, site := range sites {
		if _, err := stmt.ExecContext(
			ctx,
			site.ID,
			site.Name,
			string(site.AssetType),
			site.CapacityMW,
			site.Location.Lat,
			site.Location.Lon,
			"wgs84",
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func seedReadings(ctx context.Context, db *sql.DB, source *fake.Source, sites []power.Site, w power.Window) error {
	const insertSQL = `
INSERT INTO generation_readings (site_id, ts, power_mw, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW())
ON CONFLICT (site_id, ts)
DO UPDATE SET power_mw = EXCLUDED.power_mw, updated_at = NOW()`

	for idx, site := range sites {
		samples, err := source.Generation(ctx, site.ID, w)
		if err != nil {
			return err
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, sample := range samples {
			if _, err := stmt.ExecContext(ctx, site.ID, sample.At, sample.PowerMW); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return err
			}
		}
		if err := stmt.Close(); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Printf("seeded readings site %s (%d/%d, %d rows)", site.Name, idx+1, len(sites), len(samples))
	}
	return nil
}

// seedForecasts writes the freshest forecast per target plus one stale
// earlier issue, so most-recently-issued-wins paths have data to pick from.
func seedForecasts(ctx context.Context, db *sql.DB, source *fake.Source, sites []power.Site, w power.Window) error {
	const insertSQL = `
INSERT INTO forecast_values (site_id, target_ts, issued_at, power_mw, created_at)
VALUES ($1,$2,$3,$4,NOW())
ON CONFLICT (site_id, target_ts, issued_at)
DO UPDATE SET power_mw = EXCLUDED.power_mw`

	const staleIssueLead = 30 * time.Hour

	for idx, site := range sites {
		samples, err := source.Forecast(ctx, site.ID, w, power.HorizonLatest)
		if err != nil {
			return err
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		rows := 0
		for _, sample := range samples {
			if _, err := stmt.ExecContext(ctx, site.ID, sample.TargetTime, sample.IssuedAt, sample.PowerMW); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return err
			}
			staleIssued := sample.TargetTime.Add(-staleIssueLead)
			if _, err := stmt.ExecContext(ctx, site.ID, sample.TargetTime, staleIssued, sample.PowerMW*0.9); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return err
			}
			rows += 2
		}
		if err := stmt.Close(); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Printf("seeded forecasts site %s (%d/%d, %d rows)", site.Name, idx+1, len(sites), rows)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envOrBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
