package integration_test

import (
	"context"
	"database/sql"
	"math"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	power "quartz-india-api/internal/power/domain"
	powerpostgres "quartz-india-api/internal/power/infrastructure/postgres"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"sites", "generation_readings", "forecast_values"} {
		if !tableExists(db, table) {
			t.Skipf("%s missing; run tools/seed -create-tables", table)
		}
	}
	return db
}

func tableExists(db *sql.DB, table string) bool {
	var exists bool
	err := db.QueryRow(`
SELECT EXISTS (
	SELECT 1
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name = $1
)`, table).Scan(&exists)
	if err != nil {
		return false
	}
	return exists
}

func cleanupSites(ctx context.Context, db *sql.DB, siteIDs ...string) {
	for _, id := range siteIDs {
		_, _ = db.ExecContext(ctx, "DELETE FROM forecast_values WHERE site_id = $1", id)
		_, _ = db.ExecContext(ctx, "DELETE FROM generation_readings WHERE site_id = $1", id)
		_, _ = db.ExecContext(ctx, "DELETE FROM sites WHERE id = $1", id)
	}
}

func insertSite(t *testing.T, ctx context.Context, db *sql.DB, id, name, assetType string, capacity, a, b float64, coordSystem string) {
	t.Helper()
	_, err := db.ExecContext(ctx, `
INSERT INTO sites (id, name, asset_type, capacity_mw, coord_a, coord_b, coord_system)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, name, assetType, capacity, a, b, coordSystem)
	if err != nil {
		t.Fatalf("insert site %s: %v", id, err)
	}
}

func insertReading(t *testing.T, ctx context.Context, db *sql.DB, siteID string, ts time.Time, powerMW float64) {
	t.Helper()
	_, err := db.ExecContext(ctx, `
INSERT INTO generation_readings (site_id, ts, power_mw)
VALUES ($1, $2, $3)`, siteID, ts, powerMW)
	if err != nil {
		t.Fatalf("insert reading: %v", err)
	}
}

func insertForecast(t *testing.T, ctx context.Context, db *sql.DB, siteID string, target, issued time.Time, powerMW float64) {
	t.Helper()
	_, err := db.ExecContext(ctx, `
INSERT INTO forecast_values (site_id, target_ts, issued_at, power_mw)
VALUES ($1, $2, $3, $4)`, siteID, target, issued, powerMW)
	if err != nil {
		t.Fatalf("insert forecast: %v", err)
	}
}

func TestListSites_Postgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	siteWGS := "site-it-wgs"
	siteMerc := "site-it-merc"
	siteBad := "site-it-bad"
	cleanupSites(ctx, db, siteWGS, siteMerc, siteBad)
	t.Cleanup(func() { cleanupSites(ctx, db, siteWGS, siteMerc, siteBad) })

	insertSite(t, ctx, db, siteWGS, "IT Wind Site WGS", "wind", 100, 27.5, 71.9, "wgs84")
	// easting semiMajorAxis*pi/4 at the equator is exactly lon 45.
	insertSite(t, ctx, db, siteMerc, "IT Solar Site Mercator", "solar", 50, 6378137.0*math.Pi/4, 0, "web_mercator")
	insertSite(t, ctx, db, siteBad, "IT Broken Site", "solar", 10, 99, 0, "wgs84")

	source, err := powerpostgres.NewSource(db)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	sites, err := source.ListSites(ctx)
	if err != nil {
		t.Fatalf("list sites: %v", err)
	}

	byID := make(map[string]power.Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}

	wgs, ok := byID[siteWGS]
	if !ok {
		t.Fatal("expected wgs84 site in listing")
	}
	if wgs.AssetType != power.AssetWind || wgs.CapacityMW != 100 {
		t.Fatalf("unexpected wgs site %+v", wgs)
	}
	if math.Abs(wgs.Location.Lat-27.5) > 1e-9 || math.Abs(wgs.Location.Lon-71.9) > 1e-9 {
		t.Fatalf("wgs coordinates not passed through: %+v", wgs.Location)
	}

	merc, ok := byID[siteMerc]
	if !ok {
		t.Fatal("expected mercator site in listing")
	}
	if math.Abs(merc.Location.Lat-0) > 1e-6 || math.Abs(merc.Location.Lon-45) > 1e-6 {
		t.Fatalf("mercator coordinates not normalized: %+v", merc.Location)
	}

	if _, ok := byID[siteBad]; ok {
		t.Fatal("site with invalid coordinates must be skipped, not listed")
	}
}

func TestGeneration_Postgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	siteID := "site-it-gen"
	cleanupSites(ctx, db, siteID)
	t.Cleanup(func() { cleanupSites(ctx, db, siteID) })
	insertSite(t, ctx, db, siteID, "IT Generation Site", "solar", 100, 27.5, 71.9, "wgs84")

	base := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	insertReading(t, ctx, db, siteID, base.Add(-15*time.Minute), 99) // before window
	insertReading(t, ctx, db, siteID, base, 1)
	insertReading(t, ctx, db, siteID, base.Add(15*time.Minute), 2)
	insertReading(t, ctx, db, siteID, base.Add(30*time.Minute), 3)
	insertReading(t, ctx, db, siteID, base.Add(45*time.Minute), 4)
	insertReading(t, ctx, db, siteID, base.Add(time.Hour), 99) // at window end, excluded

	source, err := powerpostgres.NewSource(db)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	window, err := power.NewWindow(base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("window: %v", err)
	}

	samples, err := source.Generation(ctx, siteID, window)
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	if len(samples) != 4 {
		t.Fatalf("expected 4 in-window samples, got %d", len(samples))
	}
	for i, sample := range samples {
		if want := float64(i + 1); sample.PowerMW != want {
			t.Fatalf("sample %d: power = %v, want %v", i, sample.PowerMW, want)
		}
		if want := base.Add(time.Duration(i) * 15 * time.Minute); !sample.At.Equal(want) {
			t.Fatalf("sample %d: ts = %v, want %v", i, sample.At, want)
		}
		if sample.At.Location() != time.UTC {
			t.Fatalf("sample %d: timestamp not UTC", i)
		}
	}

	none, err := source.Generation(ctx, "site-it-absent", window)
	if err != nil {
		t.Fatalf("generation for unknown site: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no samples for unknown site, got %d", len(none))
	}
}

func TestForecast_Postgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	siteID := "site-it-fc"
	cleanupSites(ctx, db, siteID)
	t.Cleanup(func() { cleanupSites(ctx, db, siteID) })
	insertSite(t, ctx, db, siteID, "IT Forecast Site", "wind", 100, 27.5, 71.9, "wgs84")

	// Day-ahead submissions for both targets close at 09:00 IST on
	// June 14, which is 03:30 UTC.
	target1 := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	target2 := target1.Add(15 * time.Minute)
	deadline := time.Date(2026, time.June, 14, 3, 30, 0, 0, time.UTC)

	insertForecast(t, ctx, db, siteID, target1, deadline.Add(-2*time.Hour), 10)
	insertForecast(t, ctx, db, siteID, target1, deadline.Add(time.Hour), 20)
	insertForecast(t, ctx, db, siteID, target2, deadline.Add(90*time.Minute), 30)

	source, err := powerpostgres.NewSource(db)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	window, err := power.NewWindow(target1, target1.Add(time.Hour))
	if err != nil {
		t.Fatalf("window: %v", err)
	}

	latest, err := source.Forecast(ctx, siteID, window, power.HorizonLatest)
	if err != nil {
		t.Fatalf("latest forecast: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("latest: expected 2 targets, got %d", len(latest))
	}
	if latest[0].PowerMW != 20 {
		t.Fatalf("latest target1: most recent issue must win, got %v", latest[0].PowerMW)
	}
	if latest[1].PowerMW != 30 {
		t.Fatalf("latest target2: got %v, want 30", latest[1].PowerMW)
	}
	if !latest[0].TargetTime.Equal(target1) || !latest[1].TargetTime.Equal(target2) {
		t.Fatalf("latest targets out of order: %v, %v", latest[0].TargetTime, latest[1].TargetTime)
	}

	dayAhead, err := source.Forecast(ctx, siteID, window, power.HorizonDayAhead)
	if err != nil {
		t.Fatalf("day-ahead forecast: %v", err)
	}
	if len(dayAhead) != 1 {
		t.Fatalf("day-ahead: expected only the target with an in-time issue, got %d", len(dayAhead))
	}
	if !dayAhead[0].TargetTime.Equal(target1) || dayAhead[0].PowerMW != 10 {
		t.Fatalf("day-ahead: expected pre-deadline value 10 for target1, got %v at %v",
			dayAhead[0].PowerMW, dayAhead[0].TargetTime)
	}
	if !power.IssuedInTime(dayAhead[0].TargetTime, dayAhead[0].IssuedAt) {
		t.Fatal("day-ahead issue must satisfy the submission deadline")
	}
}

func TestRecordGeneration_Postgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	siteID := "site-it-ingest"
	cleanupSites(ctx, db, siteID)
	t.Cleanup(func() { cleanupSites(ctx, db, siteID) })
	insertSite(t, ctx, db, siteID, "IT Ingest Site", "solar", 100, 27.5, 71.9, "wgs84")

	ts := time.Date(2026, time.April, 2, 12, 0, 0, 0, time.UTC)

	source, err := powerpostgres.NewSource(db)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	first := []power.GenerationSample{{SiteID: siteID, At: ts, PowerMW: 5}}
	if err := source.RecordGeneration(ctx, siteID, first); err != nil {
		t.Fatalf("record: %v", err)
	}

	second := []power.GenerationSample{
		{SiteID: siteID, At: ts, PowerMW: 7},
		{SiteID: siteID, At: ts.Add(15 * time.Minute), PowerMW: 8},
	}
	if err := source.RecordGeneration(ctx, siteID, second); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	window, err := power.NewWindow(ts, ts.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	samples, err := source.Generation(ctx, siteID, window)
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected upsert to leave 2 rows, got %d", len(samples))
	}
	if samples[0].PowerMW != 7 {
		t.Fatalf("expected re-recorded value 7, got %v", samples[0].PowerMW)
	}
	if samples[1].PowerMW != 8 {
		t.Fatalf("expected appended value 8, got %v", samples[1].PowerMW)
	}

	bad := []power.GenerationSample{{SiteID: siteID, PowerMW: 1}}
	if err := source.RecordGeneration(ctx, siteID, bad); err == nil {
		t.Fatal("expected error for reading without timestamp")
	}
}
