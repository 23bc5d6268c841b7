package repositories

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"shipment-risk-service/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// In-memory databases are per-connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	if err := SeedReferenceData(db); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	return db
}

func TestSqliteStoreReferenceLookups(t *testing.T) {
	store := NewSqliteHistoricalStore(newTestDB(t))
	ctx := context.Background()

	carrier, ok, err := store.GetCarrierAggregate(ctx, domain.CarrierUPS)
	if err != nil || !ok {
		t.Fatalf("UPS aggregate: ok=%t err=%v", ok, err)
	}
	if carrier.ReliabilityScore != 85 || carrier.PeakSeasonDrop != 15 {
		t.Fatalf("UPS aggregate = %+v, want reliability 85 / peak drop 15", carrier)
	}

	if _, ok, err := store.GetCarrierAggregate(ctx, domain.Carrier("Amazon")); err != nil || ok {
		t.Fatalf("unknown carrier: ok=%t err=%v, want absent without error", ok, err)
	}

	geo, ok, err := store.GetGeoAggregate(ctx, "98101")
	if err != nil || !ok {
		t.Fatalf("98101 aggregate: ok=%t err=%v", ok, err)
	}
	if geo.City != "Seattle" || geo.BaseRiskScore != 15 || geo.TrafficComplexity != 25 {
		t.Fatalf("98101 aggregate = %+v", geo)
	}

	if _, ok, err := store.GetGeoAggregate(ctx, "00000"); err != nil || ok {
		t.Fatalf("unknown zip: ok=%t err=%v, want absent without error", ok, err)
	}

	pattern, ok, err := store.GetTemporalPattern(ctx, domain.PatternDayOfWeek, "monday")
	if err != nil || !ok {
		t.Fatalf("monday pattern: ok=%t err=%v", ok, err)
	}
	if pattern.RiskMultiplier != 1.1 {
		t.Fatalf("monday multiplier = %v, want 1.1", pattern.RiskMultiplier)
	}

	if _, ok, err := store.GetTemporalPattern(ctx, domain.PatternDayOfWeek, "sunday"); err != nil || ok {
		t.Fatalf("unseeded pattern: ok=%t err=%v, want absent without error", ok, err)
	}
}

func TestSqliteStoreUpsertPerformanceAggregate(t *testing.T) {
	store := NewSqliteHistoricalStore(newTestDB(t))
	ctx := context.Background()

	if _, ok, err := store.GetPerformanceAggregate(ctx, domain.CarrierUPS, "98101"); err != nil || ok {
		t.Fatalf("fresh lane: ok=%t err=%v, want absent without error", ok, err)
	}

	records := []struct {
		delayed    bool
		delayHours float64
	}{
		{true, 48},
		{false, 0},
		{true, 30},
	}
	for i, r := range records {
		if err := store.UpsertPerformanceAggregate(ctx, domain.CarrierUPS, "98101", r.delayed, r.delayHours); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	agg, ok, err := store.GetPerformanceAggregate(ctx, domain.CarrierUPS, "98101")
	if err != nil || !ok {
		t.Fatalf("lane after upserts: ok=%t err=%v", ok, err)
	}
	if agg.TotalDeliveries != 3 || agg.DelayedDeliveries != 2 {
		t.Fatalf("aggregate = %+v, want 3 total / 2 delayed", agg)
	}
	if agg.TotalDelayHours != 78 {
		t.Fatalf("total delay hours = %v, want 78", agg.TotalDelayHours)
	}
	if math.Abs(agg.AvgDelayHours-26) > 1e-9 {
		t.Fatalf("avg delay = %v, want 26 (total / count)", agg.AvgDelayHours)
	}

	// A different lane is untouched.
	if _, ok, _ := store.GetPerformanceAggregate(ctx, domain.CarrierUPS, "10001"); ok {
		t.Fatal("upsert leaked into another lane")
	}
}

func TestSqliteStoreOutcomesAndSnapshot(t *testing.T) {
	store := NewSqliteHistoricalStore(newTestDB(t))
	ctx := context.Background()

	scheduled := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	outcome := domain.NewDeliveryOutcome(
		"PKG001", domain.CarrierUSPS, "10001", "98101",
		scheduled, scheduled.AddDate(0, 0, 2),
		[]string{"weather"}, time.Now().UTC(),
	)
	if err := store.AppendDeliveryOutcome(ctx, outcome); err != nil {
		t.Fatalf("append outcome: %v", err)
	}

	snapshot, err := store.GetPerformanceSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if len(snapshot.Carriers) != 4 {
		t.Fatalf("carriers = %d, want 4 seeded", len(snapshot.Carriers))
	}
	// Ordered by reliability, best first.
	if snapshot.Carriers[0].Carrier != domain.CarrierFedEx {
		t.Fatalf("top carrier = %s, want FedEx", snapshot.Carriers[0].Carrier)
	}
	if snapshot.Carriers[3].Carrier != domain.CarrierUSPS {
		t.Fatalf("bottom carrier = %s, want USPS", snapshot.Carriers[3].Carrier)
	}

	if snapshot.RecentOutcomes != 1 || snapshot.RecentDelayed != 1 {
		t.Fatalf("recent outcomes = %d/%d delayed, want 1/1", snapshot.RecentOutcomes, snapshot.RecentDelayed)
	}
	if math.Abs(snapshot.RecentAvgDelayHrs-48) > 1e-9 {
		t.Fatalf("recent avg delay = %v, want 48", snapshot.RecentAvgDelayHrs)
	}
}

func TestSqliteShipmentRepository(t *testing.T) {
	db := newTestDB(t)

	seedPath := filepath.Join(t.TempDir(), "packages.json")
	seedJSON := `[
		{"package_id": "PKG001", "destination_zip": "98101", "destination_city": "Seattle", "carrier": "USPS", "expected_delivery_date": "2026-06-20"},
		{"package_id": "PKG002", "destination_zip": "10001", "destination_city": "New York", "carrier": "UPS", "expected_delivery_date": "2026-06-21"}
	]`
	if err := os.WriteFile(seedPath, []byte(seedJSON), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	if err := SeedShipmentsFromJSON(db, seedPath); err != nil {
		t.Fatalf("seed shipments: %v", err)
	}

	repo := NewSqliteShipmentRepository(db)
	ctx := context.Background()

	shipments, err := repo.ListShipments(ctx)
	if err != nil {
		t.Fatalf("list shipments: %v", err)
	}
	if len(shipments) != 2 {
		t.Fatalf("shipments = %d, want 2", len(shipments))
	}

	got, ok, err := repo.GetShipment(ctx, "PKG001")
	if err != nil || !ok {
		t.Fatalf("get PKG001: ok=%t err=%v", ok, err)
	}
	if got.Carrier != domain.CarrierUSPS || got.DestinationCity != "Seattle" {
		t.Fatalf("PKG001 = %+v", got)
	}

	if _, ok, err := repo.GetShipment(ctx, "PKG999"); err != nil || ok {
		t.Fatalf("unknown package: ok=%t err=%v, want absent without error", ok, err)
	}
}

func TestSeedShipmentsRejectsUnknownCarrier(t *testing.T) {
	db := newTestDB(t)

	seedPath := filepath.Join(t.TempDir(), "packages.json")
	seedJSON := `[{"package_id": "PKG001", "destination_zip": "98101", "destination_city": "Seattle", "carrier": "Amazon", "expected_delivery_date": "2026-06-20"}]`
	if err := os.WriteFile(seedPath, []byte(seedJSON), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	if err := SeedShipmentsFromJSON(db, seedPath); err == nil {
		t.Fatal("unknown carrier accepted")
	}
}
