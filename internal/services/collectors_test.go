package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"shipment-risk-service/internal/adapters/cache"
	"shipment-risk-service/internal/adapters/repositories"
	"shipment-risk-service/internal/adapters/weather"
	"shipment-risk-service/internal/domain"
	"shipment-risk-service/internal/ports"
)

// June 15th: outside peak season, a Monday.
var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func seededStore() *repositories.MockHistoricalStore {
	store := repositories.NewMockHistoricalStore()

	store.Carriers[domain.CarrierUSPS] = domain.CarrierAggregate{
		Carrier: domain.CarrierUSPS, ReliabilityScore: 78, PeakSeasonDrop: 25,
	}
	store.Carriers[domain.CarrierFedEx] = domain.CarrierAggregate{
		Carrier: domain.CarrierFedEx, ReliabilityScore: 88, PeakSeasonDrop: 12,
	}

	store.Geos["98101"] = domain.GeoAggregate{
		ZipCode: "98101", City: "Seattle", BaseRiskScore: 25, TrafficComplexity: 20,
	}
	store.Geos["90210"] = domain.GeoAggregate{
		ZipCode: "90210", City: "Beverly Hills", BaseRiskScore: 8, TrafficComplexity: 15,
	}

	store.Patterns["day_of_week|monday"] = domain.TemporalPattern{
		PatternType: domain.PatternDayOfWeek, PatternValue: "monday",
		RiskMultiplier: 1.1, Description: "Monday packages often delayed due to weekend backlog",
	}
	store.Patterns["month|december"] = domain.TemporalPattern{
		PatternType: domain.PatternMonth, PatternValue: "december",
		RiskMultiplier: 1.4, Description: "Holiday season rush",
	}

	return store
}

func newTestEngine(store ports.HistoricalStore, provider ports.WeatherProvider) *Engine {
	e := NewEngine(store, provider, cache.NewMemoryAssessmentCache(time.Hour, 64))
	e.now = func() time.Time { return testNow }
	return e
}

func TestCollectCarrierRisk(t *testing.T) {
	store := seededStore()
	e := newTestEngine(store, weather.NewMockWeatherProvider(nil))

	fs, err := e.collectCarrierRisk(context.Background(), domain.CarrierUSPS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 22 {
		t.Fatalf("off-season USPS risk = %d, want 22", fs.score)
	}
	if len(fs.reasons) != 1 {
		t.Fatalf("reasons = %v, want one entry", fs.reasons)
	}

	// December adds the peak-season drop, still capped at 50.
	e.now = func() time.Time { return time.Date(2026, 12, 5, 10, 0, 0, 0, time.UTC) }
	fs, err = e.collectCarrierRisk(context.Background(), domain.CarrierUSPS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 47 {
		t.Fatalf("peak-season USPS risk = %d, want 47", fs.score)
	}

	// A stronger carrier scores lower under the same peak bump.
	fs, err = e.collectCarrierRisk(context.Background(), domain.CarrierFedEx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 24 {
		t.Fatalf("peak-season FedEx risk = %d, want 24", fs.score)
	}

	// Unknown carrier falls back to the fixed default.
	fs, err = e.collectCarrierRisk(context.Background(), domain.CarrierDHL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 25 {
		t.Fatalf("unknown-carrier risk = %d, want 25", fs.score)
	}
	if len(fs.reasons) != 1 {
		t.Fatalf("default risk above threshold should carry a reason, got %v", fs.reasons)
	}
}

func TestCollectCarrierRiskCap(t *testing.T) {
	store := seededStore()
	store.Carriers[domain.CarrierDHL] = domain.CarrierAggregate{
		Carrier: domain.CarrierDHL, ReliabilityScore: 40, PeakSeasonDrop: 30,
	}

	e := newTestEngine(store, weather.NewMockWeatherProvider(nil))
	e.now = func() time.Time { return time.Date(2026, 11, 20, 10, 0, 0, 0, time.UTC) }

	fs, err := e.collectCarrierRisk(context.Background(), domain.CarrierDHL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 50 {
		t.Fatalf("risk = %d, want capped 50", fs.score)
	}
}

func TestCollectGeographicRisk(t *testing.T) {
	e := newTestEngine(seededStore(), weather.NewMockWeatherProvider(nil))

	// 25 + 20*0.3 = 31, capped to 30.
	fs, err := e.collectGeographicRisk(context.Background(), "98101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 30 {
		t.Fatalf("risk = %d, want 30", fs.score)
	}
	if len(fs.reasons) != 1 {
		t.Fatalf("reasons = %v, want one entry", fs.reasons)
	}

	// 8 + 15*0.3 = 12.5 -> 12, below the reason threshold.
	fs, err = e.collectGeographicRisk(context.Background(), "90210")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 12 {
		t.Fatalf("risk = %d, want 12", fs.score)
	}
	if len(fs.reasons) != 0 {
		t.Fatalf("reasons = %v, want none", fs.reasons)
	}

	// Unknown zip falls back to the fixed default, no reason.
	fs, err = e.collectGeographicRisk(context.Background(), "00000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 10 {
		t.Fatalf("risk = %d, want 10", fs.score)
	}
}

func TestCollectPerformanceRisk(t *testing.T) {
	store := seededStore()
	store.Performance["UPS|98101"] = domain.PerformanceAggregate{
		Carrier: domain.CarrierUPS, ZipCode: "98101",
		TotalDeliveries: 100, DelayedDeliveries: 12, AvgDelayHours: 9.5,
	}
	store.Performance["FedEx|98101"] = domain.PerformanceAggregate{
		Carrier: domain.CarrierFedEx, ZipCode: "98101",
		TotalDeliveries: 100, DelayedDeliveries: 5, AvgDelayHours: 3.0,
	}
	store.Performance["DHL|33101"] = domain.PerformanceAggregate{
		Carrier: domain.CarrierDHL, ZipCode: "33101",
		TotalDeliveries: 10, DelayedDeliveries: 9, AvgDelayHours: 20,
	}

	e := newTestEngine(store, weather.NewMockWeatherProvider(nil))

	// 12% delay rate + severity bump = 17, reason above 10.
	fs, existed, err := e.collectPerformanceRisk(context.Background(), domain.CarrierUPS, "98101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !existed {
		t.Fatal("existing aggregate reported absent")
	}
	if fs.score != 17 {
		t.Fatalf("risk = %d, want 17", fs.score)
	}
	if len(fs.reasons) != 1 {
		t.Fatalf("reasons = %v, want one entry", fs.reasons)
	}

	// 5% delay rate, mild delays: no severity bump, no reason.
	fs, _, err = e.collectPerformanceRisk(context.Background(), domain.CarrierFedEx, "98101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 5 {
		t.Fatalf("risk = %d, want 5", fs.score)
	}
	if len(fs.reasons) != 0 {
		t.Fatalf("reasons = %v, want none", fs.reasons)
	}

	// 90% delay rate would be 95 points; capped at 20.
	fs, _, err = e.collectPerformanceRisk(context.Background(), domain.CarrierDHL, "33101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 20 {
		t.Fatalf("risk = %d, want capped 20", fs.score)
	}

	// No row: no penalty, not existed.
	fs, existed, err = e.collectPerformanceRisk(context.Background(), domain.CarrierUPS, "00000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if existed || fs.score != 0 {
		t.Fatalf("absent aggregate: score=%d existed=%t, want 0/false", fs.score, existed)
	}
}

func TestCollectWeatherRiskFallback(t *testing.T) {
	provider := weather.NewMockWeatherProvider(nil)
	provider.Err = errors.New("upstream timeout")

	e := newTestEngine(seededStore(), provider)

	fs, live := e.collectWeatherRisk(context.Background(), "Seattle")
	if live {
		t.Fatal("failed fetch reported as live data")
	}
	if fs.score != 10 {
		t.Fatalf("fallback risk = %d, want 10", fs.score)
	}
	if len(fs.reasons) != 1 || fs.reasons[0] != "weather data unavailable" {
		t.Fatalf("fallback reasons = %v", fs.reasons)
	}
}

func TestCollectWeatherRiskLive(t *testing.T) {
	provider := weather.NewMockWeatherProvider(map[string]ports.WeatherRisk{
		"Seattle": {RiskScore: 25, Reasons: []string{"rainy conditions", "low visibility"}},
	})

	e := newTestEngine(seededStore(), provider)

	fs, live := e.collectWeatherRisk(context.Background(), "Seattle")
	if !live {
		t.Fatal("successful fetch not reported as live")
	}
	if fs.score != 25 || len(fs.reasons) != 2 {
		t.Fatalf("score=%d reasons=%v", fs.score, fs.reasons)
	}
}

func TestCollectTemporalRisk(t *testing.T) {
	e := newTestEngine(seededStore(), weather.NewMockWeatherProvider(nil))

	// 2026-12-07 is a Monday in December: both patterns trigger.
	fs, err := e.collectTemporalRisk(context.Background(), "2026-12-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 11 {
		t.Fatalf("risk = %d, want 11 (monday 2 + december 9)", fs.score)
	}
	if len(fs.reasons) != 2 {
		t.Fatalf("reasons = %v, want two entries", fs.reasons)
	}

	// A plain Wednesday in June: no patterns.
	fs, err = e.collectTemporalRisk(context.Background(), "2026-06-17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 0 || len(fs.reasons) != 0 {
		t.Fatalf("score=%d reasons=%v, want zero", fs.score, fs.reasons)
	}

	// Malformed date contributes nothing.
	fs, err = e.collectTemporalRisk(context.Background(), "soon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.score != 0 || len(fs.reasons) != 0 {
		t.Fatalf("score=%d reasons=%v, want zero", fs.score, fs.reasons)
	}
}

func TestCollectTimelineRisk(t *testing.T) {
	e := newTestEngine(seededStore(), weather.NewMockWeatherProvider(nil))

	cases := []struct {
		date       string
		want       int
		wantReason bool
	}{
		{"2026-06-15", 25, true}, // today
		{"2026-06-10", 25, true}, // overdue
		{"2026-06-16", 20, true}, // tomorrow
		{"2026-06-18", 10, false},
		{"2026-06-25", 0, false},
		{"whenever", 5, false},
	}

	for _, tc := range cases {
		fs := e.collectTimelineRisk(tc.date)
		if fs.score != tc.want {
			t.Errorf("timeline(%q) = %d, want %d", tc.date, fs.score, tc.want)
		}
		if tc.wantReason != (len(fs.reasons) == 1) {
			t.Errorf("timeline(%q) reasons = %v, wantReason=%t", tc.date, fs.reasons, tc.wantReason)
		}
	}
}

func TestCollectorsPropagateStoreFailure(t *testing.T) {
	store := repositories.NewMockHistoricalStore()
	store.Err = errors.New("connection refused")

	e := newTestEngine(store, weather.NewMockWeatherProvider(nil))

	if _, err := e.collectCarrierRisk(context.Background(), domain.CarrierUPS); err == nil {
		t.Fatal("carrier collector swallowed store failure")
	}
	if _, err := e.collectGeographicRisk(context.Background(), "98101"); err == nil {
		t.Fatal("geographic collector swallowed store failure")
	}
	if _, _, err := e.collectPerformanceRisk(context.Background(), domain.CarrierUPS, "98101"); err == nil {
		t.Fatal("performance collector swallowed store failure")
	}
	if _, err := e.collectTemporalRisk(context.Background(), "2026-06-17"); err == nil {
		t.Fatal("temporal collector swallowed store failure")
	}
}
