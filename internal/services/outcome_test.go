package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"shipment-risk-service/internal/adapters/repositories"
	"shipment-risk-service/internal/adapters/weather"
	"shipment-risk-service/internal/domain"
)

func TestRecordOutcome(t *testing.T) {
	store := seededStore()
	e := newTestEngine(store, weather.NewMockWeatherProvider(nil))

	err := e.RecordOutcome(
		context.Background(),
		"PKG001", domain.CarrierUPS, "10001", "98101",
		"2026-06-10", "2026-06-12", []string{"weather"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.Outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(store.Outcomes))
	}
	outcome := store.Outcomes[0]
	if !outcome.WasDelayed {
		t.Fatal("48h late delivery not flagged as delayed")
	}
	if outcome.DelayHours != 48 {
		t.Fatalf("delay hours = %v, want 48", outcome.DelayHours)
	}
	if !outcome.RecordedAt.Equal(testNow) {
		t.Fatalf("recorded at = %v, want %v", outcome.RecordedAt, testNow)
	}

	agg, ok, err := store.GetPerformanceAggregate(context.Background(), domain.CarrierUPS, "98101")
	if err != nil || !ok {
		t.Fatalf("aggregate missing after record: ok=%t err=%v", ok, err)
	}
	if agg.TotalDeliveries != 1 || agg.DelayedDeliveries != 1 {
		t.Fatalf("aggregate = %+v, want 1 total / 1 delayed", agg)
	}
	if agg.AvgDelayHours != 48 {
		t.Fatalf("avg delay = %v, want 48", agg.AvgDelayHours)
	}
}

func TestRecordOutcomeOnTimeAndEarly(t *testing.T) {
	store := seededStore()
	e := newTestEngine(store, weather.NewMockWeatherProvider(nil))

	// Exactly 24 hours late is not counted as delayed.
	err := e.RecordOutcome(
		context.Background(),
		"PKG002", domain.CarrierFedEx, "10001", "90210",
		"2026-06-10", "2026-06-11", nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Early delivery contributes negative delay hours.
	err = e.RecordOutcome(
		context.Background(),
		"PKG003", domain.CarrierFedEx, "10001", "90210",
		"2026-06-12", "2026-06-11", nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg, ok, err := store.GetPerformanceAggregate(context.Background(), domain.CarrierFedEx, "90210")
	if err != nil || !ok {
		t.Fatalf("aggregate missing: ok=%t err=%v", ok, err)
	}
	if agg.TotalDeliveries != 2 || agg.DelayedDeliveries != 0 {
		t.Fatalf("aggregate = %+v, want 2 total / 0 delayed", agg)
	}
	if agg.TotalDelayHours != 0 {
		t.Fatalf("total delay hours = %v, want 0 (24 - 24)", agg.TotalDelayHours)
	}
}

func TestRecordOutcomeInvalidDates(t *testing.T) {
	e := newTestEngine(seededStore(), weather.NewMockWeatherProvider(nil))

	err := e.RecordOutcome(
		context.Background(),
		"PKG004", domain.CarrierUPS, "10001", "98101",
		"June 10th", "2026-06-12", nil,
	)
	if err == nil {
		t.Fatal("malformed scheduled date accepted")
	}

	err = e.RecordOutcome(
		context.Background(),
		"PKG004", domain.CarrierUPS, "10001", "98101",
		"2026-06-10", "someday", nil,
	)
	if err == nil {
		t.Fatal("malformed actual date accepted")
	}
}

func TestRecordOutcomeAggregateInvariant(t *testing.T) {
	store := seededStore()
	e := newTestEngine(store, weather.NewMockWeatherProvider(nil))

	// Alternate delayed and on-time recordings on one lane; the
	// aggregate must keep avg == total / count throughout.
	for i := 0; i < 20; i++ {
		actual := "2026-06-11"
		if i%2 == 0 {
			actual = "2026-06-13"
		}
		err := e.RecordOutcome(
			context.Background(),
			fmt.Sprintf("PKG%03d", i), domain.CarrierUSPS, "10001", "98101",
			"2026-06-10", actual, nil,
		)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}

		agg, ok, err := store.GetPerformanceAggregate(context.Background(), domain.CarrierUSPS, "98101")
		if err != nil || !ok {
			t.Fatalf("aggregate missing after record %d", i)
		}
		if agg.TotalDeliveries != i+1 {
			t.Fatalf("total = %d after %d records", agg.TotalDeliveries, i+1)
		}
		want := agg.TotalDelayHours / float64(agg.TotalDeliveries)
		if math.Abs(agg.AvgDelayHours-want) > 1e-9 {
			t.Fatalf("avg = %v, want total/count = %v", agg.AvgDelayHours, want)
		}
	}

	agg, _, _ := store.GetPerformanceAggregate(context.Background(), domain.CarrierUSPS, "98101")
	if agg.DelayedDeliveries != 10 {
		t.Fatalf("delayed = %d, want 10", agg.DelayedDeliveries)
	}
}

func TestRecordOutcomeConcurrentSameLane(t *testing.T) {
	store := repositories.NewMockHistoricalStore()
	e := newTestEngine(store, weather.NewMockWeatherProvider(nil))

	const workers = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- e.RecordOutcome(
				context.Background(),
				fmt.Sprintf("PKG%03d", i), domain.CarrierUPS, "10001", "60601",
				"2026-06-10", "2026-06-13", nil,
			)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent record: %v", err)
		}
	}

	agg, ok, err := store.GetPerformanceAggregate(context.Background(), domain.CarrierUPS, "60601")
	if err != nil || !ok {
		t.Fatalf("aggregate missing: ok=%t err=%v", ok, err)
	}
	if agg.TotalDeliveries != workers {
		t.Fatalf("total = %d, want %d (lost increments)", agg.TotalDeliveries, workers)
	}
	if agg.DelayedDeliveries != workers {
		t.Fatalf("delayed = %d, want %d", agg.DelayedDeliveries, workers)
	}
	if math.Abs(agg.AvgDelayHours-72) > 1e-9 {
		t.Fatalf("avg delay = %v, want 72", agg.AvgDelayHours)
	}
}
