package ports

import (
	"context"

	"shipment-risk-service/internal/domain"
)

// PerformanceSnapshot is the aggregate view backing the stats endpoint.
type PerformanceSnapshot struct {
	Carriers          []domain.CarrierAggregate
	RecentOutcomes    int
	RecentDelayed     int
	RecentAvgDelayHrs float64
}

// Port: a boundary for the durable historical aggregates and the
// append-only outcome log.
//
// Lookup methods report a missing row as (zero, false, nil); callers
// substitute their documented defaults. A non-nil error means the store
// itself is unreachable, the one failure that propagates to the caller.
type HistoricalStore interface {
	GetCarrierAggregate(ctx context.Context, carrier domain.Carrier) (domain.CarrierAggregate, bool, error)
	GetGeoAggregate(ctx context.Context, zip string) (domain.GeoAggregate, bool, error)
	GetPerformanceAggregate(ctx context.Context, carrier domain.Carrier, zip string) (domain.PerformanceAggregate, bool, error)
	GetTemporalPattern(ctx context.Context, patternType, patternValue string) (domain.TemporalPattern, bool, error)

	// AppendDeliveryOutcome stores an immutable outcome row.
	AppendDeliveryOutcome(ctx context.Context, outcome domain.DeliveryOutcome) error

	// UpsertPerformanceAggregate folds one outcome into the
	// (carrier, zip) aggregate. The read-modify-write must be a single
	// atomic operation per key: concurrent updates for the same key
	// must not lose increments.
	UpsertPerformanceAggregate(ctx context.Context, carrier domain.Carrier, zip string, delayed bool, delayHours float64) error

	// GetPerformanceSnapshot returns carrier standings and outcome
	// counts over the trailing 30 days.
	GetPerformanceSnapshot(ctx context.Context) (PerformanceSnapshot, error)
}
