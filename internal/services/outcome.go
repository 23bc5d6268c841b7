package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"shipment-risk-service/internal/domain"
)

// RecordOutcome appends an immutable delivery outcome and folds it into
// the (carrier, destination zip) performance aggregate used by future
// scoring. The aggregate update is a single atomic upsert in the store,
// so concurrent recordings for the same lane cannot lose increments.
//
// The result cache is deliberately not invalidated here: a cached
// assessment may lag freshly recorded outcomes until its TTL lapses.
func (e *Engine) RecordOutcome(
	ctx context.Context,
	packageID string,
	carrier domain.Carrier,
	originZip string,
	destinationZip string,
	scheduledDate string,
	actualDate string,
	delayReasons []string,
) error {
	scheduled, err := time.Parse(domain.DateLayout, scheduledDate)
	if err != nil {
		return fmt.Errorf("record outcome: invalid scheduled date %q: %w", scheduledDate, err)
	}

	actual, err := time.Parse(domain.DateLayout, actualDate)
	if err != nil {
		return fmt.Errorf("record outcome: invalid actual date %q: %w", actualDate, err)
	}

	outcome := domain.NewDeliveryOutcome(
		packageID, carrier, originZip, destinationZip,
		scheduled, actual, delayReasons, e.now(),
	)

	if err := e.store.AppendDeliveryOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("record outcome: append: %w", err)
	}

	if err := e.store.UpsertPerformanceAggregate(ctx, carrier, destinationZip, outcome.WasDelayed, outcome.DelayHours); err != nil {
		return fmt.Errorf("record outcome: upsert aggregate: %w", err)
	}

	log.Printf(
		"outcome recorded package_id=%s carrier=%s zip=%s delayed=%t delay_hours=%.1f",
		packageID, carrier, destinationZip, outcome.WasDelayed, outcome.DelayHours,
	)
	return nil
}
