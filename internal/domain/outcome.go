package domain

import "time"

// DelayedThresholdHours: a delivery counts as delayed only when it
// lands more than a full day behind schedule.
const DelayedThresholdHours = 24.0

// DeliveryOutcome is an append-only fact about how a shipment actually
// performed. Never mutated after insert; it drives the
// PerformanceAggregate update for its (carrier, destination zip) pair.
type DeliveryOutcome struct {
	PackageID      string
	Carrier        Carrier
	OriginZip      string
	DestinationZip string
	ScheduledDate  string
	ActualDate     string
	DelayHours     float64
	WasDelayed     bool
	DelayReasons   []string
	RecordedAt     time.Time
}

// NewDeliveryOutcome computes the delay fields from the scheduled and
// actual delivery dates. DelayHours may be negative for early
// deliveries; those still feed the aggregate totals.
func NewDeliveryOutcome(
	packageID string,
	carrier Carrier,
	originZip string,
	destinationZip string,
	scheduled time.Time,
	actual time.Time,
	delayReasons []string,
	recordedAt time.Time,
) DeliveryOutcome {
	delayHours := actual.Sub(scheduled).Hours()

	return DeliveryOutcome{
		PackageID:      packageID,
		Carrier:        carrier,
		OriginZip:      originZip,
		DestinationZip: destinationZip,
		ScheduledDate:  scheduled.Format(DateLayout),
		ActualDate:     actual.Format(DateLayout),
		DelayHours:     delayHours,
		WasDelayed:     delayHours > DelayedThresholdHours,
		DelayReasons:   delayReasons,
		RecordedAt:     recordedAt,
	}
}
