package services

import (
	"context"
	"fmt"

	"shipment-risk-service/internal/domain"
)

// ComputeBasicRisk sums all six factor collectors into a 0-100 risk
// score with the triggered reasons in collector order. Per-factor
// failures are absorbed by the collectors' defaults; only store
// unavailability is returned as an error.
func (e *Engine) ComputeBasicRisk(ctx context.Context, shipment domain.Shipment) (domain.BasicAssessment, error) {
	carrier, err := e.collectCarrierRisk(ctx, shipment.Carrier)
	if err != nil {
		return domain.BasicAssessment{}, fmt.Errorf("compute basic risk: %w", err)
	}

	geographic, err := e.collectGeographicRisk(ctx, shipment.DestinationZip)
	if err != nil {
		return domain.BasicAssessment{}, fmt.Errorf("compute basic risk: %w", err)
	}

	performance, _, err := e.collectPerformanceRisk(ctx, shipment.Carrier, shipment.DestinationZip)
	if err != nil {
		return domain.BasicAssessment{}, fmt.Errorf("compute basic risk: %w", err)
	}

	weather, _ := e.collectWeatherRisk(ctx, shipment.DestinationCity)

	temporal, err := e.collectTemporalRisk(ctx, shipment.ExpectedDeliveryDate)
	if err != nil {
		return domain.BasicAssessment{}, fmt.Errorf("compute basic risk: %w", err)
	}

	timeline := e.collectTimelineRisk(shipment.ExpectedDeliveryDate)

	total := 0
	reasons := []string{}
	for _, fs := range []factorScore{carrier, geographic, performance, weather, temporal, timeline} {
		total += fs.score
		reasons = append(reasons, fs.reasons...)
	}

	if total > 100 {
		total = 100
	}
	if len(reasons) == 0 {
		reasons = []string{"low risk delivery"}
	}

	return domain.BasicAssessment{RiskScore: total, Reasons: reasons}, nil
}
