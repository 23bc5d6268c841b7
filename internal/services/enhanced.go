package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"shipment-risk-service/internal/domain"
)

// Fixed category weights of the enhanced assessment, in percent.
const (
	carrierWeightPct     = 30
	routeWeightPct       = 25
	weatherWeightPct     = 25
	performanceWeightPct = 20
)

// Confidence derivation. Base certainty plus bumps for each signal that
// was genuinely backed by data, capped below 100: the score is a
// heuristic and some uncertainty is irreducible.
const (
	confidenceBase            = 70
	confidenceLiveWeather     = 10
	confidencePerformanceData = 15
	confidenceHighVolume      = 5
	confidenceCap             = 95
)

// CacheKey returns the stable result-cache key for one
// (package, delivery date) pair.
func CacheKey(packageID, deliveryDate string) uint64 {
	return xxhash.Sum64String(packageID + "|" + deliveryDate)
}

// ComputeEnhancedRisk builds the weighted, explainable assessment with
// confidence, predicted delay and a revised delivery date.
//
// Results are memoized for an hour per (package, delivery date). On a
// cache miss the carrier, performance and weather collectors run
// concurrently; a racing request for the same key may recompute, the
// later Put simply overwrites with an equivalent value.
func (e *Engine) ComputeEnhancedRisk(ctx context.Context, shipment domain.Shipment) (domain.EnhancedAssessment, error) {
	key := CacheKey(shipment.PackageID, shipment.ExpectedDeliveryDate)

	if cached, ok := e.cache.Get(ctx, key); ok {
		return cached, nil
	}

	var (
		carrier     factorScore
		performance factorScore
		weather     factorScore
		perfData    bool
		liveWeather bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		carrier, err = e.collectCarrierRisk(gctx, shipment.Carrier)
		return err
	})
	g.Go(func() error {
		var err error
		performance, perfData, err = e.collectPerformanceRisk(gctx, shipment.Carrier, shipment.DestinationZip)
		return err
	})
	g.Go(func() error {
		weather, liveWeather = e.collectWeatherRisk(gctx, shipment.DestinationCity)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.EnhancedAssessment{}, fmt.Errorf("compute enhanced risk: %w", err)
	}

	route := routeDistanceRisk(shipment.DestinationZip)

	score := int(0.30*float64(carrier.score) +
		0.25*float64(route) +
		0.25*float64(weather.score) +
		0.20*float64(performance.score))
	if score > 100 {
		score = 100
	}

	confidence := confidenceBase
	if liveWeather {
		confidence += confidenceLiveWeather
	}
	if perfData {
		confidence += confidencePerformanceData
	}
	// The two highest-volume carriers have the deepest history behind
	// their aggregates.
	if shipment.Carrier == domain.CarrierUSPS || shipment.Carrier == domain.CarrierUPS {
		confidence += confidenceHighVolume
	}
	if confidence > confidenceCap {
		confidence = confidenceCap
	}

	delayDays := predictedDelayDays(score)

	assessment := domain.EnhancedAssessment{
		Score:              score,
		ConfidenceLevel:    confidence,
		PredictedDelayDays: delayDays,
		Factors: map[string]domain.FactorDetail{
			"carrier": {
				Score:         carrier.score,
				WeightPercent: carrierWeightPct,
				Status:        factorStatus(carrier.score, "elevated historical delay rate", "carrier performing normally"),
				Level:         factorLevel(carrier.score),
			},
			"route": {
				Score:         route,
				WeightPercent: routeWeightPct,
				Status:        factorStatus(route, "long or complex routing", "manageable route distance"),
				Level:         factorLevel(route),
			},
			"weather": {
				Score:         weather.score,
				WeightPercent: weatherWeightPct,
				Status:        factorStatus(weather.score, "adverse weather on route", "no significant weather impact"),
				Level:         factorLevel(weather.score),
			},
			"performance": {
				Score:         performance.score,
				WeightPercent: performanceWeightPct,
				Status:        factorStatus(performance.score, "recurring issues on this lane", "lane performing normally"),
				Level:         factorLevel(performance.score),
			},
		},
		OriginalDeliveryDate: shipment.ExpectedDeliveryDate,
		RevisedDeliveryDate:  e.reviseDeliveryDate(shipment.ExpectedDeliveryDate, delayDays),
		ComputedAt:           e.now(),
	}

	e.cache.Put(ctx, key, assessment)
	return assessment, nil
}

// routeDistanceRisk buckets the destination zip into five bands as a
// proxy for routing distance and terrain: west-coast and rural prefixes
// imply longer cross-country legs than the dense northeast corridor.
func routeDistanceRisk(zip string) int {
	n, err := strconv.Atoi(zip)
	if err != nil {
		return 70
	}

	switch {
	case n >= 90000 && n <= 99999:
		return 65
	case n <= 19999:
		return 35
	case n >= 60000 && n <= 69999:
		return 45
	case n >= 30000 && n <= 39999:
		return 55
	default:
		return 70
	}
}

func predictedDelayDays(score int) int {
	switch {
	case score >= 80:
		return 2
	case score >= 50:
		return 1
	default:
		return 0
	}
}

// reviseDeliveryDate pushes the promised date out by the predicted
// delay. A malformed original date falls back to today rather than
// failing the assessment.
func (e *Engine) reviseDeliveryDate(original string, delayDays int) string {
	base, err := time.Parse(domain.DateLayout, original)
	if err != nil {
		base = e.now()
	}
	return base.AddDate(0, 0, delayDays).Format(domain.DateLayout)
}

func factorStatus(score int, elevated, normal string) string {
	if score >= 50 {
		return elevated
	}
	return normal
}

func factorLevel(score int) string {
	switch {
	case score >= 80:
		return domain.FactorLevelHigh
	case score >= 50:
		return domain.FactorLevelMedium
	default:
		return domain.FactorLevelLow
	}
}
