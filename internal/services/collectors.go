package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shipment-risk-service/internal/domain"
)

// Factor collector caps and no-data defaults. Every collector resolves
// "no data" locally with one of these constants; a missing reference
// row never fails a scoring request.
const (
	carrierRiskCap     = 50
	carrierRiskDefault = 25

	geographicRiskCap     = 30
	geographicRiskDefault = 10

	performanceRiskCap = 20

	weatherRiskFallback = 10

	temporalRiskCap = 25

	timelineRiskInvalidDate = 5
)

// factorScore is one bounded collector output plus its triggered
// reasons. Reasons are already filtered by the collector's threshold.
type factorScore struct {
	score   int
	reasons []string
}

// collectCarrierRisk converts carrier reliability into risk
// (100 - reliabilityScore) and adds the carrier's peak-season drop when
// the current month is November or December. Capped at 50; unknown
// carriers score the fixed default.
func (e *Engine) collectCarrierRisk(ctx context.Context, carrier domain.Carrier) (factorScore, error) {
	agg, ok, err := e.store.GetCarrierAggregate(ctx, carrier)
	if err != nil {
		return factorScore{}, fmt.Errorf("collect carrier risk: %w", err)
	}

	risk := carrierRiskDefault
	if ok {
		risk = 100 - agg.ReliabilityScore

		if month := e.now().Month(); month == time.November || month == time.December {
			risk += agg.PeakSeasonDrop
		}

		if risk > carrierRiskCap {
			risk = carrierRiskCap
		}
	}

	fs := factorScore{score: risk}
	if risk > 15 {
		fs.reasons = append(fs.reasons, fmt.Sprintf("%s has historical delivery challenges", carrier))
	}
	return fs, nil
}

// collectGeographicRisk scores the destination zip from static
// reference data: base risk plus 30% of traffic complexity, capped
// at 30.
func (e *Engine) collectGeographicRisk(ctx context.Context, zip string) (factorScore, error) {
	agg, ok, err := e.store.GetGeoAggregate(ctx, zip)
	if err != nil {
		return factorScore{}, fmt.Errorf("collect geographic risk: %w", err)
	}

	risk := geographicRiskDefault
	if ok {
		total := float64(agg.BaseRiskScore) + float64(agg.TrafficComplexity)*0.3
		if total > geographicRiskCap {
			total = geographicRiskCap
		}
		risk = int(total)
	}

	fs := factorScore{score: risk}
	if risk > 15 {
		fs.reasons = append(fs.reasons, fmt.Sprintf("destination %s has delivery complexity", zip))
	}
	return fs, nil
}

// collectPerformanceRisk scores the specific (carrier, zip) lane from
// its delay rate, with a +5 severity bump when the lane's average delay
// exceeds 8 hours. Capped at 20; no row means no penalty.
//
// The second return reports whether an aggregate row existed, which
// feeds the enhanced assessment's confidence derivation.
func (e *Engine) collectPerformanceRisk(ctx context.Context, carrier domain.Carrier, zip string) (factorScore, bool, error) {
	agg, ok, err := e.store.GetPerformanceAggregate(ctx, carrier, zip)
	if err != nil {
		return factorScore{}, false, fmt.Errorf("collect performance risk: %w", err)
	}

	risk := 0
	if ok && agg.TotalDeliveries > 0 {
		delayRate := float64(agg.DelayedDeliveries) / float64(agg.TotalDeliveries)
		risk = int(delayRate * 100)

		if agg.AvgDelayHours > 8 {
			risk += 5
		}

		if risk > performanceRiskCap {
			risk = performanceRiskCap
		}
	}

	fs := factorScore{score: risk}
	if risk > 10 {
		fs.reasons = append(fs.reasons, fmt.Sprintf("%s has specific issues delivering to %s", carrier, zip))
	}
	return fs, ok, nil
}

// collectWeatherRisk asks the provider for real-time conditions at the
// destination city. Any provider failure is absorbed into the fixed
// fallback score; the call is never retried.
//
// The second return reports whether live data was actually fetched.
func (e *Engine) collectWeatherRisk(ctx context.Context, city string) (factorScore, bool) {
	risk, err := e.weather.GetWeatherRisk(ctx, city)
	if err != nil {
		return factorScore{
			score:   weatherRiskFallback,
			reasons: []string{"weather data unavailable"},
		}, false
	}

	return factorScore{score: risk.RiskScore, reasons: risk.Reasons}, true
}

// collectTemporalRisk applies day-of-week and month multipliers from
// the temporal pattern table. A multiplier m > 1.0 contributes
// int((m-1)*20) points for days and int((m-1)*25) for months (seasonal
// impact weighs heavier). Capped at 25; an unparsable date contributes
// nothing.
func (e *Engine) collectTemporalRisk(ctx context.Context, deliveryDate string) (factorScore, error) {
	t, err := time.Parse(domain.DateLayout, deliveryDate)
	if err != nil {
		return factorScore{}, nil
	}

	var fs factorScore

	dayName := strings.ToLower(t.Weekday().String())
	day, ok, err := e.store.GetTemporalPattern(ctx, domain.PatternDayOfWeek, dayName)
	if err != nil {
		return factorScore{}, fmt.Errorf("collect temporal risk: day pattern: %w", err)
	}
	if ok && day.RiskMultiplier > 1.0 {
		fs.score += int((day.RiskMultiplier - 1.0) * 20)
		fs.reasons = append(fs.reasons, day.Description)
	}

	monthName := strings.ToLower(t.Month().String())
	month, ok, err := e.store.GetTemporalPattern(ctx, domain.PatternMonth, monthName)
	if err != nil {
		return factorScore{}, fmt.Errorf("collect temporal risk: month pattern: %w", err)
	}
	if ok && month.RiskMultiplier > 1.0 {
		fs.score += int((month.RiskMultiplier - 1.0) * 25)
		fs.reasons = append(fs.reasons, month.Description)
	}

	if fs.score > temporalRiskCap {
		fs.score = temporalRiskCap
	}
	return fs, nil
}

// collectTimelineRisk scores delivery-date proximity: the closer the
// promised date, the less slack remains to absorb a delay.
func (e *Engine) collectTimelineRisk(deliveryDate string) factorScore {
	t, err := time.Parse(domain.DateLayout, deliveryDate)
	if err != nil {
		return factorScore{score: timelineRiskInvalidDate}
	}

	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daysUntil := int(t.Sub(today).Hours() / 24)

	var risk int
	switch {
	case daysUntil <= 0:
		risk = 25
	case daysUntil == 1:
		risk = 20
	case daysUntil <= 3:
		risk = 10
	default:
		risk = 0
	}

	fs := factorScore{score: risk}
	if risk > 15 {
		fs.reasons = append(fs.reasons, "tight delivery timeline")
	}
	return fs
}
