package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"shipment-risk-service/internal/domain"
	"shipment-risk-service/internal/platform/obs"
	"shipment-risk-service/internal/ports"
)

// SQLHistoricalStore is a Postgres-backed HistoricalStore for shared
// deployments (driver: pgx via database/sql).
type SQLHistoricalStore struct{ DB *sql.DB }

func NewSQLHistoricalStore(db *sql.DB) *SQLHistoricalStore {
	return &SQLHistoricalStore{DB: db}
}

func (s *SQLHistoricalStore) GetCarrierAggregate(ctx context.Context, carrier domain.Carrier) (_ domain.CarrierAggregate, _ bool, err error) {
	defer obs.Time(ctx, "store.GetCarrierAggregate")(&err)

	if s.DB == nil {
		return domain.CarrierAggregate{}, false, errors.New("sql historical store: db is nil")
	}

	query := `
	SELECT
		total_deliveries,
		on_time_deliveries,
		delayed_deliveries,
		average_delay_hours,
		reliability_score,
		peak_season_performance_drop
	FROM carrier_performance
	WHERE carrier = $1;
	`

	agg := domain.CarrierAggregate{Carrier: carrier}
	err = s.DB.QueryRowContext(ctx, query, string(carrier)).Scan(
		&agg.TotalDeliveries,
		&agg.OnTimeDeliveries,
		&agg.DelayedDeliveries,
		&agg.AverageDelayHours,
		&agg.ReliabilityScore,
		&agg.PeakSeasonDrop,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CarrierAggregate{}, false, nil
	}
	if err != nil {
		return domain.CarrierAggregate{}, false, fmt.Errorf("get carrier aggregate: query carrier_performance: %w", err)
	}

	return agg, true, nil
}

func (s *SQLHistoricalStore) GetGeoAggregate(ctx context.Context, zip string) (_ domain.GeoAggregate, _ bool, err error) {
	defer obs.Time(ctx, "store.GetGeoAggregate")(&err)

	if s.DB == nil {
		return domain.GeoAggregate{}, false, errors.New("sql historical store: db is nil")
	}

	query := `
	SELECT
		city,
		base_risk_score,
		traffic_complexity,
		weather_risk_multiplier
	FROM geographic_risk
	WHERE zip_code = $1;
	`

	agg := domain.GeoAggregate{ZipCode: zip}
	err = s.DB.QueryRowContext(ctx, query, zip).Scan(
		&agg.City,
		&agg.BaseRiskScore,
		&agg.TrafficComplexity,
		&agg.WeatherMultiplier,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GeoAggregate{}, false, nil
	}
	if err != nil {
		return domain.GeoAggregate{}, false, fmt.Errorf("get geo aggregate: query geographic_risk: %w", err)
	}

	return agg, true, nil
}

func (s *SQLHistoricalStore) GetPerformanceAggregate(ctx context.Context, carrier domain.Carrier, zip string) (_ domain.PerformanceAggregate, _ bool, err error) {
	defer obs.Time(ctx, "store.GetPerformanceAggregate")(&err)

	if s.DB == nil {
		return domain.PerformanceAggregate{}, false, errors.New("sql historical store: db is nil")
	}

	query := `
	SELECT
		total_deliveries,
		delayed_deliveries,
		total_delay_hours,
		avg_delay_hours
	FROM delivery_performance
	WHERE carrier = $1 AND zip_code = $2;
	`

	agg := domain.PerformanceAggregate{Carrier: carrier, ZipCode: zip}
	err = s.DB.QueryRowContext(ctx, query, string(carrier), zip).Scan(
		&agg.TotalDeliveries,
		&agg.DelayedDeliveries,
		&agg.TotalDelayHours,
		&agg.AvgDelayHours,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PerformanceAggregate{}, false, nil
	}
	if err != nil {
		return domain.PerformanceAggregate{}, false, fmt.Errorf("get performance aggregate: query delivery_performance: %w", err)
	}

	return agg, true, nil
}

func (s *SQLHistoricalStore) GetTemporalPattern(ctx context.Context, patternType, patternValue string) (_ domain.TemporalPattern, _ bool, err error) {
	defer obs.Time(ctx, "store.GetTemporalPattern")(&err)

	if s.DB == nil {
		return domain.TemporalPattern{}, false, errors.New("sql historical store: db is nil")
	}

	query := `
	SELECT risk_multiplier, description
	FROM temporal_risk
	WHERE pattern_type = $1 AND pattern_value = $2;
	`

	pattern := domain.TemporalPattern{PatternType: patternType, PatternValue: patternValue}
	err = s.DB.QueryRowContext(ctx, query, patternType, patternValue).Scan(
		&pattern.RiskMultiplier,
		&pattern.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TemporalPattern{}, false, nil
	}
	if err != nil {
		return domain.TemporalPattern{}, false, fmt.Errorf("get temporal pattern: query temporal_risk: %w", err)
	}

	return pattern, true, nil
}

func (s *SQLHistoricalStore) AppendDeliveryOutcome(ctx context.Context, outcome domain.DeliveryOutcome) (err error) {
	defer obs.Time(ctx, "store.AppendDeliveryOutcome")(&err)

	if s.DB == nil {
		return errors.New("sql historical store: db is nil")
	}

	reasons, err := json.Marshal(outcome.DelayReasons)
	if err != nil {
		return fmt.Errorf("append delivery outcome: marshal delay reasons: %w", err)
	}

	query := `
	INSERT INTO delivery_outcomes (
		package_id,
		carrier,
		origin_zip,
		destination_zip,
		scheduled_date,
		actual_delivery_date,
		was_delayed,
		delay_hours,
		delay_reasons,
		created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	_, err = s.DB.ExecContext(ctx, query,
		outcome.PackageID,
		string(outcome.Carrier),
		outcome.OriginZip,
		outcome.DestinationZip,
		outcome.ScheduledDate,
		outcome.ActualDate,
		outcome.WasDelayed,
		outcome.DelayHours,
		string(reasons),
		outcome.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("append delivery outcome: insert delivery_outcomes: %w", err)
	}

	return nil
}

// UpsertPerformanceAggregate folds one outcome into the lane aggregate
// in a single statement. Unqualified columns in DO UPDATE refer to the
// pre-update row, so the new average is rebuilt from the incremented
// totals explicitly.
func (s *SQLHistoricalStore) UpsertPerformanceAggregate(ctx context.Context, carrier domain.Carrier, zip string, delayed bool, delayHours float64) (err error) {
	defer obs.Time(ctx, "store.UpsertPerformanceAggregate")(&err)

	if s.DB == nil {
		return errors.New("sql historical store: db is nil")
	}

	delayedInc := 0
	if delayed {
		delayedInc = 1
	}

	query := `
	INSERT INTO delivery_performance (
		carrier, zip_code, total_deliveries, delayed_deliveries, total_delay_hours, avg_delay_hours
	)
	VALUES ($1, $2, 1, $3, $4, $4)
	ON CONFLICT (carrier, zip_code) DO UPDATE SET
		total_deliveries = delivery_performance.total_deliveries + 1,
		delayed_deliveries = delivery_performance.delayed_deliveries + EXCLUDED.delayed_deliveries,
		total_delay_hours = delivery_performance.total_delay_hours + EXCLUDED.total_delay_hours,
		avg_delay_hours = (delivery_performance.total_delay_hours + EXCLUDED.total_delay_hours)
			/ (delivery_performance.total_deliveries + 1),
		last_updated = CURRENT_TIMESTAMP;
	`

	_, err = s.DB.ExecContext(ctx, query, string(carrier), zip, delayedInc, delayHours)
	if err != nil {
		return fmt.Errorf("upsert performance aggregate: carrier=%s zip=%s: %w", carrier, zip, err)
	}

	return nil
}

func (s *SQLHistoricalStore) GetPerformanceSnapshot(ctx context.Context) (_ ports.PerformanceSnapshot, err error) {
	defer obs.Time(ctx, "store.GetPerformanceSnapshot")(&err)

	if s.DB == nil {
		return ports.PerformanceSnapshot{}, errors.New("sql historical store: db is nil")
	}

	carrierQuery := `
	SELECT
		carrier,
		total_deliveries,
		on_time_deliveries,
		delayed_deliveries,
		average_delay_hours,
		reliability_score,
		peak_season_performance_drop
	FROM carrier_performance
	ORDER BY reliability_score DESC;
	`

	rows, err := s.DB.QueryContext(ctx, carrierQuery)
	if err != nil {
		return ports.PerformanceSnapshot{}, fmt.Errorf("get performance snapshot: query carrier_performance: %w", err)
	}
	defer rows.Close()

	var snapshot ports.PerformanceSnapshot
	for rows.Next() {
		var agg domain.CarrierAggregate
		var name string
		if err := rows.Scan(
			&name,
			&agg.TotalDeliveries,
			&agg.OnTimeDeliveries,
			&agg.DelayedDeliveries,
			&agg.AverageDelayHours,
			&agg.ReliabilityScore,
			&agg.PeakSeasonDrop,
		); err != nil {
			return ports.PerformanceSnapshot{}, fmt.Errorf("get performance snapshot: scan row: %w", err)
		}
		agg.Carrier = domain.Carrier(name)
		snapshot.Carriers = append(snapshot.Carriers, agg)
	}
	if err := rows.Err(); err != nil {
		return ports.PerformanceSnapshot{}, fmt.Errorf("get performance snapshot: row iteration: %w", err)
	}

	recentQuery := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN was_delayed THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(delay_hours), 0)
	FROM delivery_outcomes
	WHERE created_at > NOW() - INTERVAL '30 days';
	`

	err = s.DB.QueryRowContext(ctx, recentQuery).Scan(
		&snapshot.RecentOutcomes,
		&snapshot.RecentDelayed,
		&snapshot.RecentAvgDelayHrs,
	)
	if err != nil {
		return ports.PerformanceSnapshot{}, fmt.Errorf("get performance snapshot: query recent outcomes: %w", err)
	}

	return snapshot, nil
}
