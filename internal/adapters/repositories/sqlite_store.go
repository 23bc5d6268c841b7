package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"shipment-risk-service/internal/domain"
	"shipment-risk-service/internal/ports"
)

// SQLite-backed implementation of the HistoricalStore port.
// The default store for local runs; Postgres deployments use
// SQLHistoricalStore instead.
type SqliteHistoricalStore struct{ DB *sql.DB }

func NewSqliteHistoricalStore(db *sql.DB) *SqliteHistoricalStore {
	return &SqliteHistoricalStore{DB: db}
}

func (s *SqliteHistoricalStore) GetCarrierAggregate(ctx context.Context, carrier domain.Carrier) (domain.CarrierAggregate, bool, error) {
	if s.DB == nil {
		return domain.CarrierAggregate{}, false, errors.New("sqlite historical store: DB is nil")
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
	WHERE carrier = ?;
	`

	agg := domain.CarrierAggregate{Carrier: carrier}
	err := s.DB.QueryRowContext(ctx, query, string(carrier)).Scan(
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

func (s *SqliteHistoricalStore) GetGeoAggregate(ctx context.Context, zip string) (domain.GeoAggregate, bool, error) {
	if s.DB == nil {
		return domain.GeoAggregate{}, false, errors.New("sqlite historical store: DB is nil")
	}

	query := `
	SELECT
		city,
		base_risk_score,
		traffic_complexity,
		weather_risk_multiplier
	FROM geographic_risk
	WHERE zip_code = ?;
	`

	agg := domain.GeoAggregate{ZipCode: zip}
	err := s.DB.QueryRowContext(ctx, query, zip).Scan(
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

func (s *SqliteHistoricalStore) GetPerformanceAggregate(ctx context.Context, carrier domain.Carrier, zip string) (domain.PerformanceAggregate, bool, error) {
	if s.DB == nil {
		return domain.PerformanceAggregate{}, false, errors.New("sqlite historical store: DB is nil")
	}

	query := `
	SELECT
		total_deliveries,
		delayed_deliveries,
		total_delay_hours,
		avg_delay_hours
	FROM delivery_performance
	WHERE carrier = ? AND zip_code = ?;
	`

	agg := domain.PerformanceAggregate{Carrier: carrier, ZipCode: zip}
	err := s.DB.QueryRowContext(ctx, query, string(carrier), zip).Scan(
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

func (s *SqliteHistoricalStore) GetTemporalPattern(ctx context.Context, patternType, patternValue string) (domain.TemporalPattern, bool, error) {
	if s.DB == nil {
		return domain.TemporalPattern{}, false, errors.New("sqlite historical store: DB is nil")
	}

	query := `
	SELECT risk_multiplier, description
	FROM temporal_risk
	WHERE pattern_type = ? AND pattern_value = ?;
	`

	pattern := domain.TemporalPattern{PatternType: patternType, PatternValue: patternValue}
	err := s.DB.QueryRowContext(ctx, query, patternType, patternValue).Scan(
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

func (s *SqliteHistoricalStore) AppendDeliveryOutcome(ctx context.Context, outcome domain.DeliveryOutcome) error {
	if s.DB == nil {
		return errors.New("sqlite historical store: DB is nil")
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
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
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
// as a single statement, so concurrent recordings for the same
// (carrier, zip) cannot interleave a read-modify-write. The new average
// is computed from the post-update totals in the same expression;
// deriving it from bare column names would use pre-update values and
// let the average drift.
func (s *SqliteHistoricalStore) UpsertPerformanceAggregate(ctx context.Context, carrier domain.Carrier, zip string, delayed bool, delayHours float64) error {
	if s.DB == nil {
		return errors.New("sqlite historical store: DB is nil")
	}

	delayedInc := 0
	if delayed {
		delayedInc = 1
	}

	query := `
	INSERT INTO delivery_performance (
		carrier, zip_code, total_deliveries, delayed_deliveries, total_delay_hours, avg_delay_hours
	)
	VALUES (?, ?, 1, ?, ?, ?)
	ON CONFLICT(carrier, zip_code) DO UPDATE SET
		total_deliveries = total_deliveries + 1,
		delayed_deliveries = delayed_deliveries + excluded.delayed_deliveries,
		total_delay_hours = total_delay_hours + excluded.total_delay_hours,
		avg_delay_hours = (total_delay_hours + excluded.total_delay_hours) / (total_deliveries + 1),
		last_updated = CURRENT_TIMESTAMP;
	`

	_, err := s.DB.ExecContext(ctx, query, string(carrier), zip, delayedInc, delayHours, delayHours)
	if err != nil {
		return fmt.Errorf("upsert performance aggregate: carrier=%s zip=%s: %w", carrier, zip, err)
	}

	return nil
}

func (s *SqliteHistoricalStore) GetPerformanceSnapshot(ctx context.Context) (ports.PerformanceSnapshot, error) {
	if s.DB == nil {
		return ports.PerformanceSnapshot{}, errors.New("sqlite historical store: DB is nil")
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
	WHERE created_at > datetime('now', '-30 days');
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
