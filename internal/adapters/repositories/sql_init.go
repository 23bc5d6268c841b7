package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"shipment-risk-service/internal/domain"
)

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS carrier_performance (
			carrier TEXT PRIMARY KEY,
			total_deliveries BIGINT NOT NULL DEFAULT 0,
			on_time_deliveries BIGINT NOT NULL DEFAULT 0,
			delayed_deliveries BIGINT NOT NULL DEFAULT 0,
			average_delay_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			reliability_score INTEGER NOT NULL DEFAULT 50,
			peak_season_performance_drop INTEGER NOT NULL DEFAULT 0,
			last_updated TIMESTAMPTZ DEFAULT NOW()
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS geographic_risk (
			zip_code TEXT PRIMARY KEY,
			city TEXT NOT NULL,
			state TEXT,
			region TEXT,
			base_risk_score INTEGER NOT NULL DEFAULT 0,
			weather_risk_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			traffic_complexity INTEGER NOT NULL DEFAULT 0,
			last_updated TIMESTAMPTZ DEFAULT NOW()
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS delivery_performance (
			carrier TEXT NOT NULL,
			zip_code TEXT NOT NULL,
			total_deliveries BIGINT NOT NULL DEFAULT 0,
			delayed_deliveries BIGINT NOT NULL DEFAULT 0,
			total_delay_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_delay_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_updated TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (carrier, zip_code)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS temporal_risk (
			pattern_type TEXT NOT NULL,
			pattern_value TEXT NOT NULL,
			risk_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			description TEXT,
			last_updated TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (pattern_type, pattern_value)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS delivery_outcomes (
			id BIGSERIAL PRIMARY KEY,
			package_id TEXT NOT NULL,
			carrier TEXT NOT NULL,
			origin_zip TEXT,
			destination_zip TEXT,
			scheduled_date DATE,
			actual_delivery_date DATE,
			was_delayed BOOLEAN NOT NULL DEFAULT FALSE,
			delay_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			delay_reasons TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS shipments (
			package_id TEXT PRIMARY KEY,
			destination_zip TEXT NOT NULL,
			destination_city TEXT NOT NULL,
			carrier TEXT NOT NULL,
			expected_delivery_date TEXT NOT NULL
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_delivery_outcomes_created_at
		ON delivery_outcomes(created_at);
		`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}

// SeedPostgresReferenceData loads the static reference tables.
func SeedPostgresReferenceData(db *sql.DB) error {
	if db == nil {
		return errors.New("seed postgres reference data: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed postgres reference data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	carrierRows := []struct {
		carrier     string
		total       int
		onTime      int
		delayed     int
		avgDelay    float64
		reliability int
		peakDrop    int
	}{
		{"UPS", 1000000, 920000, 80000, 6.2, 85, 15},
		{"FedEx", 800000, 760000, 40000, 4.8, 88, 12},
		{"USPS", 1200000, 1020000, 180000, 8.1, 78, 25},
		{"DHL", 300000, 276000, 24000, 5.5, 82, 18},
	}

	for _, r := range carrierRows {
		_, err := tx.Exec(`
		INSERT INTO carrier_performance (
			carrier, total_deliveries, on_time_deliveries, delayed_deliveries,
			average_delay_hours, reliability_score, peak_season_performance_drop
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (carrier) DO UPDATE SET
			total_deliveries = EXCLUDED.total_deliveries,
			on_time_deliveries = EXCLUDED.on_time_deliveries,
			delayed_deliveries = EXCLUDED.delayed_deliveries,
			average_delay_hours = EXCLUDED.average_delay_hours,
			reliability_score = EXCLUDED.reliability_score,
			peak_season_performance_drop = EXCLUDED.peak_season_performance_drop;
		`, r.carrier, r.total, r.onTime, r.delayed, r.avgDelay, r.reliability, r.peakDrop)
		if err != nil {
			return fmt.Errorf("seed postgres reference data: carrier %s: %w", r.carrier, err)
		}
	}

	geoRows := []struct {
		zip         string
		city        string
		state       string
		region      string
		baseRisk    int
		weatherMult float64
		traffic     int
	}{
		{"98101", "Seattle", "WA", "Pacific Northwest", 15, 1.3, 25},
		{"10001", "New York", "NY", "Northeast", 20, 1.1, 35},
		{"90210", "Beverly Hills", "CA", "West Coast", 8, 0.9, 15},
		{"33101", "Miami", "FL", "Southeast", 25, 1.5, 20},
		{"60601", "Chicago", "IL", "Midwest", 18, 1.2, 30},
	}

	for _, r := range geoRows {
		_, err := tx.Exec(`
		INSERT INTO geographic_risk (
			zip_code, city, state, region, base_risk_score,
			weather_risk_multiplier, traffic_complexity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (zip_code) DO UPDATE SET
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			region = EXCLUDED.region,
			base_risk_score = EXCLUDED.base_risk_score,
			weather_risk_multiplier = EXCLUDED.weather_risk_multiplier,
			traffic_complexity = EXCLUDED.traffic_complexity;
		`, r.zip, r.city, r.state, r.region, r.baseRisk, r.weatherMult, r.traffic)
		if err != nil {
			return fmt.Errorf("seed postgres reference data: zip %s: %w", r.zip, err)
		}
	}

	temporalRows := []struct {
		patternType  string
		patternValue string
		multiplier   float64
		description  string
	}{
		{domain.PatternDayOfWeek, "monday", 1.1, "Monday packages often delayed due to weekend backlog"},
		{domain.PatternDayOfWeek, "friday", 1.05, "End of week rush"},
		{domain.PatternMonth, "december", 1.4, "Holiday season rush"},
		{domain.PatternMonth, "november", 1.2, "Black Friday and Thanksgiving impact"},
		{domain.PatternHolidayPeriod, "christmas_week", 1.6, "Week of Christmas"},
		{domain.PatternHolidayPeriod, "thanksgiving_week", 1.3, "Thanksgiving week"},
	}

	for _, r := range temporalRows {
		_, err := tx.Exec(`
		INSERT INTO temporal_risk (
			pattern_type, pattern_value, risk_multiplier, description
		)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pattern_type, pattern_value) DO UPDATE SET
			risk_multiplier = EXCLUDED.risk_multiplier,
			description = EXCLUDED.description;
		`, r.patternType, r.patternValue, r.multiplier, r.description)
		if err != nil {
			return fmt.Errorf("seed postgres reference data: pattern %s/%s: %w", r.patternType, r.patternValue, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed postgres reference data: commit tx: %w", err)
	}

	return nil
}
