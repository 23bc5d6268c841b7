package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"shipment-risk-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCarrierPerformanceQuery := `
	CREATE TABLE IF NOT EXISTS carrier_performance (
		carrier TEXT PRIMARY KEY,
		total_deliveries INTEGER NOT NULL DEFAULT 0,
		on_time_deliveries INTEGER NOT NULL DEFAULT 0,
		delayed_deliveries INTEGER NOT NULL DEFAULT 0,
		average_delay_hours REAL NOT NULL DEFAULT 0,
		reliability_score INTEGER NOT NULL DEFAULT 50,
		peak_season_performance_drop INTEGER NOT NULL DEFAULT 0,
		last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	createGeographicRiskQuery := `
	CREATE TABLE IF NOT EXISTS geographic_risk (
		zip_code TEXT PRIMARY KEY,
		city TEXT NOT NULL,
		state TEXT,
		region TEXT,
		base_risk_score INTEGER NOT NULL DEFAULT 0,
		weather_risk_multiplier REAL NOT NULL DEFAULT 1.0,
		traffic_complexity INTEGER NOT NULL DEFAULT 0,
		last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	createDeliveryPerformanceQuery := `
	CREATE TABLE IF NOT EXISTS delivery_performance (
		carrier TEXT NOT NULL,
		zip_code TEXT NOT NULL,
		total_deliveries INTEGER NOT NULL DEFAULT 0,
		delayed_deliveries INTEGER NOT NULL DEFAULT 0,
		total_delay_hours REAL NOT NULL DEFAULT 0,
		avg_delay_hours REAL NOT NULL DEFAULT 0,
		last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (carrier, zip_code)
	);
	`

	createTemporalRiskQuery := `
	CREATE TABLE IF NOT EXISTS temporal_risk (
		pattern_type TEXT NOT NULL,
		pattern_value TEXT NOT NULL,
		risk_multiplier REAL NOT NULL DEFAULT 1.0,
		description TEXT,
		last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (pattern_type, pattern_value)
	);
	`

	createDeliveryOutcomesQuery := `
	CREATE TABLE IF NOT EXISTS delivery_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		package_id TEXT NOT NULL,
		carrier TEXT NOT NULL,
		origin_zip TEXT,
		destination_zip TEXT,
		scheduled_date DATE,
		actual_delivery_date DATE,
		was_delayed BOOLEAN NOT NULL DEFAULT FALSE,
		delay_hours REAL NOT NULL DEFAULT 0,
		delay_reasons TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	createShipmentsQuery := `
	CREATE TABLE IF NOT EXISTS shipments (
		package_id TEXT PRIMARY KEY,
		destination_zip TEXT NOT NULL,
		destination_city TEXT NOT NULL,
		carrier TEXT NOT NULL,
		expected_delivery_date TEXT NOT NULL
	);
	`

	createOutcomeIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_outcomes_created_at
	ON delivery_outcomes(created_at);
	`

	statements := []string{
		createCarrierPerformanceQuery,
		createGeographicRiskQuery,
		createDeliveryPerformanceQuery,
		createTemporalRiskQuery,
		createDeliveryOutcomesQuery,
		createShipmentsQuery,
		createOutcomeIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedReferenceData loads the static carrier, geographic and temporal
// reference tables. Lane-level delivery_performance rows are not
// seeded: the outcome feedback loop builds them from observed
// deliveries.
func SeedReferenceData(db *sql.DB) error {
	if db == nil {
		return errors.New("seed reference data: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed reference data: begin tx: %w", err)
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
		INSERT OR REPLACE INTO carrier_performance (
			carrier, total_deliveries, on_time_deliveries, delayed_deliveries,
			average_delay_hours, reliability_score, peak_season_performance_drop
		)
		VALUES (?, ?, ?, ?, ?, ?, ?);
		`, r.carrier, r.total, r.onTime, r.delayed, r.avgDelay, r.reliability, r.peakDrop)
		if err != nil {
			return fmt.Errorf("seed reference data: carrier %s: %w", r.carrier, err)
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
		INSERT OR REPLACE INTO geographic_risk (
			zip_code, city, state, region, base_risk_score,
			weather_risk_multiplier, traffic_complexity
		)
		VALUES (?, ?, ?, ?, ?, ?, ?);
		`, r.zip, r.city, r.state, r.region, r.baseRisk, r.weatherMult, r.traffic)
		if err != nil {
			return fmt.Errorf("seed reference data: zip %s: %w", r.zip, err)
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
		INSERT OR REPLACE INTO temporal_risk (
			pattern_type, pattern_value, risk_multiplier, description
		)
		VALUES (?, ?, ?, ?);
		`, r.patternType, r.patternValue, r.multiplier, r.description)
		if err != nil {
			return fmt.Errorf("seed reference data: pattern %s/%s: %w", r.patternType, r.patternValue, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed reference data: commit tx: %w", err)
	}

	return nil
}

type ShipmentSeed struct {
	PackageID            string `json:"package_id"`
	DestinationZip       string `json:"destination_zip"`
	DestinationCity      string `json:"destination_city"`
	Carrier              string `json:"carrier"`
	ExpectedDeliveryDate string `json:"expected_delivery_date"`
}

// Populate the database with demo shipments from a JSON file.
func SeedShipmentsFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed shipments: read %q: %w", jsonPath, err)
	}

	var data []ShipmentSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed shipments: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed shipments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, item := range data {
		id := strings.TrimSpace(item.PackageID)
		if id == "" {
			return fmt.Errorf("seed shipments: empty package_id at index %d", i+1)
		}

		if _, err := domain.ParseCarrier(item.Carrier); err != nil {
			return fmt.Errorf("seed shipments: package %s: %w", id, err)
		}

		_, err := tx.Exec(`
		INSERT OR REPLACE INTO shipments (
			package_id, destination_zip, destination_city, carrier, expected_delivery_date
		)
		VALUES (?, ?, ?, ?, ?);
		`, id, item.DestinationZip, item.DestinationCity, item.Carrier, item.ExpectedDeliveryDate)
		if err != nil {
			return fmt.Errorf("seed shipments: insert %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed shipments: commit tx: %w", err)
	}

	return nil
}
