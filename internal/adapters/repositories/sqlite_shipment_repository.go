package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shipment-risk-service/internal/domain"
)

// SQLite-backed implementation of the ShipmentRepository port.
type SqliteShipmentRepository struct{ DB *sql.DB }

func NewSqliteShipmentRepository(db *sql.DB) *SqliteShipmentRepository {
	return &SqliteShipmentRepository{DB: db}
}

// Return all shipments stored in the database.
func (s *SqliteShipmentRepository) ListShipments(ctx context.Context) ([]domain.Shipment, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite shipment repository: DB is nil")
	}

	query := `
	SELECT
		package_id,
		destination_zip,
		destination_city,
		carrier,
		expected_delivery_date
	FROM shipments
	ORDER BY package_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shipments: query shipments table: %w", err)
	}
	defer rows.Close()

	shipments := make([]domain.Shipment, 0, 16)
	for rows.Next() {
		var sh domain.Shipment
		var carrier string
		if err := rows.Scan(&sh.PackageID, &sh.DestinationZip, &sh.DestinationCity, &carrier, &sh.ExpectedDeliveryDate); err != nil {
			return nil, fmt.Errorf("list shipments: scan row: %w", err)
		}

		sh.Carrier, err = domain.ParseCarrier(carrier)
		if err != nil {
			return nil, fmt.Errorf("list shipments: package %s: %w", sh.PackageID, err)
		}
		shipments = append(shipments, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shipments: row iteration: %w", err)
	}

	return shipments, nil
}

func (s *SqliteShipmentRepository) GetShipment(ctx context.Context, packageID string) (domain.Shipment, bool, error) {
	if s.DB == nil {
		return domain.Shipment{}, false, errors.New("sqlite shipment repository: DB is nil")
	}

	query := `
	SELECT
		package_id,
		destination_zip,
		destination_city,
		carrier,
		expected_delivery_date
	FROM shipments
	WHERE package_id = ?;
	`

	var sh domain.Shipment
	var carrier string
	err := s.DB.QueryRowContext(ctx, query, packageID).Scan(
		&sh.PackageID, &sh.DestinationZip, &sh.DestinationCity, &carrier, &sh.ExpectedDeliveryDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shipment{}, false, nil
	}
	if err != nil {
		return domain.Shipment{}, false, fmt.Errorf("get shipment: query shipments table: %w", err)
	}

	sh.Carrier, err = domain.ParseCarrier(carrier)
	if err != nil {
		return domain.Shipment{}, false, fmt.Errorf("get shipment: package %s: %w", packageID, err)
	}

	return sh, true, nil
}
