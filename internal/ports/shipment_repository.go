package ports

import (
	"context"

	"shipment-risk-service/internal/domain"
)

// Port: a boundary for retrieving Shipment descriptors from a data
// source.
type ShipmentRepository interface {
	// Retrieve all shipments available for scoring.
	ListShipments(ctx context.Context) ([]domain.Shipment, error)

	// Retrieve one shipment by package id; false when unknown.
	GetShipment(ctx context.Context, packageID string) (domain.Shipment, bool, error)
}
