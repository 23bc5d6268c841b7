package repositories

import (
	"context"

	"shipment-risk-service/internal/domain"
)

// MockShipmentRepository is an in-memory ShipmentRepository for tests.
// Shipments list in insertion order.
type MockShipmentRepository struct {
	Shipments []domain.Shipment

	// Err, when set, is returned from every method.
	Err error
}

func NewMockShipmentRepository(shipments ...domain.Shipment) *MockShipmentRepository {
	return &MockShipmentRepository{Shipments: shipments}
}

func (m *MockShipmentRepository) ListShipments(ctx context.Context) ([]domain.Shipment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]domain.Shipment, len(m.Shipments))
	copy(out, m.Shipments)
	return out, nil
}

func (m *MockShipmentRepository) GetShipment(ctx context.Context, packageID string) (domain.Shipment, bool, error) {
	if m.Err != nil {
		return domain.Shipment{}, false, m.Err
	}
	for _, s := range m.Shipments {
		if s.PackageID == packageID {
			return s, true, nil
		}
	}
	return domain.Shipment{}, false, nil
}
