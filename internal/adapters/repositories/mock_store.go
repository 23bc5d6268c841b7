package repositories

import (
	"context"
	"sync"

	"shipment-risk-service/internal/domain"
	"shipment-risk-service/internal/ports"
)

// MockHistoricalStore is an in-memory HistoricalStore for tests.
// The performance upsert mutates under a single lock, giving the same
// per-key atomicity guarantee the SQL stores express in one statement.
type MockHistoricalStore struct {
	mu sync.Mutex

	Carriers    map[domain.Carrier]domain.CarrierAggregate
	Geos        map[string]domain.GeoAggregate
	Performance map[string]domain.PerformanceAggregate
	Patterns    map[string]domain.TemporalPattern
	Outcomes    []domain.DeliveryOutcome

	// Err, when set, is returned from every method to simulate an
	// unreachable store.
	Err error
}

func NewMockHistoricalStore() *MockHistoricalStore {
	return &MockHistoricalStore{
		Carriers:    map[domain.Carrier]domain.CarrierAggregate{},
		Geos:        map[string]domain.GeoAggregate{},
		Performance: map[string]domain.PerformanceAggregate{},
		Patterns:    map[string]domain.TemporalPattern{},
	}
}

func perfKey(carrier domain.Carrier, zip string) string {
	return string(carrier) + "|" + zip
}

func patternKey(patternType, patternValue string) string {
	return patternType + "|" + patternValue
}

func (m *MockHistoricalStore) GetCarrierAggregate(ctx context.Context, carrier domain.Carrier) (domain.CarrierAggregate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domain.CarrierAggregate{}, false, m.Err
	}
	agg, ok := m.Carriers[carrier]
	return agg, ok, nil
}

func (m *MockHistoricalStore) GetGeoAggregate(ctx context.Context, zip string) (domain.GeoAggregate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domain.GeoAggregate{}, false, m.Err
	}
	agg, ok := m.Geos[zip]
	return agg, ok, nil
}

func (m *MockHistoricalStore) GetPerformanceAggregate(ctx context.Context, carrier domain.Carrier, zip string) (domain.PerformanceAggregate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domain.PerformanceAggregate{}, false, m.Err
	}
	agg, ok := m.Performance[perfKey(carrier, zip)]
	return agg, ok, nil
}

func (m *MockHistoricalStore) GetTemporalPattern(ctx context.Context, patternType, patternValue string) (domain.TemporalPattern, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domain.TemporalPattern{}, false, m.Err
	}
	pattern, ok := m.Patterns[patternKey(patternType, patternValue)]
	return pattern, ok, nil
}

func (m *MockHistoricalStore) AppendDeliveryOutcome(ctx context.Context, outcome domain.DeliveryOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Outcomes = append(m.Outcomes, outcome)
	return nil
}

func (m *MockHistoricalStore) UpsertPerformanceAggregate(ctx context.Context, carrier domain.Carrier, zip string, delayed bool, delayHours float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	key := perfKey(carrier, zip)
	agg, ok := m.Performance[key]
	if !ok {
		agg = domain.PerformanceAggregate{Carrier: carrier, ZipCode: zip}
	}

	agg.TotalDeliveries++
	if delayed {
		agg.DelayedDeliveries++
	}
	agg.TotalDelayHours += delayHours
	agg.AvgDelayHours = agg.TotalDelayHours / float64(agg.TotalDeliveries)

	m.Performance[key] = agg
	return nil
}

func (m *MockHistoricalStore) GetPerformanceSnapshot(ctx context.Context) (ports.PerformanceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return ports.PerformanceSnapshot{}, m.Err
	}

	var snapshot ports.PerformanceSnapshot
	for _, agg := range m.Carriers {
		snapshot.Carriers = append(snapshot.Carriers, agg)
	}

	var totalDelay float64
	for _, o := range m.Outcomes {
		snapshot.RecentOutcomes++
		if o.WasDelayed {
			snapshot.RecentDelayed++
		}
		totalDelay += o.DelayHours
	}
	if snapshot.RecentOutcomes > 0 {
		snapshot.RecentAvgDelayHrs = totalDelay / float64(snapshot.RecentOutcomes)
	}

	return snapshot, nil
}
