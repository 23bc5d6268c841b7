package weather

import (
	"context"
	"fmt"

	"shipment-risk-service/internal/ports"
)

// MockWeatherProvider serves fixed per-city risk data for tests and
// offline runs (no API key configured).
type MockWeatherProvider struct {
	m map[string]ports.WeatherRisk

	// Err, when set, is returned from every lookup to simulate a
	// provider outage.
	Err error
}

func NewMockWeatherProvider(risks map[string]ports.WeatherRisk) *MockWeatherProvider {
	m := make(map[string]ports.WeatherRisk, len(risks))
	for city, r := range risks {
		m[city] = r
	}
	return &MockWeatherProvider{m: m}
}

// DemoWeatherRisks mirrors the conditions of the seeded metros, so
// offline runs produce plausible scores.
func DemoWeatherRisks() map[string]ports.WeatherRisk {
	return map[string]ports.WeatherRisk{
		"Seattle":       {RiskScore: 25, Reasons: []string{"rainy conditions", "low visibility"}},
		"New York":      {RiskScore: 10, Reasons: []string{"partly cloudy"}},
		"Beverly Hills": {RiskScore: 5},
		"Miami":         {RiskScore: 20, Reasons: []string{"thunderstorm potential"}},
		"Chicago":       {RiskScore: 15, Reasons: []string{"windy conditions"}},
	}
}

func (p *MockWeatherProvider) GetWeatherRisk(ctx context.Context, city string) (ports.WeatherRisk, error) {
	if p.Err != nil {
		return ports.WeatherRisk{}, fmt.Errorf("mock weather provider: %w", p.Err)
	}

	r, ok := p.m[city]
	if !ok {
		// Unknown cities read as clear skies.
		return ports.WeatherRisk{RiskScore: 5}, nil
	}
	return r, nil
}
