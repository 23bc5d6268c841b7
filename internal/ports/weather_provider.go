package ports

import "context"

// WeatherRisk is a bounded weather contribution for one city.
type WeatherRisk struct {
	RiskScore int
	Reasons   []string
}

// Contract for real-time weather risk lookups.
//
// The provider is unreliable: implementations carry a hard timeout and
// return an error on any failure. Callers absorb the error and
// substitute a fixed fallback; the call is never retried synchronously.
type WeatherProvider interface {
	GetWeatherRisk(ctx context.Context, city string) (WeatherRisk, error)
}
