package services

import (
	"time"

	"shipment-risk-service/internal/ports"
)

// Engine computes shipment risk assessments and folds observed delivery
// outcomes back into the historical aggregates.
//
// All dependencies are injected at construction: the historical store,
// the weather provider and the result cache are owned by the caller,
// so tests can swap any of them without process-wide state.
//
// The engine is safe for concurrent use. Scoring requests share no
// state except the result cache, which tolerates concurrent access.
type Engine struct {
	store   ports.HistoricalStore
	weather ports.WeatherProvider
	cache   ports.AssessmentCache

	// now is swapped in tests to pin season- and proximity-dependent
	// factors.
	now func() time.Time
}

func NewEngine(store ports.HistoricalStore, weather ports.WeatherProvider, cache ports.AssessmentCache) *Engine {
	return &Engine{
		store:   store,
		weather: weather,
		cache:   cache,
		now:     time.Now,
	}
}
