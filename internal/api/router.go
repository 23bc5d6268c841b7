package api

import (
	"net/http"

	"shipment-risk-service/internal/api/handlers"
	"shipment-risk-service/internal/ports"
	"shipment-risk-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.ShipmentRepository, store ports.HistoricalStore, engine *services.Engine) http.Handler {
	mux := http.NewServeMux()

	shipmentHandler := &handlers.ShipmentHandler{Repo: repo, Engine: engine}
	outcomeHandler := &handlers.OutcomeHandler{Engine: engine}
	statsHandler := &handlers.StatsHandler{Store: store}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/packages", shipmentHandler.List)
	mux.HandleFunc("/packages/{id}", shipmentHandler.Get)
	mux.HandleFunc("/packages/{id}/assessment", shipmentHandler.Assessment)
	mux.HandleFunc("/outcomes", outcomeHandler.Record)
	mux.HandleFunc("/admin/stats", statsHandler.Snapshot)

	return requestIDMiddleware(loggingMiddleware(mux))
}
