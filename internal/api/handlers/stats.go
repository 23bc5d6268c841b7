package handlers

import (
	"log"
	"net/http"

	"shipment-risk-service/internal/api/dto"
	"shipment-risk-service/internal/ports"
)

type StatsHandler struct {
	Store ports.HistoricalStore
}

// Snapshot returns carrier standings and recent outcome counts.
func (h *StatsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snapshot, err := h.Store.GetPerformanceSnapshot(r.Context())
	if err != nil {
		log.Printf("performance snapshot failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.StatsResponse{
		Carriers: make([]dto.CarrierStatsResponse, 0, len(snapshot.Carriers)),
		Recent: dto.RecentOutcomeStats{
			TotalOutcomes:   snapshot.RecentOutcomes,
			DelayedOutcomes: snapshot.RecentDelayed,
			AverageDelayHrs: snapshot.RecentAvgDelayHrs,
		},
	}
	for _, c := range snapshot.Carriers {
		res.Carriers = append(res.Carriers, dto.CarrierStatsResponse{
			Carrier:          c.Carrier.String(),
			TotalDeliveries:  c.TotalDeliveries,
			OnTimeDeliveries: c.OnTimeDeliveries,
			ReliabilityScore: c.ReliabilityScore,
			AverageDelayHrs:  c.AverageDelayHours,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
