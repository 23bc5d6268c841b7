package handlers

import (
	"log"
	"net/http"

	"shipment-risk-service/internal/api/dto"
	"shipment-risk-service/internal/domain"
	"shipment-risk-service/internal/ports"
	"shipment-risk-service/internal/services"
)

type ShipmentHandler struct {
	Repo   ports.ShipmentRepository
	Engine *services.Engine
}

// List returns every stored shipment enriched with a basic risk
// assessment. A shipment whose assessment fails gets a default score
// rather than sinking the whole listing.
func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	shipments, err := h.Repo.ListShipments(r.Context())
	if err != nil {
		log.Printf("list shipments failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListShipmentsResponse{Shipments: make([]dto.EnrichedShipmentResponse, 0, len(shipments))}
	for _, sh := range shipments {
		assessment, err := h.Engine.ComputeBasicRisk(r.Context(), sh)
		if err != nil {
			log.Printf("assess shipment failed package_id=%s err=%v", sh.PackageID, err)
			assessment = domain.BasicAssessment{
				RiskScore: 25,
				Reasons:   []string{"assessment unavailable"},
			}
		}

		res.Shipments = append(res.Shipments, enrichedResponse(sh, assessment))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns one shipment's basic risk assessment.
func (h *ShipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	packageID := r.PathValue("id")
	shipment, ok, err := h.Repo.GetShipment(r.Context(), packageID)
	if err != nil {
		log.Printf("get shipment failed package_id=%s err=%v", packageID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "package not found")
		return
	}

	assessment, err := h.Engine.ComputeBasicRisk(r.Context(), shipment)
	if err != nil {
		log.Printf("assess shipment failed package_id=%s err=%v", packageID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, enrichedResponse(shipment, assessment))
}

// Assessment returns the cache-aware enhanced assessment for one
// shipment.
func (h *ShipmentHandler) Assessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	packageID := r.PathValue("id")
	shipment, ok, err := h.Repo.GetShipment(r.Context(), packageID)
	if err != nil {
		log.Printf("get shipment failed package_id=%s err=%v", packageID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "package not found")
		return
	}

	assessment, err := h.Engine.ComputeEnhancedRisk(r.Context(), shipment)
	if err != nil {
		log.Printf("enhanced assessment failed package_id=%s err=%v", packageID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	factors := make(map[string]dto.FactorResponse, len(assessment.Factors))
	for name, f := range assessment.Factors {
		factors[name] = dto.FactorResponse{
			Score:         f.Score,
			WeightPercent: f.WeightPercent,
			Status:        f.Status,
			Level:         f.Level,
		}
	}

	writeJSON(w, r, http.StatusOK, dto.EnhancedAssessmentResponse{
		PackageID:            shipment.PackageID,
		Score:                assessment.Score,
		RiskLevel:            domain.RiskLevel(assessment.Score),
		ConfidenceLevel:      assessment.ConfidenceLevel,
		PredictedDelayDays:   assessment.PredictedDelayDays,
		Factors:              factors,
		OriginalDeliveryDate: assessment.OriginalDeliveryDate,
		RevisedDeliveryDate:  assessment.RevisedDeliveryDate,
	})
}

func enrichedResponse(sh domain.Shipment, assessment domain.BasicAssessment) dto.EnrichedShipmentResponse {
	return dto.EnrichedShipmentResponse{
		PackageID:            sh.PackageID,
		DestinationZip:       sh.DestinationZip,
		DestinationCity:      sh.DestinationCity,
		Carrier:              sh.Carrier.String(),
		ExpectedDeliveryDate: sh.ExpectedDeliveryDate,
		RiskScore:            assessment.RiskScore,
		RiskLevel:            domain.RiskLevel(assessment.RiskScore),
		Reasons:              assessment.Reasons,
	}
}
