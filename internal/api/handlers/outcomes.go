package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"shipment-risk-service/internal/api/dto"
	"shipment-risk-service/internal/domain"
	"shipment-risk-service/internal/services"
)

type OutcomeHandler struct {
	Engine *services.Engine
}

// Record accepts an observed delivery outcome and feeds it into the
// engine's learning loop.
func (h *OutcomeHandler) Record(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OutcomeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if strings.TrimSpace(req.PackageID) == "" {
		writeError(w, r, http.StatusBadRequest, "package_id is required")
		return
	}

	carrier, err := domain.ParseCarrier(req.Carrier)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown carrier (supported: %v)", domain.Carriers()))
		return
	}

	if strings.TrimSpace(req.DestinationZip) == "" {
		writeError(w, r, http.StatusBadRequest, "destination_zip is required")
		return
	}
	if strings.TrimSpace(req.ScheduledDate) == "" {
		writeError(w, r, http.StatusBadRequest, "scheduled_date is required")
		return
	}

	actualDate := req.ActualDate
	if strings.TrimSpace(actualDate) == "" {
		actualDate = time.Now().Format(domain.DateLayout)
	}

	if _, err := time.Parse(domain.DateLayout, req.ScheduledDate); err != nil {
		writeError(w, r, http.StatusBadRequest, "scheduled_date must use YYYY-MM-DD")
		return
	}
	if _, err := time.Parse(domain.DateLayout, actualDate); err != nil {
		writeError(w, r, http.StatusBadRequest, "actual_date must use YYYY-MM-DD")
		return
	}

	err = h.Engine.RecordOutcome(
		r.Context(),
		req.PackageID, carrier,
		req.OriginZip, req.DestinationZip,
		req.ScheduledDate, actualDate,
		req.DelayReasons,
	)
	if err != nil {
		log.Printf("record outcome failed package_id=%s err=%v", req.PackageID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.OutcomeResponse{
		Success: true,
		Message: fmt.Sprintf("delivery outcome recorded for package %s", req.PackageID),
	})
}
