package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hoteliq/backend/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GetSummary returns the billing summary projection
// @Summary Billing summary
// @Description Outstanding balance, folio counts and revenue by source across all folios
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ReportSummary
// @Failure 500 {object} services.ErrorResponse
// @Router /reports/summary [get]
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.Summary(r.Context())
	if err != nil {
		services.SendErrorResponse(w, "Failed to build summary", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
