package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoteliq/backend/internal/models"
	"github.com/hoteliq/backend/internal/services"
)

type FolioHandler struct {
	folios     *services.FolioService
	aggregator *services.Aggregator
	settlement *services.SettlementService
	validator  *services.ValidationHelper
}

func NewFolioHandler(folios *services.FolioService, aggregator *services.Aggregator, settlement *services.SettlementService) *FolioHandler {
	return &FolioHandler{
		folios:     folios,
		aggregator: aggregator,
		settlement: settlement,
		validator:  services.NewValidationHelper(),
	}
}

func decodeSingle(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

// OpenFolio opens a new guest folio
// @Summary Open a folio
// @Description Open a new guest folio in pending state
// @Tags folios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{booking_id=string,guest_ref=string,currency=string} true "Folio data"
// @Success 201 {object} models.Folio
// @Failure 400 {object} services.ErrorResponse
// @Router /folios [post]
func (h *FolioHandler) OpenFolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingID string `json:"booking_id" validate:"required"`
		GuestRef  string `json:"guest_ref" validate:"required"`
		Currency  string `json:"currency" validate:"required,len=3"`
	}
	if !decodeSingle(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	folio, err := h.folios.Open(r.Context(), req.BookingID, req.GuestRef, req.Currency)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(folio)
}

// GetFolio returns the read-only folio view
// @Summary Get folio view
// @Description Snapshot of charges, payments, totals and balance
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Param folioId path string true "Folio ID"
// @Success 200 {object} models.FolioView
// @Failure 404 {object} services.ErrorResponse
// @Router /folios/{folioId} [get]
func (h *FolioHandler) GetFolio(w http.ResponseWriter, r *http.Request) {
	view, err := h.folios.View(chi.URLParam(r, "folioId"))
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// GetBalance returns the current balance
// @Summary Folio balance
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Param folioId path string true "Folio ID"
// @Success 200 {object} object{folio_id=string,balance=int64}
// @Failure 404 {object} services.ErrorResponse
// @Router /folios/{folioId}/balance [get]
func (h *FolioHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	folioID := chi.URLParam(r, "folioId")
	balance, err := h.folios.BalanceOf(folioID)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"folio_id": folioID,
		"balance":  balance,
	})
}

// PostTransaction ingests one raw source record
// @Summary Post a raw revenue event
// @Description Normalize a stay, order or scheduled-service record and post it to the folio
// @Tags folios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param folioId path string true "Folio ID"
// @Param record body object true "Raw source record"
// @Success 201 {object} models.LedgerItem
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /folios/{folioId}/transactions [post]
func (h *FolioHandler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	folioID := chi.URLParam(r, "folioId")

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	item, err := h.aggregator.AttachRaw(r.Context(), folioID, raw)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if item == nil {
		// cancelled booking, nothing to post
		json.NewEncoder(w).Encode(map[string]any{"success": true, "posted": false})
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// PostPayment records a settlement against the folio
// @Summary Post a payment
// @Tags folios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param folioId path string true "Folio ID"
// @Param payment body object{amount=int64,method=string,reference=string} true "Payment data"
// @Success 201 {object} models.Payment
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /folios/{folioId}/payments [post]
func (h *FolioHandler) PostPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount    int64  `json:"amount" validate:"required"`
		Method    string `json:"method" validate:"required"`
		Reference string `json:"reference"`
	}
	if !decodeSingle(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	payment, err := h.folios.PostPayment(r.Context(), chi.URLParam(r, "folioId"), models.Payment{
		Amount:    req.Amount,
		Method:    models.PaymentMethod(req.Method),
		Reference: req.Reference,
	})
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(payment)
}

// VoidCharge flags a posted charge as voided
// @Summary Void a charge
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Param folioId path string true "Folio ID"
// @Param chargeId path string true "Charge ID"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /folios/{folioId}/charges/{chargeId}/void [post]
func (h *FolioHandler) VoidCharge(w http.ResponseWriter, r *http.Request) {
	err := h.folios.VoidCharge(r.Context(), chi.URLParam(r, "folioId"), chi.URLParam(r, "chargeId"))
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// CloseFolio closes a settled folio
// @Summary Close a folio
// @Description Transition the folio to closed; only allowed on a zero balance
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Param folioId path string true "Folio ID"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /folios/{folioId}/close [post]
func (h *FolioHandler) CloseFolio(w http.ResponseWriter, r *http.Request) {
	if err := h.folios.Close(r.Context(), chi.URLParam(r, "folioId")); err != nil {
		services.SendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// ExportSettlement exports ISO 20022 settlement messages for a closed folio
// @Summary Export folio settlement
// @Description pacs.008 messages for card and bank-transfer payments
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Param folioId path string true "Folio ID"
// @Success 200 {object} object{folio_id=string,documents=[]string}
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /folios/{folioId}/settlement [get]
func (h *FolioHandler) ExportSettlement(w http.ResponseWriter, r *http.Request) {
	folioID := chi.URLParam(r, "folioId")
	folio, err := h.folios.Get(folioID)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	docs, err := h.settlement.ExportFolio(folio)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"folio_id":  folioID,
		"documents": docs,
	})
}
