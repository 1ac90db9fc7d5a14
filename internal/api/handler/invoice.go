package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/ayo6706/booking-billing/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// InvoiceHandler exposes the billing reconciliation operations.
type InvoiceHandler struct {
	svc *service.InvoiceService
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

type createInvoiceRequest struct {
	UnitKind    string   `json:"unit_kind"`
	UnitIDs     []string `json:"unit_ids"`
	BillingType string   `json:"billing_type"`
	Notes       string   `json:"notes,omitempty"`
}

// Create groups billing units into a new DRAFT invoice.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	kind := domain.UnitKind(req.UnitKind)
	if req.UnitKind == "" {
		kind = domain.UnitKindBooking
	}

	ids := make([]uuid.UUID, 0, len(req.UnitIDs))
	for _, raw := range req.UnitIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-unit-id", "Invalid unit id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	inv, err := h.svc.Create(r.Context(), actor, service.CreateInvoiceCmd{
		UnitKind:    kind,
		UnitIDs:     ids,
		BillingType: domain.BillingType(req.BillingType),
		Notes:       req.Notes,
	})
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusCreated, inv)
}

// List returns tenant invoices filtered by status, billing type and date range.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	filter, err := parseInvoiceFilter(r)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-filter", err.Error())
		return
	}

	invoices, err := h.svc.List(r.Context(), actor, filter)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}

	RespondJSON(w, http.StatusOK, invoices)
}

// Get returns one invoice with its items.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-invoice-id", "Invalid invoice ID")
		return
	}

	inv, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, inv)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus applies a lifecycle transition (not cancellation).
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-invoice-id", "Invalid invoice ID")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	status, valid := domain.ParseInvoiceStatus(req.Status)
	if !valid {
		RespondError(w, r, http.StatusBadRequest, "billing/invalid-status", "Unknown invoice status: "+req.Status)
		return
	}

	inv, err := h.svc.UpdateStatus(r.Context(), actor, id, status)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, inv)
}

// Cancel cancels an invoice and frees its billed units.
func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-invoice-id", "Invalid invoice ID")
		return
	}

	inv, err := h.svc.Cancel(r.Context(), actor, id)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, inv)
}

func parseInvoiceFilter(r *http.Request) (models.InvoiceFilter, error) {
	var filter models.InvoiceFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status, ok := domain.ParseInvoiceStatus(raw)
		if !ok {
			return filter, errInvalidFilter("status", raw)
		}
		filter.Status = &status
	}
	if raw := query.Get("billing_type"); raw != "" {
		bt := domain.BillingType(raw)
		if !bt.Valid() {
			return filter, errInvalidFilter("billing_type", raw)
		}
		filter.BillingType = &bt
	}
	if raw := query.Get("start_date"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errInvalidFilter("start_date", raw)
		}
		filter.From = &from
	}
	if raw := query.Get("end_date"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errInvalidFilter("end_date", raw)
		}
		filter.To = &to
	}

	return filter, nil
}

type filterError struct{ field, value string }

func errInvalidFilter(field, value string) error {
	return &filterError{field: field, value: value}
}

func (e *filterError) Error() string {
	return "invalid " + e.field + ": " + e.value
}
