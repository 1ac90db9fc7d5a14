package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayo6706/booking-billing/internal/api/handler"
	"github.com/ayo6706/booking-billing/internal/api/middleware"
	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/ayo6706/booking-billing/internal/service"
	"github.com/ayo6706/booking-billing/internal/testutil/fakeledger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *chi.Mux
	store  *fakeledger.Store
	svc    *service.InvoiceService
	tenant models.Tenant
	actor  models.ActorContext
}

// newTestEnv wires the invoice handler onto the production routes with the
// auth middleware replaced by a fixed actor injection.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := fakeledger.New()
	tenant := models.Tenant{ID: uuid.New(), Slug: "acme", Name: "Acme Hotels", Currency: "USD"}
	store.SeedTenant(tenant)
	actor := models.ActorContext{UserID: uuid.New(), TenantID: tenant.ID, Role: domain.RoleManager}

	svc := service.NewInvoiceService(store, nil)
	h := handler.NewInvoiceHandler(svc)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), actor)))
		})
	})
	router.Get("/v1/invoices", h.List)
	router.Post("/v1/invoices", h.Create)
	router.Get("/v1/invoices/{id}", h.Get)
	router.Patch("/v1/invoices/{id}/status", h.UpdateStatus)
	router.Delete("/v1/invoices/{id}", h.Cancel)

	return &testEnv{router: router, store: store, svc: svc, tenant: tenant, actor: actor}
}

func (e *testEnv) seedBooking(amount int64, billingType domain.BillingType) models.BillingUnit {
	unit := models.BillingUnit{
		ID:          uuid.New(),
		TenantID:    e.tenant.ID,
		Kind:        domain.UnitKindBooking,
		Amount:      amount,
		Commission:  amount / 10,
		NetRevenue:  amount - amount/10,
		BillingType: billingType,
		OwnerID:     uuid.New(),
	}
	e.store.SeedUnit(unit)
	return unit
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createInvoice(t *testing.T, unitIDs ...uuid.UUID) models.Invoice {
	t.Helper()

	ids := make([]string, len(unitIDs))
	for i, id := range unitIDs {
		ids[i] = id.String()
	}
	rec := e.do(t, http.MethodPost, "/v1/invoices", map[string]any{
		"unit_kind":    "booking",
		"unit_ids":     ids,
		"billing_type": "HOTEL_COLLECT",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var inv models.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	return inv
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	env := newTestEnv(t)
	b1 := env.seedBooking(100_000_000, domain.BillingTypeHotelCollect)
	b2 := env.seedBooking(200_000_000, domain.BillingTypeHotelCollect)

	inv := env.createInvoice(t, b1.ID, b2.ID)

	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, int64(300_000_000), inv.TotalAmount)
	assert.Equal(t, "USD", inv.Currency)
	assert.Len(t, inv.Items, 2)
}

func TestCreateInvoiceEndpoint_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/invoices", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestCreateInvoiceEndpoint_BadUnitID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/invoices", map[string]any{
		"unit_ids":     []string{"not-a-uuid"},
		"billing_type": "HOTEL_COLLECT",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateInvoiceEndpoint_MixedBillingTypes(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedBooking(100_000_000, domain.BillingTypeHotelCollect)
	ota := env.seedBooking(200_000_000, domain.BillingTypeOTACollect)

	rec := env.do(t, http.MethodPost, "/v1/invoices", map[string]any{
		"unit_ids":     []string{hotel.ID.String(), ota.ID.String()},
		"billing_type": "HOTEL_COLLECT",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var prob map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prob))
	assert.Contains(t, prob["type"], "billing/invalid-billing-type")
}

func TestCreateInvoiceEndpoint_AlreadyInvoiced(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(100_000_000, domain.BillingTypeHotelCollect)
	env.createInvoice(t, b.ID)

	rec := env.do(t, http.MethodPost, "/v1/invoices", map[string]any{
		"unit_ids":     []string{b.ID.String()},
		"billing_type": "HOTEL_COLLECT",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListInvoicesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	b1 := env.seedBooking(100_000_000, domain.BillingTypeHotelCollect)
	b2 := env.seedBooking(200_000_000, domain.BillingTypeHotelCollect)
	env.createInvoice(t, b1.ID)
	env.createInvoice(t, b2.ID)

	rec := env.do(t, http.MethodGet, "/v1/invoices", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var invoices []models.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoices))
	assert.Len(t, invoices, 2)

	rec = env.do(t, http.MethodGet, "/v1/invoices?status=SENT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoices))
	assert.Empty(t, invoices)
}

func TestListInvoicesEndpoint_InvalidFilter(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/invoices?status=ARCHIVED", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/invoices?start_date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInvoiceEndpoint(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(100_000_000, domain.BillingTypeHotelCollect)
	created := env.createInvoice(t, b.ID)

	rec := env.do(t, http.MethodGet, "/v1/invoices/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var inv models.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.Equal(t, created.ID, inv.ID)
	assert.Len(t, inv.Items, 1)
}

func TestGetInvoiceEndpoint_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/invoices/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestUpdateStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(100_000_000, domain.BillingTypeHotelCollect)
	created := env.createInvoice(t, b.ID)

	rec := env.do(t, http.MethodPatch, fmt.Sprintf("/v1/invoices/%s/status", created.ID), map[string]string{"status": "sent"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var inv models.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.Equal(t, domain.InvoiceStatusSent, inv.Status)
}

func TestUpdateStatusEndpoint_UnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPatch, fmt.Sprintf("/v1/invoices/%s/status", uuid.New()), map[string]string{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusEndpoint_CancelledRejected(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(100_000_000, domain.BillingTypeHotelCollect)
	created := env.createInvoice(t, b.ID)

	rec := env.do(t, http.MethodPatch, fmt.Sprintf("/v1/invoices/%s/status", created.ID), map[string]string{"status": "CANCELLED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelInvoiceEndpoint(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(100_000_000, domain.BillingTypeHotelCollect)
	created := env.createInvoice(t, b.ID)

	rec := env.do(t, http.MethodDelete, "/v1/invoices/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var inv models.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.Equal(t, domain.InvoiceStatusCancelled, inv.Status)

	unit, ok := env.store.Unit(b.ID)
	require.True(t, ok)
	assert.False(t, unit.Invoiced)
}

func TestEndpoints_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	// A router without the actor middleware simulates a missing auth context.
	h := handler.NewInvoiceHandler(env.svc)
	bare := chi.NewRouter()
	bare.Get("/v1/invoices", h.List)

	req := httptest.NewRequest(http.MethodGet, "/v1/invoices", nil).WithContext(context.Background())
	rec := httptest.NewRecorder()
	bare.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
