package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rental-cloud/internal/auth"
	ledger "rental-cloud/internal/ledger/domain"
	leasing "rental-cloud/internal/leasing/domain"
	settleapp "rental-cloud/internal/settlement/application"
)

type memPayments struct {
	payment *leasing.Payment
}

func (s *memPayments) GetByID(context.Context, string) (*leasing.Payment, error) {
	if s.payment == nil {
		return nil, leasing.ErrPaymentNotFound
	}
	clone := *s.payment
	return &clone, nil
}

type memLeases struct {
	lease *leasing.Lease
}

func (s *memLeases) Get(context.Context, string) (*leasing.Lease, error) {
	clone := *s.lease
	return &clone, nil
}

type memStore struct {
	payments *memPayments
	record   *ledger.IncomeRecord
}

func (s *memStore) SettleWithIncome(_ context.Context, _ *leasing.Payment, record *ledger.IncomeRecord) error {
	if s.payments.payment.Status != leasing.PaymentStatusPending {
		return leasing.ErrPaymentAlreadyPaid
	}
	s.payments.payment.Status = leasing.PaymentStatusPaid
	s.record = record
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *memStore) {
	t.Helper()
	payments := &memPayments{payment: &leasing.Payment{
		ID:      "pay-1",
		LeaseID: "lease-1",
		Amount:  10000,
		DueDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		Type:    leasing.PaymentTypeRent,
		Status:  leasing.PaymentStatusPending,
	}}
	leases := &memLeases{lease: &leasing.Lease{
		ID:         "lease-1",
		LandlordID: "user-landlord",
		TenantID:   "user-tenant",
		PropertyID: "prop-1",
		UnitID:     "unit-1",
		Status:     leasing.LeaseStatusActive,
	}}
	store := &memStore{payments: payments}
	svc, err := settleapp.NewSettlementService(payments, leases, store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(svc, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, store
}

func settleBody() string {
	return `{"paid_at":"2024-02-01T09:30:00Z","method":"bank_transfer","payment_type":"RENT","timing_status":"ONTIME"}`
}

func doSettle(handler *Handler, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/pay-1/settle", strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), userID, auth.RoleLandlord))
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestSettleEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)

	resp := doSettle(handler, settleBody(), "user-landlord")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var result settleapp.SettlementResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Category != "RENT" {
		t.Fatalf("category = %s", result.Category)
	}
	if store.record == nil || store.record.PaymentID != "pay-1" {
		t.Fatalf("income record not written: %+v", store.record)
	}
}

func TestSettleEndpointValidation(t *testing.T) {
	handler, _ := newTestHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing method", `{"paid_at":"2024-02-01T09:30:00Z","payment_type":"RENT","timing_status":"ONTIME"}`},
		{"bad timing", `{"paid_at":"2024-02-01T09:30:00Z","method":"cash","payment_type":"RENT","timing_status":"EARLY"}`},
		{"bad type", `{"paid_at":"2024-02-01T09:30:00Z","method":"cash","payment_type":"RENTAL","timing_status":"ONTIME"}`},
		{"bad date", `{"paid_at":"02/01/2024","method":"cash","payment_type":"RENT","timing_status":"ONTIME"}`},
		{"not json", `settle please`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doSettle(handler, tc.body, "user-landlord")
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.Code)
			}
		})
	}
}

func TestSettleEndpointWrongActor(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doSettle(handler, settleBody(), "user-other")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.Code)
	}
}

func TestSettleEndpointAlreadyPaid(t *testing.T) {
	handler, _ := newTestHandler(t)

	first := doSettle(handler, settleBody(), "user-landlord")
	if first.Code != http.StatusOK {
		t.Fatalf("first settle status = %d", first.Code)
	}
	second := doSettle(handler, settleBody(), "user-landlord")
	if second.Code != http.StatusConflict {
		t.Fatalf("second settle status = %d, want 409", second.Code)
	}
}

func TestSettleEndpointUnknownRoute(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/pay-1/refund", strings.NewReader(settleBody()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}
