package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental-cloud/internal/auth"
	leaseapp "rental-cloud/internal/leasing/application"
	leasing "rental-cloud/internal/leasing/domain"
)

type memLeaseStore struct {
	leases map[string]*leasing.Lease
}

func (s *memLeaseStore) Get(_ context.Context, id string) (*leasing.Lease, error) {
	lease, ok := s.leases[id]
	if !ok {
		return nil, leasing.ErrLeaseNotFound
	}
	clone := *lease
	return &clone, nil
}

func (s *memLeaseStore) ActivateWithSchedule(_ context.Context, lease *leasing.Lease, _ []leasing.Payment) error {
	s.leases[lease.ID] = lease
	return nil
}

func (s *memLeaseStore) MarkCancelled(_ context.Context, lease *leasing.Lease) error {
	s.leases[lease.ID] = lease
	return nil
}

func (s *memLeaseStore) CancelWithCleanup(_ context.Context, lease *leasing.Lease) (int64, error) {
	s.leases[lease.ID] = lease
	return 0, nil
}

func (s *memLeaseStore) TerminateWithReset(_ context.Context, lease *leasing.Lease) (int64, error) {
	s.leases[lease.ID] = lease
	return 0, nil
}

func (s *memLeaseStore) MarkCompleted(_ context.Context, lease *leasing.Lease) error {
	s.leases[lease.ID] = lease
	return nil
}

func (s *memLeaseStore) ListExpiring(context.Context, time.Time) ([]leasing.Lease, error) {
	return nil, nil
}

type memPaymentStore struct{}

func (memPaymentStore) ListByLease(context.Context, string) ([]leasing.Payment, error) {
	return nil, nil
}

type fixedCalendar struct{ today time.Time }

func (c fixedCalendar) Today() time.Time { return c.today }

func newTestHandler(t *testing.T) (*Handler, *memLeaseStore) {
	t.Helper()
	end := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	store := &memLeaseStore{leases: map[string]*leasing.Lease{
		"lease-1": {
			ID:         "lease-1",
			LandlordID: "user-landlord",
			TenantID:   "user-tenant",
			PropertyID: "prop-1",
			UnitID:     "unit-1",
			StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    &end,
			RentAmount: 8500,
			DueDay:     5,
			Status:     leasing.LeaseStatusPending,
		},
	}}
	svc, err := leaseapp.NewLeaseService(store, memPaymentStore{}, fixedCalendar{today: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(svc, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, store
}

func doRequest(handler *Handler, method, path, userID string, role auth.Role) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), userID, role))
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHandlerAccept(t *testing.T) {
	handler, store := newTestHandler(t)

	resp := doRequest(handler, http.MethodPatch, "/api/v1/leases/lease-1/accept", "user-tenant", auth.RoleTenant)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var result leaseapp.ActivationResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.PaymentsCreated == 0 {
		t.Fatalf("no payments created")
	}
	if store.leases["lease-1"].Status != leasing.LeaseStatusActive {
		t.Fatalf("lease not active")
	}
}

func TestHandlerAcceptWrongActor(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doRequest(handler, http.MethodPatch, "/api/v1/leases/lease-1/accept", "user-other", auth.RoleTenant)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.Code)
	}
}

func TestHandlerAcceptConflict(t *testing.T) {
	handler, store := newTestHandler(t)
	store.leases["lease-1"].Status = leasing.LeaseStatusActive

	resp := doRequest(handler, http.MethodPatch, "/api/v1/leases/lease-1/accept", "user-tenant", auth.RoleTenant)
	if resp.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.Code)
	}
}

func TestHandlerNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doRequest(handler, http.MethodPatch, "/api/v1/leases/lease-404/accept", "user-tenant", auth.RoleTenant)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestHandlerTerminate(t *testing.T) {
	handler, store := newTestHandler(t)
	store.leases["lease-1"].Status = leasing.LeaseStatusActive

	resp := doRequest(handler, http.MethodPatch, "/api/v1/leases/lease-1/terminate", "user-landlord", auth.RoleLandlord)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if store.leases["lease-1"].Status != leasing.LeaseStatusTerminated {
		t.Fatalf("lease not terminated")
	}
}

func TestHandlerDetailAccessControl(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doRequest(handler, http.MethodGet, "/api/v1/leases/lease-1", "user-stranger", auth.RoleLandlord)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.Code)
	}

	resp = doRequest(handler, http.MethodGet, "/api/v1/leases/lease-1", "user-tenant", auth.RoleTenant)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	var view map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view["start_date"] != "2024-01-01" {
		t.Fatalf("start_date = %v", view["start_date"])
	}
}

func TestHandlerUnknownRoute(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doRequest(handler, http.MethodPost, "/api/v1/leases/lease-1/archive", "user-tenant", auth.RoleTenant)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}
