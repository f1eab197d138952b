package application

import (
	"context"
	"errors"
	"testing"

	leasing "rental-cloud/internal/leasing/domain"
)

type stubLeases struct {
	lease *leasing.Lease
	err   error
}

func (s *stubLeases) Get(context.Context, string) (*leasing.Lease, error) {
	return s.lease, s.err
}

type stubTimings struct {
	counts map[leasing.TimingStatus]int
	err    error
}

func (s *stubTimings) CountTimings(context.Context, string) (map[leasing.TimingStatus]int, error) {
	return s.counts, s.err
}

type stubMaintenance struct {
	count int
	err   error
}

func (s *stubMaintenance) CountRequests(context.Context, string, string, string) (int, error) {
	return s.count, s.err
}

func activeLease() *leasing.Lease {
	return &leasing.Lease{
		ID:         "lease-1",
		TenantID:   "user-tenant",
		PropertyID: "prop-1",
		UnitID:     "unit-1",
		Status:     leasing.LeaseStatusActive,
	}
}

func newService(t *testing.T, timings *stubTimings, maintenance *stubMaintenance) *BehaviorService {
	t.Helper()
	svc, err := NewBehaviorService(&stubLeases{lease: activeLease()}, timings, maintenance, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestBehaviorMetrics(t *testing.T) {
	cases := []struct {
		name            string
		counts          map[leasing.TimingStatus]int
		wantReliability float64
		wantBehavior    string
	}{
		{
			name:            "clear majority",
			counts:          map[leasing.TimingStatus]int{leasing.TimingStatusOnTime: 3, leasing.TimingStatusLate: 1},
			wantReliability: 0.75,
			wantBehavior:    "ONTIME",
		},
		{
			name:            "two way tie",
			counts:          map[leasing.TimingStatus]int{leasing.TimingStatusOnTime: 2, leasing.TimingStatusLate: 2},
			wantReliability: 0.5,
			wantBehavior:    BehaviorMixed,
		},
		{
			name:            "three way tie",
			counts:          map[leasing.TimingStatus]int{leasing.TimingStatusOnTime: 1, leasing.TimingStatusLate: 1, leasing.TimingStatusAdvance: 1},
			wantReliability: 1.0 / 3.0,
			wantBehavior:    BehaviorMixed,
		},
		{
			name:            "all late",
			counts:          map[leasing.TimingStatus]int{leasing.TimingStatusLate: 4},
			wantReliability: 0,
			wantBehavior:    "LATE",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(t, &stubTimings{counts: tc.counts}, &stubMaintenance{count: 2})
			got := svc.ForLease(context.Background(), "lease-1")
			if got.PaymentReliability == nil {
				t.Fatalf("reliability is nil")
			}
			if diff := *got.PaymentReliability - tc.wantReliability; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("reliability = %v, want %v", *got.PaymentReliability, tc.wantReliability)
			}
			if got.PaymentBehavior != tc.wantBehavior {
				t.Fatalf("behavior = %s, want %s", got.PaymentBehavior, tc.wantBehavior)
			}
			if got.MaintenanceRequestsCount != 2 {
				t.Fatalf("maintenance count = %d", got.MaintenanceRequestsCount)
			}
		})
	}
}

func TestBehaviorNoSettledPayments(t *testing.T) {
	svc := newService(t, &stubTimings{counts: map[leasing.TimingStatus]int{}}, &stubMaintenance{count: 1})
	got := svc.ForLease(context.Background(), "lease-1")
	if got.PaymentReliability != nil {
		t.Fatalf("reliability = %v, want nil", *got.PaymentReliability)
	}
	if got.PaymentBehavior != "" {
		t.Fatalf("behavior = %s, want empty", got.PaymentBehavior)
	}
	if got.MaintenanceRequestsCount != 1 {
		t.Fatalf("maintenance count = %d", got.MaintenanceRequestsCount)
	}
}

func TestBehaviorQueryFailureYieldsNeutralResult(t *testing.T) {
	svc := newService(t, &stubTimings{err: errors.New("db down")}, &stubMaintenance{})
	got := svc.ForLease(context.Background(), "lease-1")
	if got.PaymentReliability != nil || got.PaymentBehavior != "" || got.MaintenanceRequestsCount != 0 {
		t.Fatalf("expected neutral result, got %+v", got)
	}
}

func TestBehaviorMaintenanceFailureYieldsNeutralResult(t *testing.T) {
	timings := &stubTimings{counts: map[leasing.TimingStatus]int{leasing.TimingStatusOnTime: 2}}
	svc := newService(t, timings, &stubMaintenance{err: errors.New("db down")})
	got := svc.ForLease(context.Background(), "lease-1")
	if got.PaymentReliability != nil {
		t.Fatalf("expected neutral result, got %+v", got)
	}
}
