package application

import (
	"context"
	"errors"
	"log"

	leasing "rental-cloud/internal/leasing/domain"
	"rental-cloud/internal/observability/metrics"
)

// BehaviorMixed is reported when no single timing status holds a strict
// majority of the settled payments.
const BehaviorMixed = "MIXED"

// TimingCounter counts settled payments per timing status for one lease.
type TimingCounter interface {
	CountTimings(ctx context.Context, leaseID string) (map[leasing.TimingStatus]int, error)
}

// MaintenanceCounter counts maintenance requests filed by a tenant for a unit.
type MaintenanceCounter interface {
	CountRequests(ctx context.Context, tenantID, propertyID, unitID string) (int, error)
}

// LeaseGetter loads one lease.
type LeaseGetter interface {
	Get(ctx context.Context, id string) (*leasing.Lease, error)
}

// BehaviorMetrics summarizes a tenant's realized payment history on a lease.
// All fields are advisory; a nil reliability means no settled payments exist.
type BehaviorMetrics struct {
	PaymentReliability       *float64 `json:"payment_reliability"`
	PaymentBehavior          string   `json:"payment_behavior,omitempty"`
	MaintenanceRequestsCount int      `json:"maintenance_requests_count"`
}

// BehaviorService computes tenant behavioral metrics on demand.
type BehaviorService struct {
	leases      LeaseGetter
	timings     TimingCounter
	maintenance MaintenanceCounter
	logger      *log.Logger
}

// NewBehaviorService constructs the service.
func NewBehaviorService(leases LeaseGetter, timings TimingCounter, maintenance MaintenanceCounter, logger *log.Logger) (*BehaviorService, error) {
	if leases == nil {
		return nil, errors.New("behavior service: nil lease getter")
	}
	if timings == nil {
		return nil, errors.New("behavior service: nil timing counter")
	}
	return &BehaviorService{leases: leases, timings: timings, maintenance: maintenance, logger: logger}, nil
}

// ForLease computes metrics for one lease. Store failures are swallowed into
// a neutral result; metrics must never block the lease-detail view.
func (s *BehaviorService) ForLease(ctx context.Context, leaseID string) BehaviorMetrics {
	result, err := s.compute(ctx, leaseID)
	metrics.ObserveBehaviorQuery(err)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("behavior metrics lease=%s: %v", leaseID, err)
		}
		return BehaviorMetrics{}
	}
	return result
}

func (s *BehaviorService) compute(ctx context.Context, leaseID string) (BehaviorMetrics, error) {
	lease, err := s.leases.Get(ctx, leaseID)
	if err != nil {
		return BehaviorMetrics{}, err
	}
	if lease == nil {
		return BehaviorMetrics{}, leasing.ErrLeaseNotFound
	}

	counts, err := s.timings.CountTimings(ctx, leaseID)
	if err != nil {
		return BehaviorMetrics{}, err
	}

	result := BehaviorMetrics{}
	settled := 0
	for _, count := range counts {
		settled += count
	}
	if settled > 0 {
		reliability := float64(counts[leasing.TimingStatusOnTime]) / float64(settled)
		result.PaymentReliability = &reliability
		result.PaymentBehavior = dominantBehavior(counts)
	}

	if s.maintenance != nil {
		requests, err := s.maintenance.CountRequests(ctx, lease.TenantID, lease.PropertyID, lease.UnitID)
		if err != nil {
			return BehaviorMetrics{}, err
		}
		result.MaintenanceRequestsCount = requests
	}
	return result, nil
}

// dominantBehavior picks the timing status with the strict majority count.
// Ties are MIXED, never broken by recency or ordering.
func dominantBehavior(counts map[leasing.TimingStatus]int) string {
	best := 0
	winners := 0
	var winner leasing.TimingStatus
	for _, status := range []leasing.TimingStatus{leasing.TimingStatusOnTime, leasing.TimingStatusLate, leasing.TimingStatusAdvance} {
		count := counts[status]
		if count == 0 {
			continue
		}
		switch {
		case count > best:
			best = count
			winner = status
			winners = 1
		case count == best:
			winners++
		}
	}
	if winners != 1 {
		return BehaviorMixed
	}
	return string(winner)
}
