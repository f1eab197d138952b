package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	leasing "rental-cloud/internal/leasing/domain"
	"rental-cloud/internal/notify"
	"rental-cloud/internal/observability/metrics"
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// LeaseStore persists leases and their payment schedules. The multi-row
// methods are single all-or-nothing transactions: a lease must never end up
// ACTIVE without its schedule, or TERMINATED without its stage reset.
type LeaseStore interface {
	Get(ctx context.Context, id string) (*leasing.Lease, error)
	ActivateWithSchedule(ctx context.Context, lease *leasing.Lease, payments []leasing.Payment) error
	MarkCancelled(ctx context.Context, lease *leasing.Lease) error
	CancelWithCleanup(ctx context.Context, lease *leasing.Lease) (int64, error)
	TerminateWithReset(ctx context.Context, lease *leasing.Lease) (int64, error)
	MarkCompleted(ctx context.Context, lease *leasing.Lease) error
	ListExpiring(ctx context.Context, onOrBefore time.Time) ([]leasing.Lease, error)
}

// PaymentStore reads a lease's payment schedule.
type PaymentStore interface {
	ListByLease(ctx context.Context, leaseID string) ([]leasing.Payment, error)
}

// ActivationResult reports a successful lease activation.
type ActivationResult struct {
	LeaseID         string `json:"lease_id"`
	PaymentsCreated int    `json:"payments_created"`
}

// LeaseService handles the lease lifecycle use cases.
type LeaseService struct {
	leases   LeaseStore
	payments PaymentStore
	notifier notify.Notifier
	clock    Clock
	calendar leasing.Calendar
	logger   *log.Logger
}

// ServiceOption customizes the lease service.
type ServiceOption func(*LeaseService)

// WithNotifier assigns a notifier.
func WithNotifier(notifier notify.Notifier) ServiceOption {
	return func(s *LeaseService) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *LeaseService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *LeaseService) {
		s.logger = logger
	}
}

// NewLeaseService constructs the service.
func NewLeaseService(leases LeaseStore, payments PaymentStore, calendar leasing.Calendar, opts ...ServiceOption) (*LeaseService, error) {
	if leases == nil {
		return nil, errors.New("lease service: nil lease store")
	}
	if payments == nil {
		return nil, errors.New("lease service: nil payment store")
	}
	if calendar == nil {
		return nil, errors.New("lease service: nil calendar")
	}
	service := &LeaseService{
		leases:   leases,
		payments: payments,
		calendar: calendar,
		clock:    systemClock{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Get loads a lease.
func (s *LeaseService) Get(ctx context.Context, leaseID string) (*leasing.Lease, error) {
	lease, err := s.leases.Get(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, leasing.ErrLeaseNotFound
	}
	return lease, nil
}

// Payments lists a lease's schedule in due-date order.
func (s *LeaseService) Payments(ctx context.Context, leaseID string) ([]leasing.Payment, error) {
	return s.payments.ListByLease(ctx, leaseID)
}

// Accept is the tenant accept action: it validates the PENDING state,
// generates the full payment schedule and persists both with the ACTIVE flip
// in one transaction.
func (s *LeaseService) Accept(ctx context.Context, leaseID, actorID string) (result *ActivationResult, err error) {
	started := s.clock.Now()
	defer func() {
		metrics.ObserveLeaseTransition("accept", err)
		generated := 0
		if result != nil {
			generated = result.PaymentsCreated
		}
		metrics.ObserveActivation(err, generated, s.clock.Now().Sub(started))
	}()

	lease, err := s.Get(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if actorID != "" && lease.TenantID != actorID {
		return nil, leasing.ErrLeaseActorMismatch
	}

	schedule, err := leasing.BuildSchedule(lease.Terms())
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := lease.Accept(now); err != nil {
		return nil, err
	}

	payments := make([]leasing.Payment, 0, len(schedule))
	for _, item := range schedule {
		payments = append(payments, leasing.Payment{
			ID:            uuid.NewString(),
			LeaseID:       lease.ID,
			Amount:        item.Amount,
			DueDate:       item.DueDate,
			Type:          item.Type,
			Status:        leasing.PaymentStatusPending,
			ReminderStage: leasing.ReminderStageNone,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if err := s.leases.ActivateWithSchedule(ctx, lease, payments); err != nil {
		return nil, err
	}

	s.sendNotice(ctx, lease.LandlordID, notify.KindLeaseAccepted,
		fmt.Sprintf("Lease %s was accepted by the tenant; %d payments scheduled.", lease.ID, len(payments)),
		lease)

	return &ActivationResult{LeaseID: lease.ID, PaymentsCreated: len(payments)}, nil
}

// Reject is the tenant reject action: PENDING becomes CANCELLED. No schedule
// exists yet, so nothing else moves.
func (s *LeaseService) Reject(ctx context.Context, leaseID, actorID string) (err error) {
	defer func() { metrics.ObserveLeaseTransition("reject", err) }()

	lease, err := s.Get(ctx, leaseID)
	if err != nil {
		return err
	}
	if actorID != "" && lease.TenantID != actorID {
		return leasing.ErrLeaseActorMismatch
	}
	if err := lease.Reject(s.clock.Now()); err != nil {
		return err
	}
	if err := s.leases.MarkCancelled(ctx, lease); err != nil {
		return err
	}

	s.sendNotice(ctx, lease.LandlordID, notify.KindLeaseRejected,
		fmt.Sprintf("Lease %s was rejected by the tenant.", lease.ID), lease)
	return nil
}

// Cancel is the landlord cancellation of a PENDING lease. Any PENDING
// payments are deleted in the same transaction as a defensive cleanup.
func (s *LeaseService) Cancel(ctx context.Context, leaseID, actorID string) (err error) {
	defer func() { metrics.ObserveLeaseTransition("cancel", err) }()

	lease, err := s.Get(ctx, leaseID)
	if err != nil {
		return err
	}
	if actorID != "" && lease.LandlordID != actorID {
		return leasing.ErrLeaseActorMismatch
	}
	if err := lease.Reject(s.clock.Now()); err != nil {
		return err
	}
	removed, err := s.leases.CancelWithCleanup(ctx, lease)
	if err != nil {
		return err
	}
	if removed > 0 && s.logger != nil {
		s.logger.Printf("lease %s cancelled with %d pending payments removed", lease.ID, removed)
	}

	s.sendNotice(ctx, lease.TenantID, notify.KindLeaseCancelled,
		fmt.Sprintf("Lease %s was cancelled by the landlord.", lease.ID), lease)
	return nil
}

// Terminate is the landlord early termination of an ACTIVE lease. All
// still-PENDING obligations get their reminder stage reset to zero and the
// end date is backfilled with the termination date.
func (s *LeaseService) Terminate(ctx context.Context, leaseID, actorID string) (err error) {
	defer func() { metrics.ObserveLeaseTransition("terminate", err) }()

	lease, err := s.Get(ctx, leaseID)
	if err != nil {
		return err
	}
	if actorID != "" && lease.LandlordID != actorID {
		return leasing.ErrLeaseActorMismatch
	}
	if err := lease.Terminate(s.clock.Now(), s.calendar.Today()); err != nil {
		return err
	}
	reset, err := s.leases.TerminateWithReset(ctx, lease)
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Printf("lease %s terminated, reminder stage reset on %d pending payments", lease.ID, reset)
	}

	s.sendNotice(ctx, lease.TenantID, notify.KindLeaseTerminated,
		fmt.Sprintf("Lease %s was terminated by the landlord.", lease.ID), lease)
	return nil
}

// CompleteExpired moves ACTIVE leases whose end date has passed to COMPLETED.
// Run by the daily expiry sweep. One lease failing does not stop the sweep.
func (s *LeaseService) CompleteExpired(ctx context.Context) (int, error) {
	today := s.calendar.Today()
	expiring, err := s.leases.ListExpiring(ctx, today)
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range expiring {
		lease := expiring[i]
		if err := lease.Complete(s.clock.Now()); err != nil {
			continue
		}
		if err := s.leases.MarkCompleted(ctx, &lease); err != nil {
			metrics.ObserveLeaseTransition("complete", err)
			if s.logger != nil {
				s.logger.Printf("complete lease %s: %v", lease.ID, err)
			}
			continue
		}
		metrics.ObserveLeaseTransition("complete", nil)
		completed++
		s.sendNotice(ctx, lease.TenantID, notify.KindLeaseCompleted,
			fmt.Sprintf("Lease %s has reached its end date and is now completed.", lease.ID), &lease)
	}
	return completed, nil
}

// sendNotice dispatches fire-and-forget; delivery failure is logged only.
func (s *LeaseService) sendNotice(ctx context.Context, recipientID, kind, body string, lease *leasing.Lease) {
	if s.notifier == nil || recipientID == "" {
		return
	}
	err := s.notifier.Notify(ctx, notify.Message{
		RecipientID: recipientID,
		Kind:        kind,
		Body:        body,
		Metadata: map[string]string{
			"lease_id":    lease.ID,
			"property_id": lease.PropertyID,
			"unit_id":     lease.UnitID,
		},
	})
	if err != nil && s.logger != nil {
		s.logger.Printf("notify %s for lease %s: %v", kind, lease.ID, err)
	}
}
