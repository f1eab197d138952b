package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	ledger "rental-cloud/internal/ledger/domain"
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

// PaymentGetter loads one payment.
type PaymentGetter interface {
	GetByID(ctx context.Context, id string) (*leasing.Payment, error)
}

// LeaseGetter loads one lease.
type LeaseGetter interface {
	Get(ctx context.Context, id string) (*leasing.Lease, error)
}

// SettlementStore persists the settle-plus-ledger write. Both rows land in
// one transaction; a payment that is no longer PENDING aborts the whole
// write with ErrPaymentAlreadyPaid.
type SettlementStore interface {
	SettleWithIncome(ctx context.Context, payment *leasing.Payment, record *ledger.IncomeRecord) error
}

// SettlementResult reports a completed settlement.
type SettlementResult struct {
	PaymentID      string  `json:"payment_id"`
	IncomeRecordID string  `json:"income_record_id"`
	Category       string  `json:"category"`
	Amount         float64 `json:"amount"`
}

// SettlementService marks payments paid and books the matching income.
type SettlementService struct {
	payments PaymentGetter
	leases   LeaseGetter
	store    SettlementStore
	notifier notify.Notifier
	clock    Clock
	logger   *log.Logger
}

// ServiceOption customizes the settlement service.
type ServiceOption func(*SettlementService)

// WithNotifier assigns a notifier.
func WithNotifier(notifier notify.Notifier) ServiceOption {
	return func(s *SettlementService) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *SettlementService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *SettlementService) {
		s.logger = logger
	}
}

// NewSettlementService constructs the service.
func NewSettlementService(payments PaymentGetter, leases LeaseGetter, store SettlementStore, opts ...ServiceOption) (*SettlementService, error) {
	if payments == nil {
		return nil, errors.New("settlement service: nil payment getter")
	}
	if leases == nil {
		return nil, errors.New("settlement service: nil lease getter")
	}
	if store == nil {
		return nil, errors.New("settlement service: nil store")
	}
	service := &SettlementService{
		payments: payments,
		leases:   leases,
		store:    store,
		clock:    systemClock{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Settle marks one payment PAID and books the income record atomically. The
// acting landlord must own the lease the payment belongs to.
func (s *SettlementService) Settle(ctx context.Context, paymentID, actorID string, details leasing.SettlementDetails) (result *SettlementResult, err error) {
	started := s.clock.Now()
	defer func() { metrics.ObserveSettlement(err, s.clock.Now().Sub(started)) }()

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, leasing.ErrPaymentNotFound
	}
	lease, err := s.leases.Get(ctx, payment.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, leasing.ErrLeaseNotFound
	}
	if actorID != "" && lease.LandlordID != actorID {
		return nil, leasing.ErrLeaseActorMismatch
	}

	now := s.clock.Now()
	if err := payment.Settle(details, now); err != nil {
		return nil, err
	}

	record := &ledger.IncomeRecord{
		ID:          uuid.NewString(),
		LandlordID:  lease.LandlordID,
		PropertyID:  lease.PropertyID,
		UnitID:      lease.UnitID,
		LeaseID:     lease.ID,
		PaymentID:   payment.ID,
		Category:    ledger.DeriveCategory(payment.Type),
		Amount:      payment.Amount,
		Description: fmt.Sprintf("%s payment via %s", payment.Type, payment.Method),
		ReceivedOn:  leasing.DateOf(details.PaidAt),
		CreatedAt:   now,
	}
	if err := s.store.SettleWithIncome(ctx, payment, record); err != nil {
		return nil, err
	}

	s.sendNotice(ctx, lease, payment)

	return &SettlementResult{
		PaymentID:      payment.ID,
		IncomeRecordID: record.ID,
		Category:       string(record.Category),
		Amount:         record.Amount,
	}, nil
}

func (s *SettlementService) sendNotice(ctx context.Context, lease *leasing.Lease, payment *leasing.Payment) {
	if s.notifier == nil || lease.TenantID == "" {
		return
	}
	err := s.notifier.Notify(ctx, notify.Message{
		RecipientID: lease.TenantID,
		Kind:        notify.KindPaymentSettled,
		Body:        fmt.Sprintf("Your %s payment of %.2f has been recorded.", payment.Type, payment.Amount),
		Metadata: map[string]string{
			"lease_id":   lease.ID,
			"payment_id": payment.ID,
		},
	})
	if err != nil && s.logger != nil {
		s.logger.Printf("notify settled for payment %s: %v", payment.ID, err)
	}
}
