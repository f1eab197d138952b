package leasing

import "time"

// PaymentStatus enumerates the obligation lifecycle. One-way, no un-pay.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// PaymentType classifies an obligation.
type PaymentType string

const (
	PaymentTypeRent       PaymentType = "RENT"
	PaymentTypePrepayment PaymentType = "PREPAYMENT"
	PaymentTypeAdvance    PaymentType = "ADVANCE_PAYMENT"
	PaymentTypePenalty    PaymentType = "PENALTY"
	PaymentTypeAdjustment PaymentType = "ADJUSTMENT"
	PaymentTypeOther      PaymentType = "OTHER"
)

// TimingStatus is the settlement-time classification supplied by the settling
// actor. It is a judgment call, never derived from dates by this engine.
type TimingStatus string

const (
	TimingStatusOnTime  TimingStatus = "ONTIME"
	TimingStatusLate    TimingStatus = "LATE"
	TimingStatusAdvance TimingStatus = "ADVANCE"
)

// Reminder stages. The stage only moves forward; it is the idempotency gate
// for the staging batch.
const (
	ReminderStageNone     = 0
	ReminderStageUpcoming = 1
	ReminderStageDueToday = 2
)

// Payment is one scheduled or settled charge tied to a lease.
type Payment struct {
	ID      string
	LeaseID string

	Amount  float64
	DueDate time.Time
	Type    PaymentType

	Status        PaymentStatus
	PaidAt        *time.Time
	Method        string
	TimingStatus  TimingStatus
	ReminderStage int
	Note          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidPaymentType reports whether the value is a known payment type.
func ValidPaymentType(value PaymentType) bool {
	switch value {
	case PaymentTypeRent, PaymentTypePrepayment, PaymentTypeAdvance,
		PaymentTypePenalty, PaymentTypeAdjustment, PaymentTypeOther:
		return true
	default:
		return false
	}
}

// ValidTimingStatus reports whether the value is a known timing status.
func ValidTimingStatus(value TimingStatus) bool {
	switch value {
	case TimingStatusOnTime, TimingStatusLate, TimingStatusAdvance:
		return true
	default:
		return false
	}
}

// SettlementDetails carries the actor-supplied facts attached when a payment
// is marked paid.
type SettlementDetails struct {
	PaidAt       time.Time
	Method       string
	Type         PaymentType
	TimingStatus TimingStatus
	Note         string
}

// Validate checks the details are complete and well-formed.
func (d SettlementDetails) Validate() error {
	if d.PaidAt.IsZero() || d.Method == "" {
		return ErrInvalidSettlement
	}
	if !ValidPaymentType(d.Type) {
		return ErrInvalidSettlement
	}
	if !ValidTimingStatus(d.TimingStatus) {
		return ErrInvalidSettlement
	}
	return nil
}

// Settle applies the one-way PENDING to PAID transition.
func (p *Payment) Settle(details SettlementDetails, now time.Time) error {
	if err := details.Validate(); err != nil {
		return err
	}
	if p.Status != PaymentStatusPending {
		return ErrPaymentAlreadyPaid
	}
	paidAt := details.PaidAt
	p.Status = PaymentStatusPaid
	p.PaidAt = &paidAt
	p.Method = details.Method
	p.Type = details.Type
	p.TimingStatus = details.TimingStatus
	if details.Note != "" {
		p.Note = details.Note
	}
	p.UpdatedAt = now
	return nil
}
