package application

import (
	"context"
	"errors"
	"log"
	"time"

	leasing "rental-cloud/internal/leasing/domain"
	"rental-cloud/internal/notify"
	"rental-cloud/internal/observability/metrics"
)

// Candidate is one unresolved obligation joined with the lease context the
// notification needs.
type Candidate struct {
	PaymentID     string
	LeaseID       string
	TenantID      string
	PropertyID    string
	UnitID        string
	LeaseNickname string

	Amount        float64
	DueDate       time.Time
	Type          leasing.PaymentType
	ReminderStage int
}

// ReminderStore provides the batch's persistence operations. AdvanceStage is
// the idempotency gate: it must only succeed when the row still holds
// fromStage, so overlapping runs cannot double-advance an obligation.
type ReminderStore interface {
	ListDue(ctx context.Context, today time.Time, upcomingWindowDays int) ([]Candidate, error)
	AdvanceStage(ctx context.Context, paymentID string, fromStage, toStage int, now time.Time) (bool, error)
}

// Summary reports one batch run.
type Summary struct {
	RunDate   string `json:"run_date"`
	Scanned   int    `json:"scanned"`
	Advanced  int    `json:"advanced"`
	Notified  int    `json:"notified"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	StartedAt string `json:"started_at"`
}

// upcomingWindowDays is how many days before the due date the first reminder
// fires.
const upcomingWindowDays = 2

// Batch is the daily reminder staging job.
type Batch struct {
	store    ReminderStore
	notifier notify.Notifier
	logger   *log.Logger
}

// NewBatch constructs the batch.
func NewBatch(store ReminderStore, notifier notify.Notifier, logger *log.Logger) (*Batch, error) {
	if store == nil {
		return nil, errors.New("reminder batch: nil store")
	}
	return &Batch{store: store, notifier: notifier, logger: logger}, nil
}

// Run executes one staging pass for the given civil date. Safe to re-run:
// the conditional stage update makes a repeated pass a no-op per obligation.
// One obligation failing never stops the rest.
func (b *Batch) Run(ctx context.Context, today time.Time) (Summary, error) {
	started := time.Now().UTC()
	today = leasing.DateOf(today)
	summary := Summary{
		RunDate:   today.Format("2006-01-02"),
		StartedAt: started.Format(time.RFC3339),
	}

	candidates, err := b.store.ListDue(ctx, today, upcomingWindowDays)
	if err != nil {
		metrics.ObserveReminderRun(err, time.Since(started))
		return summary, err
	}
	summary.Scanned = len(candidates)

	for _, candidate := range candidates {
		kind, nextStage, ok := resolveTransition(candidate, today)
		if !ok {
			summary.Skipped++
			continue
		}

		advanced, err := b.store.AdvanceStage(ctx, candidate.PaymentID, candidate.ReminderStage, nextStage, started)
		if err != nil {
			summary.Failed++
			if b.logger != nil {
				b.logger.Printf("reminder stage advance payment=%s: %v", candidate.PaymentID, err)
			}
			continue
		}
		if !advanced {
			// Another run got here first.
			summary.Skipped++
			continue
		}
		summary.Advanced++
		metrics.ObserveReminderStageAdvance(kind)

		b.dispatch(ctx, candidate, kind, &summary)
	}

	metrics.ObserveReminderRun(nil, time.Since(started))
	if b.logger != nil {
		b.logger.Printf("reminder run %s: scanned=%d advanced=%d notified=%d skipped=%d failed=%d",
			summary.RunDate, summary.Scanned, summary.Advanced, summary.Notified, summary.Skipped, summary.Failed)
	}
	return summary, nil
}

// resolveTransition maps (stage, dueDate-today) to the next stage. A stage-0
// obligation already due today skips straight to stage 2; the upcoming notice
// window was missed and sending both would be noise.
func resolveTransition(candidate Candidate, today time.Time) (kind string, nextStage int, ok bool) {
	days := leasing.DaysBetween(today, candidate.DueDate)
	switch {
	case candidate.ReminderStage == leasing.ReminderStageNone && days == upcomingWindowDays:
		return notify.KindPaymentDueSoon, leasing.ReminderStageUpcoming, true
	case candidate.ReminderStage == leasing.ReminderStageNone && days == 0:
		return notify.KindPaymentDueToday, leasing.ReminderStageDueToday, true
	case candidate.ReminderStage == leasing.ReminderStageUpcoming && days == 0:
		return notify.KindPaymentDueToday, leasing.ReminderStageDueToday, true
	default:
		return "", 0, false
	}
}

// dispatch sends the notice after the stage is durably advanced. Delivery
// failure is logged and counted, never rolled back: the stage gate records
// the decision to notify, not the delivery.
func (b *Batch) dispatch(ctx context.Context, candidate Candidate, kind string, summary *Summary) {
	if b.notifier == nil {
		return
	}
	body, err := RenderReminder(kind, candidate)
	if err != nil {
		summary.Failed++
		if b.logger != nil {
			b.logger.Printf("reminder render payment=%s: %v", candidate.PaymentID, err)
		}
		return
	}
	err = b.notifier.Notify(ctx, notify.Message{
		RecipientID: candidate.TenantID,
		Kind:        kind,
		Body:        body,
		Metadata: map[string]string{
			"lease_id":    candidate.LeaseID,
			"payment_id":  candidate.PaymentID,
			"property_id": candidate.PropertyID,
			"unit_id":     candidate.UnitID,
			"due_date":    candidate.DueDate.Format("2006-01-02"),
		},
	})
	metrics.ObserveReminderNotify(kind, err)
	if err != nil {
		summary.Failed++
		if b.logger != nil {
			b.logger.Printf("reminder notify payment=%s kind=%s: %v", candidate.PaymentID, kind, err)
		}
		return
	}
	summary.Notified++
}
