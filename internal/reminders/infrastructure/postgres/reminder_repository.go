package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	leasing "rental-cloud/internal/leasing/domain"
	reminderapp "rental-cloud/internal/reminders/application"
)

// ReminderRepository backs the reminder staging batch.
type ReminderRepository struct {
	db *sql.DB
}

// NewReminderRepository constructs a repository.
func NewReminderRepository(db *sql.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// ListDue returns PENDING payments on ACTIVE leases whose due date is today
// or exactly at the upcoming window, with the lease context joined in. The
// batch decides the transition; this query just narrows the scan.
func (r *ReminderRepository) ListDue(ctx context.Context, today time.Time, upcomingWindowDays int) ([]reminderapp.Candidate, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reminder repo: nil db")
	}
	windowDate := leasing.AddDays(today, upcomingWindowDays)
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.lease_id, l.tenant_id, l.property_id, l.unit_id, l.nickname,
	p.amount, p.due_date, p.payment_type, p.reminder_stage
FROM payments p
JOIN leases l ON l.id = p.lease_id
WHERE p.status = $1
	AND l.status = $2
	AND p.reminder_stage < $3
	AND p.due_date IN ($4, $5)
ORDER BY p.due_date ASC, p.id ASC`,
		leasing.PaymentStatusPending, leasing.LeaseStatusActive,
		leasing.ReminderStageDueToday, today, windowDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reminderapp.Candidate
	for rows.Next() {
		var candidate reminderapp.Candidate
		var nickname sql.NullString
		if err := rows.Scan(
			&candidate.PaymentID,
			&candidate.LeaseID,
			&candidate.TenantID,
			&candidate.PropertyID,
			&candidate.UnitID,
			&nickname,
			&candidate.Amount,
			&candidate.DueDate,
			&candidate.Type,
			&candidate.ReminderStage,
		); err != nil {
			return nil, err
		}
		if nickname.Valid {
			candidate.LeaseNickname = nickname.String
		}
		candidate.DueDate = leasing.DateOf(candidate.DueDate)
		result = append(result, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AdvanceStage moves one payment's reminder stage forward. The stage and
// status predicates make the update the concurrency gate: zero rows means a
// concurrent run already advanced (or settled) the row.
func (r *ReminderRepository) AdvanceStage(ctx context.Context, paymentID string, fromStage, toStage int, now time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("reminder repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE payments
SET reminder_stage = $1, updated_at = $2
WHERE id = $3 AND reminder_stage = $4 AND status = $5`,
		toStage, now, paymentID, fromStage, leasing.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
