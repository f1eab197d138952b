package postgres

import (
	"context"
	"database/sql"
	"errors"

	leasing "rental-cloud/internal/leasing/domain"
)

// PaymentRepository reads payment schedules.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository constructs a repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetByID loads a single payment.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*leasing.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	if id == "" {
		return nil, errors.New("payment repo: empty id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, lease_id, amount, due_date, payment_type, status,
	paid_at, method, timing_status, reminder_stage, note, created_at, updated_at
FROM payments
WHERE id = $1
LIMIT 1`, id)
	return scanPayment(row)
}

// ListByLease returns a lease's payments in due-date order.
func (r *PaymentRepository) ListByLease(ctx context.Context, leaseID string) ([]leasing.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	if leaseID == "" {
		return nil, errors.New("payment repo: empty lease id")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, lease_id, amount, due_date, payment_type, status,
	paid_at, method, timing_status, reminder_stage, note, created_at, updated_at
FROM payments
WHERE lease_id = $1
ORDER BY due_date ASC, created_at ASC`, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leasing.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			result = append(result, *payment)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanPayment(row rowScanner) (*leasing.Payment, error) {
	var payment leasing.Payment
	var paidAt sql.NullTime
	var method sql.NullString
	var timing sql.NullString
	var note sql.NullString
	err := row.Scan(
		&payment.ID,
		&payment.LeaseID,
		&payment.Amount,
		&payment.DueDate,
		&payment.Type,
		&payment.Status,
		&paidAt,
		&method,
		&timing,
		&payment.ReminderStage,
		&note,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, leasing.ErrPaymentNotFound
		}
		return nil, err
	}
	if paidAt.Valid {
		at := paidAt.Time.UTC()
		payment.PaidAt = &at
	}
	if method.Valid {
		payment.Method = method.String
	}
	if timing.Valid {
		payment.TimingStatus = leasing.TimingStatus(timing.String)
	}
	if note.Valid {
		payment.Note = note.String
	}
	payment.DueDate = leasing.DateOf(payment.DueDate)
	payment.CreatedAt = payment.CreatedAt.UTC()
	payment.UpdatedAt = payment.UpdatedAt.UTC()
	return &payment, nil
}
