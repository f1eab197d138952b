package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	leasing "rental-cloud/internal/leasing/domain"
)

// LeaseRepository persists leases and their schedules.
type LeaseRepository struct {
	db *sql.DB
}

// NewLeaseRepository constructs a repository.
func NewLeaseRepository(db *sql.DB) *LeaseRepository {
	return &LeaseRepository{db: db}
}

// Get loads a lease by id.
func (r *LeaseRepository) Get(ctx context.Context, id string) (*leasing.Lease, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("lease repo: nil db")
	}
	if id == "" {
		return nil, errors.New("lease repo: empty id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, landlord_id, tenant_id, property_id, unit_id, nickname,
	start_date, end_date, rent_amount, due_day, security_deposit,
	status, created_at, updated_at
FROM leases
WHERE id = $1
LIMIT 1`, id)
	return scanLease(row)
}

// ActivateWithSchedule flips a PENDING lease to ACTIVE, inserts the generated
// schedule and marks the unit occupied, all in one transaction. The status
// predicate on the UPDATE is the concurrency gate: a lease another request
// already moved out of PENDING matches zero rows and the whole activation
// rolls back with ErrLeaseNotPending.
func (r *LeaseRepository) ActivateWithSchedule(ctx context.Context, lease *leasing.Lease, payments []leasing.Payment) error {
	if r == nil || r.db == nil {
		return errors.New("lease repo: nil db")
	}
	if lease == nil {
		return errors.New("lease repo: nil lease")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE leases
SET status = $1, updated_at = $2
WHERE id = $3 AND status = $4`,
		leasing.LeaseStatusActive, lease.UpdatedAt, lease.ID, leasing.LeaseStatusPending)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return leasing.ErrLeaseNotPending
	}
	for _, p := range payments {
		_, err := tx.ExecContext(ctx, `
INSERT INTO payments (
	id, lease_id, amount, due_date, payment_type, status, reminder_stage, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			p.ID, p.LeaseID, p.Amount, p.DueDate, p.Type, p.Status, p.ReminderStage, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	_, err = tx.ExecContext(ctx, `
UPDATE units
SET occupied = TRUE, current_lease_id = $1, updated_at = $2
WHERE id = $3`, lease.ID, lease.UpdatedAt, lease.UnitID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// MarkCancelled moves a PENDING lease to CANCELLED.
func (r *LeaseRepository) MarkCancelled(ctx context.Context, lease *leasing.Lease) error {
	if r == nil || r.db == nil {
		return errors.New("lease repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE leases
SET status = $1, updated_at = $2
WHERE id = $3 AND status = $4`,
		leasing.LeaseStatusCancelled, lease.UpdatedAt, lease.ID, leasing.LeaseStatusPending)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return leasing.ErrLeaseNotPending
	}
	return nil
}

// CancelWithCleanup cancels a PENDING lease and removes any PENDING payments
// attached to it in the same transaction. Returns removed payment count.
func (r *LeaseRepository) CancelWithCleanup(ctx context.Context, lease *leasing.Lease) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("lease repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE leases
SET status = $1, updated_at = $2
WHERE id = $3 AND status = $4`,
		leasing.LeaseStatusCancelled, lease.UpdatedAt, lease.ID, leasing.LeaseStatusPending)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return 0, leasing.ErrLeaseNotPending
	}
	deleted, err := tx.ExecContext(ctx, `
DELETE FROM payments
WHERE lease_id = $1 AND status = $2`, lease.ID, leasing.PaymentStatusPending)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	removed, err := deleted.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	return removed, tx.Commit()
}

// TerminateWithReset moves an ACTIVE lease to TERMINATED, writes the (possibly
// backfilled) end date, resets the reminder stage on all still-PENDING
// payments and frees the unit. One transaction. Returns reset payment count.
func (r *LeaseRepository) TerminateWithReset(ctx context.Context, lease *leasing.Lease) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("lease repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE leases
SET status = $1, end_date = $2, updated_at = $3
WHERE id = $4 AND status = $5`,
		leasing.LeaseStatusTerminated, lease.EndDate, lease.UpdatedAt, lease.ID, leasing.LeaseStatusActive)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return 0, leasing.ErrLeaseNotActive
	}
	resetResult, err := tx.ExecContext(ctx, `
UPDATE payments
SET reminder_stage = 0, updated_at = $1
WHERE lease_id = $2 AND status = $3`,
		lease.UpdatedAt, lease.ID, leasing.PaymentStatusPending)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	reset, err := resetResult.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	_, err = tx.ExecContext(ctx, `
UPDATE units
SET occupied = FALSE, current_lease_id = NULL, updated_at = $1
WHERE id = $2 AND current_lease_id = $3`, lease.UpdatedAt, lease.UnitID, lease.ID)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	return reset, tx.Commit()
}

// MarkCompleted moves an ACTIVE lease to COMPLETED and frees the unit.
func (r *LeaseRepository) MarkCompleted(ctx context.Context, lease *leasing.Lease) error {
	if r == nil || r.db == nil {
		return errors.New("lease repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE leases
SET status = $1, updated_at = $2
WHERE id = $3 AND status = $4`,
		leasing.LeaseStatusCompleted, lease.UpdatedAt, lease.ID, leasing.LeaseStatusActive)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return leasing.ErrLeaseNotActive
	}
	_, err = tx.ExecContext(ctx, `
UPDATE units
SET occupied = FALSE, current_lease_id = NULL, updated_at = $1
WHERE id = $2 AND current_lease_id = $3`, lease.UpdatedAt, lease.UnitID, lease.ID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListExpiring lists ACTIVE leases whose end date falls on or before the
// given civil date.
func (r *LeaseRepository) ListExpiring(ctx context.Context, onOrBefore time.Time) ([]leasing.Lease, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("lease repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, landlord_id, tenant_id, property_id, unit_id, nickname,
	start_date, end_date, rent_amount, due_day, security_deposit,
	status, created_at, updated_at
FROM leases
WHERE status = $1 AND end_date IS NOT NULL AND end_date <= $2
ORDER BY end_date ASC`, leasing.LeaseStatusActive, onOrBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leasing.Lease
	for rows.Next() {
		lease, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		if lease != nil {
			result = append(result, *lease)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLease(row rowScanner) (*leasing.Lease, error) {
	var lease leasing.Lease
	var nickname sql.NullString
	var endDate sql.NullTime
	var deposit sql.NullFloat64
	err := row.Scan(
		&lease.ID,
		&lease.LandlordID,
		&lease.TenantID,
		&lease.PropertyID,
		&lease.UnitID,
		&nickname,
		&lease.StartDate,
		&endDate,
		&lease.RentAmount,
		&lease.DueDay,
		&deposit,
		&lease.Status,
		&lease.CreatedAt,
		&lease.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, leasing.ErrLeaseNotFound
		}
		return nil, err
	}
	if nickname.Valid {
		lease.Nickname = nickname.String
	}
	if endDate.Valid {
		end := leasing.DateOf(endDate.Time)
		lease.EndDate = &end
	}
	if deposit.Valid {
		amount := deposit.Float64
		lease.SecurityDeposit = &amount
	}
	lease.StartDate = leasing.DateOf(lease.StartDate)
	lease.CreatedAt = lease.CreatedAt.UTC()
	lease.UpdatedAt = lease.UpdatedAt.UTC()
	return &lease, nil
}
