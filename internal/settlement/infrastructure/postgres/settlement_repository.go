package postgres

import (
	"context"
	"database/sql"
	"errors"

	ledger "rental-cloud/internal/ledger/domain"
	leasing "rental-cloud/internal/leasing/domain"
)

// SettlementRepository writes the settle-plus-income transaction.
type SettlementRepository struct {
	db *sql.DB
}

// NewSettlementRepository constructs a repository.
func NewSettlementRepository(db *sql.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// SettleWithIncome flips a PENDING payment to PAID and inserts the ledger
// entry in one transaction. The status predicate is the concurrency gate:
// a payment already settled elsewhere matches zero rows and the write rolls
// back with ErrPaymentAlreadyPaid.
func (r *SettlementRepository) SettleWithIncome(ctx context.Context, payment *leasing.Payment, record *ledger.IncomeRecord) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if payment == nil || record == nil {
		return errors.New("settlement repo: nil input")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE payments
SET status = $1, paid_at = $2, method = $3, payment_type = $4, timing_status = $5, note = $6, updated_at = $7
WHERE id = $8 AND status = $9`,
		leasing.PaymentStatusPaid, payment.PaidAt, payment.Method, payment.Type, payment.TimingStatus,
		nullString(payment.Note), payment.UpdatedAt, payment.ID, leasing.PaymentStatusPending)
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
		return leasing.ErrPaymentAlreadyPaid
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO income_records (
	id, landlord_id, property_id, unit_id, lease_id, payment_id,
	category, amount, description, received_on, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		record.ID, record.LandlordID, record.PropertyID, record.UnitID, record.LeaseID, record.PaymentID,
		record.Category, record.Amount, record.Description, record.ReceivedOn, record.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
