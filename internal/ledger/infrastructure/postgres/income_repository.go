package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	ledger "rental-cloud/internal/ledger/domain"
)

// IncomeRepository reads the income ledger. Writes happen inside the
// settlement transaction, not here.
type IncomeRepository struct {
	db *sql.DB
}

// NewIncomeRepository constructs a repository.
func NewIncomeRepository(db *sql.DB) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// MonthlyTotals rolls income up by calendar month and category for a landlord.
func (r *IncomeRepository) MonthlyTotals(ctx context.Context, landlordID string, from, to time.Time) ([]ledger.MonthlyIncome, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("income repo: nil db")
	}
	if landlordID == "" {
		return nil, errors.New("income repo: empty landlord id")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT date_trunc('month', received_on) AS month, category, SUM(amount), COUNT(*)
FROM income_records
WHERE landlord_id = $1 AND received_on >= $2 AND received_on < $3
GROUP BY 1, 2
ORDER BY 1 ASC, 2 ASC`, landlordID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ledger.MonthlyIncome
	for rows.Next() {
		var row ledger.MonthlyIncome
		if err := rows.Scan(&row.Month, &row.Category, &row.Total, &row.Count); err != nil {
			return nil, err
		}
		row.Month = row.Month.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByLandlord returns ledger entries in receive order for exports.
func (r *IncomeRepository) ListByLandlord(ctx context.Context, landlordID string, from, to time.Time) ([]ledger.IncomeRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("income repo: nil db")
	}
	if landlordID == "" {
		return nil, errors.New("income repo: empty landlord id")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, landlord_id, property_id, unit_id, lease_id, payment_id,
	category, amount, description, received_on, created_at
FROM income_records
WHERE landlord_id = $1 AND received_on >= $2 AND received_on < $3
ORDER BY received_on ASC, created_at ASC`, landlordID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ledger.IncomeRecord
	for rows.Next() {
		var record ledger.IncomeRecord
		var description sql.NullString
		if err := rows.Scan(
			&record.ID,
			&record.LandlordID,
			&record.PropertyID,
			&record.UnitID,
			&record.LeaseID,
			&record.PaymentID,
			&record.Category,
			&record.Amount,
			&description,
			&record.ReceivedOn,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		if description.Valid {
			record.Description = description.String
		}
		record.ReceivedOn = record.ReceivedOn.UTC()
		record.CreatedAt = record.CreatedAt.UTC()
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
