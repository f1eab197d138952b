package postgres

import (
	"context"
	"database/sql"
	"errors"

	leasing "rental-cloud/internal/leasing/domain"
)

// BehaviorRepository reads the settled payment history for metrics queries.
type BehaviorRepository struct {
	db *sql.DB
}

// NewBehaviorRepository constructs a repository.
func NewBehaviorRepository(db *sql.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// CountTimings counts a lease's PAID payments grouped by timing status.
func (r *BehaviorRepository) CountTimings(ctx context.Context, leaseID string) (map[leasing.TimingStatus]int, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("behavior repo: nil db")
	}
	if leaseID == "" {
		return nil, errors.New("behavior repo: empty lease id")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT timing_status, COUNT(*)
FROM payments
WHERE lease_id = $1 AND status = $2 AND timing_status IS NOT NULL
GROUP BY timing_status`, leaseID, leasing.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[leasing.TimingStatus]int)
	for rows.Next() {
		var status leasing.TimingStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
