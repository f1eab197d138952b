package postgres

import (
	"context"
	"database/sql"
	"errors"
)

// RequestRepository counts maintenance requests for behavioral metrics. The
// maintenance workflow itself (filing, triage) lives in the CRUD layer.
type RequestRepository struct {
	db *sql.DB
}

// NewRequestRepository constructs a repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// CountRequests counts requests filed by a tenant for a property/unit.
func (r *RequestRepository) CountRequests(ctx context.Context, tenantID, propertyID, unitID string) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("maintenance repo: nil db")
	}
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM maintenance_requests
WHERE tenant_id = $1 AND property_id = $2 AND unit_id = $3`,
		tenantID, propertyID, unitID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
