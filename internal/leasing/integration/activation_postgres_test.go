package integration_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	leasing "rental-cloud/internal/leasing/domain"
	leaserepo "rental-cloud/internal/leasing/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestActivationGate_Postgres(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	ctx := context.Background()
	leaseID := "lease-int-act-001"
	unitID := "unit-int-act-001"

	cleanupLease(ctx, db, leaseID, unitID)
	seedUnit(t, ctx, db, unitID)
	seedLease(t, ctx, db, leaseID, unitID, leasing.LeaseStatusPending)

	repo := leaserepo.NewLeaseRepository(db)
	lease, err := repo.Get(ctx, leaseID)
	if err != nil {
		t.Fatalf("get lease: %v", err)
	}

	schedule, err := leasing.BuildSchedule(lease.Terms())
	if err != nil {
		t.Fatalf("build schedule: %v", err)
	}
	now := time.Now().UTC()
	payments := make([]leasing.Payment, 0, len(schedule))
	for i, item := range schedule {
		payments = append(payments, leasing.Payment{
			ID:        leaseID + "-pay-" + string(rune('a'+i)),
			LeaseID:   leaseID,
			Amount:    item.Amount,
			DueDate:   item.DueDate,
			Type:      item.Type,
			Status:    leasing.PaymentStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	lease.Status = leasing.LeaseStatusActive
	lease.UpdatedAt = now

	if err := repo.ActivateWithSchedule(ctx, lease, payments); err != nil {
		t.Fatalf("activate: %v", err)
	}

	// Second activation must hit the status predicate and roll back.
	err = repo.ActivateWithSchedule(ctx, lease, payments)
	if !errors.Is(err, leasing.ErrLeaseNotPending) {
		t.Fatalf("second activation: got %v, want ErrLeaseNotPending", err)
	}

	var paymentCount int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE lease_id = $1`, leaseID).Scan(&paymentCount); err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if paymentCount != len(payments) {
		t.Fatalf("payment count = %d, want %d", paymentCount, len(payments))
	}

	var occupied bool
	var currentLease sql.NullString
	if err := db.QueryRowContext(ctx,
		`SELECT occupied, current_lease_id FROM units WHERE id = $1`, unitID).Scan(&occupied, &currentLease); err != nil {
		t.Fatalf("load unit: %v", err)
	}
	if !occupied || !currentLease.Valid || currentLease.String != leaseID {
		t.Fatalf("unit not occupied by lease: occupied=%v current=%v", occupied, currentLease)
	}
}

func TestTerminateResetsReminderStages_Postgres(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	ctx := context.Background()
	leaseID := "lease-int-term-001"
	unitID := "unit-int-term-001"

	cleanupLease(ctx, db, leaseID, unitID)
	seedUnit(t, ctx, db, unitID)
	seedLease(t, ctx, db, leaseID, unitID, leasing.LeaseStatusActive)

	now := time.Now().UTC()
	for i, stage := range []int{1, 2, 0} {
		seedPayment(t, ctx, db, leaseID+"-pay-"+string(rune('a'+i)), leaseID, stage, leasing.PaymentStatusPending, now)
	}
	seedPayment(t, ctx, db, leaseID+"-pay-paid", leaseID, 2, leasing.PaymentStatusPaid, now)

	repo := leaserepo.NewLeaseRepository(db)
	lease, err := repo.Get(ctx, leaseID)
	if err != nil {
		t.Fatalf("get lease: %v", err)
	}
	end := leasing.DateOf(now)
	lease.EndDate = &end
	lease.UpdatedAt = now

	reset, err := repo.TerminateWithReset(ctx, lease)
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if reset != 3 {
		t.Fatalf("reset = %d, want 3 pending payments", reset)
	}

	var stale int
	if err := db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM payments
WHERE lease_id = $1 AND status = $2 AND reminder_stage <> 0`,
		leaseID, leasing.PaymentStatusPending).Scan(&stale); err != nil {
		t.Fatalf("count stale stages: %v", err)
	}
	if stale != 0 {
		t.Fatalf("pending payments with non-zero stage after terminate: %d", stale)
	}

	var occupied bool
	if err := db.QueryRowContext(ctx,
		`SELECT occupied FROM units WHERE id = $1`, unitID).Scan(&occupied); err != nil {
		t.Fatalf("load unit: %v", err)
	}
	if occupied {
		t.Fatal("unit still occupied after terminate")
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, table := range []string{"leases", "payments", "units"} {
		if !tableExists(db, table) {
			db.Close()
			t.Skipf("missing table %s; run migrations", table)
		}
	}
	return db
}

func tableExists(db *sql.DB, table string) bool {
	var exists bool
	err := db.QueryRow(`
SELECT EXISTS (
	SELECT 1
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name = $1
)`, table).Scan(&exists)
	if err != nil {
		return false
	}
	return exists
}

func cleanupLease(ctx context.Context, db *sql.DB, leaseID, unitID string) {
	_, _ = db.ExecContext(ctx, `DELETE FROM payments WHERE lease_id = $1`, leaseID)
	_, _ = db.ExecContext(ctx, `DELETE FROM leases WHERE id = $1`, leaseID)
	_, _ = db.ExecContext(ctx, `DELETE FROM units WHERE id = $1`, unitID)
}

func seedUnit(t *testing.T, ctx context.Context, db *sql.DB, unitID string) {
	t.Helper()
	_, err := db.ExecContext(ctx, `
INSERT INTO units (id, property_id, occupied)
VALUES ($1, 'prop-int-001', FALSE)`, unitID)
	if err != nil {
		t.Fatalf("seed unit: %v", err)
	}
}

func seedLease(t *testing.T, ctx context.Context, db *sql.DB, leaseID, unitID string, status leasing.LeaseStatus) {
	t.Helper()
	now := time.Now().UTC()
	start := leasing.DateOf(now.AddDate(0, -1, 0))
	end := leasing.DateOf(now.AddDate(0, 2, 0))
	_, err := db.ExecContext(ctx, `
INSERT INTO leases (
	id, landlord_id, tenant_id, property_id, unit_id, nickname,
	start_date, end_date, rent_amount, due_day, status, created_at, updated_at
) VALUES ($1, 'user-landlord-int', 'user-tenant-int', 'prop-int-001', $2, 'integration flat',
	$3, $4, 10000, 5, $5, $6, $6)`,
		leaseID, unitID, start, end, status, now)
	if err != nil {
		t.Fatalf("seed lease: %v", err)
	}
}

func seedPayment(t *testing.T, ctx context.Context, db *sql.DB, paymentID, leaseID string, stage int, status leasing.PaymentStatus, now time.Time) {
	t.Helper()
	_, err := db.ExecContext(ctx, `
INSERT INTO payments (
	id, lease_id, amount, due_date, payment_type, status, reminder_stage, created_at, updated_at
) VALUES ($1, $2, 10000, $3, $4, $5, $6, $7, $7)`,
		paymentID, leaseID, leasing.DateOf(now), leasing.PaymentTypeRent, status, stage, now)
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
}
