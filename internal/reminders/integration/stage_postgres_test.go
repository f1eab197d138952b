package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	leasing "rental-cloud/internal/leasing/domain"
	reminderrepo "rental-cloud/internal/reminders/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestAdvanceStageGate_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	for _, table := range []string{"leases", "payments"} {
		if !tableExists(db, table) {
			t.Skipf("missing table %s; run migrations", table)
		}
	}

	ctx := context.Background()
	leaseID := "lease-int-stage-001"
	paymentID := "pay-int-stage-001"
	now := time.Now().UTC()
	today := leasing.DateOf(now)

	_, _ = db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, paymentID)
	_, _ = db.ExecContext(ctx, `DELETE FROM leases WHERE id = $1`, leaseID)

	seedStageFixture(t, ctx, db, leaseID, paymentID, today, now)

	repo := reminderrepo.NewReminderRepository(db)

	candidates, err := repo.ListDue(ctx, today, 2)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	found := false
	for _, candidate := range candidates {
		if candidate.PaymentID == paymentID {
			found = true
			if candidate.ReminderStage != leasing.ReminderStageNone {
				t.Fatalf("candidate stage = %d, want 0", candidate.ReminderStage)
			}
		}
	}
	if !found {
		t.Fatalf("payment %s not in due candidates", paymentID)
	}

	advanced, err := repo.AdvanceStage(ctx, paymentID, leasing.ReminderStageNone, leasing.ReminderStageDueToday, now)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !advanced {
		t.Fatal("first advance reported no rows")
	}

	// The row no longer holds stage 0; a concurrent run must lose the race.
	advanced, err = repo.AdvanceStage(ctx, paymentID, leasing.ReminderStageNone, leasing.ReminderStageDueToday, now)
	if err != nil {
		t.Fatalf("second advance: %v", err)
	}
	if advanced {
		t.Fatal("second advance succeeded, stage gate broken")
	}

	var stage int
	if err := db.QueryRowContext(ctx,
		`SELECT reminder_stage FROM payments WHERE id = $1`, paymentID).Scan(&stage); err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if stage != leasing.ReminderStageDueToday {
		t.Fatalf("stage = %d, want %d", stage, leasing.ReminderStageDueToday)
	}
}

func seedStageFixture(t *testing.T, ctx context.Context, db *sql.DB, leaseID, paymentID string, dueDate, now time.Time) {
	t.Helper()
	_, err := db.ExecContext(ctx, `
INSERT INTO leases (
	id, landlord_id, tenant_id, property_id, unit_id, nickname,
	start_date, rent_amount, due_day, status, created_at, updated_at
) VALUES ($1, 'user-landlord-int', 'user-tenant-int', 'prop-int-001', 'unit-int-001', 'stage flat',
	$2, 10000, 5, $3, $4, $4)`,
		leaseID, leasing.DateOf(now.AddDate(0, -1, 0)), leasing.LeaseStatusActive, now)
	if err != nil {
		t.Fatalf("seed lease: %v", err)
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO payments (
	id, lease_id, amount, due_date, payment_type, status, reminder_stage, created_at, updated_at
) VALUES ($1, $2, 10000, $3, $4, $5, 0, $6, $6)`,
		paymentID, leaseID, dueDate, leasing.PaymentTypeRent, leasing.PaymentStatusPending, now)
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
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
