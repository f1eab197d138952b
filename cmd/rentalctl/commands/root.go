package commands

import (
	"database/sql"
	"errors"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	leasing "rental-cloud/internal/leasing/domain"
)

const dateLayout = "2006-01-02"

func openDB() (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("PG_DSN")
	}
	if dsn == "" {
		return nil, errors.New("DATABASE_URL or PG_DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func civilTimezone() string {
	if tz := os.Getenv("CIVIL_TIMEZONE"); tz != "" {
		return tz
	}
	return leasing.DefaultTimezone
}

// resolveRunDate returns the civil date a batch should run for. An empty
// value means today in the given timezone.
func resolveRunDate(value, timezone string) (time.Time, error) {
	if value != "" {
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			return time.Time{}, errors.New("date must be YYYY-MM-DD")
		}
		return parsed.UTC(), nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	return leasing.DateOf(time.Now().In(loc)), nil
}
