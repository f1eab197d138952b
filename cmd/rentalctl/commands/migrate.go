package commands

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// MigrateCmd applies SQL migrations in lexical order, tracking applied
// versions in schema_migrations.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL
)`); err != nil {
				return fmt.Errorf("ensure schema_migrations: %w", err)
			}

			applied, err := appliedVersions(db)
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(entries))
			for _, entry := range entries {
				if !entry.IsDir() {
					names = append(names, entry.Name())
				}
			}

			pending := pendingMigrations(names, applied)
			if len(pending) == 0 {
				fmt.Println("no pending migrations")
				return nil
			}

			for _, name := range pending {
				data, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					return err
				}
				tx, err := db.Begin()
				if err != nil {
					return err
				}
				if _, err := tx.Exec(string(data)); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("apply %s: %w", name, err)
				}
				if _, err := tx.Exec(
					`INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`,
					name, time.Now().UTC()); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("record %s: %w", name, err)
				}
				if err := tx.Commit(); err != nil {
					return err
				}
				fmt.Printf("applied %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().String("dir", "migrations", "Directory containing .sql migration files")

	return cmd
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// pendingMigrations filters to unapplied .sql files in lexical order.
func pendingMigrations(names []string, applied map[string]bool) []string {
	pending := make([]string, 0, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		if applied[name] {
			continue
		}
		pending = append(pending, name)
	}
	sort.Strings(pending)
	return pending
}
