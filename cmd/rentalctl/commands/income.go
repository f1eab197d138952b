package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	ledgerrepo "rental-cloud/internal/ledger/infrastructure/postgres"
	ledgerif "rental-cloud/internal/ledger/interfaces"
)

// IncomeCmd exports a landlord's income records to CSV or XLSX.
func IncomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Export income records for a landlord",
		RunE: func(cmd *cobra.Command, args []string) error {
			landlordID, _ := cmd.Flags().GetString("landlord")
			fromStr, _ := cmd.Flags().GetString("from")
			toStr, _ := cmd.Flags().GetString("to")
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			from, to, err := parseExportRange(fromStr, toStr)
			if err != nil {
				return err
			}
			if landlordID == "" {
				return errors.New("--landlord is required")
			}
			if format != "csv" && format != "xlsx" {
				return errors.New("--format must be csv or xlsx")
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			incomes := ledgerrepo.NewIncomeRepository(db)
			records, err := incomes.ListByLandlord(cmd.Context(), landlordID, from, to)
			if err != nil {
				return err
			}

			var data []byte
			if format == "xlsx" {
				monthly, err := incomes.MonthlyTotals(cmd.Context(), landlordID, from, to)
				if err != nil {
					return err
				}
				data, err = ledgerif.BuildIncomeXLSX(records, monthly)
				if err != nil {
					return err
				}
			} else {
				data, err = ledgerif.BuildIncomeCSV(records)
				if err != nil {
					return err
				}
			}

			if out == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d records to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().String("landlord", "", "Landlord user ID")
	cmd.Flags().String("from", "", "Start date inclusive (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "End date exclusive (YYYY-MM-DD)")
	cmd.Flags().String("format", "csv", "Export format: csv or xlsx")
	cmd.Flags().String("out", "", "Output file (default stdout)")

	return cmd
}

// parseExportRange validates the export window.
func parseExportRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errors.New("--from and --to are required")
	}
	from, err = time.Parse(dateLayout, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("--from must be YYYY-MM-DD")
	}
	to, err = time.Parse(dateLayout, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("--to must be YYYY-MM-DD")
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("--to must be after --from")
	}
	return from.UTC(), to.UTC(), nil
}
