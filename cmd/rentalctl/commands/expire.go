package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	leaseapp "rental-cloud/internal/leasing/application"
	leasing "rental-cloud/internal/leasing/domain"
	leaserepo "rental-cloud/internal/leasing/infrastructure/postgres"
)

// ExpireCmd completes leases whose end date has passed.
func ExpireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Complete active leases past their end date",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			calendar, err := leasing.NewLocationCalendar(civilTimezone())
			if err != nil {
				return err
			}

			logger := log.New(os.Stderr, "", log.LstdFlags)
			service, err := leaseapp.NewLeaseService(
				leaserepo.NewLeaseRepository(db),
				leaserepo.NewPaymentRepository(db),
				calendar,
				leaseapp.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			completed, err := service.CompleteExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("completed %d leases\n", completed)
			return nil
		},
	}
}
