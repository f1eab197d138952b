package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"rental-cloud/internal/notify"
	reminderapp "rental-cloud/internal/reminders/application"
	reminderrepo "rental-cloud/internal/reminders/infrastructure/postgres"
)

// RemindCmd runs one reminder staging pass. The pass is idempotent, so
// re-running it for the same date only sends what a prior run missed.
func RemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the daily payment reminder batch once",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			webhook, _ := cmd.Flags().GetString("webhook")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			runDate, err := resolveRunDate(date, civilTimezone())
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			logger := log.New(os.Stderr, "", log.LstdFlags)
			var notifier notify.Notifier = notify.NewLogNotifier(logger)
			if webhook == "" {
				webhook = os.Getenv("NOTIFY_WEBHOOK_URL")
			}
			if webhook != "" && !dryRun {
				notifier = notify.NewMultiNotifier(notify.NewWebhookNotifier(webhook), notifier)
			}

			batch, err := reminderapp.NewBatch(reminderrepo.NewReminderRepository(db), notifier, logger)
			if err != nil {
				return err
			}
			summary, err := batch.Run(cmd.Context(), runDate)
			if err != nil {
				return err
			}
			fmt.Printf("run %s: scanned=%d advanced=%d notified=%d skipped=%d failed=%d\n",
				summary.RunDate, summary.Scanned, summary.Advanced, summary.Notified, summary.Skipped, summary.Failed)
			return nil
		},
	}

	cmd.Flags().String("date", "", "Civil date to run for (YYYY-MM-DD, default today)")
	cmd.Flags().String("webhook", "", "Webhook URL for notifications (default NOTIFY_WEBHOOK_URL)")
	cmd.Flags().Bool("dry-run", false, "Log notifications instead of delivering them")

	return cmd
}
