package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rental-cloud/cmd/rentalctl/commands"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rentalctl",
		Short: "Operations tool for the rental platform",
	}

	rootCmd.AddCommand(
		commands.MigrateCmd(),
		commands.RemindCmd(),
		commands.ExpireCmd(),
		commands.IncomeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
