package main

import (
	"os"

	"github.com/spf13/cobra"
)

const envFile = ".env"

func main() {
	rootCmd := &cobra.Command{
		Use:          "scheduling-api",
		Short:        "Appointment scheduling API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
