package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/licentry/licentry/internal/interfaces/cli/migrate"
	"github.com/licentry/licentry/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "licentry",
		Short: "Licentry - license entitlement and verification service",
		Long:  `Licentry issues purchase-code licenses, verifies them against domain bindings, and keeps an append-only verification trail.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
