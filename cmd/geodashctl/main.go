// Package main provides the geodash operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geodashctl",
		Short: "Operate the geodash forecast service",
		Long: `geodashctl runs the forecast engine offline and manages the Postgres
score table. Configuration is read the same way the service reads it:
defaults, .env, GEODASH_CONFIG and GEODASH_* variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newPredictCmd(),
		newImportScoresCmd(),
		newMigrateCmd(),
		newLoadTestCmd(),
	)
	return rootCmd
}
