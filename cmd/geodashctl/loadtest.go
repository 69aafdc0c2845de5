package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Darkwolf007/GeoDashboardApp/internal/loadtest"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
)

func newLoadTestCmd() *cobra.Command {
	cfg := loadtest.Config{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Send generated forecast requests to a running server and verify them",
		Long: `Generates --unique distinct forecast requests, sends --requests of them
(repeating the distinct ones) through --workers concurrent clients and checks that
every forecast has six consecutive years with positive prices and that repeated
requests get identical answers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.InitWithFormat(cmd.ErrOrStderr(), logger.FormatText); err != nil {
				return err
			}
			stats, err := loadtest.Run(cmd.Context(), &cfg, logger.Named("loadtest"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d requests, %d forecasts, %d error payloads, %d failed in %s\n",
				stats.Sent, stats.Forecasts, stats.ErrorPayload, stats.Failed, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8000", "Base URL of the geodash server")
	cmd.Flags().IntVar(&cfg.NumRequests, "requests", 1000, "Number of requests to send")
	cmd.Flags().IntVar(&cfg.Unique, "unique", 100, "Number of distinct requests")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 8, "Concurrent clients")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "Per-request timeout")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "Request generator seed")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every failed request")

	return cmd
}
