package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/http/api"
	app "github.com/Darkwolf007/GeoDashboardApp/internal/app"
	"github.com/Darkwolf007/GeoDashboardApp/internal/config"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
)

func newPredictCmd() *cobra.Command {
	var (
		requestPath string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast one request file without starting the server",
		Long: `Reads a /predict request body from --request (or stdin with "-") and prints
the forecast JSON. The score table, model and pct-change mode come from the
configuration. No cache or recorder is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			return runPredict(cmd.Context(), cfg, predictOpts{
				requestPath: requestPath,
				verbose:     verbose,
				in:          cmd.InOrStdin(),
				out:         cmd.OutOrStdout(),
				errOut:      cmd.ErrOrStderr(),
			})
		},
	}

	cmd.Flags().StringVar(&requestPath, "request", "-", "Path to a request JSON file, or - for stdin")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log engine steps to stderr")

	return cmd
}

type predictOpts struct {
	requestPath string
	verbose     bool
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
}

func runPredict(ctx context.Context, cfg *config.Config, opts predictOpts) error {
	req, err := readRequest(opts.requestPath, opts.in)
	if err != nil {
		return err
	}

	log := logger.Nop()
	if opts.verbose {
		if err := logger.InitWithFormat(opts.errOut, logger.FormatText); err != nil {
			return err
		}
		_ = logger.SetLevelString("debug")
		log = logger.Get()
	}

	// Offline runs never touch the cache or the forecasts table.
	offline := *cfg
	offline.RedisAddr = ""
	offline.RecordForecasts = false
	offline.MigrateOnStart = false

	svc, err := app.NewFromConfig(ctx, &offline, log)
	if err != nil {
		return err
	}
	defer svc.Stop()

	res, err := svc.Forecast(ctx, req)
	if err != nil {
		return fmt.Errorf("forecast: %w", err)
	}

	enc := json.NewEncoder(opts.out)
	enc.SetIndent("", "  ")
	return enc.Encode(types.NewForecastResponse(res))
}

// readRequest reads a request body and parses it the way POST /predict does.
func readRequest(path string, stdin io.Reader) (model.ForecastRequest, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return model.ForecastRequest{}, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return model.ForecastRequest{}, fmt.Errorf("read request: %w", err)
	}
	req, err := api.ParseForecastRequest(body)
	if err != nil {
		return model.ForecastRequest{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
