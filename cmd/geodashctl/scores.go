package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/repository"
	app "github.com/Darkwolf007/GeoDashboardApp/internal/app"
	"github.com/Darkwolf007/GeoDashboardApp/internal/config"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/scoretable"
)

func newImportScoresCmd() *cobra.Command {
	var (
		source string
		dsn    string
	)

	cmd := &cobra.Command{
		Use:   "import-scores",
		Short: "Load a weighted score CSV into Postgres",
		Long: `Migrates the database, then upserts every row of the CSV at --source
(a local path, s3://bucket/key or gs://bucket/key) into weighted_scores.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithDSN(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			if source == "" {
				source = cfg.ScoreTableURI
			}
			return runImportScores(cmd.Context(), cfg, source, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Score CSV location (default: score_table_uri)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (default: postgres_dsn)")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithDSN(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			db, err := repository.Open(cmd.Context(), cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repository.Migrate(db.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (default: postgres_dsn)")

	return cmd
}

// loadConfigWithDSN loads the configuration and lets a --dsn flag win.
func loadConfigWithDSN(ctx context.Context, dsn string) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if dsn != "" {
		cfg.PostgresDSN = dsn
	}
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("%w: a Postgres DSN is required (--dsn or postgres_dsn)", config.ErrInvalidConfig)
	}
	return cfg, nil
}

func runImportScores(ctx context.Context, cfg *config.Config, source string, out io.Writer) error {
	rows, err := scoretable.NewCSVSource(app.NewArtifactRouter(cfg).Opener(source)).Rows(ctx)
	if err != nil {
		return err
	}

	db, err := repository.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	repo := repository.NewPostgres(db)
	defer repo.Close()

	if err := repository.Migrate(db.DB); err != nil {
		return err
	}
	n, err := repo.ImportScores(ctx, rows)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d score rows from %s\n", n, source)
	return nil
}
