// Package repository persists score tables and computed forecasts in
// PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/scoretable"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/metrics"
)

const (
	selectScoresQuery = `
		SELECT area, zone_index, rooms_en, weighted_score
		FROM weighted_scores
		ORDER BY id`

	upsertScoreQuery = `
		INSERT INTO weighted_scores (area, zone_index, rooms_en, weighted_score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (area, zone_index, rooms_en)
		DO UPDATE SET weighted_score = EXCLUDED.weighted_score`

	insertForecastQuery = `
		INSERT INTO forecasts (
			id, fingerprint, area, zone_index, rooms_en,
			score, mode, request, points, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (id) DO NOTHING`

	countForecastsQuery = `SELECT COUNT(*) FROM forecasts`
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// Postgres reads the score table and records forecasts.
type Postgres struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sqlx.DB, opts ...Option) *Postgres {
	p := &Postgres{db: db, logger: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type scoreRow struct {
	Area  string  `db:"area"`
	Zone  int     `db:"zone_index"`
	Rooms string  `db:"rooms_en"`
	Score float64 `db:"weighted_score"`
}

// Rows returns every score row in insertion order. It makes Postgres a
// scoretable.Source.
func (p *Postgres) Rows(ctx context.Context) ([]scoretable.Row, error) {
	defer observe("select_scores", time.Now())

	var rows []scoreRow
	if err := p.db.SelectContext(ctx, &rows, selectScoresQuery); err != nil {
		return nil, fmt.Errorf("select weighted scores: %w", err)
	}
	out := make([]scoretable.Row, len(rows))
	for i, r := range rows {
		out[i] = scoretable.Row{Key: scoretable.NewKey(r.Area, r.Zone, r.Rooms), Score: r.Score}
	}
	return out, nil
}

// ImportScores upserts rows in one transaction and returns how many were
// written. Within one import the first row for a key wins, matching
// scoretable.New, so a file gives the same baselines from Postgres as from
// CSV. A re-import replaces the stored score of every key it carries.
func (p *Postgres) ImportScores(ctx context.Context, rows []scoretable.Row) (int, error) {
	if len(rows) == 0 {
		return 0, ErrEmptyImport
	}
	defer observe("import_scores", time.Now())

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seen := make(map[scoretable.Key]struct{}, len(rows))
	for i, r := range rows {
		if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
			return 0, fmt.Errorf("%w: row %d has non-finite score", ErrInvalidScore, i+1)
		}
		k := scoretable.NewKey(r.Key.Area, r.Key.Zone, r.Key.Rooms)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, err := tx.ExecContext(ctx, upsertScoreQuery, k.Area, k.Zone, k.Rooms, r.Score); err != nil {
			return 0, fmt.Errorf("upsert score row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	p.logger.Info(ctx, "imported weighted scores",
		logger.Int("rows", len(rows)),
		logger.Int("keys", len(seen)),
		logger.Int("duplicates", len(rows)-len(seen)),
	)
	return len(seen), nil
}

// RecordForecast stores one computed forecast. Records are keyed by ID so a
// retried write is a no-op.
func (p *Postgres) RecordForecast(ctx context.Context, r model.ForecastRecord) error { //nolint:gocritic // hugeParam: matches worker.Recorder
	defer observe("insert_forecast", time.Now())

	request, err := json.Marshal(r.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	points, err := json.Marshal(r.Result.AsSeries())
	if err != nil {
		return fmt.Errorf("marshal forecast: %w", err)
	}

	_, err = p.db.ExecContext(ctx, insertForecastQuery,
		r.ID, r.Fingerprint,
		r.Request.Area, r.Request.ZoneIndex, r.Request.Rooms,
		r.Result.Score, string(r.Result.Mode),
		request, points, r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert forecast %s: %w", r.ID, err)
	}
	return nil
}

// CountForecasts returns the number of recorded forecasts.
func (p *Postgres) CountForecasts(ctx context.Context) (int64, error) {
	defer observe("count_forecasts", time.Now())

	var n int64
	if err := p.db.GetContext(ctx, &n, countForecastsQuery); err != nil {
		return 0, fmt.Errorf("count forecasts: %w", err)
	}
	return n, nil
}

// Ping checks the connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000.0)
}
