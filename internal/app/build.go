package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/artifact"
	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/cache"
	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/mlclient"
	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/overpass"
	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/repository"
	"github.com/Darkwolf007/GeoDashboardApp/internal/config"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/amenity"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/forecast"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/predictor"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/scoretable"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/metrics"
)

const probeTimeout = 5 * time.Second

// NewFromConfig wires every component named by cfg into a Service. Only the
// score table is mandatory: a model or cache that cannot be reached is logged
// and left out.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	router := NewArtifactRouter(cfg)

	var (
		closers []io.Closer
		repo    *repository.Postgres
	)
	fail := func(err error) (*Service, error) {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}

	if cfg.PostgresDSN != "" {
		db, err := repository.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return fail(err)
		}
		repo = repository.NewPostgres(db, repository.WithLogger(log.Named("repository")))
		closers = append(closers, repo)
		if cfg.MigrateOnStart {
			if err := repository.Migrate(db.DB); err != nil {
				return fail(err)
			}
			log.Info(ctx, "database migrations applied")
		}
	}

	var src scoretable.Source
	switch cfg.ScoreTableSource {
	case config.SourcePostgres:
		if repo == nil {
			return fail(fmt.Errorf("%w: postgres score source needs postgres_dsn", config.ErrInvalidConfig))
		}
		src = repo
	default:
		src = scoretable.NewCSVSource(router.Opener(cfg.ScoreTableURI))
	}
	table, err := scoretable.Load(ctx, src)
	if err != nil {
		return fail(fmt.Errorf("load score table: %w", err))
	}
	metrics.UpdateScoreTableRows(table.Len())
	log.Info(ctx, "score table loaded",
		logger.String("source", cfg.ScoreTableSource),
		logger.Int("rows", table.Len()),
	)

	pred := SelectPredictor(ctx, cfg, router, log)

	engine := forecast.NewEngine(
		forecast.WithScoreTable(table),
		forecast.WithAdjuster(amenity.NewAdjuster(amenity.WithWeights(cfg.AmenityWeights))),
		forecast.WithPredictor(pred),
		forecast.WithPctChangePolicy(PctChangePolicy(cfg.PctChangeMode)),
		forecast.WithLogger(log.Named("engine")),
	)
	metrics.UpdatePredictorMode(string(engine.Mode()))

	opts := []Option{
		WithEngine(engine),
		WithScoreTable(table),
		WithPctChangeMode(cfg.PctChangeMode),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.RecordQueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithLogger(log.Named("service")),
	}

	if cfg.RedisAddr != "" {
		c := cache.NewRedis(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      time.Duration(cfg.CacheTTLSeconds) * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		if err := c.Ping(pingCtx); err != nil {
			log.Warn(ctx, "forecast cache unreachable, continuing without it", logger.Error(err))
			_ = c.Close()
		} else {
			closers = append(closers, c)
			opts = append(opts, WithCache(c))
		}
		cancel()
	}

	if cfg.OverpassURL != "" {
		opts = append(opts, WithAmenityFinder(
			overpass.NewClient(cfg.OverpassURL, time.Duration(cfg.OverpassTimeoutMS)*time.Millisecond),
		))
	}

	if cfg.RecordForecasts && repo != nil {
		opts = append(opts, WithRecorder(repo))
	}

	opts = append(opts, WithClosers(closers...))
	return New(opts...), nil
}

// NewArtifactRouter returns a router for local, s3:// and gs:// artifacts.
func NewArtifactRouter(cfg *config.Config) *artifact.Router {
	return artifact.NewRouter(
		artifact.WithS3(artifact.S3Config{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint}),
		artifact.WithGCS(),
	)
}

// SelectPredictor picks the regression model. A remote model URL takes
// precedence over a model artifact. A model that cannot be reached or loaded
// leaves the process in fallback mode for its whole lifetime.
func SelectPredictor(ctx context.Context, cfg *config.Config, router *artifact.Router, log logger.Logger) predictor.Predictor {
	switch {
	case cfg.ModelURL != "":
		remote := mlclient.New(cfg.ModelURL, time.Duration(cfg.ModelTimeoutMS)*time.Millisecond)
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		if err := remote.Health(probeCtx); err != nil {
			log.Warn(ctx, "remote model unavailable, using fallback pricing",
				logger.String("model_url", cfg.ModelURL), logger.Error(err))
			return predictor.Unavailable{}
		}
		log.Info(ctx, "remote model ready", logger.String("model_url", cfg.ModelURL))
		return remote

	case cfg.ModelURI != "":
		m, err := loadLinear(ctx, router, cfg.ModelURI)
		if err != nil {
			log.Warn(ctx, "model artifact not loaded, using fallback pricing",
				logger.String("model_uri", cfg.ModelURI), logger.Error(err))
			return predictor.Unavailable{}
		}
		log.Info(ctx, "model artifact loaded",
			logger.String("model_uri", cfg.ModelURI), logger.String("version", m.Version))
		return m

	default:
		log.Info(ctx, "no model configured, using fallback pricing")
		return predictor.Unavailable{}
	}
}

// PctChangePolicy maps a configured mode to a policy.
func PctChangePolicy(mode string) forecast.PctChangePolicy {
	if mode == config.PctChangeFixed {
		return forecast.FixedPolicy{Value: forecast.DefaultPctChange}
	}
	return forecast.HistoryPolicy{}
}

func loadLinear(ctx context.Context, router *artifact.Router, uri string) (*predictor.Linear, error) {
	rc, err := router.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return predictor.LoadLinear(rc)
}
