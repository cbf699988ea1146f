package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdugdh24/topicmatch-backend/internal/config"
	"github.com/gdugdh24/topicmatch-backend/internal/delivery/http"
	"github.com/gdugdh24/topicmatch-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/topicmatch-backend/internal/infrastructure/database"
	"github.com/gdugdh24/topicmatch-backend/internal/infrastructure/scheduler"
	"github.com/gdugdh24/topicmatch-backend/internal/infrastructure/server"
	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/gdugdh24/topicmatch-backend/internal/repository/postgres"
	"github.com/gdugdh24/topicmatch-backend/internal/repository/rediscache"
	"github.com/gdugdh24/topicmatch-backend/internal/usecase/location"
	"github.com/gdugdh24/topicmatch-backend/internal/usecase/match"
	"github.com/gdugdh24/topicmatch-backend/internal/usecase/preference"
	"github.com/gdugdh24/topicmatch-backend/internal/usecase/score"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	DB        *sqlx.DB
	Redis     *redis.Client
	Server    *server.Server
	Scheduler *scheduler.Scheduler
	Scores    *score.ScoreUseCase
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c := &Container{Config: cfg, DB: db}

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(context.Background(), db); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	profileRepo := postgres.NewProfileRepository(db)
	prefRepo := postgres.NewPreferenceRepository(db)
	topicRepo := postgres.NewTopicRepository(db)
	scoreRepo := postgres.NewScoreRepository(db)

	var scoreCache repository.ScoreCache = scoreRepo
	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedisClient(&cfg.Redis)
		if err != nil {
			// Scores are still served from Postgres.
			logging.Warn().Err(err).Msg("redis unavailable, score cache runs on postgres only")
		} else {
			c.Redis = redisClient
			scoreCache = rediscache.NewScoreCache(redisClient, scoreRepo, cfg.Redis.ScoreTTL)
		}
	}

	// Initialize use cases
	c.Scores = score.NewScoreUseCase(
		profileRepo,
		prefRepo,
		scoreCache,
		scoreRepo,
		score.Options{
			Async:            cfg.Scoring.RecomputeMode == config.RecomputeAsync,
			Concurrency:      cfg.Scoring.RecomputeConcurrency,
			RecomputeTimeout: cfg.Scoring.RecomputeTimeout,
			SweepBatchSize:   cfg.Scoring.SweepBatchSize,
		},
	)

	matchUseCase := match.NewMatchUseCase(
		profileRepo,
		prefRepo,
		scoreCache,
		match.Options{
			CacheMaxAge:  cfg.Scoring.CacheMaxAge,
			QueryTimeout: cfg.Matching.QueryTimeout,
		},
	)

	preferenceUseCase := preference.NewPreferenceUseCase(
		profileRepo,
		prefRepo,
		topicRepo,
		c.Scores,
	)

	locationUseCase := location.NewLocationUseCase(profileRepo)

	if cfg.Scoring.SweepInterval > 0 {
		c.Scheduler, err = scheduler.NewScheduler(cfg.Scoring.SweepInterval, cfg.Scoring.RecomputeTimeout, c.Scores)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	// Initialize handlers
	matchHandler := handler.NewMatchHandler(matchUseCase, handler.MatchDefaults{
		MaxDistanceKm:    cfg.Matching.DefaultMaxDistanceKm,
		MinCompatibility: cfg.Matching.DefaultMinCompatibility,
		Limit:            cfg.Matching.DefaultLimit,
	})
	preferenceHandler := handler.NewPreferenceHandler(preferenceUseCase)
	locationHandler := handler.NewLocationHandler(locationUseCase)
	compatibilityHandler := handler.NewCompatibilityHandler(c.Scores)

	router := http.NewRouter(
		matchHandler,
		preferenceHandler,
		locationHandler,
		compatibilityHandler,
		cfg.Metrics.Enabled,
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup())

	return c, nil
}

// Close stops background work and closes all connections
func (c *Container) Close() error {
	var errs []error

	if c.Scheduler != nil {
		if err := c.Scheduler.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop scheduler: %w", err))
		}
	}

	// In-flight recomputes still write through the cache.
	if c.Scores != nil {
		c.Scores.Wait()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
