package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/fantasy-matchday/external/leaguefeed"
	"github.com/riskibarqy/fantasy-matchday/internal/config"
	"github.com/riskibarqy/fantasy-matchday/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-matchday/internal/usecase"
)

// App is the assembled service: the HTTP surface and the lifecycle scheduler sharing one set of stores.
type App struct {
	Server    *http.Server
	Scheduler *usecase.LifecycleScheduler

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{}
	var db *sqlx.DB
	if cfg.StorageBackend == config.BackendPostgres || cfg.KVBackend == config.BackendPostgres {
		var err error
		db, err = openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
	}

	var repos repositories
	if cfg.StorageBackend == config.BackendPostgres {
		repos = newPostgresRepositories(db)
	} else {
		repos = newMemoryRepositories(cfg)
	}
	repos = withReadCache(repos, cfg)

	state, closeState, err := newStateStore(ctx, cfg, db, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeState)

	gate := usecase.NewRefreshGate(state, logger,
		usecase.WithLockPollInterval(cfg.RefreshLockPollInterval),
		usecase.WithLockMaxHold(cfg.RefreshLockMaxHold),
	)

	scoring := usecase.NewScoringService(usecase.ScoringRepositories{
		Leagues:     repos.Leagues,
		LeagueUsers: repos.LeagueUsers,
		Squads:      repos.Squads,
		Players:     repos.Players,
		Points:      repos.Points,
		Predictions: repos.Predictions,
		Results:     repos.Results,
	}, state, gate, logger, cfg.ScoringWorkers)

	feedClient := leaguefeed.NewClient(leaguefeed.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.FeedTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Timeout:      cfg.FeedTimeout,
		MaxRetries:   cfg.FeedMaxRetries,
		RetryBackoff: cfg.FeedRetryBackoff,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
		},
	})

	feedSync := usecase.NewFeedSyncService(feedClient, usecase.FeedSyncRepositories{
		LeagueTypes: repos.LeagueTypes,
		Leagues:     repos.Leagues,
		LeagueUsers: repos.LeagueUsers,
		Players:     repos.Players,
		Points:      repos.Points,
		Predictions: repos.Predictions,
		Results:     repos.Results,
	}, state, scoring, logger)

	scheduler, err := usecase.NewLifecycleScheduler(
		usecase.SchedulerConfig{
			TickInterval: cfg.SchedulerTickInterval,
			Workers:      cfg.SchedulerWorkers,
		},
		usecase.SchedulerDeps{
			LeagueTypes: repos.LeagueTypes,
			State:       state,
			Gate:        gate,
			Provider:    feedSync,
			Scorer:      scoring,
			Staleness:   usecase.NewIdleStalenessChecker(state, cfg.FeedMaxIdleTransfer, cfg.FeedMaxIdleMatchday),
			Usage:       usecase.NewMembershipUsageReporter(repos.LeagueTypes, repos.Leagues, repos.LeagueUsers, logger),
		},
		logger,
	)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create lifecycle scheduler: %w", err)
	}
	a.Scheduler = scheduler

	transfers := usecase.NewTransferStateService(repos.LeagueTypes, state, gate, logger)
	handler := httpapi.NewHandler(transfers, scoring, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
	})

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	logger.InfoContext(ctx, "app assembled",
		"storage_backend", cfg.StorageBackend,
		"kv_backend", cfg.KVBackend,
		"cache_enabled", cfg.CacheEnabled,
	)
	return a, nil
}

// Close releases the stores in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
