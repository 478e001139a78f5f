package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantasy-matchday/internal/config"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/prediction"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/squad"
	memorykv "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/kvstore/memory"
	postgreskv "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/kvstore/postgres"
	rediskv "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/kvstore/redis"
	cacherepo "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/repository/cache"
	memoryrepo "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/repository/memory"
	postgresrepo "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/fantasy-matchday/internal/platform/cache"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/dburl"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

type repositories struct {
	LeagueTypes leaguetype.Repository
	Leagues     league.Repository
	LeagueUsers leagueuser.Repository
	Squads      squad.Repository
	Players     player.Repository
	Points      scoring.Repository
	Predictions prediction.Repository
	Results     prediction.ResultRepository
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := dburl.Normalize(cfg.DBURL, cfg.DBDisablePreparedBinary)
	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dburl.Name(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
		otelsql.WithAttributes(attribute.String("service.name", cfg.ServiceName)),
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", dburl.Redact(dsn), err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, opts...)
	return db, nil
}

func newPostgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		LeagueTypes: postgresrepo.NewLeagueTypeRepository(db),
		Leagues:     postgresrepo.NewLeagueRepository(db),
		LeagueUsers: postgresrepo.NewLeagueUserRepository(db),
		Squads:      postgresrepo.NewSquadRepository(db),
		Players:     postgresrepo.NewPlayerRepository(db),
		Points:      postgresrepo.NewPointsRepository(db),
		Predictions: postgresrepo.NewPredictionRepository(db),
		Results:     postgresrepo.NewClubResultRepository(db),
	}
}

func newMemoryRepositories(cfg config.Config) repositories {
	return repositories{
		LeagueTypes: memoryrepo.NewLeagueTypeRepository(memoryrepo.SeedLeagueTypes(cfg.DevFeedURL)),
		Leagues:     memoryrepo.NewLeagueRepository(memoryrepo.SeedLeagues()),
		LeagueUsers: memoryrepo.NewLeagueUserRepository(memoryrepo.SeedLeagueUsers()),
		Squads:      memoryrepo.NewSquadRepository(nil),
		Players:     memoryrepo.NewPlayerRepository(nil),
		Points:      memoryrepo.NewPointsRepository(nil),
		Predictions: memoryrepo.NewPredictionRepository(nil, nil),
		Results:     memoryrepo.NewClubResultRepository(nil, nil),
	}
}

// withReadCache wraps the league and league type reads the scheduler repeats every tick.
func withReadCache(repos repositories, cfg config.Config) repositories {
	if !cfg.CacheEnabled {
		return repos
	}
	store := basecache.NewStore(cfg.CacheTTL)
	repos.LeagueTypes = cacherepo.NewLeagueTypeRepository(repos.LeagueTypes, store)
	repos.Leagues = cacherepo.NewLeagueRepository(repos.Leagues, store)
	return repos
}

func newStateStore(ctx context.Context, cfg config.Config, db *sqlx.DB, logger *logging.Logger) (kvstate.Store, func() error, error) {
	switch cfg.KVBackend {
	case config.BackendRedis:
		client, err := rediskv.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create redis client: %w", err)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.InfoContext(ctx, "state store ready", "backend", cfg.KVBackend, "prefix", cfg.RedisKeyPrefix)
		return rediskv.NewStore(client, cfg.RedisKeyPrefix), client.Close, nil
	case config.BackendPostgres:
		if db == nil {
			return nil, nil, fmt.Errorf("KV_BACKEND=%s requires a database connection", cfg.KVBackend)
		}
		logger.InfoContext(ctx, "state store ready", "backend", cfg.KVBackend)
		return postgreskv.NewStore(db), func() error { return nil }, nil
	default:
		logger.InfoContext(ctx, "state store ready", "backend", config.BackendMemory)
		return memorykv.NewStore(nil), func() error { return nil }, nil
	}
}
