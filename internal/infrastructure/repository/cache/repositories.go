package cache

import (
	"context"
	"slices"
	"strconv"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	basecache "github.com/riskibarqy/fantasy-matchday/internal/platform/cache"
)

const (
	keyEnabledLeagueTypes = "leaguetype:enabled"
	keyLeagueTypePrefix   = "leaguetype:name:"
	keyLeaguePrefix       = "league:id:"
	keyLeaguesOfType      = "league:type:"
)

// lookup keeps "not found" cacheable next to the value.
type lookup[T any] struct {
	value  T
	exists bool
}

// LeagueTypeRepository caches league type lookups, which the scheduler repeats on every tick.
type LeagueTypeRepository struct {
	next  leaguetype.Repository
	cache *basecache.Store
}

func NewLeagueTypeRepository(next leaguetype.Repository, cache *basecache.Store) *LeagueTypeRepository {
	return &LeagueTypeRepository{next: next, cache: cache}
}

func (r *LeagueTypeRepository) ListEnabled(ctx context.Context) ([]leaguetype.LeagueType, error) {
	items, err := basecache.Load(ctx, r.cache, keyEnabledLeagueTypes, r.next.ListEnabled)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *LeagueTypeRepository) GetByName(ctx context.Context, name string) (leaguetype.LeagueType, bool, error) {
	found, err := basecache.Load(ctx, r.cache, keyLeagueTypePrefix+name, func(ctx context.Context) (lookup[leaguetype.LeagueType], error) {
		item, exists, err := r.next.GetByName(ctx, name)
		return lookup[leaguetype.LeagueType]{value: item, exists: exists}, err
	})
	if err != nil {
		return leaguetype.LeagueType{}, false, err
	}
	return found.value, found.exists, nil
}

// LeagueRepository caches league settings. Settings only change through the league admin, which
// is outside this service, so entries simply age out.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	key := keyLeaguePrefix + strconv.FormatInt(leagueID, 10)
	found, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (lookup[league.League], error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		return lookup[league.League]{value: item, exists: exists}, err
	})
	if err != nil {
		return league.League{}, false, err
	}
	return found.value, found.exists, nil
}

func (r *LeagueRepository) ListActiveByType(ctx context.Context, leagueType string) ([]league.League, error) {
	items, err := basecache.Load(ctx, r.cache, keyLeaguesOfType+leagueType, func(ctx context.Context) ([]league.League, error) {
		return r.next.ListActiveByType(ctx, leagueType)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}
