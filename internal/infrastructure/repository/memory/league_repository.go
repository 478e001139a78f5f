package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
)

type LeagueTypeRepository struct {
	mu     sync.RWMutex
	items  map[string]leaguetype.LeagueType
	orders []string
}

func NewLeagueTypeRepository(types []leaguetype.LeagueType) *LeagueTypeRepository {
	items := make(map[string]leaguetype.LeagueType, len(types))
	orders := make([]string, 0, len(types))

	for _, t := range types {
		items[t.Name] = t
		orders = append(orders, t.Name)
	}

	return &LeagueTypeRepository{
		items:  items,
		orders: orders,
	}
}

func (r *LeagueTypeRepository) ListEnabled(_ context.Context) ([]leaguetype.LeagueType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leaguetype.LeagueType, 0, len(r.orders))
	for _, name := range r.orders {
		if t := r.items[name]; t.Enabled {
			out = append(out, t)
		}
	}

	return out, nil
}

func (r *LeagueTypeRepository) GetByName(_ context.Context, name string) (leaguetype.LeagueType, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[name]
	return t, ok, nil
}

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[int64]league.League
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[int64]league.League, len(leagues))
	for _, l := range leagues {
		items[l.ID] = l
	}

	return &LeagueRepository{items: items}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID int64) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}

func (r *LeagueRepository) ListActiveByType(_ context.Context, leagueType string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0)
	for _, l := range r.items {
		if l.Type == leagueType && !l.Settings.Archived {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// Upsert is used by seeding and tests.
func (r *LeagueRepository) Upsert(l league.League) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[l.ID] = l
}
