package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
)

type leagueUserKey struct {
	leagueID int64
	userID   int64
}

type LeagueUserRepository struct {
	mu    sync.RWMutex
	items map[leagueUserKey]leagueuser.LeagueUser
}

func NewLeagueUserRepository(users []leagueuser.LeagueUser) *LeagueUserRepository {
	items := make(map[leagueUserKey]leagueuser.LeagueUser, len(users))
	for _, u := range users {
		u.Points = u.FantasyPoints + u.PredictionPoints
		items[leagueUserKey{u.LeagueID, u.UserID}] = u
	}

	return &LeagueUserRepository{items: items}
}

func (r *LeagueUserRepository) ListByLeague(_ context.Context, leagueID int64) ([]leagueuser.LeagueUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leagueuser.LeagueUser, 0)
	for key, u := range r.items {
		if key.leagueID == leagueID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

func (r *LeagueUserRepository) Get(_ context.Context, leagueID, userID int64) (leagueuser.LeagueUser, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[leagueUserKey{leagueID, userID}]
	return u, ok, nil
}

func (r *LeagueUserRepository) SetFantasyPoints(_ context.Context, leagueID, userID int64, fantasyPoints int) error {
	return r.update(leagueID, userID, func(u *leagueuser.LeagueUser) {
		u.FantasyPoints = fantasyPoints
	})
}

func (r *LeagueUserRepository) SetPredictionPoints(_ context.Context, leagueID, userID int64, predictionPoints int) error {
	return r.update(leagueID, userID, func(u *leagueuser.LeagueUser) {
		u.PredictionPoints = predictionPoints
	})
}

func (r *LeagueUserRepository) update(leagueID, userID int64, apply func(*leagueuser.LeagueUser)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := leagueUserKey{leagueID, userID}
	u, ok := r.items[key]
	if !ok {
		return fmt.Errorf("league user not found: league=%d user=%d", leagueID, userID)
	}
	apply(&u)
	u.Points = u.FantasyPoints + u.PredictionPoints
	r.items[key] = u
	return nil
}
