package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	for _, p := range players {
		items[playerKey(p.LeagueType, p.UID)] = p
	}

	return &PlayerRepository{items: items}
}

func (r *PlayerRepository) ListByUIDs(_ context.Context, leagueType string, uids []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(uids))
	for _, uid := range uids {
		if p, ok := r.items[playerKey(leagueType, uid)]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *PlayerRepository) UpsertMany(_ context.Context, players []player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range players {
		r.items[playerKey(p.LeagueType, p.UID)] = p
	}
	return nil
}

func playerKey(leagueType, uid string) string {
	return leagueType + "::" + uid
}
