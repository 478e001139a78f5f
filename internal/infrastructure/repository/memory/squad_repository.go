package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/squad"
)

type SquadRepository struct {
	mu    sync.RWMutex
	items map[leagueUserKey]map[string]squad.Slot
}

func NewSquadRepository(slots []squad.Slot) *SquadRepository {
	r := &SquadRepository{items: make(map[leagueUserKey]map[string]squad.Slot)}
	for _, s := range slots {
		key := leagueUserKey{s.LeagueID, s.UserID}
		if r.items[key] == nil {
			r.items[key] = make(map[string]squad.Slot)
		}
		r.items[key][s.PlayerUID] = s
	}
	return r
}

func (r *SquadRepository) ListByUser(_ context.Context, leagueID, userID int64) ([]squad.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slots := r.items[leagueUserKey{leagueID, userID}]
	out := make([]squad.Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerUID < out[j].PlayerUID })

	return out, nil
}

func (r *SquadRepository) UpdateRoles(_ context.Context, leagueID, userID int64, roles map[string]squad.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots := r.items[leagueUserKey{leagueID, userID}]
	for uid, role := range roles {
		if s, ok := slots[uid]; ok {
			s.Role = role
			slots[uid] = s
		}
	}
	return nil
}
