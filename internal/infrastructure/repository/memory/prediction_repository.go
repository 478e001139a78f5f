package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/prediction"
)

type PredictionRepository struct {
	mu         sync.RWMutex
	live       []prediction.Prediction
	historical []prediction.Prediction
}

func NewPredictionRepository(live, historical []prediction.Prediction) *PredictionRepository {
	r := &PredictionRepository{}
	for _, p := range live {
		r.live = append(r.live, clonePrediction(p))
	}
	for _, p := range historical {
		r.historical = append(r.historical, clonePrediction(p))
	}
	return r
}

func (r *PredictionRepository) ListLive(_ context.Context, leagueID, userID int64) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.live {
		if p.LeagueID == leagueID && p.UserID == userID {
			out = append(out, clonePrediction(p))
		}
	}
	return out, nil
}

func (r *PredictionRepository) ListHistorical(_ context.Context, leagueID, userID int64, matchday int) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.historical {
		if p.LeagueID == leagueID && p.UserID == userID && p.Matchday == matchday {
			out = append(out, clonePrediction(p))
		}
	}
	return out, nil
}

func (r *PredictionRepository) ArchiveLive(_ context.Context, leagueID int64, matchday int, at int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.live[:0]
	for _, p := range r.live {
		if p.LeagueID != leagueID {
			kept = append(kept, p)
			continue
		}
		archived := clonePrediction(p)
		archived.Matchday = matchday
		stamp := at
		archived.Time = &stamp
		r.historical = append(r.historical, archived)
	}
	r.live = kept
	return nil
}

type ClubResultRepository struct {
	mu         sync.RWMutex
	live       map[string][]prediction.ClubResult
	historical []prediction.ClubResult
}

func NewClubResultRepository(live, historical []prediction.ClubResult) *ClubResultRepository {
	r := &ClubResultRepository{live: make(map[string][]prediction.ClubResult)}
	for _, c := range live {
		r.live[c.LeagueType] = append(r.live[c.LeagueType], cloneClubResult(c))
	}
	for _, c := range historical {
		r.historical = append(r.historical, cloneClubResult(c))
	}
	return r
}

func (r *ClubResultRepository) ListLiveHomeResults(_ context.Context, leagueType string) ([]prediction.ClubResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.ClubResult, 0)
	for _, c := range r.live[leagueType] {
		if c.IsHome {
			out = append(out, cloneClubResult(c))
		}
	}
	return out, nil
}

func (r *ClubResultRepository) ListHistoricalHomeResults(_ context.Context, leagueType string, at int64) ([]prediction.ClubResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.ClubResult, 0)
	for _, c := range r.historical {
		if c.LeagueType == leagueType && c.IsHome && c.Time != nil && *c.Time == at {
			out = append(out, cloneClubResult(c))
		}
	}
	return out, nil
}

func (r *ClubResultRepository) ReplaceLive(_ context.Context, leagueType string, results []prediction.ClubResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]prediction.ClubResult, 0, len(results))
	for _, c := range results {
		c.LeagueType = leagueType
		c.Time = nil
		items = append(items, cloneClubResult(c))
	}
	r.live[leagueType] = items
	return nil
}

func (r *ClubResultRepository) ArchiveLive(_ context.Context, leagueType string, at int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.live[leagueType] {
		archived := cloneClubResult(c)
		stamp := at
		archived.Time = &stamp
		r.historical = append(r.historical, archived)
	}
	return nil
}

func clonePrediction(p prediction.Prediction) prediction.Prediction {
	p.Home = cloneIntPtr(p.Home)
	p.Away = cloneIntPtr(p.Away)
	if p.Time != nil {
		t := *p.Time
		p.Time = &t
	}
	return p
}

func cloneClubResult(c prediction.ClubResult) prediction.ClubResult {
	c.Home = cloneIntPtr(c.Home)
	c.Away = cloneIntPtr(c.Away)
	if c.Time != nil {
		t := *c.Time
		c.Time = &t
	}
	return c
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
