package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/scoring"
)

type PointsRepository struct {
	mu    sync.RWMutex
	items []scoring.Record
}

func NewPointsRepository(records []scoring.Record) *PointsRepository {
	items := make([]scoring.Record, 0, len(records))
	for _, rec := range records {
		items = append(items, cloneRecord(rec))
	}
	return &PointsRepository{items: items}
}

func (r *PointsRepository) GetLiveRecord(_ context.Context, leagueID, userID int64) (scoring.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.liveIndex(leagueID, userID)
	if idx < 0 {
		return scoring.Record{}, false, nil
	}
	return cloneRecord(r.items[idx]), true, nil
}

func (r *PointsRepository) GetRecord(_ context.Context, leagueID, userID int64, matchday int) (scoring.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if rec.LeagueID == leagueID && rec.UserID == userID && rec.Matchday == matchday {
			return cloneRecord(rec), true, nil
		}
	}
	return scoring.Record{}, false, nil
}

func (r *PointsRepository) LatestMatchday(_ context.Context, leagueID int64) (int, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest, found := 0, false
	for _, rec := range r.items {
		if rec.LeagueID == leagueID && (!found || rec.Matchday > latest) {
			latest, found = rec.Matchday, true
		}
	}
	return latest, found, nil
}

func (r *PointsRepository) HasLiveRecords(_ context.Context, leagueID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if rec.LeagueID == leagueID && rec.IsLive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *PointsRepository) SetLiveFantasyPoints(_ context.Context, leagueID, userID int64, matchday, fantasyPoints int) error {
	r.upsertLive(leagueID, userID, matchday, func(rec *scoring.Record) {
		rec.FantasyPoints = fantasyPoints
	})
	return nil
}

func (r *PointsRepository) SetLivePredictionPoints(_ context.Context, leagueID, userID int64, matchday, predictionPoints int) error {
	r.upsertLive(leagueID, userID, matchday, func(rec *scoring.Record) {
		rec.PredictionPoints = predictionPoints
	})
	return nil
}

func (r *PointsRepository) CreateLiveRecords(_ context.Context, records []scoring.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		rec.Time = nil
		rec.Points = rec.FantasyPoints + rec.PredictionPoints
		r.items = append(r.items, rec)
	}
	return nil
}

func (r *PointsRepository) FinalizeLiveRecords(_ context.Context, leagueID int64, at int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].LeagueID == leagueID && r.items[i].IsLive() {
			stamp := at
			r.items[i].Time = &stamp
		}
	}
	return nil
}

// Records returns a snapshot ordered by league, user and matchday.
func (r *PointsRepository) Records() []scoring.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.Record, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LeagueID != out[j].LeagueID {
			return out[i].LeagueID < out[j].LeagueID
		}
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Matchday < out[j].Matchday
	})
	return out
}

func (r *PointsRepository) upsertLive(leagueID, userID int64, matchday int, apply func(*scoring.Record)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.liveIndex(leagueID, userID)
	if idx < 0 {
		r.items = append(r.items, scoring.Record{LeagueID: leagueID, UserID: userID, Matchday: matchday})
		idx = len(r.items) - 1
	}
	apply(&r.items[idx])
	r.items[idx].Points = r.items[idx].FantasyPoints + r.items[idx].PredictionPoints
}

// liveIndex picks the newest live row of the user.
func (r *PointsRepository) liveIndex(leagueID, userID int64) int {
	idx := -1
	for i, rec := range r.items {
		if rec.LeagueID != leagueID || rec.UserID != userID || !rec.IsLive() {
			continue
		}
		if idx < 0 || rec.Matchday > r.items[idx].Matchday {
			idx = i
		}
	}
	return idx
}

func cloneRecord(rec scoring.Record) scoring.Record {
	if rec.Time != nil {
		t := *rec.Time
		rec.Time = &t
	}
	return rec
}
