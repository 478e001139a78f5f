package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/prediction"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/squad"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/tracing"
)

const defaultScoringWorkers = 8

type refreshWaiter interface {
	AwaitUnlocked(ctx context.Context, leagueType string) error
}

// ScoringRepositories groups the record stores a scoring pass reads and writes.
type ScoringRepositories struct {
	Leagues     league.Repository
	LeagueUsers leagueuser.Repository
	Squads      squad.Repository
	Players     player.Repository
	Points      scoring.Repository
	Predictions prediction.Repository
	Results     prediction.ResultRepository
}

type ScoringService struct {
	leagueRepo     league.Repository
	userRepo       leagueuser.Repository
	squadRepo      squad.Repository
	playerRepo     player.Repository
	pointsRepo     scoring.Repository
	predictionRepo prediction.Repository
	resultRepo     prediction.ResultRepository
	state          kvstate.Store
	gate           refreshWaiter
	logger         *logging.Logger
	workers        int
	passFlight     resilience.SingleFlight[struct{}]
}

func NewScoringService(
	repos ScoringRepositories,
	state kvstate.Store,
	gate refreshWaiter,
	logger *logging.Logger,
	workers int,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = defaultScoringWorkers
	}
	return &ScoringService{
		leagueRepo:     repos.Leagues,
		userRepo:       repos.LeagueUsers,
		squadRepo:      repos.Squads,
		playerRepo:     repos.Players,
		pointsRepo:     repos.Points,
		predictionRepo: repos.Predictions,
		resultRepo:     repos.Results,
		state:          state,
		gate:           gate,
		logger:         logger,
		workers:        workers,
	}
}

// RunScoringPass recomputes live points for a league id or for every active league of a league type.
// It waits for a running refresh of the league type to finish first. Repeating a pass without new
// data writes nothing.
func (s *ScoringService) RunScoringPass(ctx context.Context, target string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RunScoringPass", scoringTargetAttr(target))
	defer span.End()

	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("%w: scoring target is required", ErrInvalidInput)
	}

	_, _, err := s.passFlight.Do("scoring:pass:"+target, func() (struct{}, error) {
		return struct{}{}, s.runScoringPass(ctx, target, true)
	})
	tracing.Fail(span, err)
	return err
}

// RunScoringPassHoldingGate is RunScoringPass for callers that already hold the refresh lock.
func (s *ScoringService) RunScoringPassHoldingGate(ctx context.Context, target string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RunScoringPassHoldingGate", scoringTargetAttr(target))
	defer span.End()

	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("%w: scoring target is required", ErrInvalidInput)
	}

	_, _, err := s.passFlight.Do("scoring:held:"+target, func() (struct{}, error) {
		return struct{}{}, s.runScoringPass(ctx, target, false)
	})
	tracing.Fail(span, err)
	return err
}

func (s *ScoringService) runScoringPass(ctx context.Context, target string, awaitGate bool) error {
	leagueType, leagues, err := s.resolveTarget(ctx, target)
	if err != nil {
		return err
	}
	if leagueType == "" {
		return nil
	}

	if awaitGate && s.gate != nil {
		if err := s.gate.AwaitUnlocked(ctx, leagueType); err != nil {
			return fmt.Errorf("await refresh of %s: %w", leagueType, err)
		}
	}

	open, known, err := kvstate.GetBool(ctx, s.state, kvstate.TransferOpenKey(leagueType))
	if err != nil {
		return fmt.Errorf("read transfer state of %s: %w", leagueType, err)
	}
	if !known || open {
		s.logger.DebugContext(ctx, "skip scoring while transfer window is open", "league_type", leagueType, "target", target)
		return nil
	}

	results, err := s.resultRepo.ListLiveHomeResults(ctx, leagueType)
	if err != nil {
		return fmt.Errorf("list live results of %s: %w", leagueType, err)
	}

	s.logger.InfoContext(ctx, "calculating user points", "league_type", leagueType, "target", target, "leagues", len(leagues))
	for _, lg := range leagues {
		// Leagues created after the matchday started have no live rows and wait for the next one.
		live, err := s.pointsRepo.HasLiveRecords(ctx, lg.ID)
		if err != nil {
			return fmt.Errorf("check live points of league %d: %w", lg.ID, err)
		}
		if !live {
			continue
		}
		if err := s.scoreLeague(ctx, lg, results); err != nil {
			return err
		}
	}
	return nil
}

// resolveTarget returns an empty league type when there is nothing to score.
func (s *ScoringService) resolveTarget(ctx context.Context, target string) (string, []league.League, error) {
	if id, err := strconv.ParseInt(target, 10, 64); err == nil && id > 0 {
		lg, ok, err := s.leagueRepo.GetByID(ctx, id)
		if err != nil {
			return "", nil, fmt.Errorf("get league %d: %w", id, err)
		}
		if !ok || lg.Settings.Archived {
			s.logger.WarnContext(ctx, "skip scoring for unknown league", "league_id", id, "error", ErrStaleOrMissingSettings)
			return "", nil, nil
		}
		return lg.Type, []league.League{lg}, nil
	}

	leagues, err := s.leagueRepo.ListActiveByType(ctx, target)
	if err != nil {
		return "", nil, fmt.Errorf("list leagues of %s: %w", target, err)
	}
	return target, leagues, nil
}

func (s *ScoringService) scoreLeague(ctx context.Context, lg league.League, results []prediction.ClubResult) error {
	matchday, ok, err := s.pointsRepo.LatestMatchday(ctx, lg.ID)
	if err != nil {
		return fmt.Errorf("latest matchday of league %d: %w", lg.ID, err)
	}
	if !ok {
		matchday = scoring.DefaultMatchday
	}

	users, err := s.userRepo.ListByLeague(ctx, lg.ID)
	if err != nil {
		return fmt.Errorf("list users of league %d: %w", lg.ID, err)
	}

	p := pool.New().WithMaxGoroutines(s.workers).WithErrors()
	for _, user := range users {
		p.Go(func() error {
			return s.scoreUser(ctx, lg, user, matchday, results)
		})
	}
	if err := p.Wait(); err != nil {
		return fmt.Errorf("score league %d: %w", lg.ID, err)
	}
	return nil
}

func (s *ScoringService) scoreUser(
	ctx context.Context,
	lg league.League,
	user leagueuser.LeagueUser,
	matchday int,
	results []prediction.ClubResult,
) error {
	slots, err := s.squadRepo.ListByUser(ctx, lg.ID, user.UserID)
	if err != nil {
		return fmt.Errorf("list squad of user %d: %w", user.UserID, err)
	}
	players, err := s.playersFor(ctx, lg.Type, slots)
	if err != nil {
		return err
	}

	if lg.Settings.Top11 {
		slots, err = s.applyTop11(ctx, user, slots, players)
		if err != nil {
			return err
		}
	}

	newFantasy := FantasyPoints(scoredSlots(slots, players), StarredMultiplier(lg.Settings, true))
	newPrediction, err := s.livePredictionPoints(ctx, lg, user.UserID, results)
	if err != nil {
		return err
	}

	old, _, err := s.pointsRepo.GetLiveRecord(ctx, lg.ID, user.UserID)
	if err != nil {
		return fmt.Errorf("get live points of user %d: %w", user.UserID, err)
	}

	return s.commit(ctx, user, matchday, old, newFantasy, newPrediction)
}

// commit applies new matchday values to the live row and moves the season totals by the difference.
func (s *ScoringService) commit(
	ctx context.Context,
	user leagueuser.LeagueUser,
	matchday int,
	old scoring.Record,
	newFantasy, newPrediction int,
) error {
	if newFantasy != old.FantasyPoints {
		if err := s.pointsRepo.SetLiveFantasyPoints(ctx, user.LeagueID, user.UserID, matchday, newFantasy); err != nil {
			return fmt.Errorf("store matchday fantasy points of user %d: %w", user.UserID, err)
		}
		total := user.FantasyPoints - old.FantasyPoints + newFantasy
		if err := s.userRepo.SetFantasyPoints(ctx, user.LeagueID, user.UserID, total); err != nil {
			return fmt.Errorf("store fantasy points of user %d: %w", user.UserID, err)
		}
	}
	if newPrediction != old.PredictionPoints {
		if err := s.pointsRepo.SetLivePredictionPoints(ctx, user.LeagueID, user.UserID, matchday, newPrediction); err != nil {
			return fmt.Errorf("store matchday prediction points of user %d: %w", user.UserID, err)
		}
		total := user.PredictionPoints - old.PredictionPoints + newPrediction
		if err := s.userRepo.SetPredictionPoints(ctx, user.LeagueID, user.UserID, total); err != nil {
			return fmt.Errorf("store prediction points of user %d: %w", user.UserID, err)
		}
	}
	return nil
}

func (s *ScoringService) applyTop11(
	ctx context.Context,
	user leagueuser.LeagueUser,
	slots []squad.Slot,
	players map[string]player.Player,
) ([]squad.Slot, error) {
	if err := user.Formation.Validate(); err != nil {
		s.logger.WarnContext(ctx, "clamping formation", "league_id", user.LeagueID, "user_id", user.UserID, "error", fmt.Errorf("%w: %v", ErrMalformedFormation, err))
	}

	entries := make([]SquadEntry, 0, len(slots))
	for _, slot := range slots {
		entry := SquadEntry{PlayerUID: slot.PlayerUID, Starred: slot.Starred}
		if p, ok := players[slot.PlayerUID]; ok {
			entry.Position = p.Position
			entry.LastMatch = p.LastMatch
		}
		entries = append(entries, entry)
	}

	roles := make(map[string]squad.Role, len(entries))
	for _, a := range AssignTop11(entries, user.Formation) {
		roles[a.PlayerUID] = a.Role
	}

	changed := make(map[string]squad.Role)
	out := make([]squad.Slot, len(slots))
	for i, slot := range slots {
		if role := roles[slot.PlayerUID]; role != slot.Role {
			changed[slot.PlayerUID] = role
			slot.Role = role
		}
		out[i] = slot
	}
	if len(changed) == 0 {
		return out, nil
	}
	if err := s.squadRepo.UpdateRoles(ctx, user.LeagueID, user.UserID, changed); err != nil {
		return nil, fmt.Errorf("update squad roles of user %d: %w", user.UserID, err)
	}
	return out, nil
}

func (s *ScoringService) livePredictionPoints(ctx context.Context, lg league.League, userID int64, results []prediction.ClubResult) (int, error) {
	predictions, err := s.predictionRepo.ListLive(ctx, lg.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("list predictions of user %d: %w", userID, err)
	}
	if n := countIncomplete(predictions); n > 0 {
		s.logger.DebugContext(ctx, "skipping incomplete predictions", "league_id", lg.ID, "user_id", userID, "count", n, "error", ErrInconsistentPrediction)
	}
	return ScorePredictions(predictions, results, PredictionWeights(lg.Settings)), nil
}

// HistoricalPredictionPoints scores a finished matchday from the archived predictions and results.
// Missing goals count as 0. A league without settings scores 0.
func (s *ScoringService) HistoricalPredictionPoints(ctx context.Context, leagueID, userID int64, matchday int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.HistoricalPredictionPoints")
	defer span.End()

	if leagueID <= 0 || userID <= 0 || matchday <= 0 {
		return 0, fmt.Errorf("%w: league id, user id and matchday must be positive", ErrInvalidInput)
	}

	lg, ok, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return 0, fmt.Errorf("get league %d: %w", leagueID, err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "historical prediction points without settings", "league_id", leagueID, "error", ErrStaleOrMissingSettings)
		return 0, nil
	}

	record, ok, err := s.pointsRepo.GetRecord(ctx, leagueID, userID, matchday)
	if err != nil {
		return 0, fmt.Errorf("get points of matchday %d: %w", matchday, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: matchday=%d user=%d league=%d", ErrNotFound, matchday, userID, leagueID)
	}
	if record.IsLive() {
		return 0, fmt.Errorf("%w: matchday %d has not finished", ErrInvalidInput, matchday)
	}

	predictions, err := s.predictionRepo.ListHistorical(ctx, leagueID, userID, matchday)
	if err != nil {
		return 0, fmt.Errorf("list historical predictions: %w", err)
	}
	results, err := s.resultRepo.ListHistoricalHomeResults(ctx, lg.Type, *record.Time)
	if err != nil {
		return 0, fmt.Errorf("list historical results: %w", err)
	}
	if n := countIncomplete(predictions); n > 0 {
		s.logger.DebugContext(ctx, "counting incomplete predictions as 0", "league_id", leagueID, "user_id", userID, "count", n, "error", ErrInconsistentPrediction)
	}

	return ScorePredictions(CoerceUnset(predictions), CoerceUnsetResults(results), PredictionWeights(lg.Settings)), nil
}

func (s *ScoringService) playersFor(ctx context.Context, leagueType string, slots []squad.Slot) (map[string]player.Player, error) {
	if len(slots) == 0 {
		return map[string]player.Player{}, nil
	}
	uids := make([]string, 0, len(slots))
	for _, slot := range slots {
		uids = append(uids, slot.PlayerUID)
	}
	players, err := s.playerRepo.ListByUIDs(ctx, leagueType, uids)
	if err != nil {
		return nil, fmt.Errorf("list squad players: %w", err)
	}
	out := make(map[string]player.Player, len(players))
	for _, p := range players {
		out[p.UID] = p
	}
	return out, nil
}

// scoredSlots drops slots whose player is no longer in the pool.
func scoredSlots(slots []squad.Slot, players map[string]player.Player) []ScoredSlot {
	out := make([]ScoredSlot, 0, len(slots))
	for _, slot := range slots {
		p, ok := players[slot.PlayerUID]
		if !ok {
			continue
		}
		out = append(out, ScoredSlot{Role: slot.Role, Starred: slot.Starred, LastMatch: p.LastMatch})
	}
	return out
}
