package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/prediction"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

type heldScoringRunner interface {
	RunScoringPassHoldingGate(ctx context.Context, target string) error
}

// FeedSyncRepositories groups the stores a feed sync writes.
type FeedSyncRepositories struct {
	LeagueTypes leaguetype.Repository
	Leagues     league.Repository
	LeagueUsers leagueuser.Repository
	Players     player.Repository
	Points      scoring.Repository
	Predictions prediction.Repository
	Results     prediction.ResultRepository
}

// FeedSyncService is the data provider: it pulls a league type's feed and writes it to storage.
// It must run while the caller holds the league type's refresh lock.
type FeedSyncService struct {
	feed           FeedProvider
	leagueTypeRepo leaguetype.Repository
	leagueRepo     league.Repository
	userRepo       leagueuser.Repository
	playerRepo     player.Repository
	pointsRepo     scoring.Repository
	predictionRepo prediction.Repository
	resultRepo     prediction.ResultRepository
	state          kvstate.Store
	scorer         heldScoringRunner
	logger         *logging.Logger
	now            func() time.Time
}

func NewFeedSyncService(
	feed FeedProvider,
	repos FeedSyncRepositories,
	state kvstate.Store,
	scorer heldScoringRunner,
	logger *logging.Logger,
) *FeedSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FeedSyncService{
		feed:           feed,
		leagueTypeRepo: repos.LeagueTypes,
		leagueRepo:     repos.Leagues,
		userRepo:       repos.LeagueUsers,
		playerRepo:     repos.Players,
		pointsRepo:     repos.Points,
		predictionRepo: repos.Predictions,
		resultRepo:     repos.Results,
		state:          state,
		scorer:         scorer,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *FeedSyncService) Refresh(ctx context.Context, leagueType string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedSyncService.Refresh", leagueTypeAttr(leagueType))
	defer span.End()

	leagueType = strings.TrimSpace(leagueType)
	lt, ok, err := s.leagueTypeRepo.GetByName(ctx, leagueType)
	if err != nil {
		return fmt.Errorf("get league type %s: %w", leagueType, err)
	}
	if !ok {
		return fmt.Errorf("%w: league type=%s", ErrNotFound, leagueType)
	}

	feed, err := s.feed.FetchFeed(ctx, lt.URL)
	if err != nil {
		return fmt.Errorf("%w: fetch feed of %s: %w", ErrProviderUnavailable, lt.Name, err)
	}

	if err := s.playerRepo.UpsertMany(ctx, s.toPlayers(ctx, lt.Name, feed.Players)); err != nil {
		return fmt.Errorf("upsert players of %s: %w", lt.Name, err)
	}
	if err := s.resultRepo.ReplaceLive(ctx, lt.Name, toClubResults(lt.Name, feed.Clubs)); err != nil {
		return fmt.Errorf("store live results of %s: %w", lt.Name, err)
	}

	wasOpen, known, err := kvstate.GetBool(ctx, s.state, kvstate.TransferOpenKey(lt.Name))
	if err != nil {
		return fmt.Errorf("read transfer state of %s: %w", lt.Name, err)
	}
	switch {
	case known && wasOpen && !feed.TransferOpen:
		if err := s.startMatchday(ctx, lt.Name); err != nil {
			return err
		}
	case known && !wasOpen && feed.TransferOpen:
		if err := s.endMatchday(ctx, lt.Name); err != nil {
			return err
		}
	}

	now := s.now()
	if err := s.state.Set(ctx, kvstate.CountdownKey(lt.Name), kvstate.FormatInt(feed.CountdownSeconds)); err != nil {
		return fmt.Errorf("store countdown of %s: %w", lt.Name, err)
	}
	if err := s.state.Set(ctx, kvstate.TransferOpenKey(lt.Name), kvstate.FormatBool(feed.TransferOpen)); err != nil {
		return fmt.Errorf("store transfer state of %s: %w", lt.Name, err)
	}
	if err := s.state.Set(ctx, kvstate.LastUpdateKey(lt.Name), kvstate.FormatInt(now.Unix())); err != nil {
		return fmt.Errorf("store last update of %s: %w", lt.Name, err)
	}

	s.logger.InfoContext(ctx, "league data refreshed",
		"league_type", lt.Name,
		"players", len(feed.Players),
		"clubs", len(feed.Clubs),
		"transfer_open", feed.TransferOpen,
		"countdown", feed.CountdownSeconds,
	)
	return nil
}

// startMatchday opens a live points row for every member of the league type's active leagues.
func (s *FeedSyncService) startMatchday(ctx context.Context, leagueType string) error {
	leagues, err := s.leagueRepo.ListActiveByType(ctx, leagueType)
	if err != nil {
		return fmt.Errorf("list leagues of %s: %w", leagueType, err)
	}

	for _, lg := range leagues {
		live, err := s.pointsRepo.HasLiveRecords(ctx, lg.ID)
		if err != nil {
			return fmt.Errorf("check live points of league %d: %w", lg.ID, err)
		}
		if live {
			continue
		}

		latest, _, err := s.pointsRepo.LatestMatchday(ctx, lg.ID)
		if err != nil {
			return fmt.Errorf("latest matchday of league %d: %w", lg.ID, err)
		}
		users, err := s.userRepo.ListByLeague(ctx, lg.ID)
		if err != nil {
			return fmt.Errorf("list users of league %d: %w", lg.ID, err)
		}

		records := make([]scoring.Record, 0, len(users))
		for _, u := range users {
			records = append(records, scoring.Record{LeagueID: lg.ID, UserID: u.UserID, Matchday: latest + 1})
		}
		if err := s.pointsRepo.CreateLiveRecords(ctx, records); err != nil {
			return fmt.Errorf("create live points of league %d: %w", lg.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "matchday started", "league_type", leagueType, "leagues", len(leagues))
	return nil
}

// endMatchday scores the final results, then archives results and predictions and closes the live rows.
func (s *FeedSyncService) endMatchday(ctx context.Context, leagueType string) error {
	if s.scorer != nil {
		if err := s.scorer.RunScoringPassHoldingGate(ctx, leagueType); err != nil {
			return fmt.Errorf("final scoring of %s: %w", leagueType, err)
		}
	}

	at := s.now().Unix()
	if err := s.resultRepo.ArchiveLive(ctx, leagueType, at); err != nil {
		return fmt.Errorf("archive results of %s: %w", leagueType, err)
	}

	leagues, err := s.leagueRepo.ListActiveByType(ctx, leagueType)
	if err != nil {
		return fmt.Errorf("list leagues of %s: %w", leagueType, err)
	}
	for _, lg := range leagues {
		matchday, ok, err := s.pointsRepo.LatestMatchday(ctx, lg.ID)
		if err != nil {
			return fmt.Errorf("latest matchday of league %d: %w", lg.ID, err)
		}
		if !ok {
			continue
		}
		if err := s.predictionRepo.ArchiveLive(ctx, lg.ID, matchday, at); err != nil {
			return fmt.Errorf("archive predictions of league %d: %w", lg.ID, err)
		}
		if err := s.pointsRepo.FinalizeLiveRecords(ctx, lg.ID, at); err != nil {
			return fmt.Errorf("finalize points of league %d: %w", lg.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "matchday ended", "league_type", leagueType, "leagues", len(leagues))
	return nil
}

func (s *FeedSyncService) toPlayers(ctx context.Context, leagueType string, in []ExternalPlayer) []player.Player {
	out := make([]player.Player, 0, len(in))
	for _, ext := range in {
		p := player.Player{
			UID:         ext.UID,
			LeagueType:  leagueType,
			Name:        ext.Name,
			Club:        ext.Club,
			Position:    player.Position(strings.ToLower(strings.TrimSpace(ext.Position))),
			LastMatch:   ext.LastMatch,
			TotalPoints: ext.TotalPoints,
			Exists:      true,
		}
		if err := p.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skip invalid feed player", "league_type", leagueType, "uid", ext.UID, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

func toClubResults(leagueType string, in []ExternalClubResult) []prediction.ClubResult {
	out := make([]prediction.ClubResult, 0, len(in))
	for _, ext := range in {
		out = append(out, prediction.ClubResult{
			LeagueType: leagueType,
			Club:       ext.Club,
			Opponent:   ext.Opponent,
			Home:       ext.Home,
			Away:       ext.Away,
			IsHome:     ext.IsHome,
		})
	}
	return out
}
