package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/lifecycle"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

type refreshObserver interface {
	IsLocked(ctx context.Context, leagueType string) (bool, error)
	AwaitUnlocked(ctx context.Context, leagueType string) error
}

// TransferStateService answers reader and admin questions about a league type's phase.
type TransferStateService struct {
	leagueTypes leaguetype.Repository
	state       kvstate.Store
	gate        refreshObserver
	logger      *logging.Logger
}

func NewTransferStateService(
	leagueTypes leaguetype.Repository,
	state kvstate.Store,
	gate refreshObserver,
	logger *logging.Logger,
) *TransferStateService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TransferStateService{
		leagueTypes: leagueTypes,
		state:       state,
		gate:        gate,
		logger:      logger,
	}
}

func (s *TransferStateService) GetTransferState(ctx context.Context, leagueType string) (lifecycle.TransferState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferStateService.GetTransferState", leagueTypeAttr(leagueType))
	defer span.End()

	name, err := s.ensureLeagueType(ctx, leagueType)
	if err != nil {
		return lifecycle.TransferState{}, err
	}

	countdown, known, err := kvstate.GetInt(ctx, s.state, kvstate.CountdownKey(name))
	if err != nil {
		return lifecycle.TransferState{}, fmt.Errorf("read countdown of %s: %w", name, err)
	}
	open, _, err := kvstate.GetBool(ctx, s.state, kvstate.TransferOpenKey(name))
	if err != nil {
		return lifecycle.TransferState{}, fmt.Errorf("read transfer state of %s: %w", name, err)
	}

	return lifecycle.TransferState{
		LeagueType:   name,
		TransferOpen: open,
		SecondsLeft:  max(countdown, 0),
		Known:        known,
	}, nil
}

func (s *TransferStateService) IsRefreshing(ctx context.Context, leagueType string) (bool, error) {
	name, err := s.ensureLeagueType(ctx, leagueType)
	if err != nil {
		return false, err
	}
	return s.gate.IsLocked(ctx, name)
}

// AwaitRefreshComplete blocks until no refresh of the league type is running or ctx ends.
func (s *TransferStateService) AwaitRefreshComplete(ctx context.Context, leagueType string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferStateService.AwaitRefreshComplete", leagueTypeAttr(leagueType))
	defer span.End()

	name, err := s.ensureLeagueType(ctx, leagueType)
	if err != nil {
		return err
	}
	return s.gate.AwaitUnlocked(ctx, name)
}

// RequestRefresh flags the league type so the next scheduler tick refreshes it.
func (s *TransferStateService) RequestRefresh(ctx context.Context, leagueType string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferStateService.RequestRefresh", leagueTypeAttr(leagueType))
	defer span.End()

	name, err := s.ensureLeagueType(ctx, leagueType)
	if err != nil {
		return err
	}
	if err := s.state.Set(ctx, kvstate.UpdateKey(name), kvstate.UpdateRequested); err != nil {
		return fmt.Errorf("request refresh of %s: %w", name, err)
	}
	s.logger.InfoContext(ctx, "refresh requested", "league_type", name)
	return nil
}

func (s *TransferStateService) ensureLeagueType(ctx context.Context, leagueType string) (string, error) {
	name := strings.TrimSpace(leagueType)
	if name == "" {
		return "", fmt.Errorf("%w: league type is required", ErrInvalidInput)
	}
	_, ok, err := s.leagueTypes.GetByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("get league type %s: %w", name, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: league type=%s", ErrNotFound, name)
	}
	return name, nil
}
