package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	kvmemory "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/kvstore/memory"
	"github.com/riskibarqy/fantasy-matchday/internal/infrastructure/repository/memory"
	leaguetypemock "github.com/riskibarqy/fantasy-matchday/internal/mocks/domain/leaguetype"
)

func newTransferStateFixture(seed map[string]string) (*TransferStateService, *kvmemory.Store, *RefreshGate) {
	store := kvmemory.NewStore(seed)
	gate := NewRefreshGate(store, nil, WithLockPollInterval(5*time.Millisecond))
	leagueTypes := memory.NewLeagueTypeRepository([]leaguetype.LeagueType{
		{Name: testLeagueType, URL: "http://feed.local/bundesliga", Enabled: true},
	})
	return NewTransferStateService(leagueTypes, store, gate, nil), store, gate
}

func TestTransferStateService_GetTransferState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		seed      map[string]string
		wantOpen  bool
		wantLeft  int64
		wantKnown bool
	}{
		{
			name:      "counting down",
			seed:      map[string]string{kvstate.CountdownKey(testLeagueType): "3600", kvstate.TransferOpenKey(testLeagueType): "true"},
			wantOpen:  true,
			wantLeft:  3600,
			wantKnown: true,
		},
		{
			name:      "boundary passed",
			seed:      map[string]string{kvstate.CountdownKey(testLeagueType): "-5", kvstate.TransferOpenKey(testLeagueType): "false"},
			wantLeft:  0,
			wantKnown: true,
		},
		{
			name: "never refreshed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service, _, _ := newTransferStateFixture(tc.seed)
			got, err := service.GetTransferState(context.Background(), " "+testLeagueType+" ")
			if err != nil {
				t.Fatalf("get transfer state: %v", err)
			}
			if got.LeagueType != testLeagueType || got.TransferOpen != tc.wantOpen || got.SecondsLeft != tc.wantLeft || got.Known != tc.wantKnown {
				t.Fatalf("unexpected transfer state: %+v", got)
			}
		})
	}
}

func TestTransferStateService_ValidatesLeagueType(t *testing.T) {
	t.Parallel()

	service, _, _ := newTransferStateFixture(nil)
	ctx := context.Background()

	if _, err := service.GetTransferState(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.IsRefreshing(ctx, "Serie A"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := service.RequestRefresh(ctx, "Serie A"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransferStateService_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := leaguetypemock.NewRepository(t)
	repo.
		On("GetByName", mock.MatchedBy(func(v context.Context) bool { return v != nil }), testLeagueType).
		Return(leaguetype.LeagueType{}, false, errors.New("db down")).
		Once()

	store := kvmemory.NewStore(nil)
	service := NewTransferStateService(repo, store, NewRefreshGate(store, nil), nil)
	if _, err := service.GetTransferState(ctx, testLeagueType); err == nil {
		t.Fatalf("expected repository error")
	}
}

func TestTransferStateService_RequestRefresh(t *testing.T) {
	t.Parallel()

	service, store, _ := newTransferStateFixture(nil)
	ctx := context.Background()

	if err := service.RequestRefresh(ctx, testLeagueType); err != nil {
		t.Fatalf("request refresh: %v", err)
	}
	flag, ok, err := store.Get(ctx, kvstate.UpdateKey(testLeagueType))
	if err != nil || !ok || flag != kvstate.UpdateRequested {
		t.Fatalf("unexpected update flag: flag=%q ok=%v err=%v", flag, ok, err)
	}
}

func TestTransferStateService_RefreshStatus(t *testing.T) {
	t.Parallel()

	service, _, gate := newTransferStateFixture(nil)
	ctx := context.Background()

	refreshing, err := service.IsRefreshing(ctx, testLeagueType)
	if err != nil || refreshing {
		t.Fatalf("expected idle league type: refreshing=%v err=%v", refreshing, err)
	}

	if err := gate.Acquire(ctx, testLeagueType); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	refreshing, err = service.IsRefreshing(ctx, testLeagueType)
	if err != nil || !refreshing {
		t.Fatalf("expected refreshing league type: refreshing=%v err=%v", refreshing, err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = gate.Release(ctx, testLeagueType)
	}()
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := service.AwaitRefreshComplete(waitCtx, testLeagueType); err != nil {
		t.Fatalf("await refresh complete: %v", err)
	}
}
