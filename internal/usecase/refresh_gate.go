package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

const defaultLockPollInterval = 500 * time.Millisecond

// RefreshGate is the per league type lock held while a refresh rewrites the league's data.
// The lock lives in the KV store so readers in other processes can poll it. Waiters in this
// process are also woken as soon as Release runs.
type RefreshGate struct {
	store        kvstate.Store
	logger       *logging.Logger
	pollInterval time.Duration
	maxHold      time.Duration
	now          func() time.Time

	mu       sync.Mutex
	released map[string]chan struct{}
}

type RefreshGateOption func(*RefreshGate)

func WithLockPollInterval(d time.Duration) RefreshGateOption {
	return func(g *RefreshGate) {
		if d > 0 {
			g.pollInterval = d
		}
	}
}

// WithLockMaxHold makes locks older than d count as released. Zero disables the check.
func WithLockMaxHold(d time.Duration) RefreshGateOption {
	return func(g *RefreshGate) {
		if d > 0 {
			g.maxHold = d
		}
	}
}

func withGateClock(now func() time.Time) RefreshGateOption {
	return func(g *RefreshGate) {
		g.now = now
	}
}

func NewRefreshGate(store kvstate.Store, logger *logging.Logger, opts ...RefreshGateOption) *RefreshGate {
	if logger == nil {
		logger = logging.Default()
	}
	g := &RefreshGate{
		store:        store,
		logger:       logger,
		pollInterval: defaultLockPollInterval,
		now:          time.Now,
		released:     make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire takes the lock or returns ErrLockHeld when another refresh holds it.
func (g *RefreshGate) Acquire(ctx context.Context, leagueType string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshGate.Acquire", leagueTypeAttr(leagueType))
	defer span.End()

	key := kvstate.LockedKey(leagueType)
	stamp := kvstate.FormatInt(g.now().Unix())
	ok, err := g.store.SetIfAbsent(ctx, key, stamp)
	if err != nil {
		return fmt.Errorf("acquire refresh lock %s: %w", leagueType, err)
	}
	if ok {
		return nil
	}

	expired, err := g.expired(ctx, key)
	if err != nil {
		return err
	}
	if !expired {
		return fmt.Errorf("%w: %s", ErrLockHeld, leagueType)
	}

	g.logger.WarnContext(ctx, "taking over expired refresh lock", "league_type", leagueType, "max_hold", g.maxHold.String())
	if err := g.store.Set(ctx, key, stamp); err != nil {
		return fmt.Errorf("take over refresh lock %s: %w", leagueType, err)
	}
	return nil
}

// Release clears the lock unconditionally and wakes local waiters.
func (g *RefreshGate) Release(ctx context.Context, leagueType string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshGate.Release", leagueTypeAttr(leagueType))
	defer span.End()

	err := g.store.Delete(ctx, kvstate.LockedKey(leagueType))
	g.broadcast(leagueType)
	if err != nil {
		return fmt.Errorf("release refresh lock %s: %w", leagueType, err)
	}
	return nil
}

func (g *RefreshGate) IsLocked(ctx context.Context, leagueType string) (bool, error) {
	key := kvstate.LockedKey(leagueType)
	_, ok, err := g.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read refresh lock %s: %w", leagueType, err)
	}
	if !ok {
		return false, nil
	}
	expired, err := g.expired(ctx, key)
	if err != nil {
		return false, err
	}
	return !expired, nil
}

// AwaitUnlocked blocks until the lock is free, rechecking every poll interval.
func (g *RefreshGate) AwaitUnlocked(ctx context.Context, leagueType string) error {
	timer := time.NewTimer(g.pollInterval)
	defer timer.Stop()

	for {
		signal := g.releaseSignal(leagueType)
		locked, err := g.IsLocked(ctx, leagueType)
		if err != nil {
			return err
		}
		if !locked {
			return nil
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(g.pollInterval)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signal:
		case <-timer.C:
		}
	}
}

// ResetAll clears leftover locks, used at boot when no refresh can be running yet.
func (g *RefreshGate) ResetAll(ctx context.Context, leagueTypes []string) error {
	for _, leagueType := range leagueTypes {
		if err := g.Release(ctx, leagueType); err != nil {
			return err
		}
	}
	return nil
}

func (g *RefreshGate) expired(ctx context.Context, key string) (bool, error) {
	if g.maxHold <= 0 {
		return false, nil
	}
	since, ok, err := kvstate.GetInt(ctx, g.store, key)
	if errors.Is(err, kvstate.ErrMalformedValue) {
		// Values written by older deployments carry no timestamp and never expire.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read refresh lock age: %w", err)
	}
	if !ok {
		return true, nil
	}
	return g.now().Sub(time.Unix(since, 0)) > g.maxHold, nil
}

func (g *RefreshGate) releaseSignal(leagueType string) <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.released[leagueType]
	if !ok {
		ch = make(chan struct{})
		g.released[leagueType] = ch
	}
	return ch
}

func (g *RefreshGate) broadcast(leagueType string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ch, ok := g.released[leagueType]; ok {
		close(ch)
		delete(g.released, leagueType)
	}
}
