package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	kvmemory "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/kvstore/memory"
	"github.com/riskibarqy/fantasy-matchday/internal/infrastructure/repository/memory"
	usecasemock "github.com/riskibarqy/fantasy-matchday/internal/mocks/usecase"
)

type fakeTimer struct {
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// timerRecorder replaces time.AfterFunc so deferred refreshes fire only when a test says so.
type timerRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	fns    []func()
}

func (r *timerRecorder) afterFunc(d time.Duration, f func()) stoppable {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	r.fns = append(r.fns, f)
	return &fakeTimer{}
}

func (r *timerRecorder) scheduled() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func (r *timerRecorder) fire(i int) {
	r.mu.Lock()
	fn := r.fns[i]
	r.mu.Unlock()
	fn()
}

type schedulerFixture struct {
	scheduler *LifecycleScheduler
	state     *kvmemory.Store
	gate      *RefreshGate
	provider  *usecasemock.DataProvider
	scorer    *usecasemock.ScoringRunner
	usage     *usecasemock.UsageReporter
	timers    *timerRecorder
}

func newSchedulerFixture(t *testing.T, seed map[string]string) *schedulerFixture {
	t.Helper()

	f := &schedulerFixture{
		state:    kvmemory.NewStore(seed),
		provider: usecasemock.NewDataProvider(t),
		scorer:   usecasemock.NewScoringRunner(t),
		usage:    usecasemock.NewUsageReporter(t),
		timers:   &timerRecorder{},
	}
	f.gate = NewRefreshGate(f.state, nil, WithLockPollInterval(5*time.Millisecond))

	scheduler, err := NewLifecycleScheduler(SchedulerConfig{TickInterval: 10 * time.Second, Workers: 2}, SchedulerDeps{
		LeagueTypes: memory.NewLeagueTypeRepository([]leaguetype.LeagueType{
			{Name: testLeagueType, URL: "http://feed.local/bundesliga", Enabled: true},
		}),
		State:    f.state,
		Gate:     f.gate,
		Provider: f.provider,
		Scorer:   f.scorer,
		Usage:    f.usage,
	}, nil)
	if err != nil {
		t.Fatalf("new lifecycle scheduler: %v", err)
	}
	scheduler.afterFunc = f.timers.afterFunc
	t.Cleanup(scheduler.Stop)

	f.scheduler = scheduler
	return f
}

func (f *schedulerFixture) countdown(t *testing.T) int64 {
	t.Helper()
	v, ok, err := kvstate.GetInt(context.Background(), f.state, kvstate.CountdownKey(testLeagueType))
	if err != nil || !ok {
		t.Fatalf("read countdown: ok=%v err=%v", ok, err)
	}
	return v
}

func (f *schedulerFixture) setCountdown(t *testing.T, v int64) {
	t.Helper()
	if err := f.state.Set(context.Background(), kvstate.CountdownKey(testLeagueType), kvstate.FormatInt(v)); err != nil {
		t.Fatalf("set countdown: %v", err)
	}
}

// expectRefresh wires a successful refresh and returns a channel closed once scoring ran.
func (f *schedulerFixture) expectRefresh(t *testing.T) <-chan struct{} {
	t.Helper()

	scored := make(chan struct{})
	f.provider.
		On("Refresh", mock.Anything, testLeagueType).
		Run(func(mock.Arguments) {
			locked, err := f.gate.IsLocked(context.Background(), testLeagueType)
			if err != nil || !locked {
				t.Errorf("provider must run under the refresh lock: locked=%v err=%v", locked, err)
			}
		}).
		Return(nil).
		Once()
	f.scorer.
		On("RunScoringPass", mock.Anything, testLeagueType).
		Run(func(mock.Arguments) {
			locked, err := f.gate.IsLocked(context.Background(), testLeagueType)
			if err != nil || locked {
				t.Errorf("scoring must run after the lock is released: locked=%v err=%v", locked, err)
			}
			close(scored)
		}).
		Return(nil).
		Once()
	return scored
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestLifecycleScheduler_Tick_SchedulesRefreshAtBoundary(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, map[string]string{
		kvstate.CountdownKey(testLeagueType):    "5",
		kvstate.TransferOpenKey(testLeagueType): "true",
	})
	ctx := context.Background()

	f.scheduler.Tick(ctx)

	if got := f.countdown(t); got != -5 {
		t.Fatalf("unexpected countdown: got=%d want=-5", got)
	}
	delays := f.timers.scheduled()
	if len(delays) != 1 || delays[0] != 5*time.Second {
		t.Fatalf("unexpected deferred refreshes: %v", delays)
	}

	f.scheduler.Tick(ctx)
	f.scheduler.Tick(ctx)
	if got := f.countdown(t); got != -5 {
		t.Fatalf("countdown must stay put until a refresh resets it: got=%d", got)
	}
	if got := len(f.timers.scheduled()); got != 1 {
		t.Fatalf("unexpected deferred refresh count: got=%d want=1", got)
	}
	if got := f.scheduler.PendingRefreshes(); got != 1 {
		t.Fatalf("unexpected pending refreshes: got=%d want=1", got)
	}

	scored := f.expectRefresh(t)
	f.timers.fire(0)
	waitFor(t, scored, "deferred refresh")
	if got := f.scheduler.PendingRefreshes(); got != 0 {
		t.Fatalf("fired refresh must leave the pending set: got=%d", got)
	}
}

func TestLifecycleScheduler_Tick_OneRefreshPerBoundary(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, map[string]string{
		kvstate.CountdownKey(testLeagueType):    "25",
		kvstate.TransferOpenKey(testLeagueType): "false",
	})
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		f.scheduler.Tick(ctx)
	}
	delays := f.timers.scheduled()
	if len(delays) != 1 || delays[0] != 5*time.Second {
		t.Fatalf("unexpected deferred refreshes after first boundary: %v", delays)
	}

	f.setCountdown(t, 12)
	for i := 0; i < 4; i++ {
		f.scheduler.Tick(ctx)
	}
	delays = f.timers.scheduled()
	if len(delays) != 2 || delays[1] != 2*time.Second {
		t.Fatalf("unexpected deferred refreshes after second boundary: %v", delays)
	}
}

func TestLifecycleScheduler_Tick_IgnoresMissingCountdown(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, nil)
	f.scheduler.Tick(context.Background())

	if got := len(f.timers.scheduled()); got != 0 {
		t.Fatalf("unexpected deferred refreshes: %d", got)
	}
	flag, ok, err := f.state.Get(context.Background(), kvstate.UpdateKey(testLeagueType))
	if err != nil || !ok || flag != kvstate.UpdateCleared {
		t.Fatalf("update flag must be initialised to cleared: flag=%q ok=%v err=%v", flag, ok, err)
	}
}

func TestLifecycleScheduler_Tick_ConsumesUpdateRequest(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, map[string]string{
		kvstate.UpdateKey(testLeagueType): kvstate.UpdateRequested,
	})
	scored := f.expectRefresh(t)

	f.scheduler.Tick(context.Background())
	waitFor(t, scored, "requested refresh")

	flag, _, err := f.state.Get(context.Background(), kvstate.UpdateKey(testLeagueType))
	if err != nil || flag != kvstate.UpdateCleared {
		t.Fatalf("update flag must be cleared: flag=%q err=%v", flag, err)
	}
}

type staleChecker struct{ left time.Duration }

func (c staleChecker) TimeUntilUpdate(context.Context, string) (time.Duration, error) {
	return c.left, nil
}

func TestLifecycleScheduler_Tick_RefreshesStaleData(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, nil)
	f.scheduler.staleness = staleChecker{left: -time.Second}
	scored := f.expectRefresh(t)

	f.scheduler.Tick(context.Background())
	waitFor(t, scored, "stale refresh")
}

func TestLifecycleScheduler_Tick_DayRolloverReportsUsage(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, map[string]string{
		kvstate.UpdateKey(testLeagueType): kvstate.UpdateRequested,
	})
	monday := time.Date(2026, 3, 2, 23, 59, 55, 0, time.UTC)
	tuesday := monday.Add(10 * time.Second)

	f.scheduler.now = func() time.Time { return monday }
	f.scheduler.mu.Lock()
	f.scheduler.weekday = monday.Weekday()
	f.scheduler.dayKnown = true
	f.scheduler.mu.Unlock()

	reported := make(chan struct{})
	f.usage.
		On("ReportDaily", mock.Anything, tuesday).
		Run(func(mock.Arguments) { close(reported) }).
		Return(nil).
		Once()

	f.scheduler.now = func() time.Time { return tuesday }
	f.scheduler.Tick(context.Background())
	waitFor(t, reported, "usage report")

	flag, _, err := f.state.Get(context.Background(), kvstate.UpdateKey(testLeagueType))
	if err != nil || flag != kvstate.UpdateRequested {
		t.Fatalf("rollover tick must leave the update request pending: flag=%q err=%v", flag, err)
	}
}

func TestLifecycleScheduler_Refresh_ReleasesLockOnProviderFailure(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, nil)
	f.provider.
		On("Refresh", mock.Anything, testLeagueType).
		Return(errors.New("feed down")).
		Once()

	f.scheduler.refresh(context.Background(), testLeagueType)

	locked, err := f.gate.IsLocked(context.Background(), testLeagueType)
	if err != nil || locked {
		t.Fatalf("lock must be released after a failed refresh: locked=%v err=%v", locked, err)
	}
}

func TestLifecycleScheduler_Refresh_SkipsWhileLocked(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, nil)
	ctx := context.Background()
	if err := f.gate.Acquire(ctx, testLeagueType); err != nil {
		t.Fatalf("acquire gate: %v", err)
	}

	f.scheduler.refresh(ctx, testLeagueType)

	locked, err := f.gate.IsLocked(ctx, testLeagueType)
	if err != nil || !locked {
		t.Fatalf("a skipped refresh must not release someone else's lock: locked=%v err=%v", locked, err)
	}
}

func TestLifecycleScheduler_Run_ClearsLocksAndRefreshesAtBoot(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, map[string]string{
		kvstate.LockedKey(testLeagueType): "1",
	})
	scored := f.expectRefresh(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.scheduler.Run(ctx)
	}()

	waitFor(t, scored, "startup refresh")
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

func TestNewLifecycleScheduler_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewLifecycleScheduler(SchedulerConfig{}, SchedulerDeps{}, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLifecycleScheduler_Tick_RetriesFailedBootRefresh(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(t, nil)
	f.scheduler.staleness = NewIdleStalenessChecker(f.state, time.Hour, 2*time.Minute)
	ctx := context.Background()

	failed := make(chan struct{})
	f.provider.
		On("Refresh", mock.Anything, testLeagueType).
		Run(func(mock.Arguments) { close(failed) }).
		Return(ErrProviderUnavailable).
		Once()
	if err := f.scheduler.boot(ctx); err != nil {
		t.Fatalf("boot: %v", err)
	}
	waitFor(t, failed, "boot refresh")
	if err := f.gate.AwaitUnlocked(ctx, testLeagueType); err != nil {
		t.Fatalf("await unlocked: %v", err)
	}

	scored := f.expectRefresh(t)
	f.scheduler.Tick(ctx)
	waitFor(t, scored, "retried refresh")
}

func TestLifecycleScheduler_BusyPoolRequeuesRefresh(t *testing.T) {
	t.Parallel()

	const other = "LaLiga"
	state := kvmemory.NewStore(nil)
	provider := usecasemock.NewDataProvider(t)
	scheduler, err := NewLifecycleScheduler(SchedulerConfig{TickInterval: 10 * time.Second, Workers: 1}, SchedulerDeps{
		LeagueTypes: memory.NewLeagueTypeRepository([]leaguetype.LeagueType{
			{Name: testLeagueType, URL: "http://feed.local/bundesliga", Enabled: true},
			{Name: other, URL: "http://feed.local/laliga", Enabled: true},
		}),
		State:    state,
		Gate:     NewRefreshGate(state, nil, WithLockPollInterval(5*time.Millisecond)),
		Provider: provider,
	}, nil)
	if err != nil {
		t.Fatalf("new lifecycle scheduler: %v", err)
	}
	t.Cleanup(scheduler.Stop)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	provider.
		On("Refresh", mock.Anything, testLeagueType).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).
		Once()
	refreshed := make(chan struct{})
	provider.
		On("Refresh", mock.Anything, other).
		Run(func(mock.Arguments) { close(refreshed) }).
		Return(nil).
		Once()

	scheduler.dispatchRefresh(ctx, testLeagueType, "startup")
	waitFor(t, started, "first refresh")
	scheduler.dispatchRefresh(ctx, other, "countdown")

	flag, _, err := state.Get(ctx, kvstate.UpdateKey(other))
	if err != nil || flag != kvstate.UpdateRequested {
		t.Fatalf("rejected refresh must be requeued: flag=%q err=%v", flag, err)
	}

	close(release)
	deadline := time.After(2 * time.Second)
	for {
		scheduler.Tick(ctx)
		select {
		case <-refreshed:
			return
		case <-deadline:
			t.Fatalf("requeued refresh never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
