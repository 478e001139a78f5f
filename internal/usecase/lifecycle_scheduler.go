package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

const (
	defaultSchedulerTick    = 10 * time.Second
	defaultSchedulerWorkers = 4
)

type refreshLock interface {
	Acquire(ctx context.Context, leagueType string) error
	Release(ctx context.Context, leagueType string) error
	ResetAll(ctx context.Context, leagueTypes []string) error
}

type stoppable interface {
	Stop() bool
}

// SchedulerDeps are the collaborators the lifecycle scheduler drives.
type SchedulerDeps struct {
	LeagueTypes leaguetype.Repository
	State       kvstate.Store
	Gate        refreshLock
	Provider    DataProvider
	Scorer      ScoringRunner
	Staleness   StalenessChecker
	Usage       UsageReporter
}

type SchedulerConfig struct {
	TickInterval time.Duration
	Workers      int
}

// LifecycleScheduler ticks every league type's countdown and triggers refreshes at phase boundaries,
// on request and when data goes stale.
type LifecycleScheduler struct {
	leagueTypes leaguetype.Repository
	state       kvstate.Store
	gate        refreshLock
	provider    DataProvider
	scorer      ScoringRunner
	staleness   StalenessChecker
	usage       UsageReporter
	logger      *logging.Logger
	tick        time.Duration
	pool        *ants.Pool

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) stoppable

	mu        sync.Mutex
	baseCtx   context.Context
	timers    map[uint64]stoppable
	nextTimer uint64
	stopped   bool
	weekday   time.Weekday
	dayKnown  bool
}

func NewLifecycleScheduler(cfg SchedulerConfig, deps SchedulerDeps, logger *logging.Logger) (*LifecycleScheduler, error) {
	if deps.LeagueTypes == nil || deps.State == nil || deps.Gate == nil || deps.Provider == nil {
		return nil, fmt.Errorf("%w: scheduler requires league types, state store, gate and provider", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TickInterval < time.Second {
		cfg.TickInterval = defaultSchedulerTick
	}
	if cfg.Workers < 1 {
		cfg.Workers = defaultSchedulerWorkers
	}

	workerPool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create refresh worker pool: %w", err)
	}

	return &LifecycleScheduler{
		leagueTypes: deps.LeagueTypes,
		state:       deps.State,
		gate:        deps.Gate,
		provider:    deps.Provider,
		scorer:      deps.Scorer,
		staleness:   deps.Staleness,
		usage:       deps.Usage,
		logger:      logger,
		tick:        cfg.TickInterval,
		pool:        workerPool,
		now:         time.Now,
		afterFunc: func(d time.Duration, f func()) stoppable {
			return time.AfterFunc(d, f)
		},
		baseCtx: context.Background(),
		timers:  make(map[uint64]stoppable),
	}, nil
}

// Run clears stale locks, refreshes every enabled league type once and then ticks until ctx ends.
func (s *LifecycleScheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	if err := s.boot(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *LifecycleScheduler) boot(ctx context.Context) error {
	leagueTypes, err := s.leagueTypes.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled league types: %w", err)
	}

	names := make([]string, 0, len(leagueTypes))
	for _, lt := range leagueTypes {
		names = append(names, lt.Name)
	}
	if err := s.gate.ResetAll(ctx, names); err != nil {
		return fmt.Errorf("reset refresh locks: %w", err)
	}

	s.weekday = s.now().Weekday()
	s.dayKnown = true
	for _, name := range names {
		s.dispatchRefresh(ctx, name, "startup")
	}
	s.logger.InfoContext(ctx, "lifecycle scheduler started", "league_types", len(names), "tick", s.tick.String())
	return nil
}

// Tick runs one scheduler step for every enabled league type. Refreshes it triggers run in the
// background and are not awaited.
func (s *LifecycleScheduler) Tick(ctx context.Context) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LifecycleScheduler.Tick")
	defer span.End()

	rollover := s.checkRollover(ctx)

	leagueTypes, err := s.leagueTypes.ListEnabled(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list enabled league types failed", "error", err)
		return
	}

	p := pool.New().WithMaxGoroutines(max(len(leagueTypes), 1))
	for _, lt := range leagueTypes {
		p.Go(func() {
			if !rollover {
				s.checkUpdate(ctx, lt.Name)
			}
			s.advanceCountdown(ctx, lt.Name)
		})
	}
	p.Wait()
}

// Stop cancels pending deferred refreshes and drains the worker pool.
func (s *LifecycleScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.pool.Release()
}

// PendingRefreshes is the number of deferred refreshes waiting for their boundary.
func (s *LifecycleScheduler) PendingRefreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *LifecycleScheduler) checkRollover(ctx context.Context) bool {
	today := s.now()

	s.mu.Lock()
	if !s.dayKnown {
		s.weekday = today.Weekday()
		s.dayKnown = true
		s.mu.Unlock()
		return false
	}
	if today.Weekday() == s.weekday {
		s.mu.Unlock()
		return false
	}
	s.weekday = today.Weekday()
	s.mu.Unlock()

	if s.usage != nil {
		reportCtx := context.WithoutCancel(ctx)
		go func() {
			if err := s.usage.ReportDaily(reportCtx, today); err != nil {
				s.logger.WarnContext(reportCtx, "daily usage report failed", "error", err)
			}
		}()
	}
	return true
}

func (s *LifecycleScheduler) checkUpdate(ctx context.Context, leagueType string) {
	key := kvstate.UpdateKey(leagueType)
	flag, ok, err := s.state.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "read update flag failed", "league_type", leagueType, "error", err)
		return
	}
	requested := ok && flag == kvstate.UpdateRequested

	stale := false
	if s.staleness != nil {
		left, err := s.staleness.TimeUntilUpdate(ctx, leagueType)
		if err != nil {
			s.logger.WarnContext(ctx, "staleness check failed", "league_type", leagueType, "error", err)
		} else {
			stale = left < 0
		}
	}

	if !ok || flag != kvstate.UpdateCleared {
		if err := s.state.Set(ctx, key, kvstate.UpdateCleared); err != nil {
			s.logger.WarnContext(ctx, "reset update flag failed", "league_type", leagueType, "error", err)
		}
	}
	if requested || stale {
		s.logger.InfoContext(ctx, "updating data now", "league_type", leagueType, "requested", requested, "stale", stale)
		s.dispatchRefresh(ctx, leagueType, "update")
	}
}

// advanceCountdown lowers the countdown by one tick. When the boundary falls inside the next tick
// a single deferred refresh is scheduled for the exact second; the countdown then drops to zero or
// below and stays there until a refresh stores a new one.
func (s *LifecycleScheduler) advanceCountdown(ctx context.Context, leagueType string) {
	countdown, ok, err := kvstate.GetInt(ctx, s.state, kvstate.CountdownKey(leagueType))
	if err != nil {
		s.logger.WarnContext(ctx, "read countdown failed", "league_type", leagueType, "error", err)
		return
	}
	if !ok || countdown <= 0 {
		return
	}

	next := countdown - int64(s.tick/time.Second)
	if err := s.state.Set(ctx, kvstate.CountdownKey(leagueType), kvstate.FormatInt(next)); err != nil {
		s.logger.WarnContext(ctx, "store countdown failed", "league_type", leagueType, "error", err)
		return
	}
	if next > 0 {
		return
	}

	open, _, err := kvstate.GetBool(ctx, s.state, kvstate.TransferOpenKey(leagueType))
	if err != nil {
		s.logger.WarnContext(ctx, "read transfer state failed", "league_type", leagueType, "error", err)
	}
	boundary := "end of matchday"
	if open {
		boundary = "start of matchday"
	}
	s.logger.InfoContext(ctx, "predicting phase boundary", "league_type", leagueType, "boundary", boundary, "seconds", countdown)
	s.scheduleRefresh(leagueType, time.Duration(countdown)*time.Second)
}

func (s *LifecycleScheduler) scheduleRefresh(leagueType string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.nextTimer++
	id := s.nextTimer
	s.timers[id] = s.afterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		ctx := s.baseCtx
		s.mu.Unlock()
		s.dispatchRefresh(ctx, leagueType, "countdown")
	})
}

func (s *LifecycleScheduler) dispatchRefresh(ctx context.Context, leagueType, reason string) {
	taskCtx := context.WithoutCancel(ctx)
	if err := s.pool.Submit(func() {
		pyroscope.TagWrapper(taskCtx, pyroscope.Labels("league_type", leagueType), func(ctx context.Context) {
			s.refresh(ctx, leagueType)
		})
	}); err != nil {
		s.logger.WarnContext(ctx, "refresh not dispatched", "league_type", leagueType, "reason", reason, "error", err)
		if errors.Is(err, ants.ErrPoolOverload) {
			s.requeueRefresh(taskCtx, leagueType)
		}
	}
}

// requeueRefresh raises the update flag so the next tick dispatches the refresh a busy pool turned
// away. Deferred boundary refreshes have already consumed their countdown and would be lost otherwise.
func (s *LifecycleScheduler) requeueRefresh(ctx context.Context, leagueType string) {
	if err := s.state.Set(ctx, kvstate.UpdateKey(leagueType), kvstate.UpdateRequested); err != nil {
		s.logger.ErrorContext(ctx, "requeue refresh failed", "league_type", leagueType, "error", err)
	}
}

// refresh holds the gate while the provider rewrites the league type, then rescores it.
func (s *LifecycleScheduler) refresh(ctx context.Context, leagueType string) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LifecycleScheduler.refresh", leagueTypeAttr(leagueType))
	defer span.End()

	if err := s.gate.Acquire(ctx, leagueType); err != nil {
		if errors.Is(err, ErrLockHeld) {
			s.logger.InfoContext(ctx, "refresh already running", "league_type", leagueType)
			return
		}
		s.logger.ErrorContext(ctx, "acquire refresh lock failed", "league_type", leagueType, "error", err)
		return
	}

	err := s.provider.Refresh(ctx, leagueType)
	if releaseErr := s.gate.Release(ctx, leagueType); releaseErr != nil {
		s.logger.ErrorContext(ctx, "release refresh lock failed", "league_type", leagueType, "error", releaseErr)
	}
	if err != nil {
		if !errors.Is(err, ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		s.logger.ErrorContext(ctx, "refresh failed", "league_type", leagueType, "error", err)
		return
	}

	if s.scorer == nil {
		return
	}
	if err := s.scorer.RunScoringPass(ctx, leagueType); err != nil {
		s.logger.ErrorContext(ctx, "scoring pass failed", "league_type", leagueType, "error", err)
	}
}
