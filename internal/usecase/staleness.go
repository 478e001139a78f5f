package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
)

const (
	defaultMaxIdleTransfer = time.Hour
	defaultMaxIdleMatchday = 2 * time.Minute

	// updateNow is reported for league types without a usable last refresh time.
	updateNow time.Duration = -1
)

// IdleStalenessChecker marks a league type stale once its last successful refresh is older than the
// idle limit of the current phase. Matchdays use the shorter limit so live scores stay fresh.
type IdleStalenessChecker struct {
	state           kvstate.Store
	maxIdleTransfer time.Duration
	maxIdleMatchday time.Duration
	now             func() time.Time
}

func NewIdleStalenessChecker(state kvstate.Store, maxIdleTransfer, maxIdleMatchday time.Duration) *IdleStalenessChecker {
	if maxIdleTransfer <= 0 {
		maxIdleTransfer = defaultMaxIdleTransfer
	}
	if maxIdleMatchday <= 0 {
		maxIdleMatchday = defaultMaxIdleMatchday
	}
	return &IdleStalenessChecker{
		state:           state,
		maxIdleTransfer: maxIdleTransfer,
		maxIdleMatchday: maxIdleMatchday,
		now:             time.Now,
	}
}

// TimeUntilUpdate is negative once data is stale. A league type whose refreshes never succeeded,
// or whose timestamp cannot be read back, is stale so the scheduler keeps retrying it.
func (c *IdleStalenessChecker) TimeUntilUpdate(ctx context.Context, leagueType string) (time.Duration, error) {
	last, ok, err := kvstate.GetInt(ctx, c.state, kvstate.LastUpdateKey(leagueType))
	if errors.Is(err, kvstate.ErrMalformedValue) {
		return updateNow, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read last update of %s: %w", leagueType, err)
	}
	if !ok {
		return updateNow, nil
	}
	open, _, err := kvstate.GetBool(ctx, c.state, kvstate.TransferOpenKey(leagueType))
	if err != nil {
		return 0, fmt.Errorf("read transfer state of %s: %w", leagueType, err)
	}

	limit := c.maxIdleMatchday
	if open {
		limit = c.maxIdleTransfer
	}
	idle := c.now().Sub(time.Unix(last, 0))
	return limit - idle, nil
}
