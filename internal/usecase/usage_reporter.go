package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

// DailyUsage is the membership count per league type on a given day.
type DailyUsage struct {
	Day          time.Time
	LeagueCounts map[string]int
	MemberCounts map[string]int
}

// MembershipUsageReporter logs how many active leagues and members each league type has.
type MembershipUsageReporter struct {
	leagueTypes leaguetype.Repository
	leagues     league.Repository
	users       leagueuser.Repository
	logger      *logging.Logger
}

func NewMembershipUsageReporter(
	leagueTypes leaguetype.Repository,
	leagues league.Repository,
	users leagueuser.Repository,
	logger *logging.Logger,
) *MembershipUsageReporter {
	if logger == nil {
		logger = logging.Default()
	}
	return &MembershipUsageReporter{
		leagueTypes: leagueTypes,
		leagues:     leagues,
		users:       users,
		logger:      logger,
	}
}

func (r *MembershipUsageReporter) ReportDaily(ctx context.Context, day time.Time) error {
	usage, err := r.Collect(ctx, day)
	if err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "daily usage",
		"day", usage.Day.Format(time.DateOnly),
		"leagues", usage.LeagueCounts,
		"members", usage.MemberCounts,
	)
	return nil
}

func (r *MembershipUsageReporter) Collect(ctx context.Context, day time.Time) (DailyUsage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipUsageReporter.Collect")
	defer span.End()

	types, err := r.leagueTypes.ListEnabled(ctx)
	if err != nil {
		return DailyUsage{}, fmt.Errorf("list enabled league types: %w", err)
	}

	usage := DailyUsage{
		Day:          day,
		LeagueCounts: make(map[string]int, len(types)),
		MemberCounts: make(map[string]int, len(types)),
	}
	for _, lt := range types {
		leagues, err := r.leagues.ListActiveByType(ctx, lt.Name)
		if err != nil {
			return DailyUsage{}, fmt.Errorf("list leagues of %s: %w", lt.Name, err)
		}
		usage.LeagueCounts[lt.Name] = len(leagues)
		for _, lg := range leagues {
			members, err := r.users.ListByLeague(ctx, lg.ID)
			if err != nil {
				return DailyUsage{}, fmt.Errorf("list users of league %d: %w", lg.ID, err)
			}
			usage.MemberCounts[lt.Name] += len(members)
		}
	}
	return usage, nil
}
