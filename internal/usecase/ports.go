package usecase

import (
	"context"
	"time"
)

// DataProvider refreshes one league type's external data into storage.
type DataProvider interface {
	Refresh(ctx context.Context, leagueType string) error
}

// ScoringRunner recomputes points for a league id or a league type name.
type ScoringRunner interface {
	RunScoringPass(ctx context.Context, target string) error
}

// UsageReporter compiles the daily usage summary when the scheduler sees a new day.
type UsageReporter interface {
	ReportDaily(ctx context.Context, day time.Time) error
}

// StalenessChecker reports how long until a league type's data must be refreshed.
// A negative duration means the data is already stale.
type StalenessChecker interface {
	TimeUntilUpdate(ctx context.Context, leagueType string) (time.Duration, error)
}

// FeedProvider fetches the raw league feed from its source URL.
type FeedProvider interface {
	FetchFeed(ctx context.Context, url string) (ExternalFeed, error)
}

type ExternalFeed struct {
	TransferOpen     bool
	CountdownSeconds int64
	Players          []ExternalPlayer
	Clubs            []ExternalClubResult
}

type ExternalPlayer struct {
	UID         string
	Name        string
	Club        string
	Position    string
	LastMatch   int
	TotalPoints int
}

type ExternalClubResult struct {
	Club     string
	Opponent string
	IsHome   bool
	Home     *int
	Away     *int
}
