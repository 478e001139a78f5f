package prediction

import "context"

type Repository interface {
	ListLive(ctx context.Context, leagueID, userID int64) ([]Prediction, error)
	ListHistorical(ctx context.Context, leagueID, userID int64, matchday int) ([]Prediction, error)
	// ArchiveLive copies live predictions of the league into the historical table and clears them.
	ArchiveLive(ctx context.Context, leagueID int64, matchday int, at int64) error
}

type ResultRepository interface {
	ListLiveHomeResults(ctx context.Context, leagueType string) ([]ClubResult, error)
	ListHistoricalHomeResults(ctx context.Context, leagueType string, at int64) ([]ClubResult, error)
	ReplaceLive(ctx context.Context, leagueType string, results []ClubResult) error
	ArchiveLive(ctx context.Context, leagueType string, at int64) error
}
