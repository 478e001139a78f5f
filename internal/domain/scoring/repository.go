package scoring

import "context"

type Repository interface {
	GetLiveRecord(ctx context.Context, leagueID, userID int64) (Record, bool, error)
	GetRecord(ctx context.Context, leagueID, userID int64, matchday int) (Record, bool, error)
	// LatestMatchday returns the highest matchday stored for the league, false when none exist.
	LatestMatchday(ctx context.Context, leagueID int64) (int, bool, error)
	HasLiveRecords(ctx context.Context, leagueID int64) (bool, error)

	// SetLiveFantasyPoints upserts the live row and recomputes its points from the prediction column.
	SetLiveFantasyPoints(ctx context.Context, leagueID, userID int64, matchday, fantasyPoints int) error
	// SetLivePredictionPoints upserts the live row and recomputes its points from the fantasy column.
	SetLivePredictionPoints(ctx context.Context, leagueID, userID int64, matchday, predictionPoints int) error

	CreateLiveRecords(ctx context.Context, records []Record) error
	// FinalizeLiveRecords stamps every live row of the league with the given unix time.
	FinalizeLiveRecords(ctx context.Context, leagueID int64, at int64) error
}
