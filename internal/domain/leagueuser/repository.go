package leagueuser

import "context"

type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]LeagueUser, error)
	Get(ctx context.Context, leagueID, userID int64) (LeagueUser, bool, error)
	// SetFantasyPoints stores the cumulative fantasy total and recomputes points.
	SetFantasyPoints(ctx context.Context, leagueID, userID int64, fantasyPoints int) error
	// SetPredictionPoints stores the cumulative prediction total and recomputes points.
	SetPredictionPoints(ctx context.Context, leagueID, userID int64, predictionPoints int) error
}
