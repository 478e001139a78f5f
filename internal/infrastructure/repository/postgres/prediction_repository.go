package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/prediction"
	qb "github.com/riskibarqy/fantasy-matchday/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListLive(ctx context.Context, leagueID, userID int64) ([]prediction.Prediction, error) {
	const query = `
SELECT league_id, user_id, club, 0 AS matchday, home, away, NULL::BIGINT AS archived_at
FROM predictions
WHERE league_id = $1
  AND user_id = $2
ORDER BY club`

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueID, userID); err != nil {
		return nil, fmt.Errorf("list live predictions: %w", err)
	}
	return predictionsFromRows(rows), nil
}

func (r *PredictionRepository) ListHistorical(ctx context.Context, leagueID, userID int64, matchday int) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("league_id", "user_id", "club", "matchday", "home", "away", "archived_at").
		From("historical_predictions").
		Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID), qb.Eq("matchday", matchday)).
		OrderBy("club").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list historical predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list historical predictions: %w", err)
	}
	return predictionsFromRows(rows), nil
}

func (r *PredictionRepository) ArchiveLive(ctx context.Context, leagueID int64, matchday int, at int64) error {
	const archiveQuery = `
INSERT INTO historical_predictions (league_id, user_id, club, matchday, home, away, archived_at)
SELECT league_id, user_id, club, $2, home, away, $3
FROM predictions
WHERE league_id = $1
ON CONFLICT (league_id, user_id, matchday, club) DO NOTHING`

	clearQuery, clearArgs, err := qb.DeleteFrom("predictions").Where(qb.Eq("league_id", leagueID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear predictions query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for prediction archive: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, archiveQuery, leagueID, matchday, at); err != nil {
		return fmt.Errorf("archive predictions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear live predictions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prediction archive: %w", err)
	}
	return nil
}

type ClubResultRepository struct {
	db *sqlx.DB
}

func NewClubResultRepository(db *sqlx.DB) *ClubResultRepository {
	return &ClubResultRepository{db: db}
}

func (r *ClubResultRepository) ListLiveHomeResults(ctx context.Context, leagueType string) ([]prediction.ClubResult, error) {
	const query = `
SELECT league_type, club, opponent, team_score, opponent_score, is_home, NULL::BIGINT AS archived_at
FROM clubs
WHERE league_type = $1
  AND is_home = TRUE
ORDER BY club`

	var rows []clubResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueType); err != nil {
		return nil, fmt.Errorf("list live club results: %w", err)
	}
	return clubResultsFromRows(rows), nil
}

func (r *ClubResultRepository) ListHistoricalHomeResults(ctx context.Context, leagueType string, at int64) ([]prediction.ClubResult, error) {
	query, args, err := qb.Select("league_type", "club", "opponent", "team_score", "opponent_score", "is_home", "archived_at").
		From("historical_clubs").
		Where(qb.Eq("league_type", leagueType), qb.Expr("is_home = TRUE"), qb.Eq("archived_at", at)).
		OrderBy("club").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list historical club results query: %w", err)
	}

	var rows []clubResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list historical club results: %w", err)
	}
	return clubResultsFromRows(rows), nil
}

func (r *ClubResultRepository) ReplaceLive(ctx context.Context, leagueType string, results []prediction.ClubResult) error {
	clearQuery, clearArgs, err := qb.DeleteFrom("clubs").Where(qb.Eq("league_type", leagueType)).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear club results query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for club results: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear live club results: %w", err)
	}
	if len(results) > 0 {
		insert := qb.InsertInto("clubs").
			Columns("league_type", "club", "opponent", "team_score", "opponent_score", "is_home")
		for _, c := range results {
			insert.Values(leagueType, c.Club, c.Opponent, ptrToNullInt(c.Home), ptrToNullInt(c.Away), c.IsHome)
		}
		query, args, err := insert.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert club results query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert club results: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit club results: %w", err)
	}
	return nil
}

func (r *ClubResultRepository) ArchiveLive(ctx context.Context, leagueType string, at int64) error {
	const query = `
INSERT INTO historical_clubs (league_type, club, opponent, team_score, opponent_score, is_home, archived_at)
SELECT league_type, club, opponent, team_score, opponent_score, is_home, $2
FROM clubs
WHERE league_type = $1
ON CONFLICT (league_type, club, archived_at) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, leagueType, at); err != nil {
		return fmt.Errorf("archive club results: %w", err)
	}
	return nil
}

func predictionsFromRows(rows []predictionTableModel) []prediction.Prediction {
	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.Prediction{
			LeagueID: row.LeagueID,
			UserID:   row.UserID,
			Club:     row.Club,
			Matchday: row.Matchday,
			Home:     nullIntToPtr(row.Home),
			Away:     nullIntToPtr(row.Away),
			Time:     nullInt64ToPtr(row.ArchivedAt),
		})
	}
	return out
}

func clubResultsFromRows(rows []clubResultTableModel) []prediction.ClubResult {
	out := make([]prediction.ClubResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.ClubResult{
			LeagueType: row.LeagueType,
			Club:       row.Club,
			Opponent:   row.Opponent,
			Home:       nullIntToPtr(row.TeamScore),
			Away:       nullIntToPtr(row.OpponentScore),
			IsHome:     row.IsHome,
			Time:       nullInt64ToPtr(row.ArchivedAt),
		})
	}
	return out
}
