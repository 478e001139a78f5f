package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-matchday/internal/platform/querybuilder"
)

var pointsColumns = qb.ColumnsOf(pointsTableModel{})

type PointsRepository struct {
	db *sqlx.DB
}

func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

func (r *PointsRepository) GetLiveRecord(ctx context.Context, leagueID, userID int64) (scoring.Record, bool, error) {
	query, args, err := qb.Select(pointsColumns...).
		From("points").
		Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID), qb.IsNull("finalized_at")).
		OrderBy("matchday DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return scoring.Record{}, false, fmt.Errorf("build get live points query: %w", err)
	}

	var row pointsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Record{}, false, nil
		}
		return scoring.Record{}, false, fmt.Errorf("get live points: %w", err)
	}
	return recordFromRow(row), true, nil
}

func (r *PointsRepository) GetRecord(ctx context.Context, leagueID, userID int64, matchday int) (scoring.Record, bool, error) {
	query, args, err := qb.Select(pointsColumns...).
		From("points").
		Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID), qb.Eq("matchday", matchday)).
		ToSQL()
	if err != nil {
		return scoring.Record{}, false, fmt.Errorf("build get matchday points query: %w", err)
	}

	var row pointsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Record{}, false, nil
		}
		return scoring.Record{}, false, fmt.Errorf("get matchday points: %w", err)
	}
	return recordFromRow(row), true, nil
}

func (r *PointsRepository) LatestMatchday(ctx context.Context, leagueID int64) (int, bool, error) {
	query, args, err := qb.Select("MAX(matchday)").From("points").Where(qb.Eq("league_id", leagueID)).ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build latest matchday query: %w", err)
	}

	var latest sql.NullInt64
	if err := r.db.GetContext(ctx, &latest, query, args...); err != nil {
		return 0, false, fmt.Errorf("get latest matchday: %w", err)
	}
	if !latest.Valid {
		return 0, false, nil
	}
	return int(latest.Int64), true, nil
}

func (r *PointsRepository) HasLiveRecords(ctx context.Context, leagueID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM points WHERE league_id = $1 AND finalized_at IS NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, leagueID); err != nil {
		return false, fmt.Errorf("check live points: %w", err)
	}
	return exists, nil
}

func (r *PointsRepository) SetLiveFantasyPoints(ctx context.Context, leagueID, userID int64, matchday, fantasyPoints int) error {
	const query = `
INSERT INTO points (league_id, user_id, matchday, fantasy_points, prediction_points, points)
VALUES ($1, $2, $3, $4, 0, $4)
ON CONFLICT (league_id, user_id) WHERE finalized_at IS NULL
DO UPDATE SET
    fantasy_points = EXCLUDED.fantasy_points,
    points = EXCLUDED.fantasy_points + points.prediction_points`

	if _, err := r.db.ExecContext(ctx, query, leagueID, userID, matchday, fantasyPoints); err != nil {
		return fmt.Errorf("set live fantasy points: %w", err)
	}
	return nil
}

func (r *PointsRepository) SetLivePredictionPoints(ctx context.Context, leagueID, userID int64, matchday, predictionPoints int) error {
	const query = `
INSERT INTO points (league_id, user_id, matchday, fantasy_points, prediction_points, points)
VALUES ($1, $2, $3, 0, $4, $4)
ON CONFLICT (league_id, user_id) WHERE finalized_at IS NULL
DO UPDATE SET
    prediction_points = EXCLUDED.prediction_points,
    points = points.fantasy_points + EXCLUDED.prediction_points`

	if _, err := r.db.ExecContext(ctx, query, leagueID, userID, matchday, predictionPoints); err != nil {
		return fmt.Errorf("set live prediction points: %w", err)
	}
	return nil
}

func (r *PointsRepository) CreateLiveRecords(ctx context.Context, records []scoring.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for live points: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows := make([]pointsTableModel, len(records))
	for i, rec := range records {
		rows[i] = pointsTableModel{
			LeagueID:         rec.LeagueID,
			UserID:           rec.UserID,
			Matchday:         rec.Matchday,
			FantasyPoints:    rec.FantasyPoints,
			PredictionPoints: rec.PredictionPoints,
			Points:           rec.FantasyPoints + rec.PredictionPoints,
		}
	}

	for batch := range slices.Chunk(rows, insertBatchSize) {
		query, args, err := qb.InsertModels("points", batch, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build create live points query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("create %d live points rows: %w", len(batch), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit live points: %w", err)
	}
	return nil
}

func (r *PointsRepository) FinalizeLiveRecords(ctx context.Context, leagueID int64, at int64) error {
	query, args, err := qb.Update("points").
		Set("finalized_at", at).
		Where(qb.Eq("league_id", leagueID), qb.IsNull("finalized_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build finalize points query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("finalize live points: %w", err)
	}
	return nil
}

func recordFromRow(row pointsTableModel) scoring.Record {
	return scoring.Record{
		LeagueID:         row.LeagueID,
		UserID:           row.UserID,
		Matchday:         row.Matchday,
		FantasyPoints:    row.FantasyPoints,
		PredictionPoints: row.PredictionPoints,
		Points:           row.Points,
		Time:             nullInt64ToPtr(row.FinalizedAt),
	}
}
