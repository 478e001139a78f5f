package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
	qb "github.com/riskibarqy/fantasy-matchday/internal/platform/querybuilder"
)

var leagueUserColumns = qb.ColumnsOf(leagueUserTableModel{})

type LeagueUserRepository struct {
	db *sqlx.DB
}

func NewLeagueUserRepository(db *sqlx.DB) *LeagueUserRepository {
	return &LeagueUserRepository{db: db}
}

func (r *LeagueUserRepository) ListByLeague(ctx context.Context, leagueID int64) ([]leagueuser.LeagueUser, error) {
	query, args, err := qb.Select(leagueUserColumns...).
		From("league_users").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league users query: %w", err)
	}

	var rows []leagueUserTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league users: %w", err)
	}

	out := make([]leagueuser.LeagueUser, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueUserFromRow(row))
	}
	return out, nil
}

func (r *LeagueUserRepository) Get(ctx context.Context, leagueID, userID int64) (leagueuser.LeagueUser, bool, error) {
	query, args, err := qb.Select(leagueUserColumns...).
		From("league_users").
		Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return leagueuser.LeagueUser{}, false, fmt.Errorf("build get league user query: %w", err)
	}

	var row leagueUserTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leagueuser.LeagueUser{}, false, nil
		}
		return leagueuser.LeagueUser{}, false, fmt.Errorf("get league user: %w", err)
	}
	return leagueUserFromRow(row), true, nil
}

// SetFantasyPoints keeps points equal to fantasy plus prediction points.
func (r *LeagueUserRepository) SetFantasyPoints(ctx context.Context, leagueID, userID int64, fantasyPoints int) error {
	query, args, err := qb.Update("league_users").
		Set("fantasy_points", fantasyPoints).
		SetExpr("points", "? + prediction_points", fantasyPoints).
		Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set fantasy points query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set league user fantasy points: %w", err)
	}
	return nil
}

func (r *LeagueUserRepository) SetPredictionPoints(ctx context.Context, leagueID, userID int64, predictionPoints int) error {
	query, args, err := qb.Update("league_users").
		Set("prediction_points", predictionPoints).
		SetExpr("points", "fantasy_points + ?", predictionPoints).
		Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set prediction points query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set league user prediction points: %w", err)
	}
	return nil
}

func leagueUserFromRow(row leagueUserTableModel) leagueuser.LeagueUser {
	return leagueuser.LeagueUser{
		LeagueID:         row.LeagueID,
		UserID:           row.UserID,
		FantasyPoints:    row.FantasyPoints,
		PredictionPoints: row.PredictionPoints,
		Points:           row.Points,
		Money:            row.Money,
		Formation: leagueuser.Formation{
			Goalkeeper: row.FormationGK,
			Defender:   row.FormationDEF,
			Midfielder: row.FormationMID,
			Attacker:   row.FormationATT,
		},
	}
}
