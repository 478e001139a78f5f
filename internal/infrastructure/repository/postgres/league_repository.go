package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	qb "github.com/riskibarqy/fantasy-matchday/internal/platform/querybuilder"
)

var (
	leagueTypeColumns = qb.ColumnsOf(leagueTypeTableModel{})
	leagueColumns     = qb.ColumnsOf(leagueTableModel{})
)

type LeagueTypeRepository struct {
	db *sqlx.DB
}

func NewLeagueTypeRepository(db *sqlx.DB) *LeagueTypeRepository {
	return &LeagueTypeRepository{db: db}
}

func (r *LeagueTypeRepository) ListEnabled(ctx context.Context) ([]leaguetype.LeagueType, error) {
	query, args, err := qb.Select(leagueTypeColumns...).
		From("league_types").
		Where(qb.Expr("enabled = TRUE")).
		OrderBy("name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league types query: %w", err)
	}

	var rows []leagueTypeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list enabled league types: %w", err)
	}

	out := make([]leaguetype.LeagueType, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaguetype.LeagueType{Name: row.Name, URL: row.FeedURL, Enabled: row.Enabled})
	}
	return out, nil
}

func (r *LeagueTypeRepository) GetByName(ctx context.Context, name string) (leaguetype.LeagueType, bool, error) {
	query, args, err := qb.Select(leagueTypeColumns...).
		From("league_types").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return leaguetype.LeagueType{}, false, fmt.Errorf("build get league type query: %w", err)
	}

	var row leagueTypeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaguetype.LeagueType{}, false, nil
		}
		return leaguetype.LeagueType{}, false, fmt.Errorf("get league type: %w", err)
	}
	return leaguetype.LeagueType{Name: row.Name, URL: row.FeedURL, Enabled: row.Enabled}, true, nil
}

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	query, args, err := qb.Select(leagueColumns...).
		From("leagues").
		Where(qb.Eq("id", leagueID)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}
	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) ListActiveByType(ctx context.Context, leagueType string) ([]league.League, error) {
	query, args, err := qb.Select(leagueColumns...).
		From("leagues").
		Where(qb.Eq("league_type", leagueType), qb.Expr("archived = FALSE")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active leagues by type: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:   row.ID,
		Type: row.LeagueType,
		Name: row.Name,
		Settings: league.Settings{
			Transfers:         row.Transfers,
			DuplicatePlayers:  row.DuplicatePlayers,
			StarredPercentage: row.StarredPercentage,
			PredictExact:      row.PredictExact,
			PredictDifference: row.PredictDifference,
			PredictWinner:     row.PredictWinner,
			Top11:             row.Top11,
			Archived:          row.Archived,
		},
	}
}
