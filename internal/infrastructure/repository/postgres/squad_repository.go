package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/squad"
	qb "github.com/riskibarqy/fantasy-matchday/internal/platform/querybuilder"
)

type SquadRepository struct {
	db *sqlx.DB
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

func (r *SquadRepository) ListByUser(ctx context.Context, leagueID, userID int64) ([]squad.Slot, error) {
	query, args, err := qb.Select("league_id", "user_id", "player_uid", "role", "starred").
		From("squad_slots").
		Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID)).
		OrderBy("player_uid").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list squad slots query: %w", err)
	}

	var rows []squadSlotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list squad slots: %w", err)
	}

	out := make([]squad.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, squad.Slot{
			LeagueID:  row.LeagueID,
			UserID:    row.UserID,
			PlayerUID: row.PlayerUID,
			Role:      squad.Role(row.Role),
			Starred:   row.Starred,
		})
	}
	return out, nil
}

func (r *SquadRepository) UpdateRoles(ctx context.Context, leagueID, userID int64, roles map[string]squad.Role) error {
	if len(roles) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for squad roles: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for uid, role := range roles {
		query, args, err := qb.Update("squad_slots").
			Set("role", string(role)).
			Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID), qb.Eq("player_uid", uid)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update squad role query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update squad role of %s: %w", uid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit squad roles: %w", err)
	}
	return nil
}
