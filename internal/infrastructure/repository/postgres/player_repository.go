package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
	qb "github.com/riskibarqy/fantasy-matchday/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ListByUIDs(ctx context.Context, leagueType string, uids []string) ([]player.Player, error) {
	if len(uids) == 0 {
		return []player.Player{}, nil
	}

	const query = `
SELECT uid, league_type, name, club, position, last_match, total_points, active
FROM players
WHERE league_type = $1
  AND uid = ANY($2)`

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueType, pq.Array(uids)); err != nil {
		return nil, fmt.Errorf("list players by uids: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			UID:         row.UID,
			LeagueType:  row.LeagueType,
			Name:        row.Name,
			Club:        row.Club,
			Position:    player.Position(row.Position),
			LastMatch:   row.LastMatch,
			TotalPoints: row.TotalPoints,
			Exists:      row.Active,
		})
	}
	return out, nil
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	if len(players) == 0 {
		return nil
	}

	const upsertSuffix = `
ON CONFLICT (league_type, uid)
DO UPDATE SET
    name = EXCLUDED.name,
    club = EXCLUDED.club,
    position = EXCLUDED.position,
    last_match = EXCLUDED.last_match,
    total_points = EXCLUDED.total_points,
    active = EXCLUDED.active`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for player upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// A multi-row upsert may not touch the same key twice, so the last entry per uid wins.
	byUID := make(map[string]int, len(players))
	rows := make([]playerTableModel, 0, len(players))
	for _, p := range players {
		row := playerTableModel{
			UID:         p.UID,
			LeagueType:  p.LeagueType,
			Name:        p.Name,
			Club:        p.Club,
			Position:    string(p.Position),
			LastMatch:   p.LastMatch,
			TotalPoints: p.TotalPoints,
			Active:      p.Exists,
		}
		key := p.LeagueType + "/" + p.UID
		if idx, ok := byUID[key]; ok {
			rows[idx] = row
			continue
		}
		byUID[key] = len(rows)
		rows = append(rows, row)
	}

	for batch := range slices.Chunk(rows, insertBatchSize) {
		query, args, err := qb.InsertModels("players", batch, upsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert players query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert %d players: %w", len(batch), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit player upsert: %w", err)
	}
	return nil
}
