package player

import "context"

type Repository interface {
	ListByUIDs(ctx context.Context, leagueType string, uids []string) ([]Player, error)
	UpsertMany(ctx context.Context, players []Player) error
}
