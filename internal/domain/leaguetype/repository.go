package leaguetype

import "context"

type Repository interface {
	ListEnabled(ctx context.Context) ([]LeagueType, error)
	GetByName(ctx context.Context, name string) (LeagueType, bool, error)
}
