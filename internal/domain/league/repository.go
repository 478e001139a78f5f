package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, leagueID int64) (League, bool, error)
	// ListActiveByType returns non-archived leagues of the given league type ordered by id.
	ListActiveByType(ctx context.Context, leagueType string) ([]League, error)
}
