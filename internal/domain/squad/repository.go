package squad

import "context"

type Repository interface {
	ListByUser(ctx context.Context, leagueID, userID int64) ([]Slot, error)
	// UpdateRoles writes the given role per player uid; players not in the map keep their role.
	UpdateRoles(ctx context.Context, leagueID, userID int64, roles map[string]Role) error
}
