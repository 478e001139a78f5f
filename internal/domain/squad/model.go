package squad

import "github.com/riskibarqy/fantasy-matchday/internal/domain/player"

// Role is where a squad slot currently sits: a starting position or the bench.
type Role string

const RoleBench Role = "bench"

func RoleForPosition(pos player.Position) Role {
	return Role(pos)
}

func (r Role) IsBench() bool {
	return r == RoleBench
}

// Slot is one player in a user's fantasy squad.
type Slot struct {
	LeagueID  int64
	UserID    int64
	PlayerUID string
	Role      Role
	Starred   bool
}
