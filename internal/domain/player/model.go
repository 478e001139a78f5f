package player

import "fmt"

// Position represents football position categories used in fantasy rules.
type Position string

const (
	PositionGoalkeeper Position = "gk"
	PositionDefender   Position = "def"
	PositionMidfielder Position = "mid"
	PositionAttacker   Position = "att"
)

// OrderedPositions is the canonical goalkeeper, defender, midfielder, attacker order.
var OrderedPositions = []Position{
	PositionGoalkeeper,
	PositionDefender,
	PositionMidfielder,
	PositionAttacker,
}

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionAttacker:   {},
}

// Player is a real-world athlete in a league type's pool, refreshed by the data feed.
type Player struct {
	UID         string
	LeagueType  string
	Name        string
	Club        string
	Position    Position
	LastMatch   int
	TotalPoints int
	Exists      bool
}

func (p Player) Validate() error {
	if p.UID == "" {
		return fmt.Errorf("player uid is required")
	}
	if p.LeagueType == "" {
		return fmt.Errorf("player league type is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}

	return nil
}
