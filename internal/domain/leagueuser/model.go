package leagueuser

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
)

var ErrInvalidFormation = errors.New("invalid formation")

// Formation is the starter quota per position.
type Formation struct {
	Goalkeeper int
	Defender   int
	Midfielder int
	Attacker   int
}

// DefaultFormation is the 1-4-4-2 quota new league members start with.
func DefaultFormation() Formation {
	return Formation{Goalkeeper: 1, Defender: 4, Midfielder: 4, Attacker: 2}
}

// FormationFromSlice builds a formation from the legacy [gk, def, mid, att] encoding.
func FormationFromSlice(values []int) (Formation, error) {
	if len(values) != 4 {
		return Formation{}, fmt.Errorf("%w: expected 4 values, got %d", ErrInvalidFormation, len(values))
	}
	return Formation{
		Goalkeeper: values[0],
		Defender:   values[1],
		Midfielder: values[2],
		Attacker:   values[3],
	}, nil
}

// Normalized clamps negative quotas to zero.
func (f Formation) Normalized() Formation {
	return Formation{
		Goalkeeper: max(f.Goalkeeper, 0),
		Defender:   max(f.Defender, 0),
		Midfielder: max(f.Midfielder, 0),
		Attacker:   max(f.Attacker, 0),
	}
}

func (f Formation) Validate() error {
	if f.Goalkeeper < 0 || f.Defender < 0 || f.Midfielder < 0 || f.Attacker < 0 {
		return fmt.Errorf("%w: negative quota %v", ErrInvalidFormation, f.Slice())
	}
	return nil
}

func (f Formation) Quota(pos player.Position) int {
	switch pos {
	case player.PositionGoalkeeper:
		return f.Goalkeeper
	case player.PositionDefender:
		return f.Defender
	case player.PositionMidfielder:
		return f.Midfielder
	case player.PositionAttacker:
		return f.Attacker
	default:
		return 0
	}
}

func (f Formation) Starters() int {
	n := f.Normalized()
	return n.Goalkeeper + n.Defender + n.Midfielder + n.Attacker
}

func (f Formation) Slice() []int {
	return []int{f.Goalkeeper, f.Defender, f.Midfielder, f.Attacker}
}

// LeagueUser is a user's membership in a fantasy league with season-cumulative totals.
type LeagueUser struct {
	LeagueID         int64
	UserID           int64
	FantasyPoints    int
	PredictionPoints int
	Points           int
	Money            int64
	Formation        Formation
}
