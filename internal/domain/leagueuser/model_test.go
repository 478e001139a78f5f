package leagueuser

import (
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
)

func TestFormation_NormalizedClampsNegatives(t *testing.T) {
	t.Parallel()

	got := Formation{Goalkeeper: -1, Defender: 4, Midfielder: -3, Attacker: 2}.Normalized()
	want := Formation{Goalkeeper: 0, Defender: 4, Midfielder: 0, Attacker: 2}
	if got != want {
		t.Fatalf("unexpected normalized formation: got=%v want=%v", got, want)
	}
	if got.Starters() != 6 {
		t.Fatalf("unexpected starters: got=%d want=6", got.Starters())
	}
}

func TestFormation_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultFormation().Validate(); err != nil {
		t.Fatalf("default formation should be valid: %v", err)
	}
	err := Formation{Defender: -1}.Validate()
	if !errors.Is(err, ErrInvalidFormation) {
		t.Fatalf("expected ErrInvalidFormation, got %v", err)
	}
}

func TestFormationFromSlice(t *testing.T) {
	t.Parallel()

	got, err := FormationFromSlice([]int{1, 3, 5, 2})
	if err != nil {
		t.Fatalf("parse formation: %v", err)
	}
	if got.Quota(player.PositionMidfielder) != 5 {
		t.Fatalf("unexpected midfielder quota: %d", got.Quota(player.PositionMidfielder))
	}
	if got.Quota(player.Position("bench")) != 0 {
		t.Fatalf("unknown positions must have zero quota")
	}

	if _, err := FormationFromSlice([]int{1, 4, 4}); !errors.Is(err, ErrInvalidFormation) {
		t.Fatalf("expected ErrInvalidFormation for short slice, got %v", err)
	}
}
