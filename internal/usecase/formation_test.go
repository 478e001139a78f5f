package usecase

import (
	"fmt"
	"testing"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/squad"
)

func fourteenPlayerSquad() []SquadEntry {
	return []SquadEntry{
		{PlayerUID: "gk1", Position: player.PositionGoalkeeper, LastMatch: 7},
		{PlayerUID: "gk2", Position: player.PositionGoalkeeper, LastMatch: 3},
		{PlayerUID: "d1", Position: player.PositionDefender, LastMatch: 1},
		{PlayerUID: "d2", Position: player.PositionDefender, LastMatch: 9},
		{PlayerUID: "d3", Position: player.PositionDefender, LastMatch: 4},
		{PlayerUID: "d4", Position: player.PositionDefender, LastMatch: 6},
		{PlayerUID: "d5", Position: player.PositionDefender, LastMatch: 5},
		{PlayerUID: "m1", Position: player.PositionMidfielder, LastMatch: 2},
		{PlayerUID: "m2", Position: player.PositionMidfielder, LastMatch: 11},
		{PlayerUID: "m3", Position: player.PositionMidfielder, LastMatch: 8},
		{PlayerUID: "m4", Position: player.PositionMidfielder, LastMatch: 10},
		{PlayerUID: "m5", Position: player.PositionMidfielder, LastMatch: 12},
		{PlayerUID: "a1", Position: player.PositionAttacker, LastMatch: 13},
		{PlayerUID: "a2", Position: player.PositionAttacker, LastMatch: 14},
	}
}

func rolesByPlayer(assignments []Assignment) map[string]squad.Role {
	out := make(map[string]squad.Role, len(assignments))
	for _, a := range assignments {
		out[a.PlayerUID] = a.Role
	}
	return out
}

func TestAssignTop11_DefaultFormation(t *testing.T) {
	t.Parallel()

	got := AssignTop11(fourteenPlayerSquad(), leagueuser.DefaultFormation())
	if len(got) != 14 {
		t.Fatalf("unexpected assignment count: got=%d want=14", len(got))
	}

	starters, bench := 0, 0
	for _, a := range got {
		if a.Role.IsBench() {
			bench++
			continue
		}
		starters++
	}
	if starters != 11 || bench != 3 {
		t.Fatalf("unexpected split: starters=%d bench=%d", starters, bench)
	}

	roles := rolesByPlayer(got)
	for _, uid := range []string{"d2", "d4", "d5", "d3"} {
		if roles[uid] != squad.RoleForPosition(player.PositionDefender) {
			t.Fatalf("expected %s to start as defender, got=%s", uid, roles[uid])
		}
	}
	for _, uid := range []string{"gk2", "d1", "m1"} {
		if roles[uid] != squad.RoleBench {
			t.Fatalf("expected %s on the bench, got=%s", uid, roles[uid])
		}
	}
}

func TestAssignTop11_StarredPlayerGetsPriority(t *testing.T) {
	t.Parallel()

	entries := []SquadEntry{
		{PlayerUID: "gk1", Position: player.PositionGoalkeeper, LastMatch: 7},
		{PlayerUID: "gk2", Position: player.PositionGoalkeeper, LastMatch: 4, Starred: true},
	}
	roles := rolesByPlayer(AssignTop11(entries, leagueuser.DefaultFormation()))
	if roles["gk2"] != squad.RoleForPosition(player.PositionGoalkeeper) {
		t.Fatalf("expected starred keeper to start, got=%s", roles["gk2"])
	}
	if roles["gk1"] != squad.RoleBench {
		t.Fatalf("expected unstarred keeper on the bench, got=%s", roles["gk1"])
	}
}

func TestAssignTop11_TiesBreakByPlayerUID(t *testing.T) {
	t.Parallel()

	entries := []SquadEntry{
		{PlayerUID: "gk-b", Position: player.PositionGoalkeeper, LastMatch: 5},
		{PlayerUID: "gk-a", Position: player.PositionGoalkeeper, LastMatch: 5},
	}
	for i := 0; i < 5; i++ {
		roles := rolesByPlayer(AssignTop11(entries, leagueuser.DefaultFormation()))
		if roles["gk-a"].IsBench() || !roles["gk-b"].IsBench() {
			t.Fatalf("unexpected tie break on run %d: %v", i, roles)
		}
	}
}

func TestAssignTop11_EdgeCases(t *testing.T) {
	t.Parallel()

	if got := AssignTop11(nil, leagueuser.DefaultFormation()); len(got) != 0 {
		t.Fatalf("expected empty assignment for empty squad, got=%v", got)
	}

	entries := []SquadEntry{
		{PlayerUID: "d1", Position: player.PositionDefender, LastMatch: 3},
		{PlayerUID: "x1", Position: player.Position("coach"), LastMatch: 30},
		{PlayerUID: "m1", Position: player.PositionMidfielder, LastMatch: 2},
	}
	roles := rolesByPlayer(AssignTop11(entries, leagueuser.Formation{Goalkeeper: 1, Defender: 9, Midfielder: -2, Attacker: 2}))
	if roles["d1"].IsBench() {
		t.Fatalf("expected defender to start with spare quota")
	}
	if !roles["m1"].IsBench() {
		t.Fatalf("negative quota must act as zero, got=%s", roles["m1"])
	}
	if !roles["x1"].IsBench() {
		t.Fatalf("unknown position must be benched, got=%s", roles["x1"])
	}
}

func TestAssignTop11_StartersWithinQuota(t *testing.T) {
	t.Parallel()

	squadEntries := fourteenPlayerSquad()
	for g := 0; g <= 2; g++ {
		for d := 0; d <= 6; d++ {
			for m := 0; m <= 6; m++ {
				for a := 0; a <= 3; a++ {
					formation := leagueuser.Formation{Goalkeeper: g, Defender: d, Midfielder: m, Attacker: a}
					for n := 0; n <= len(squadEntries); n += 7 {
						t.Run(fmt.Sprintf("%v/n=%d", formation.Slice(), n), func(t *testing.T) {
							assertWithinQuota(t, AssignTop11(squadEntries[:n], formation), formation, n)
						})
					}
				}
			}
		}
	}
}

func assertWithinQuota(t *testing.T, assignments []Assignment, formation leagueuser.Formation, squadSize int) {
	t.Helper()

	if len(assignments) != squadSize {
		t.Fatalf("every player needs a role: got=%d want=%d", len(assignments), squadSize)
	}
	perPosition := make(map[squad.Role]int)
	starters := 0
	for _, a := range assignments {
		if a.Role.IsBench() {
			continue
		}
		starters++
		perPosition[a.Role]++
	}
	if starters > formation.Starters() || starters > squadSize {
		t.Fatalf("too many starters: got=%d quota=%d squad=%d", starters, formation.Starters(), squadSize)
	}
	for _, pos := range player.OrderedPositions {
		if perPosition[squad.RoleForPosition(pos)] > formation.Quota(pos) {
			t.Fatalf("position %s over quota: got=%d quota=%d", pos, perPosition[squad.RoleForPosition(pos)], formation.Quota(pos))
		}
	}
}
