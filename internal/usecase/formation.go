package usecase

import (
	"sort"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/player"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/squad"
)

// SquadEntry is a squad slot joined with the player's natural position and latest score.
type SquadEntry struct {
	PlayerUID string
	Position  player.Position
	LastMatch int
	Starred   bool
}

type Assignment struct {
	PlayerUID string
	Role      squad.Role
}

// selectionScore doubles the latest score of starred players.
func selectionScore(e SquadEntry) int {
	if e.Starred {
		return e.LastMatch * 2
	}
	return e.LastMatch
}

// AssignTop11 picks starters per position by selection score until the formation quota is filled.
// Everyone else, including players without a known position, goes to the bench.
// The result lists starters in position order followed by the bench.
func AssignTop11(entries []SquadEntry, formation leagueuser.Formation) []Assignment {
	if len(entries) == 0 {
		return nil
	}
	quota := formation.Normalized()

	byPosition := make(map[player.Position][]SquadEntry, len(player.OrderedPositions))
	bench := make([]Assignment, 0, len(entries))
	for _, entry := range entries {
		if _, ok := player.AllPositions[entry.Position]; !ok {
			bench = append(bench, Assignment{PlayerUID: entry.PlayerUID, Role: squad.RoleBench})
			continue
		}
		byPosition[entry.Position] = append(byPosition[entry.Position], entry)
	}

	out := make([]Assignment, 0, len(entries))
	for _, pos := range player.OrderedPositions {
		group := byPosition[pos]
		sort.SliceStable(group, func(i, j int) bool {
			si, sj := selectionScore(group[i]), selectionScore(group[j])
			if si != sj {
				return si > sj
			}
			return group[i].PlayerUID < group[j].PlayerUID
		})

		limit := quota.Quota(pos)
		for i, entry := range group {
			if i < limit {
				out = append(out, Assignment{PlayerUID: entry.PlayerUID, Role: squad.RoleForPosition(pos)})
				continue
			}
			bench = append(bench, Assignment{PlayerUID: entry.PlayerUID, Role: squad.RoleBench})
		}
	}

	sort.SliceStable(bench, func(i, j int) bool { return bench[i].PlayerUID < bench[j].PlayerUID })
	return append(out, bench...)
}
