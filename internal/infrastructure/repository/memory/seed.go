package memory

import (
	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leaguetype"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/leagueuser"
)

const (
	LeagueTypeBundesliga = "Bundesliga"
	LeagueIDDemo         = int64(1)
)

// SeedLeagueTypes returns the league types the in-memory backend starts with.
// feedURL is where the dev feed is served from.
func SeedLeagueTypes(feedURL string) []leaguetype.LeagueType {
	return []leaguetype.LeagueType{
		{Name: LeagueTypeBundesliga, URL: feedURL, Enabled: feedURL != ""},
	}
}

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:   LeagueIDDemo,
			Type: LeagueTypeBundesliga,
			Name: "Demo League",
			Settings: league.Settings{
				Transfers:         6,
				DuplicatePlayers:  1,
				StarredPercentage: 150,
				PredictExact:      15,
				PredictDifference: 10,
				PredictWinner:     5,
				Top11:             true,
			},
		},
	}
}

func SeedLeagueUsers() []leagueuser.LeagueUser {
	return []leagueuser.LeagueUser{
		{LeagueID: LeagueIDDemo, UserID: 1, Money: 150_000_000, Formation: leagueuser.DefaultFormation()},
		{LeagueID: LeagueIDDemo, UserID: 2, Money: 150_000_000, Formation: leagueuser.DefaultFormation()},
	}
}
