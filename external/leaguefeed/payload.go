package leaguefeed

import (
	"strings"

	"github.com/riskibarqy/fantasy-matchday/internal/usecase"
)

type feedPayload struct {
	TransferOpen bool            `json:"transfer_open"`
	Countdown    int64           `json:"countdown"`
	Players      []playerPayload `json:"players"`
	Clubs        []clubPayload   `json:"clubs"`
}

type playerPayload struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Club        string `json:"club"`
	Position    string `json:"position"`
	LastMatch   int    `json:"last_match"`
	TotalPoints int    `json:"total_points"`
}

type clubPayload struct {
	Club          string `json:"club"`
	Opponent      string `json:"opponent"`
	Home          bool   `json:"home"`
	TeamScore     *int   `json:"team_score"`
	OpponentScore *int   `json:"opponent_score"`
}

func (p feedPayload) toExternal() usecase.ExternalFeed {
	out := usecase.ExternalFeed{
		TransferOpen:     p.TransferOpen,
		CountdownSeconds: p.Countdown,
		Players:          make([]usecase.ExternalPlayer, 0, len(p.Players)),
		Clubs:            make([]usecase.ExternalClubResult, 0, len(p.Clubs)),
	}
	for _, pl := range p.Players {
		uid := strings.TrimSpace(pl.UID)
		if uid == "" {
			continue
		}
		out.Players = append(out.Players, usecase.ExternalPlayer{
			UID:         uid,
			Name:        strings.TrimSpace(pl.Name),
			Club:        strings.TrimSpace(pl.Club),
			Position:    pl.Position,
			LastMatch:   pl.LastMatch,
			TotalPoints: pl.TotalPoints,
		})
	}
	for _, c := range p.Clubs {
		club := strings.TrimSpace(c.Club)
		if club == "" {
			continue
		}
		out.Clubs = append(out.Clubs, usecase.ExternalClubResult{
			Club:     club,
			Opponent: strings.TrimSpace(c.Opponent),
			IsHome:   c.Home,
			Home:     c.TeamScore,
			Away:     c.OpponentScore,
		})
	}
	return out
}
