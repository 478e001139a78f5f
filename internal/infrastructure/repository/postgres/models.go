package postgres

import "database/sql"

type leagueTypeTableModel struct {
	Name    string `db:"name"`
	FeedURL string `db:"feed_url"`
	Enabled bool   `db:"enabled"`
}

type leagueTableModel struct {
	ID                int64  `db:"id"`
	LeagueType        string `db:"league_type"`
	Name              string `db:"name"`
	Transfers         int    `db:"transfers"`
	DuplicatePlayers  int    `db:"duplicate_players"`
	StarredPercentage int    `db:"starred_percentage"`
	PredictExact      int    `db:"predict_exact"`
	PredictDifference int    `db:"predict_difference"`
	PredictWinner     int    `db:"predict_winner"`
	Top11             bool   `db:"top11"`
	Archived          bool   `db:"archived"`
}

type leagueUserTableModel struct {
	LeagueID         int64 `db:"league_id"`
	UserID           int64 `db:"user_id"`
	FantasyPoints    int   `db:"fantasy_points"`
	PredictionPoints int   `db:"prediction_points"`
	Points           int   `db:"points"`
	Money            int64 `db:"money"`
	FormationGK      int   `db:"formation_gk"`
	FormationDEF     int   `db:"formation_def"`
	FormationMID     int   `db:"formation_mid"`
	FormationATT     int   `db:"formation_att"`
}

type playerTableModel struct {
	UID         string `db:"uid"`
	LeagueType  string `db:"league_type"`
	Name        string `db:"name"`
	Club        string `db:"club"`
	Position    string `db:"position"`
	LastMatch   int    `db:"last_match"`
	TotalPoints int    `db:"total_points"`
	Active      bool   `db:"active"`
}

type squadSlotTableModel struct {
	LeagueID  int64  `db:"league_id"`
	UserID    int64  `db:"user_id"`
	PlayerUID string `db:"player_uid"`
	Role      string `db:"role"`
	Starred   bool   `db:"starred"`
}

type pointsTableModel struct {
	LeagueID         int64         `db:"league_id"`
	UserID           int64         `db:"user_id"`
	Matchday         int           `db:"matchday"`
	FantasyPoints    int           `db:"fantasy_points"`
	PredictionPoints int           `db:"prediction_points"`
	Points           int           `db:"points"`
	FinalizedAt      sql.NullInt64 `db:"finalized_at"`
}

type predictionTableModel struct {
	LeagueID   int64         `db:"league_id"`
	UserID     int64         `db:"user_id"`
	Club       string        `db:"club"`
	Matchday   int           `db:"matchday"`
	Home       sql.NullInt64 `db:"home"`
	Away       sql.NullInt64 `db:"away"`
	ArchivedAt sql.NullInt64 `db:"archived_at"`
}

type clubResultTableModel struct {
	LeagueType    string        `db:"league_type"`
	Club          string        `db:"club"`
	Opponent      string        `db:"opponent"`
	TeamScore     sql.NullInt64 `db:"team_score"`
	OpponentScore sql.NullInt64 `db:"opponent_score"`
	IsHome        bool          `db:"is_home"`
	ArchivedAt    sql.NullInt64 `db:"archived_at"`
}
