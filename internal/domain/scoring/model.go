package scoring

// Record is a per-matchday points snapshot for one league user.
// A nil Time marks the live row of the matchday being played.
type Record struct {
	LeagueID         int64
	UserID           int64
	Matchday         int
	FantasyPoints    int
	PredictionPoints int
	Points           int
	Time             *int64
}

func (r Record) IsLive() bool {
	return r.Time == nil
}

// DefaultMatchday is used when a league has no points rows yet.
const DefaultMatchday = 1
