package prediction

// Prediction is a user's score guess for the fixture a club plays in a matchday.
// Home and Away stay nil until the user fills them in.
type Prediction struct {
	LeagueID int64
	UserID   int64
	Club     string
	Matchday int
	Home     *int
	Away     *int
	// Time is set on archived predictions and nil on live ones.
	Time *int64
}

// Complete reports whether both goals are set.
func (p Prediction) Complete() bool {
	return p.Home != nil && p.Away != nil
}

// ClubResult is a real fixture result stored from the home side's perspective.
type ClubResult struct {
	LeagueType string
	Club       string
	Opponent   string
	Home       *int
	Away       *int
	IsHome     bool
	Time       *int64
}

func (r ClubResult) Complete() bool {
	return r.Home != nil && r.Away != nil
}

// Weights are the points awarded per prediction tier.
type Weights struct {
	Exact      int
	Difference int
	Winner     int
}

func IntPtr(v int) *int {
	return &v
}
