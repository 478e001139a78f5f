package league

import "fmt"

// Settings are the administrator-controlled knobs the scoring core reads.
type Settings struct {
	Transfers         int
	DuplicatePlayers  int
	StarredPercentage int
	PredictExact      int
	PredictDifference int
	PredictWinner     int
	Top11             bool
	Archived          bool
}

// League is one user-created fantasy league on top of a league type.
type League struct {
	ID       int64
	Type     string
	Name     string
	Settings Settings
}

func (l League) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("league id must be greater than zero")
	}
	if l.Type == "" {
		return fmt.Errorf("league type is required")
	}
	if l.Settings.StarredPercentage < 0 {
		return fmt.Errorf("starred percentage must be >= 0")
	}

	return nil
}
