package leaguetype

import "fmt"

// LeagueType is a data feed (e.g. one real-world competition) that fantasy leagues are built on.
// Scheduler state such as countdowns and refresh locks is scoped by its name.
type LeagueType struct {
	Name    string
	URL     string
	Enabled bool
}

func (t LeagueType) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("league type name is required")
	}
	if t.URL == "" {
		return fmt.Errorf("league type feed url is required")
	}

	return nil
}
