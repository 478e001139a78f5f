package lifecycle

// CountdownState is the persisted phase state of a league type.
type CountdownState struct {
	Known        bool
	SecondsLeft  int64
	TransferOpen bool
}

// TransferState is what readers see: whether transfers are open and seconds to the next boundary.
type TransferState struct {
	LeagueType   string `json:"league_type"`
	TransferOpen bool   `json:"transfer_open"`
	SecondsLeft  int64  `json:"seconds_left"`
	Known        bool   `json:"known"`
}
