package entities

import "time"

// Tally outcomes. Yes/no ballots carry/are defeated/tie; choice ballots are
// decided or tied; none means no ballots were cast.
const (
	OutcomeCarried  = "carried"
	OutcomeDefeated = "defeated"
	OutcomeDecided  = "decided"
	OutcomeTied     = "tied"
	OutcomeNone     = "none"
)

type OptionTally struct {
	OptionID string  `json:"option_id"`
	Label    string  `json:"label"`
	Ballots  int     `json:"ballots"`
	Weight   float64 `json:"weight"`
}

// TallyRound is one instant-runoff elimination round. Counts cover the
// options still standing at the start of the round.
type TallyRound struct {
	Number     int           `json:"number"`
	Counts     []OptionTally `json:"counts"`
	Eliminated string        `json:"eliminated,omitempty"`
	Winner     string        `json:"winner,omitempty"`
}

// TallyResult is the computed summary stored on a poll at close. It is
// populated exactly once and never carries voter identity.
type TallyResult struct {
	PollType     PollType      `json:"poll_type"`
	TotalBallots int           `json:"total_ballots"`
	TotalWeight  float64       `json:"total_weight"`
	Options      []OptionTally `json:"options"`
	Outcome      string        `json:"outcome"`
	Winner       string        `json:"winner,omitempty"`
	Tied         bool          `json:"tied"`
	QuorumMet    bool          `json:"quorum_met"`
	Rounds       []TallyRound  `json:"rounds,omitempty"`
	TalliedAt    time.Time     `json:"tallied_at"`
}
