package entities

import "time"

// VoteValue is the structured ballot content. Choice polls (including the
// yes/no variants) set Choice; ranked-choice polls set Ranking ordered from
// most to least preferred.
type VoteValue struct {
	Choice  string   `json:"choice,omitempty"`
	Ranking []string `json:"ranking,omitempty"`
}

// Vote is one user's ballot on one poll. Weight is snapshotted from the
// voter's participant record at cast time and never recomputed.
type Vote struct {
	VoteID        string
	PollID        string
	UserID        string
	Value         VoteValue
	Weight        float64
	DelegatedFrom string
	CastAt        time.Time
}
