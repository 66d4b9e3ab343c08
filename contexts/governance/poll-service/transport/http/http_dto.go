package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OptionPayload struct {
	OptionID string `json:"option_id"`
	Label    string `json:"label"`
}

type CreatePollRequest struct {
	MeetingID string          `json:"meeting_id"`
	MotionID  string          `json:"motion_id,omitempty"`
	Title     string          `json:"title"`
	PollType  string          `json:"poll_type"`
	Options   []OptionPayload `json:"options,omitempty"`
	Anonymous bool            `json:"anonymous"`
}

type PollResponse struct {
	PollID    string          `json:"poll_id"`
	MeetingID string          `json:"meeting_id"`
	MotionID  string          `json:"motion_id,omitempty"`
	Title     string          `json:"title"`
	PollType  string          `json:"poll_type"`
	Options   []OptionPayload `json:"options"`
	Status    string          `json:"status"`
	Anonymous bool            `json:"anonymous"`
	OpenedAt  string          `json:"opened_at,omitempty"`
	ClosedAt  string          `json:"closed_at,omitempty"`
}

type PollListResponse struct {
	Items []PollResponse `json:"items"`
}

type CastVoteRequest struct {
	Choice        string   `json:"choice,omitempty"`
	Ranking       []string `json:"ranking,omitempty"`
	DelegatedFrom string   `json:"delegated_from,omitempty"`
}

type VoteResponse struct {
	VoteID        string   `json:"vote_id"`
	PollID        string   `json:"poll_id"`
	UserID        string   `json:"user_id,omitempty"`
	Choice        string   `json:"choice,omitempty"`
	Ranking       []string `json:"ranking,omitempty"`
	Weight        float64  `json:"weight"`
	DelegatedFrom string   `json:"delegated_from,omitempty"`
	CastAt        string   `json:"cast_at"`
}

type VoteListResponse struct {
	Items []VoteResponse `json:"items"`
}

type OptionTallyPayload struct {
	OptionID string  `json:"option_id"`
	Label    string  `json:"label"`
	Ballots  int     `json:"ballots"`
	Weight   float64 `json:"weight"`
}

type TallyRoundPayload struct {
	Number     int                  `json:"number"`
	Counts     []OptionTallyPayload `json:"counts"`
	Eliminated string               `json:"eliminated,omitempty"`
	Winner     string               `json:"winner,omitempty"`
}

type ResultsResponse struct {
	PollID       string               `json:"poll_id"`
	PollType     string               `json:"poll_type"`
	TotalBallots int                  `json:"total_ballots"`
	TotalWeight  float64              `json:"total_weight"`
	Options      []OptionTallyPayload `json:"options"`
	Outcome      string               `json:"outcome"`
	Winner       string               `json:"winner,omitempty"`
	Tied         bool                 `json:"tied"`
	QuorumMet    bool                 `json:"quorum_met"`
	Rounds       []TallyRoundPayload  `json:"rounds,omitempty"`
}
