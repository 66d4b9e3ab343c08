package http

// ErrorResponse is the uniform error body returned by meeting endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateMeetingRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Location       string  `json:"location,omitempty"`
	QuorumType     string  `json:"quorum_type,omitempty"`
	QuorumRequired float64 `json:"quorum_required,omitempty"`
	ScheduledFor   string  `json:"scheduled_for,omitempty"`
}

type UpdateMeetingRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Location       string  `json:"location,omitempty"`
	QuorumType     string  `json:"quorum_type,omitempty"`
	QuorumRequired float64 `json:"quorum_required,omitempty"`
}

type ScheduleMeetingRequest struct {
	ScheduledFor string `json:"scheduled_for"`
}

type MeetingResponse struct {
	MeetingID      string  `json:"meeting_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Location       string  `json:"location,omitempty"`
	Status         string  `json:"status"`
	QuorumType     string  `json:"quorum_type"`
	QuorumRequired float64 `json:"quorum_required"`
	QuorumMet      bool    `json:"quorum_met"`
	CreatedBy      string  `json:"created_by"`
	ScheduledFor   string  `json:"scheduled_for,omitempty"`
	StartedAt      string  `json:"started_at,omitempty"`
	ClosedAt       string  `json:"closed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type MeetingListResponse struct {
	Items []MeetingResponse `json:"items"`
}

type AddParticipantRequest struct {
	UserID     string  `json:"user_id"`
	Role       string  `json:"role,omitempty"`
	CanVote    bool    `json:"can_vote"`
	VoteWeight float64 `json:"vote_weight,omitempty"`
}

type SetRoleRequest struct {
	Role       string  `json:"role"`
	CanVote    bool    `json:"can_vote"`
	VoteWeight float64 `json:"vote_weight,omitempty"`
}

type SetAttendanceRequest struct {
	Attendance string `json:"attendance"`
}

type ParticipantResponse struct {
	ParticipantID string  `json:"participant_id"`
	MeetingID     string  `json:"meeting_id"`
	UserID        string  `json:"user_id"`
	Role          string  `json:"role"`
	CanVote       bool    `json:"can_vote"`
	VoteWeight    float64 `json:"vote_weight"`
	Attendance    string  `json:"attendance"`
	JoinedAt      string  `json:"joined_at"`
}

type ParticipantListResponse struct {
	Items []ParticipantResponse `json:"items"`
}

type CreateAgendaItemRequest struct {
	Title       string `json:"title"`
	ItemType    string `json:"item_type,omitempty"`
	Order       int    `json:"order"`
	DurationMin int    `json:"duration_min,omitempty"`
}

type UpdateAgendaItemRequest struct {
	Title       string `json:"title"`
	ItemType    string `json:"item_type,omitempty"`
	Order       int    `json:"order"`
	DurationMin int    `json:"duration_min,omitempty"`
}

// AdvanceAgendaRequest optionally names the pending item to jump to; when
// empty the next pending item in order is taken.
type AdvanceAgendaRequest struct {
	ToItemID string `json:"to_item_id,omitempty"`
}

type AgendaItemResponse struct {
	AgendaItemID string `json:"agenda_item_id"`
	MeetingID    string `json:"meeting_id"`
	Title        string `json:"title"`
	ItemType     string `json:"item_type,omitempty"`
	Order        int    `json:"order"`
	Status       string `json:"status"`
	DurationMin  int    `json:"duration_min,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type AgendaListResponse struct {
	Items []AgendaItemResponse `json:"items"`
}
