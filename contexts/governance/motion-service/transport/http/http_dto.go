package http

// ErrorResponse is the uniform error body returned by motion endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TransitionErrorResponse is returned for rejected workflow transitions. It
// carries the states reachable from the motion's current state.
type TransitionErrorResponse struct {
	Code               string   `json:"code"`
	Message            string   `json:"message"`
	CurrentState       string   `json:"current_state"`
	RequestedState     string   `json:"requested_state"`
	AllowedTransitions []string `json:"allowed_transitions"`
}

type CreateMotionRequest struct {
	MeetingID    string   `json:"meeting_id"`
	AgendaItemID string   `json:"agenda_item_id,omitempty"`
	Title        string   `json:"title"`
	Text         string   `json:"text,omitempty"`
	Category     string   `json:"category,omitempty"`
	Supporters   []string `json:"supporters,omitempty"`
}

type TransitionRequest struct {
	NewState string `json:"new_state"`
}

type MotionResponse struct {
	MotionID     string   `json:"motion_id"`
	MeetingID    string   `json:"meeting_id"`
	AgendaItemID string   `json:"agenda_item_id,omitempty"`
	Title        string   `json:"title"`
	Text         string   `json:"text,omitempty"`
	SubmittedBy  string   `json:"submitted_by"`
	Supporters   []string `json:"supporters,omitempty"`
	State        string   `json:"state"`
	Category     string   `json:"category,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type MotionListResponse struct {
	Items []MotionResponse `json:"items"`
}

type AllowedTransitionsResponse struct {
	MotionID           string   `json:"motion_id"`
	CurrentState       string   `json:"current_state"`
	AllowedTransitions []string `json:"allowed_transitions"`
}

type TransitionRecordPayload struct {
	RecordID   string `json:"record_id"`
	FromState  string `json:"from_state"`
	ToState    string `json:"to_state"`
	ActorID    string `json:"actor_id"`
	OccurredAt string `json:"occurred_at"`
}

type MotionHistoryResponse struct {
	MotionID string                    `json:"motion_id"`
	Items    []TransitionRecordPayload `json:"items"`
}
