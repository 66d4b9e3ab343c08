package entities

import "time"

type WorkflowState string

const (
	StateDraft      WorkflowState = "draft"
	StateSubmitted  WorkflowState = "submitted"
	StateScreening  WorkflowState = "screening"
	StateDiscussion WorkflowState = "discussion"
	StateVoting     WorkflowState = "voting"
	StateAccepted   WorkflowState = "accepted"
	StateRejected   WorkflowState = "rejected"
	StateWithdrawn  WorkflowState = "withdrawn"
	StateReferred   WorkflowState = "referred"
)

// transitions is the workflow contract. Withdrawal is reachable from every
// non-terminal state; accepted/rejected/withdrawn are terminal.
var transitions = map[WorkflowState][]WorkflowState{
	StateDraft:      {StateSubmitted, StateWithdrawn},
	StateSubmitted:  {StateScreening, StateWithdrawn},
	StateScreening:  {StateDiscussion, StateRejected, StateWithdrawn},
	StateDiscussion: {StateVoting, StateReferred, StateWithdrawn},
	StateVoting:     {StateAccepted, StateRejected, StateWithdrawn},
	StateReferred:   {StateScreening, StateWithdrawn},
}

// AllowedTransitions returns the states reachable from state, independent of
// the acting user. Terminal states return an empty set.
func AllowedTransitions(state WorkflowState) []WorkflowState {
	allowed := transitions[state]
	out := make([]WorkflowState, len(allowed))
	copy(out, allowed)
	return out
}

func CanTransition(from WorkflowState, to WorkflowState) bool {
	for _, state := range transitions[from] {
		if state == to {
			return true
		}
	}
	return false
}

func (s WorkflowState) Terminal() bool {
	switch s {
	case StateAccepted, StateRejected, StateWithdrawn:
		return true
	default:
		return false
	}
}

func ValidState(state WorkflowState) bool {
	switch state {
	case StateDraft, StateSubmitted, StateScreening, StateDiscussion,
		StateVoting, StateAccepted, StateRejected, StateWithdrawn, StateReferred:
		return true
	default:
		return false
	}
}

// Motion is a formal proposal submitted for a decision.
type Motion struct {
	MotionID     string
	MeetingID    string
	AgendaItemID string
	Title        string
	Text         string
	SubmittedBy  string
	Supporters   []string
	State        WorkflowState
	Category     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TransitionRecord is one audit entry of an applied workflow transition.
type TransitionRecord struct {
	RecordID   string
	MotionID   string
	FromState  WorkflowState
	ToState    WorkflowState
	ActorID    string
	OccurredAt time.Time
}
