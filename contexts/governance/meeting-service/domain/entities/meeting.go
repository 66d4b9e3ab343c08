package entities

import "time"

type MeetingStatus string

const (
	MeetingStatusDraft      MeetingStatus = "draft"
	MeetingStatusScheduled  MeetingStatus = "scheduled"
	MeetingStatusInProgress MeetingStatus = "in_progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// QuorumType selects how attendance is measured against the threshold:
// by headcount of present voters, or by their summed vote weight.
type QuorumType string

const (
	QuorumCount    QuorumType = "count"
	QuorumWeighted QuorumType = "weighted"
)

type Meeting struct {
	MeetingID      string
	Title          string
	Description    string
	Location       string
	Status         MeetingStatus
	QuorumType     QuorumType
	QuorumRequired float64
	QuorumMet      bool
	CreatedBy      string
	ScheduledFor   *time.Time
	StartedAt      *time.Time
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// meetingTransitions mirrors the motion workflow table: each status lists
// the statuses reachable from it.
var meetingTransitions = map[MeetingStatus][]MeetingStatus{
	MeetingStatusDraft:      {MeetingStatusScheduled, MeetingStatusInProgress, MeetingStatusCancelled},
	MeetingStatusScheduled:  {MeetingStatusInProgress, MeetingStatusCancelled},
	MeetingStatusInProgress: {MeetingStatusCompleted},
	MeetingStatusCompleted:  {MeetingStatusInProgress},
	MeetingStatusCancelled:  {},
}

func CanTransitionMeeting(from MeetingStatus, to MeetingStatus) bool {
	for _, state := range meetingTransitions[from] {
		if state == to {
			return true
		}
	}
	return false
}

// Editable reports whether meeting metadata may still change. Completed and
// cancelled meetings are frozen.
func (m Meeting) Editable() bool {
	switch m.Status {
	case MeetingStatusCompleted, MeetingStatusCancelled:
		return false
	default:
		return true
	}
}
