package ports

import (
	"context"
	"time"

	"plenum/contexts/governance/motion-service/domain/entities"
	"plenum/internal/shared/events"
	"plenum/internal/shared/outbox"
)

type MotionRepository interface {
	SaveMotion(ctx context.Context, motion entities.Motion) error
	GetMotion(ctx context.Context, motionID string) (entities.Motion, error)
	ListMotionsByMeeting(ctx context.Context, meetingID string) ([]entities.Motion, error)
	DeleteMotion(ctx context.Context, motionID string) error

	// UpdateWorkflowState applies the transition only while the motion is
	// still in from, and reports whether a row changed. A false return means
	// another actor moved the motion first.
	UpdateWorkflowState(ctx context.Context, motionID string, from entities.WorkflowState, to entities.WorkflowState, updatedAt time.Time) (bool, error)

	AppendTransition(ctx context.Context, record entities.TransitionRecord) error
	ListTransitions(ctx context.Context, motionID string) ([]entities.TransitionRecord, error)
}

type MeetingProjection struct {
	MeetingID string
	OwnerID   string
	Status    string
}

type ParticipantProjection struct {
	MeetingID string
	UserID    string
	Role      string
}

type MeetingDirectory interface {
	MeetingInfo(ctx context.Context, meetingID string) (MeetingProjection, bool, error)
	Participant(ctx context.Context, meetingID string, userID string) (ParticipantProjection, bool, error)
}

// PollProjection is the read-side view of the poll attached to a motion.
type PollProjection struct {
	PollID string
	Status string // draft, open, closed, published
}

type PollDirectory interface {
	PollByMotion(ctx context.Context, motionID string) (PollProjection, bool, error)
}

// PollProvisioner creates the draft poll that backs a motion entering the
// voting state without one.
type PollProvisioner interface {
	CreateDraftPoll(ctx context.Context, meetingID string, motionID string, title string, actorID string) (string, error)
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, message outbox.Message) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
