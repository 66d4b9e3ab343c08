package ports

import (
	"context"
	"time"

	"plenum/contexts/governance/meeting-service/domain/entities"
	"plenum/internal/shared/events"
	"plenum/internal/shared/outbox"
)

// MeetingRepository persists meetings. UpdateMeetingStatus is a
// status-guarded update: it succeeds only while the stored status still
// matches the expected one, and reports whether the row changed.
type MeetingRepository interface {
	SaveMeeting(ctx context.Context, meeting entities.Meeting) error
	GetMeeting(ctx context.Context, meetingID string) (entities.Meeting, error)
	ListMeetings(ctx context.Context) ([]entities.Meeting, error)
	UpdateMeetingStatus(
		ctx context.Context,
		meetingID string,
		from entities.MeetingStatus,
		to entities.MeetingStatus,
		startedAt *time.Time,
		closedAt *time.Time,
		updatedAt time.Time,
	) (bool, error)
	SetQuorumMet(ctx context.Context, meetingID string, quorumMet bool, updatedAt time.Time) error
	DeleteMeeting(ctx context.Context, meetingID string) error
}

// ParticipantRepository persists the meeting roster. SaveParticipant must
// surface ErrDuplicateParticipant when the (meeting, user) pair already
// exists; the postgres adapter maps the unique index violation.
type ParticipantRepository interface {
	SaveParticipant(ctx context.Context, participant entities.Participant) error
	UpdateParticipant(ctx context.Context, participant entities.Participant) error
	GetParticipant(ctx context.Context, meetingID string, userID string) (entities.Participant, error)
	ListParticipants(ctx context.Context, meetingID string) ([]entities.Participant, error)
	DeleteParticipantsByMeeting(ctx context.Context, meetingID string) error
}

// AgendaRepository persists agenda items.
type AgendaRepository interface {
	SaveAgendaItem(ctx context.Context, item entities.AgendaItem) error
	GetAgendaItem(ctx context.Context, agendaItemID string) (entities.AgendaItem, error)
	ListAgendaItems(ctx context.Context, meetingID string) ([]entities.AgendaItem, error)
	DeleteAgendaItem(ctx context.Context, agendaItemID string) error
	DeleteAgendaByMeeting(ctx context.Context, meetingID string) error
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
