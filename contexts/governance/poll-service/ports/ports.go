package ports

import (
	"context"
	"time"

	"plenum/contexts/governance/poll-service/domain/entities"
	"plenum/internal/shared/events"
	"plenum/internal/shared/outbox"
)

type PollRepository interface {
	SavePoll(ctx context.Context, poll entities.Poll) error
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	GetPollByMotion(ctx context.Context, motionID string) (entities.Poll, bool, error)
	ListPollsByMeeting(ctx context.Context, meetingID string) ([]entities.Poll, error)

	// MarkPollOpen / MarkPollClosed / MarkPollPublished apply conditional
	// status transitions and report whether a row was updated. A false
	// return means the poll was not in the required state.
	MarkPollOpen(ctx context.Context, pollID string, openedAt time.Time) (bool, error)
	MarkPollClosed(ctx context.Context, pollID string, results entities.TallyResult, closedAt time.Time) (bool, error)
	MarkPollPublished(ctx context.Context, pollID string) (bool, error)
}

type VoteRepository interface {
	// SaveVote persists a ballot. The (poll, user) pair is unique; a
	// violation surfaces as ErrDuplicateVote.
	SaveVote(ctx context.Context, vote entities.Vote) error
	ListVotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error)
}

// MeetingProjection is the read-side view of a meeting owned by the meeting
// module; the poll module consults it for authority and quorum state.
type MeetingProjection struct {
	MeetingID string
	OwnerID   string
	Status    string
	QuorumMet bool
}

// ParticipantProjection carries the voting rights of one user in one meeting.
type ParticipantProjection struct {
	MeetingID  string
	UserID     string
	Role       string
	CanVote    bool
	VoteWeight float64
}

type MeetingDirectory interface {
	MeetingInfo(ctx context.Context, meetingID string) (MeetingProjection, bool, error)
	Participant(ctx context.Context, meetingID string, userID string) (ParticipantProjection, bool, error)
}

// ResultsCache holds computed tallies for closed polls. Absence is not an
// error; the repository stays the source of truth.
type ResultsCache interface {
	GetResults(ctx context.Context, pollID string) (entities.TallyResult, bool, error)
	PutResults(ctx context.Context, pollID string, results entities.TallyResult) error
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
