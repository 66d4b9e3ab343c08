package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"plenum/contexts/governance/poll-service/domain/entities"
	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
	"plenum/contexts/governance/poll-service/ports"
	"plenum/internal/shared/outbox"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and local runs. It enforces
// the same invariants as the postgres adapter: one ballot per (poll, user)
// and status-guarded lifecycle transitions.
type Store struct {
	mu sync.RWMutex

	polls  map[string]entities.Poll
	votes  map[string]entities.Vote
	voters map[string]bool // pollID + "/" + userID
	outbox []outbox.Message

	meetings     map[string]ports.MeetingProjection
	participants map[string]ports.ParticipantProjection
}

func NewStore() *Store {
	return &Store{
		polls:        make(map[string]entities.Poll),
		votes:        make(map[string]entities.Vote),
		voters:       make(map[string]bool),
		meetings:     make(map[string]ports.MeetingProjection),
		participants: make(map[string]ports.ParticipantProjection),
	}
}

// SetMeeting seeds the meeting projection consulted for authority and quorum.
func (s *Store) SetMeeting(meeting ports.MeetingProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[strings.TrimSpace(meeting.MeetingID)] = meeting
}

// SetParticipant seeds one participant's voting rights.
func (s *Store) SetParticipant(participant ports.ParticipantProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(participant.MeetingID) + "/" + strings.TrimSpace(participant.UserID)
	s.participants[key] = participant
}

func (s *Store) SavePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[poll.PollID] = poll
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll, nil
}

func (s *Store) GetPollByMotion(_ context.Context, motionID string) (entities.Poll, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	motionID = strings.TrimSpace(motionID)
	for _, poll := range s.polls {
		if poll.MotionID == motionID && motionID != "" {
			return poll, true, nil
		}
	}
	return entities.Poll{}, false, nil
}

func (s *Store) ListPollsByMeeting(_ context.Context, meetingID string) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Poll, 0)
	for _, poll := range s.polls {
		if poll.MeetingID == strings.TrimSpace(meetingID) {
			items = append(items, poll)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].PollID < items[j].PollID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) MarkPollOpen(_ context.Context, pollID string, openedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return false, domainerrors.ErrPollNotFound
	}
	if poll.Status != entities.PollStatusDraft {
		return false, nil
	}
	opened := openedAt.UTC()
	poll.Status = entities.PollStatusOpen
	poll.OpenedAt = &opened
	poll.UpdatedAt = opened
	s.polls[poll.PollID] = poll
	return true, nil
}

func (s *Store) MarkPollClosed(_ context.Context, pollID string, results entities.TallyResult, closedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return false, domainerrors.ErrPollNotFound
	}
	if poll.Status != entities.PollStatusOpen {
		return false, nil
	}
	closed := closedAt.UTC()
	poll.Status = entities.PollStatusClosed
	poll.Results = &results
	poll.ClosedAt = &closed
	poll.UpdatedAt = closed
	s.polls[poll.PollID] = poll
	return true, nil
}

func (s *Store) MarkPollPublished(_ context.Context, pollID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return false, domainerrors.ErrPollNotFound
	}
	if poll.Status != entities.PollStatusClosed {
		return false, nil
	}
	poll.Status = entities.PollStatusPublished
	s.polls[poll.PollID] = poll
	return true, nil
}

func (s *Store) SaveVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := vote.PollID + "/" + vote.UserID
	if s.voters[key] {
		return domainerrors.ErrDuplicateVote
	}
	s.voters[key] = true
	s.votes[vote.VoteID] = vote
	return nil
}

func (s *Store) ListVotesByPoll(_ context.Context, pollID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.PollID == strings.TrimSpace(pollID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt.Equal(items[j].CastAt) {
			return items[i].VoteID < items[j].VoteID
		}
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) MeetingInfo(_ context.Context, meetingID string) (ports.MeetingProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	return meeting, ok, nil
}

func (s *Store) Participant(_ context.Context, meetingID string, userID string) (ports.ParticipantProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[strings.TrimSpace(meetingID)+"/"+strings.TrimSpace(userID)]
	return participant, ok, nil
}

func (s *Store) AppendOutbox(_ context.Context, message outbox.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, message)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]outbox.Message, 0, limit)
	for _, message := range s.outbox {
		if message.Status != outbox.StatusPending {
			continue
		}
		items = append(items, message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			published := publishedAt.UTC()
			s.outbox[i].Status = outbox.StatusPublished
			s.outbox[i].PublishedAt = &published
			return nil
		}
	}
	return nil
}

// PendingOutbox exposes the pending rows for assertions in tests.
func (s *Store) PendingOutbox() []outbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]outbox.Message, 0)
	for _, message := range s.outbox {
		if message.Status == outbox.StatusPending {
			items = append(items, message)
		}
	}
	return items
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.PollRepository = (*Store)(nil)
var _ ports.VoteRepository = (*Store)(nil)
var _ ports.MeetingDirectory = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
