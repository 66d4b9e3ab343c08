package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"plenum/contexts/governance/motion-service/domain/entities"
	domainerrors "plenum/contexts/governance/motion-service/domain/errors"
	"plenum/contexts/governance/motion-service/ports"
	"plenum/internal/shared/outbox"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and local runs. It applies
// the same state-guarded transition semantics as the postgres adapter.
type Store struct {
	mu sync.RWMutex

	motions     map[string]entities.Motion
	transitions []entities.TransitionRecord
	outbox      []outbox.Message

	meetings     map[string]ports.MeetingProjection
	participants map[string]ports.ParticipantProjection
	polls        map[string]ports.PollProjection // keyed by motion id
}

func NewStore() *Store {
	return &Store{
		motions:      make(map[string]entities.Motion),
		meetings:     make(map[string]ports.MeetingProjection),
		participants: make(map[string]ports.ParticipantProjection),
		polls:        make(map[string]ports.PollProjection),
	}
}

func (s *Store) SetMeeting(meeting ports.MeetingProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[strings.TrimSpace(meeting.MeetingID)] = meeting
}

func (s *Store) SetParticipant(participant ports.ParticipantProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(participant.MeetingID) + "/" + strings.TrimSpace(participant.UserID)
	s.participants[key] = participant
}

// SetPollState seeds the poll projection for one motion.
func (s *Store) SetPollState(motionID string, poll ports.PollProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[strings.TrimSpace(motionID)] = poll
}

func (s *Store) SaveMotion(_ context.Context, motion entities.Motion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motions[motion.MotionID] = motion
	return nil
}

func (s *Store) GetMotion(_ context.Context, motionID string) (entities.Motion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	motion, ok := s.motions[strings.TrimSpace(motionID)]
	if !ok {
		return entities.Motion{}, domainerrors.ErrMotionNotFound
	}
	return motion, nil
}

func (s *Store) ListMotionsByMeeting(_ context.Context, meetingID string) ([]entities.Motion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Motion, 0)
	for _, motion := range s.motions {
		if motion.MeetingID == strings.TrimSpace(meetingID) {
			items = append(items, motion)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].MotionID < items[j].MotionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteMotion(_ context.Context, motionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.motions[strings.TrimSpace(motionID)]; !ok {
		return domainerrors.ErrMotionNotFound
	}
	delete(s.motions, strings.TrimSpace(motionID))
	return nil
}

func (s *Store) UpdateWorkflowState(
	_ context.Context,
	motionID string,
	from entities.WorkflowState,
	to entities.WorkflowState,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	motion, ok := s.motions[strings.TrimSpace(motionID)]
	if !ok {
		return false, domainerrors.ErrMotionNotFound
	}
	if motion.State != from {
		return false, nil
	}
	motion.State = to
	motion.UpdatedAt = updatedAt.UTC()
	s.motions[motion.MotionID] = motion
	return true, nil
}

func (s *Store) AppendTransition(_ context.Context, record entities.TransitionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, record)
	return nil
}

func (s *Store) ListTransitions(_ context.Context, motionID string) ([]entities.TransitionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.TransitionRecord, 0)
	for _, record := range s.transitions {
		if record.MotionID == strings.TrimSpace(motionID) {
			items = append(items, record)
		}
	}
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

func (s *Store) PollByMotion(_ context.Context, motionID string) (ports.PollProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(motionID)]
	return poll, ok, nil
}

// CreateDraftPoll satisfies ports.PollProvisioner by recording a draft poll
// projection for the motion.
func (s *Store) CreateDraftPoll(_ context.Context, _ string, motionID string, _ string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pollID := uuid.NewString()
	s.polls[strings.TrimSpace(motionID)] = ports.PollProjection{
		PollID: pollID,
		Status: "draft",
	}
	return pollID, nil
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

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.MotionRepository = (*Store)(nil)
var _ ports.MeetingDirectory = (*Store)(nil)
var _ ports.PollDirectory = (*Store)(nil)
var _ ports.PollProvisioner = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
