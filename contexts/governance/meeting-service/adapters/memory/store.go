package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"plenum/contexts/governance/meeting-service/domain/entities"
	domainerrors "plenum/contexts/governance/meeting-service/domain/errors"
	"plenum/contexts/governance/meeting-service/ports"
	"plenum/internal/shared/outbox"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and local runs. It applies
// the same status-guarded update semantics as the postgres adapter.
type Store struct {
	mu sync.RWMutex

	meetings     map[string]entities.Meeting
	participants map[string]entities.Participant // keyed by meetingID+"/"+userID
	agenda       map[string]entities.AgendaItem
	outbox       []outbox.Message
}

func NewStore() *Store {
	return &Store{
		meetings:     make(map[string]entities.Meeting),
		participants: make(map[string]entities.Participant),
		agenda:       make(map[string]entities.AgendaItem),
	}
}

func (s *Store) SaveMeeting(_ context.Context, meeting entities.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[meeting.MeetingID] = meeting
	return nil
}

func (s *Store) GetMeeting(_ context.Context, meetingID string) (entities.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	if !ok {
		return entities.Meeting{}, domainerrors.ErrMeetingNotFound
	}
	return meeting, nil
}

func (s *Store) ListMeetings(_ context.Context) ([]entities.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Meeting, 0, len(s.meetings))
	for _, meeting := range s.meetings {
		items = append(items, meeting)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].MeetingID < items[j].MeetingID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) UpdateMeetingStatus(
	_ context.Context,
	meetingID string,
	from entities.MeetingStatus,
	to entities.MeetingStatus,
	startedAt *time.Time,
	closedAt *time.Time,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	if !ok {
		return false, domainerrors.ErrMeetingNotFound
	}
	if meeting.Status != from {
		return false, nil
	}
	meeting.Status = to
	if startedAt != nil {
		started := startedAt.UTC()
		meeting.StartedAt = &started
	}
	if closedAt != nil {
		closed := closedAt.UTC()
		meeting.ClosedAt = &closed
	}
	meeting.UpdatedAt = updatedAt.UTC()
	s.meetings[meeting.MeetingID] = meeting
	return true, nil
}

func (s *Store) SetQuorumMet(_ context.Context, meetingID string, quorumMet bool, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	if !ok {
		return domainerrors.ErrMeetingNotFound
	}
	meeting.QuorumMet = quorumMet
	meeting.UpdatedAt = updatedAt.UTC()
	s.meetings[meeting.MeetingID] = meeting
	return nil
}

func (s *Store) DeleteMeeting(_ context.Context, meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[strings.TrimSpace(meetingID)]; !ok {
		return domainerrors.ErrMeetingNotFound
	}
	delete(s.meetings, strings.TrimSpace(meetingID))
	return nil
}

func (s *Store) SaveParticipant(_ context.Context, participant entities.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := participantKey(participant.MeetingID, participant.UserID)
	if _, exists := s.participants[key]; exists {
		return domainerrors.ErrDuplicateParticipant
	}
	s.participants[key] = participant
	return nil
}

func (s *Store) UpdateParticipant(_ context.Context, participant entities.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := participantKey(participant.MeetingID, participant.UserID)
	if _, exists := s.participants[key]; !exists {
		return domainerrors.ErrParticipantNotFound
	}
	s.participants[key] = participant
	return nil
}

func (s *Store) GetParticipant(_ context.Context, meetingID string, userID string) (entities.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[participantKey(meetingID, userID)]
	if !ok {
		return entities.Participant{}, domainerrors.ErrParticipantNotFound
	}
	return participant, nil
}

func (s *Store) ListParticipants(_ context.Context, meetingID string) ([]entities.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Participant, 0)
	for _, participant := range s.participants {
		if participant.MeetingID == strings.TrimSpace(meetingID) {
			items = append(items, participant)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].JoinedAt.Equal(items[j].JoinedAt) {
			return items[i].UserID < items[j].UserID
		}
		return items[i].JoinedAt.Before(items[j].JoinedAt)
	})
	return items, nil
}

func (s *Store) DeleteParticipantsByMeeting(_ context.Context, meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, participant := range s.participants {
		if participant.MeetingID == strings.TrimSpace(meetingID) {
			delete(s.participants, key)
		}
	}
	return nil
}

func (s *Store) SaveAgendaItem(_ context.Context, item entities.AgendaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agenda[item.AgendaItemID] = item
	return nil
}

func (s *Store) GetAgendaItem(_ context.Context, agendaItemID string) (entities.AgendaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.agenda[strings.TrimSpace(agendaItemID)]
	if !ok {
		return entities.AgendaItem{}, domainerrors.ErrAgendaItemNotFound
	}
	return item, nil
}

func (s *Store) ListAgendaItems(_ context.Context, meetingID string) ([]entities.AgendaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.AgendaItem, 0)
	for _, item := range s.agenda {
		if item.MeetingID == strings.TrimSpace(meetingID) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Before(items[j]) })
	return items, nil
}

func (s *Store) DeleteAgendaItem(_ context.Context, agendaItemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agenda[strings.TrimSpace(agendaItemID)]; !ok {
		return domainerrors.ErrAgendaItemNotFound
	}
	delete(s.agenda, strings.TrimSpace(agendaItemID))
	return nil
}

func (s *Store) DeleteAgendaByMeeting(_ context.Context, meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, item := range s.agenda {
		if item.MeetingID == strings.TrimSpace(meetingID) {
			delete(s.agenda, key)
		}
	}
	return nil
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

func participantKey(meetingID string, userID string) string {
	return strings.TrimSpace(meetingID) + "/" + strings.TrimSpace(userID)
}

var _ ports.MeetingRepository = (*Store)(nil)
var _ ports.ParticipantRepository = (*Store)(nil)
var _ ports.AgendaRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
