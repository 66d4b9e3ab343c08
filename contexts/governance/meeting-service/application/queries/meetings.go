package queries

import (
	"context"
	"sort"
	"strings"

	"plenum/contexts/governance/meeting-service/domain/entities"
	"plenum/contexts/governance/meeting-service/ports"
)

// MeetingQueryUseCase serves reads: meeting detail, listings, the roster,
// and the ordered agenda.
type MeetingQueryUseCase struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Agenda       ports.AgendaRepository
}

func (uc MeetingQueryUseCase) GetMeeting(ctx context.Context, meetingID string) (entities.Meeting, error) {
	return uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
}

func (uc MeetingQueryUseCase) ListMeetings(ctx context.Context) ([]entities.Meeting, error) {
	return uc.Meetings.ListMeetings(ctx)
}

func (uc MeetingQueryUseCase) ListParticipants(ctx context.Context, meetingID string) ([]entities.Participant, error) {
	return uc.Participants.ListParticipants(ctx, strings.TrimSpace(meetingID))
}

// Agenda returns the meeting's agenda in walk order.
func (uc MeetingQueryUseCase) AgendaItems(ctx context.Context, meetingID string) ([]entities.AgendaItem, error) {
	items, err := uc.Agenda.ListAgendaItems(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Before(items[j]) })
	return items, nil
}

// CurrentAgendaItem returns the active item of a live session, if any.
func (uc MeetingQueryUseCase) CurrentAgendaItem(ctx context.Context, meetingID string) (entities.AgendaItem, bool, error) {
	items, err := uc.AgendaItems(ctx, meetingID)
	if err != nil {
		return entities.AgendaItem{}, false, err
	}
	for _, item := range items {
		if item.Status == entities.AgendaInProgress {
			return item, true, nil
		}
	}
	return entities.AgendaItem{}, false, nil
}
