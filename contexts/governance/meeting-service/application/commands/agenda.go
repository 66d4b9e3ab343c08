package commands

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "plenum/contexts/governance/meeting-service/application"
	"plenum/contexts/governance/meeting-service/domain/entities"
	domainerrors "plenum/contexts/governance/meeting-service/domain/errors"
	"plenum/contexts/governance/meeting-service/ports"
)

// CreateAgendaItemCommand appends one item to a meeting's agenda.
type CreateAgendaItemCommand struct {
	MeetingID   string
	ActorID     string
	Title       string
	ItemType    string
	Order       int
	DurationMin int
}

// UpdateAgendaItemCommand rewrites an agenda item's metadata and position.
type UpdateAgendaItemCommand struct {
	AgendaItemID string
	ActorID      string
	Title        string
	ItemType     string
	Order        int
	DurationMin  int
}

// AgendaUseCase manages the ordered agenda of a meeting and the advance
// operation that walks a live session through it.
type AgendaUseCase struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Agenda       ports.AgendaRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc AgendaUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc AgendaUseCase) meetingCommands() MeetingUseCase {
	return MeetingUseCase{
		Meetings:     uc.Meetings,
		Participants: uc.Participants,
		Agenda:       uc.Agenda,
		Outbox:       uc.Outbox,
		Clock:        uc.Clock,
		IDGen:        uc.IDGen,
		Logger:       uc.Logger,
	}
}

func (uc AgendaUseCase) CreateAgendaItem(ctx context.Context, cmd CreateAgendaItemCommand) (entities.AgendaItem, error) {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return entities.AgendaItem{}, err
	}
	if err := uc.meetingCommands().requireAdmin(ctx, meeting, cmd.ActorID); err != nil {
		return entities.AgendaItem{}, err
	}
	if !meeting.Editable() {
		return entities.AgendaItem{}, domainerrors.ErrMeetingNotEditable
	}
	cmd.Title = strings.TrimSpace(cmd.Title)
	if cmd.Title == "" {
		return entities.AgendaItem{}, domainerrors.ErrInvalidAgendaInput
	}

	agendaItemID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.AgendaItem{}, err
	}
	now := uc.now()
	item := entities.AgendaItem{
		AgendaItemID: agendaItemID,
		MeetingID:    meeting.MeetingID,
		Title:        cmd.Title,
		ItemType:     strings.TrimSpace(cmd.ItemType),
		Order:        cmd.Order,
		Status:       entities.AgendaPending,
		DurationMin:  cmd.DurationMin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Agenda.SaveAgendaItem(ctx, item); err != nil {
		return entities.AgendaItem{}, err
	}
	return item, nil
}

func (uc AgendaUseCase) UpdateAgendaItem(ctx context.Context, cmd UpdateAgendaItemCommand) (entities.AgendaItem, error) {
	item, err := uc.Agenda.GetAgendaItem(ctx, strings.TrimSpace(cmd.AgendaItemID))
	if err != nil {
		return entities.AgendaItem{}, err
	}
	meeting, err := uc.Meetings.GetMeeting(ctx, item.MeetingID)
	if err != nil {
		return entities.AgendaItem{}, err
	}
	if err := uc.meetingCommands().requireAdmin(ctx, meeting, cmd.ActorID); err != nil {
		return entities.AgendaItem{}, err
	}
	if !meeting.Editable() {
		return entities.AgendaItem{}, domainerrors.ErrMeetingNotEditable
	}
	cmd.Title = strings.TrimSpace(cmd.Title)
	if cmd.Title == "" {
		return entities.AgendaItem{}, domainerrors.ErrInvalidAgendaInput
	}

	item.Title = cmd.Title
	item.ItemType = strings.TrimSpace(cmd.ItemType)
	item.Order = cmd.Order
	item.DurationMin = cmd.DurationMin
	item.UpdatedAt = uc.now()
	if err := uc.Agenda.SaveAgendaItem(ctx, item); err != nil {
		return entities.AgendaItem{}, err
	}
	return item, nil
}

func (uc AgendaUseCase) DeleteAgendaItem(ctx context.Context, agendaItemID string, actorID string) error {
	item, err := uc.Agenda.GetAgendaItem(ctx, strings.TrimSpace(agendaItemID))
	if err != nil {
		return err
	}
	meeting, err := uc.Meetings.GetMeeting(ctx, item.MeetingID)
	if err != nil {
		return err
	}
	if err := uc.meetingCommands().requireAdmin(ctx, meeting, actorID); err != nil {
		return err
	}
	if !meeting.Editable() {
		return domainerrors.ErrMeetingNotEditable
	}
	return uc.Agenda.DeleteAgendaItem(ctx, item.AgendaItemID)
}

// SkipAgendaItem marks a pending or active item as skipped without
// advancing the session.
func (uc AgendaUseCase) SkipAgendaItem(ctx context.Context, agendaItemID string, actorID string) (entities.AgendaItem, error) {
	item, err := uc.Agenda.GetAgendaItem(ctx, strings.TrimSpace(agendaItemID))
	if err != nil {
		return entities.AgendaItem{}, err
	}
	meeting, err := uc.Meetings.GetMeeting(ctx, item.MeetingID)
	if err != nil {
		return entities.AgendaItem{}, err
	}
	if err := uc.meetingCommands().requireAdmin(ctx, meeting, actorID); err != nil {
		return entities.AgendaItem{}, err
	}
	if item.Status == entities.AgendaCompleted {
		return entities.AgendaItem{}, domainerrors.ErrInvalidAgendaInput
	}
	item.Status = entities.AgendaSkipped
	item.UpdatedAt = uc.now()
	if err := uc.Agenda.SaveAgendaItem(ctx, item); err != nil {
		return entities.AgendaItem{}, err
	}
	return item, nil
}

// Advance moves the live session to a pending agenda item. With toItemID
// set the session jumps to that item (it must belong to the meeting and be
// pending); otherwise the next pending item in order is taken. The currently
// active item is completed first; skipped items keep their status. Requires
// an in-progress meeting; an exhausted agenda is reported as such.
func (uc AgendaUseCase) Advance(ctx context.Context, meetingID string, actorID string, toItemID string) (entities.AgendaItem, error) {
	logger := application.ResolveLogger(uc.Logger)

	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.AgendaItem{}, err
	}
	if err := uc.meetingCommands().requireAdmin(ctx, meeting, actorID); err != nil {
		return entities.AgendaItem{}, err
	}
	if meeting.Status != entities.MeetingStatusInProgress {
		return entities.AgendaItem{}, domainerrors.ErrMeetingNotInProgress
	}

	items, err := uc.Agenda.ListAgendaItems(ctx, meeting.MeetingID)
	if err != nil {
		return entities.AgendaItem{}, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Before(items[j]) })

	now := uc.now()
	for i := range items {
		if items[i].Status != entities.AgendaInProgress {
			continue
		}
		items[i].Status = entities.AgendaCompleted
		items[i].UpdatedAt = now
		if err := uc.Agenda.SaveAgendaItem(ctx, items[i]); err != nil {
			return entities.AgendaItem{}, err
		}
	}

	toItemID = strings.TrimSpace(toItemID)
	for i := range items {
		if toItemID != "" {
			if items[i].AgendaItemID != toItemID {
				continue
			}
			if items[i].Status != entities.AgendaPending {
				return entities.AgendaItem{}, domainerrors.ErrInvalidAgendaInput
			}
		} else if items[i].Status != entities.AgendaPending {
			continue
		}
		items[i].Status = entities.AgendaInProgress
		items[i].UpdatedAt = now
		if err := uc.Agenda.SaveAgendaItem(ctx, items[i]); err != nil {
			return entities.AgendaItem{}, err
		}
		logger.Info("agenda advanced",
			"event", "agenda_advanced",
			"module", sourceModule,
			"layer", "application",
			"meeting_id", meeting.MeetingID,
			"agenda_item_id", items[i].AgendaItemID,
		)
		return items[i], nil
	}
	if toItemID != "" {
		return entities.AgendaItem{}, domainerrors.ErrAgendaItemNotFound
	}
	return entities.AgendaItem{}, domainerrors.ErrAgendaExhausted
}
