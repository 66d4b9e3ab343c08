package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"plenum/contexts/governance/meeting-service/application/commands"
	"plenum/contexts/governance/meeting-service/application/queries"
	"plenum/contexts/governance/meeting-service/domain/entities"
	domainerrors "plenum/contexts/governance/meeting-service/domain/errors"
	httptransport "plenum/contexts/governance/meeting-service/transport/http"
)

type Handler struct {
	Meetings     commands.MeetingUseCase
	Participants commands.ParticipantUseCase
	Agenda       commands.AgendaUseCase
	Queries      queries.MeetingQueryUseCase
	Logger       *slog.Logger
}

func (h Handler) CreateMeetingHandler(ctx context.Context, actorID string, req httptransport.CreateMeetingRequest) (httptransport.MeetingResponse, error) {
	scheduledFor, err := parseOptionalTime(req.ScheduledFor)
	if err != nil {
		return httptransport.MeetingResponse{}, domainerrors.ErrInvalidMeetingInput
	}
	meeting, err := h.Meetings.CreateMeeting(ctx, commands.CreateMeetingCommand{
		ActorID:        actorID,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		QuorumType:     entities.QuorumType(req.QuorumType),
		QuorumRequired: req.QuorumRequired,
		ScheduledFor:   scheduledFor,
	})
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return meetingResponse(meeting), nil
}

func (h Handler) UpdateMeetingHandler(ctx context.Context, meetingID string, actorID string, req httptransport.UpdateMeetingRequest) (httptransport.MeetingResponse, error) {
	meeting, err := h.Meetings.UpdateMeeting(ctx, commands.UpdateMeetingCommand{
		MeetingID:      meetingID,
		ActorID:        actorID,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		QuorumType:     entities.QuorumType(req.QuorumType),
		QuorumRequired: req.QuorumRequired,
	})
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return meetingResponse(meeting), nil
}

func (h Handler) GetMeetingHandler(ctx context.Context, meetingID string) (httptransport.MeetingResponse, error) {
	meeting, err := h.Queries.GetMeeting(ctx, meetingID)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return meetingResponse(meeting), nil
}

func (h Handler) ListMeetingsHandler(ctx context.Context) (httptransport.MeetingListResponse, error) {
	meetings, err := h.Queries.ListMeetings(ctx)
	if err != nil {
		return httptransport.MeetingListResponse{}, err
	}
	items := make([]httptransport.MeetingResponse, 0, len(meetings))
	for _, meeting := range meetings {
		items = append(items, meetingResponse(meeting))
	}
	return httptransport.MeetingListResponse{Items: items}, nil
}

func (h Handler) ScheduleMeetingHandler(ctx context.Context, meetingID string, actorID string, req httptransport.ScheduleMeetingRequest) (httptransport.MeetingResponse, error) {
	scheduledFor, err := time.Parse(time.RFC3339, req.ScheduledFor)
	if err != nil {
		return httptransport.MeetingResponse{}, domainerrors.ErrInvalidMeetingInput
	}
	meeting, err := h.Meetings.ScheduleMeeting(ctx, meetingID, actorID, scheduledFor)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return meetingResponse(meeting), nil
}

func (h Handler) StartMeetingHandler(ctx context.Context, meetingID string, actorID string) (httptransport.MeetingResponse, error) {
	meeting, err := h.Meetings.StartMeeting(ctx, meetingID, actorID)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return meetingResponse(meeting), nil
}

func (h Handler) CloseMeetingHandler(ctx context.Context, meetingID string, actorID string) (httptransport.MeetingResponse, error) {
	meeting, err := h.Meetings.CloseMeeting(ctx, meetingID, actorID)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return meetingResponse(meeting), nil
}

func (h Handler) ReopenMeetingHandler(ctx context.Context, meetingID string, actorID string) (httptransport.MeetingResponse, error) {
	meeting, err := h.Meetings.ReopenMeeting(ctx, meetingID, actorID)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return meetingResponse(meeting), nil
}

func (h Handler) CancelMeetingHandler(ctx context.Context, meetingID string, actorID string) (httptransport.MeetingResponse, error) {
	meeting, err := h.Meetings.CancelMeeting(ctx, meetingID, actorID)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return meetingResponse(meeting), nil
}

func (h Handler) DeleteMeetingHandler(ctx context.Context, meetingID string, actorID string) error {
	return h.Meetings.DeleteMeeting(ctx, meetingID, actorID)
}

func (h Handler) AddParticipantHandler(ctx context.Context, meetingID string, actorID string, req httptransport.AddParticipantRequest) (httptransport.ParticipantResponse, error) {
	participant, err := h.Participants.AddParticipant(ctx, commands.AddParticipantCommand{
		MeetingID:  meetingID,
		ActorID:    actorID,
		UserID:     req.UserID,
		Role:       entities.ParticipantRole(req.Role),
		CanVote:    req.CanVote,
		VoteWeight: req.VoteWeight,
	})
	if err != nil {
		return httptransport.ParticipantResponse{}, err
	}
	return participantResponse(participant), nil
}

func (h Handler) SetRoleHandler(ctx context.Context, meetingID string, actorID string, userID string, req httptransport.SetRoleRequest) (httptransport.ParticipantResponse, error) {
	participant, err := h.Participants.SetRole(ctx, meetingID, actorID, userID, entities.ParticipantRole(req.Role), req.CanVote, req.VoteWeight)
	if err != nil {
		return httptransport.ParticipantResponse{}, err
	}
	return participantResponse(participant), nil
}

func (h Handler) SetAttendanceHandler(ctx context.Context, meetingID string, actorID string, userID string, req httptransport.SetAttendanceRequest) (httptransport.ParticipantResponse, error) {
	participant, err := h.Participants.SetAttendance(ctx, meetingID, actorID, userID, entities.Attendance(req.Attendance))
	if err != nil {
		return httptransport.ParticipantResponse{}, err
	}
	return participantResponse(participant), nil
}

func (h Handler) ListParticipantsHandler(ctx context.Context, meetingID string) (httptransport.ParticipantListResponse, error) {
	participants, err := h.Queries.ListParticipants(ctx, meetingID)
	if err != nil {
		return httptransport.ParticipantListResponse{}, err
	}
	items := make([]httptransport.ParticipantResponse, 0, len(participants))
	for _, participant := range participants {
		items = append(items, participantResponse(participant))
	}
	return httptransport.ParticipantListResponse{Items: items}, nil
}

func (h Handler) CreateAgendaItemHandler(ctx context.Context, meetingID string, actorID string, req httptransport.CreateAgendaItemRequest) (httptransport.AgendaItemResponse, error) {
	item, err := h.Agenda.CreateAgendaItem(ctx, commands.CreateAgendaItemCommand{
		MeetingID:   meetingID,
		ActorID:     actorID,
		Title:       req.Title,
		ItemType:    req.ItemType,
		Order:       req.Order,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		return httptransport.AgendaItemResponse{}, err
	}
	return agendaItemResponse(item), nil
}

func (h Handler) UpdateAgendaItemHandler(ctx context.Context, agendaItemID string, actorID string, req httptransport.UpdateAgendaItemRequest) (httptransport.AgendaItemResponse, error) {
	item, err := h.Agenda.UpdateAgendaItem(ctx, commands.UpdateAgendaItemCommand{
		AgendaItemID: agendaItemID,
		ActorID:      actorID,
		Title:        req.Title,
		ItemType:     req.ItemType,
		Order:        req.Order,
		DurationMin:  req.DurationMin,
	})
	if err != nil {
		return httptransport.AgendaItemResponse{}, err
	}
	return agendaItemResponse(item), nil
}

func (h Handler) DeleteAgendaItemHandler(ctx context.Context, agendaItemID string, actorID string) error {
	return h.Agenda.DeleteAgendaItem(ctx, agendaItemID, actorID)
}

func (h Handler) SkipAgendaItemHandler(ctx context.Context, agendaItemID string, actorID string) (httptransport.AgendaItemResponse, error) {
	item, err := h.Agenda.SkipAgendaItem(ctx, agendaItemID, actorID)
	if err != nil {
		return httptransport.AgendaItemResponse{}, err
	}
	return agendaItemResponse(item), nil
}

func (h Handler) AdvanceAgendaHandler(ctx context.Context, meetingID string, actorID string, req httptransport.AdvanceAgendaRequest) (httptransport.AgendaItemResponse, error) {
	item, err := h.Agenda.Advance(ctx, meetingID, actorID, req.ToItemID)
	if err != nil {
		return httptransport.AgendaItemResponse{}, err
	}
	return agendaItemResponse(item), nil
}

func (h Handler) ListAgendaHandler(ctx context.Context, meetingID string) (httptransport.AgendaListResponse, error) {
	agendaItems, err := h.Queries.AgendaItems(ctx, meetingID)
	if err != nil {
		return httptransport.AgendaListResponse{}, err
	}
	items := make([]httptransport.AgendaItemResponse, 0, len(agendaItems))
	for _, item := range agendaItems {
		items = append(items, agendaItemResponse(item))
	}
	return httptransport.AgendaListResponse{Items: items}, nil
}

func meetingResponse(meeting entities.Meeting) httptransport.MeetingResponse {
	resp := httptransport.MeetingResponse{
		MeetingID:      meeting.MeetingID,
		Title:          meeting.Title,
		Description:    meeting.Description,
		Location:       meeting.Location,
		Status:         string(meeting.Status),
		QuorumType:     string(meeting.QuorumType),
		QuorumRequired: meeting.QuorumRequired,
		QuorumMet:      meeting.QuorumMet,
		CreatedBy:      meeting.CreatedBy,
		CreatedAt:      meeting.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      meeting.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if meeting.ScheduledFor != nil {
		resp.ScheduledFor = meeting.ScheduledFor.UTC().Format(time.RFC3339)
	}
	if meeting.StartedAt != nil {
		resp.StartedAt = meeting.StartedAt.UTC().Format(time.RFC3339)
	}
	if meeting.ClosedAt != nil {
		resp.ClosedAt = meeting.ClosedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func participantResponse(participant entities.Participant) httptransport.ParticipantResponse {
	return httptransport.ParticipantResponse{
		ParticipantID: participant.ParticipantID,
		MeetingID:     participant.MeetingID,
		UserID:        participant.UserID,
		Role:          string(participant.Role),
		CanVote:       participant.CanVote,
		VoteWeight:    participant.VoteWeight,
		Attendance:    string(participant.Attendance),
		JoinedAt:      participant.JoinedAt.UTC().Format(time.RFC3339),
	}
}

func agendaItemResponse(item entities.AgendaItem) httptransport.AgendaItemResponse {
	return httptransport.AgendaItemResponse{
		AgendaItemID: item.AgendaItemID,
		MeetingID:    item.MeetingID,
		Title:        item.Title,
		ItemType:     item.ItemType,
		Order:        item.Order,
		Status:       string(item.Status),
		DurationMin:  item.DurationMin,
		CreatedAt:    item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}
