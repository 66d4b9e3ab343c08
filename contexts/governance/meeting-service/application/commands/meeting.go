package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "plenum/contexts/governance/meeting-service/application"
	"plenum/contexts/governance/meeting-service/domain/entities"
	domainerrors "plenum/contexts/governance/meeting-service/domain/errors"
	"plenum/contexts/governance/meeting-service/domain/quorum"
	"plenum/contexts/governance/meeting-service/ports"
	"plenum/internal/shared/authority"
)

// CreateMeetingCommand is the write-model input for meeting creation.
type CreateMeetingCommand struct {
	ActorID        string
	Title          string
	Description    string
	Location       string
	QuorumType     entities.QuorumType
	QuorumRequired float64
	ScheduledFor   *time.Time
}

// UpdateMeetingCommand carries mutable meeting metadata.
type UpdateMeetingCommand struct {
	MeetingID      string
	ActorID        string
	Title          string
	Description    string
	Location       string
	QuorumType     entities.QuorumType
	QuorumRequired float64
}

// MeetingUseCase orchestrates meeting lifecycle commands. Lifecycle moves go
// through status-guarded repository updates so two racing admins cannot both
// win the same transition.
type MeetingUseCase struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Agenda       ports.AgendaRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc MeetingUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateMeeting creates a draft meeting and enrolls the creator as an admin
// participant with voting rights.
func (uc MeetingUseCase) CreateMeeting(ctx context.Context, cmd CreateMeetingCommand) (entities.Meeting, error) {
	logger := application.ResolveLogger(uc.Logger)

	cmd.Title = strings.TrimSpace(cmd.Title)
	if strings.TrimSpace(cmd.ActorID) == "" || cmd.Title == "" {
		return entities.Meeting{}, domainerrors.ErrInvalidMeetingInput
	}
	if cmd.QuorumRequired < 0 {
		return entities.Meeting{}, domainerrors.ErrInvalidMeetingInput
	}
	quorumType := cmd.QuorumType
	if quorumType == "" {
		quorumType = entities.QuorumCount
	}
	if quorumType != entities.QuorumCount && quorumType != entities.QuorumWeighted {
		return entities.Meeting{}, domainerrors.ErrInvalidMeetingInput
	}

	meetingID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Meeting{}, err
	}
	now := uc.now()
	meeting := entities.Meeting{
		MeetingID:      meetingID,
		Title:          cmd.Title,
		Description:    cmd.Description,
		Location:       strings.TrimSpace(cmd.Location),
		Status:         entities.MeetingStatusDraft,
		QuorumType:     quorumType,
		QuorumRequired: cmd.QuorumRequired,
		CreatedBy:      strings.TrimSpace(cmd.ActorID),
		ScheduledFor:   cmd.ScheduledFor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.Meetings.SaveMeeting(ctx, meeting); err != nil {
		return entities.Meeting{}, err
	}

	participantID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.Participants.SaveParticipant(ctx, entities.Participant{
		ParticipantID: participantID,
		MeetingID:     meeting.MeetingID,
		UserID:        meeting.CreatedBy,
		Role:          entities.RoleAdmin,
		CanVote:       true,
		VoteWeight:    1,
		Attendance:    entities.AttendanceInvited,
		JoinedAt:      now,
		UpdatedAt:     now,
	}); err != nil {
		return entities.Meeting{}, err
	}

	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.meeting.updated", "meeting", meeting.MeetingID, map[string]any{
		"status": string(meeting.Status),
		"change": "created",
	}); err != nil {
		return entities.Meeting{}, err
	}

	logger.Info("meeting created",
		"event", "meeting_created",
		"module", sourceModule,
		"layer", "application",
		"meeting_id", meeting.MeetingID,
	)
	return meeting, nil
}

// UpdateMeeting rewrites mutable metadata. Quorum changes are re-evaluated
// against the current roster immediately.
func (uc MeetingUseCase) UpdateMeeting(ctx context.Context, cmd UpdateMeetingCommand) (entities.Meeting, error) {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.requireAdmin(ctx, meeting, cmd.ActorID); err != nil {
		return entities.Meeting{}, err
	}
	if !meeting.Editable() {
		return entities.Meeting{}, domainerrors.ErrMeetingNotEditable
	}

	cmd.Title = strings.TrimSpace(cmd.Title)
	if cmd.Title == "" || cmd.QuorumRequired < 0 {
		return entities.Meeting{}, domainerrors.ErrInvalidMeetingInput
	}
	quorumType := cmd.QuorumType
	if quorumType == "" {
		quorumType = meeting.QuorumType
	}
	if quorumType != entities.QuorumCount && quorumType != entities.QuorumWeighted {
		return entities.Meeting{}, domainerrors.ErrInvalidMeetingInput
	}

	now := uc.now()
	meeting.Title = cmd.Title
	meeting.Description = cmd.Description
	meeting.Location = strings.TrimSpace(cmd.Location)
	meeting.QuorumType = quorumType
	meeting.QuorumRequired = cmd.QuorumRequired
	meeting.UpdatedAt = now
	if err := uc.Meetings.SaveMeeting(ctx, meeting); err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.recomputeQuorum(ctx, &meeting, now); err != nil {
		return entities.Meeting{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.meeting.updated", "meeting", meeting.MeetingID, map[string]any{
		"status": string(meeting.Status),
		"change": "metadata",
	}); err != nil {
		return entities.Meeting{}, err
	}
	return meeting, nil
}

// ScheduleMeeting moves a draft meeting to scheduled with a target time.
func (uc MeetingUseCase) ScheduleMeeting(ctx context.Context, meetingID string, actorID string, scheduledFor time.Time) (entities.Meeting, error) {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.requireAdmin(ctx, meeting, actorID); err != nil {
		return entities.Meeting{}, err
	}
	now := uc.now()
	scheduled := scheduledFor.UTC()
	meeting.ScheduledFor = &scheduled
	meeting.UpdatedAt = now
	if err := uc.Meetings.SaveMeeting(ctx, meeting); err != nil {
		return entities.Meeting{}, err
	}
	return uc.transition(ctx, meeting, entities.MeetingStatusScheduled, actorID, nil, nil, now)
}

// StartMeeting opens the session. Quorum is evaluated from the roster as
// part of the same command.
func (uc MeetingUseCase) StartMeeting(ctx context.Context, meetingID string, actorID string) (entities.Meeting, error) {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.requireAdmin(ctx, meeting, actorID); err != nil {
		return entities.Meeting{}, err
	}
	now := uc.now()
	started := now
	meeting, err = uc.transition(ctx, meeting, entities.MeetingStatusInProgress, actorID, &started, nil, now)
	if err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.recomputeQuorum(ctx, &meeting, now); err != nil {
		return entities.Meeting{}, err
	}
	return meeting, nil
}

// CloseMeeting completes an in-progress session. Polls and motions attached
// to the meeting are untouched; they carry their own lifecycles.
func (uc MeetingUseCase) CloseMeeting(ctx context.Context, meetingID string, actorID string) (entities.Meeting, error) {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.requireAdmin(ctx, meeting, actorID); err != nil {
		return entities.Meeting{}, err
	}
	now := uc.now()
	closed := now
	return uc.transition(ctx, meeting, entities.MeetingStatusCompleted, actorID, nil, &closed, now)
}

// ReopenMeeting moves a completed meeting back to in progress, for minute
// corrections or a resumed session.
func (uc MeetingUseCase) ReopenMeeting(ctx context.Context, meetingID string, actorID string) (entities.Meeting, error) {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.requireAdmin(ctx, meeting, actorID); err != nil {
		return entities.Meeting{}, err
	}
	return uc.transition(ctx, meeting, entities.MeetingStatusInProgress, actorID, nil, nil, uc.now())
}

// CancelMeeting cancels a meeting that has not started.
func (uc MeetingUseCase) CancelMeeting(ctx context.Context, meetingID string, actorID string) (entities.Meeting, error) {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.Meeting{}, err
	}
	if err := uc.requireAdmin(ctx, meeting, actorID); err != nil {
		return entities.Meeting{}, err
	}
	return uc.transition(ctx, meeting, entities.MeetingStatusCancelled, actorID, nil, nil, uc.now())
}

// DeleteMeeting removes the meeting and cascades over its roster and agenda.
// Only the owner may delete.
func (uc MeetingUseCase) DeleteMeeting(ctx context.Context, meetingID string, actorID string) error {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return err
	}
	if meeting.CreatedBy != strings.TrimSpace(actorID) {
		return domainerrors.ErrNotAuthorized
	}
	if err := uc.Agenda.DeleteAgendaByMeeting(ctx, meeting.MeetingID); err != nil {
		return err
	}
	if err := uc.Participants.DeleteParticipantsByMeeting(ctx, meeting.MeetingID); err != nil {
		return err
	}
	return uc.Meetings.DeleteMeeting(ctx, meeting.MeetingID)
}

func (uc MeetingUseCase) transition(
	ctx context.Context,
	meeting entities.Meeting,
	target entities.MeetingStatus,
	actorID string,
	startedAt *time.Time,
	closedAt *time.Time,
	now time.Time,
) (entities.Meeting, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !entities.CanTransitionMeeting(meeting.Status, target) {
		return entities.Meeting{}, domainerrors.ErrInvalidMeetingStatus
	}
	updated, err := uc.Meetings.UpdateMeetingStatus(ctx, meeting.MeetingID, meeting.Status, target, startedAt, closedAt, now)
	if err != nil {
		return entities.Meeting{}, err
	}
	if !updated {
		logger.Warn("meeting transition lost the status race",
			"event", "meeting_transition_conflict",
			"module", sourceModule,
			"layer", "application",
			"meeting_id", meeting.MeetingID,
			"from_status", string(meeting.Status),
			"to_status", string(target),
		)
		return entities.Meeting{}, domainerrors.ErrStateConflict
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.meeting.updated", "meeting", meeting.MeetingID, map[string]any{
		"status":      string(target),
		"from_status": string(meeting.Status),
		"change":      "status",
		"actor_id":    strings.TrimSpace(actorID),
	}); err != nil {
		return entities.Meeting{}, err
	}
	logger.Info("meeting transitioned",
		"event", "meeting_transitioned",
		"module", sourceModule,
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"from_status", string(meeting.Status),
		"to_status", string(target),
	)
	return uc.Meetings.GetMeeting(ctx, meeting.MeetingID)
}

// recomputeQuorum re-evaluates quorum from the roster and persists the flag
// when it changed. The meeting argument is refreshed in place.
func (uc MeetingUseCase) recomputeQuorum(ctx context.Context, meeting *entities.Meeting, now time.Time) error {
	participants, err := uc.Participants.ListParticipants(ctx, meeting.MeetingID)
	if err != nil {
		return err
	}
	met := quorum.Evaluate(*meeting, participants)
	if met == meeting.QuorumMet {
		return nil
	}
	if err := uc.Meetings.SetQuorumMet(ctx, meeting.MeetingID, met, now); err != nil {
		return err
	}
	meeting.QuorumMet = met
	meeting.UpdatedAt = now
	application.ResolveLogger(uc.Logger).Info("meeting quorum changed",
		"event", "meeting_quorum_changed",
		"module", sourceModule,
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"quorum_met", met,
	)
	return appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.meeting.updated", "meeting", meeting.MeetingID, map[string]any{
		"status":     string(meeting.Status),
		"change":     "quorum",
		"quorum_met": met,
	})
}

// requireAdmin allows the owner and admin/moderator participants.
func (uc MeetingUseCase) requireAdmin(ctx context.Context, meeting entities.Meeting, actorID string) error {
	level, err := uc.resolveAuthority(ctx, meeting, actorID)
	if err != nil {
		return err
	}
	if !level.AtLeast(authority.Admin) {
		return domainerrors.ErrNotAuthorized
	}
	return nil
}

func (uc MeetingUseCase) resolveAuthority(ctx context.Context, meeting entities.Meeting, actorID string) (authority.Level, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return authority.Viewer, domainerrors.ErrNotAuthorized
	}
	if meeting.CreatedBy == actorID {
		return authority.Owner, nil
	}
	participant, err := uc.Participants.GetParticipant(ctx, meeting.MeetingID, actorID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrParticipantNotFound) {
			return authority.Viewer, nil
		}
		return authority.Viewer, err
	}
	return authority.FromParticipantRole(string(participant.Role)), nil
}
