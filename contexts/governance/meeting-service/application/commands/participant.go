package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "plenum/contexts/governance/meeting-service/application"
	"plenum/contexts/governance/meeting-service/domain/entities"
	domainerrors "plenum/contexts/governance/meeting-service/domain/errors"
	"plenum/contexts/governance/meeting-service/ports"
)

// AddParticipantCommand invites a user into a meeting's roster.
type AddParticipantCommand struct {
	MeetingID  string
	ActorID    string
	UserID     string
	Role       entities.ParticipantRole
	CanVote    bool
	VoteWeight float64
}

// ParticipantUseCase manages the meeting roster: invitations, role and
// voting-right changes, and attendance. Attendance changes re-evaluate
// quorum in the same command.
type ParticipantUseCase struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc ParticipantUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc ParticipantUseCase) meetingCommands() MeetingUseCase {
	return MeetingUseCase{
		Meetings:     uc.Meetings,
		Participants: uc.Participants,
		Outbox:       uc.Outbox,
		Clock:        uc.Clock,
		IDGen:        uc.IDGen,
		Logger:       uc.Logger,
	}
}

// AddParticipant enrolls a user. A zero vote weight defaults to 1 for
// voting participants.
func (uc ParticipantUseCase) AddParticipant(ctx context.Context, cmd AddParticipantCommand) (entities.Participant, error) {
	logger := application.ResolveLogger(uc.Logger)

	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return entities.Participant{}, err
	}
	if err := uc.meetingCommands().requireAdmin(ctx, meeting, cmd.ActorID); err != nil {
		return entities.Participant{}, err
	}
	if !meeting.Editable() {
		return entities.Participant{}, domainerrors.ErrMeetingNotEditable
	}

	cmd.UserID = strings.TrimSpace(cmd.UserID)
	if cmd.UserID == "" {
		return entities.Participant{}, domainerrors.ErrInvalidParticipantInput
	}
	role := cmd.Role
	if role == "" {
		role = entities.RoleMember
	}
	if !entities.ValidRole(role) {
		return entities.Participant{}, domainerrors.ErrInvalidParticipantInput
	}
	weight := cmd.VoteWeight
	if weight < 0 {
		return entities.Participant{}, domainerrors.ErrInvalidParticipantInput
	}
	if weight == 0 && cmd.CanVote {
		weight = 1
	}

	participantID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Participant{}, err
	}
	now := uc.now()
	participant := entities.Participant{
		ParticipantID: participantID,
		MeetingID:     meeting.MeetingID,
		UserID:        cmd.UserID,
		Role:          role,
		CanVote:       cmd.CanVote,
		VoteWeight:    weight,
		Attendance:    entities.AttendanceInvited,
		JoinedAt:      now,
		UpdatedAt:     now,
	}
	if err := uc.Participants.SaveParticipant(ctx, participant); err != nil {
		return entities.Participant{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.participant.updated", "participant", participant.ParticipantID, map[string]any{
		"meeting_id": meeting.MeetingID,
		"user_id":    participant.UserID,
		"change":     "added",
	}); err != nil {
		return entities.Participant{}, err
	}
	logger.Info("participant added",
		"event", "participant_added",
		"module", sourceModule,
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"user_id", participant.UserID,
	)
	return participant, nil
}

// SetRole changes a participant's role and voting rights.
func (uc ParticipantUseCase) SetRole(ctx context.Context, meetingID string, actorID string, userID string, role entities.ParticipantRole, canVote bool, voteWeight float64) (entities.Participant, error) {
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.Participant{}, err
	}
	if err := uc.meetingCommands().requireAdmin(ctx, meeting, actorID); err != nil {
		return entities.Participant{}, err
	}
	if !entities.ValidRole(role) || voteWeight < 0 {
		return entities.Participant{}, domainerrors.ErrInvalidParticipantInput
	}
	participant, err := uc.Participants.GetParticipant(ctx, meeting.MeetingID, strings.TrimSpace(userID))
	if err != nil {
		return entities.Participant{}, err
	}

	now := uc.now()
	participant.Role = role
	participant.CanVote = canVote
	participant.VoteWeight = voteWeight
	if participant.VoteWeight == 0 && canVote {
		participant.VoteWeight = 1
	}
	participant.UpdatedAt = now
	if err := uc.Participants.UpdateParticipant(ctx, participant); err != nil {
		return entities.Participant{}, err
	}
	if err := uc.refreshQuorum(ctx, meeting.MeetingID, now); err != nil {
		return entities.Participant{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.participant.updated", "participant", participant.ParticipantID, map[string]any{
		"meeting_id": meeting.MeetingID,
		"user_id":    participant.UserID,
		"change":     "role",
		"role":       string(role),
	}); err != nil {
		return entities.Participant{}, err
	}
	return participant, nil
}

// SetAttendance records a participant's attendance. Marking an already
// recorded state again is a no-op. Quorum is re-evaluated in the same call,
// so it can flip in both directions as members come and go.
func (uc ParticipantUseCase) SetAttendance(ctx context.Context, meetingID string, actorID string, userID string, attendance entities.Attendance) (entities.Participant, error) {
	logger := application.ResolveLogger(uc.Logger)

	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.Participant{}, err
	}
	if !entities.ValidAttendance(attendance) {
		return entities.Participant{}, domainerrors.ErrInvalidParticipantInput
	}
	// Participants may mark their own attendance; changing someone else's
	// needs admin authority.
	if strings.TrimSpace(actorID) != strings.TrimSpace(userID) {
		if err := uc.meetingCommands().requireAdmin(ctx, meeting, actorID); err != nil {
			return entities.Participant{}, err
		}
	}
	participant, err := uc.Participants.GetParticipant(ctx, meeting.MeetingID, strings.TrimSpace(userID))
	if err != nil {
		return entities.Participant{}, err
	}
	if participant.Attendance == attendance {
		return participant, nil
	}

	now := uc.now()
	participant.Attendance = attendance
	participant.UpdatedAt = now
	if err := uc.Participants.UpdateParticipant(ctx, participant); err != nil {
		return entities.Participant{}, err
	}
	if err := uc.refreshQuorum(ctx, meeting.MeetingID, now); err != nil {
		return entities.Participant{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.participant.updated", "participant", participant.ParticipantID, map[string]any{
		"meeting_id": meeting.MeetingID,
		"user_id":    participant.UserID,
		"change":     "attendance",
		"attendance": string(attendance),
	}); err != nil {
		return entities.Participant{}, err
	}
	logger.Info("participant attendance recorded",
		"event", "participant_attendance_recorded",
		"module", sourceModule,
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"user_id", participant.UserID,
		"attendance", string(attendance),
	)
	return participant, nil
}

// MarkPresent is shorthand for SetAttendance(present).
func (uc ParticipantUseCase) MarkPresent(ctx context.Context, meetingID string, actorID string, userID string) (entities.Participant, error) {
	return uc.SetAttendance(ctx, meetingID, actorID, userID, entities.AttendancePresent)
}

// MarkAbsent is shorthand for SetAttendance(absent).
func (uc ParticipantUseCase) MarkAbsent(ctx context.Context, meetingID string, actorID string, userID string) (entities.Participant, error) {
	return uc.SetAttendance(ctx, meetingID, actorID, userID, entities.AttendanceAbsent)
}

func (uc ParticipantUseCase) refreshQuorum(ctx context.Context, meetingID string, now time.Time) error {
	meeting, err := uc.Meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	return uc.meetingCommands().recomputeQuorum(ctx, &meeting, now)
}
