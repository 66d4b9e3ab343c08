package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "plenum/contexts/governance/motion-service/application"
	"plenum/contexts/governance/motion-service/domain/entities"
	domainerrors "plenum/contexts/governance/motion-service/domain/errors"
	"plenum/contexts/governance/motion-service/ports"
	"plenum/internal/shared/authority"
	"plenum/internal/shared/events"
	"plenum/internal/shared/outbox"
)

const sourceModule = "governance/motion-service"

// CreateMotionCommand is the write-model input for motion creation.
type CreateMotionCommand struct {
	ActorID      string
	MeetingID    string
	AgendaItemID string
	Title        string
	Text         string
	Category     string
	Supporters   []string
}

// TransitionCommand requests one workflow transition.
type TransitionCommand struct {
	MotionID string
	NewState entities.WorkflowState
	ActorID  string
}

// MotionUseCase orchestrates motion commands: creation, validated workflow
// transitions with optimistic concurrency, and deletion.
type MotionUseCase struct {
	Motions     ports.MotionRepository
	Meetings    ports.MeetingDirectory
	Polls       ports.PollDirectory
	Provisioner ports.PollProvisioner
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func (uc MotionUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateMotion creates a draft motion submitted by the acting user. The actor
// must be a participant (or the owner) of the meeting.
func (uc MotionUseCase) CreateMotion(ctx context.Context, cmd CreateMotionCommand) (entities.Motion, error) {
	logger := application.ResolveLogger(uc.Logger)

	cmd.Title = strings.TrimSpace(cmd.Title)
	if strings.TrimSpace(cmd.ActorID) == "" || strings.TrimSpace(cmd.MeetingID) == "" || cmd.Title == "" {
		return entities.Motion{}, domainerrors.ErrInvalidMotionInput
	}

	level, _, err := uc.resolveAuthority(ctx, cmd.MeetingID, cmd.ActorID)
	if err != nil {
		return entities.Motion{}, err
	}
	if !level.AtLeast(authority.Member) {
		return entities.Motion{}, domainerrors.ErrNotAuthorized
	}

	motionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Motion{}, err
	}
	now := uc.now()
	motion := entities.Motion{
		MotionID:     motionID,
		MeetingID:    strings.TrimSpace(cmd.MeetingID),
		AgendaItemID: strings.TrimSpace(cmd.AgendaItemID),
		Title:        cmd.Title,
		Text:         cmd.Text,
		SubmittedBy:  strings.TrimSpace(cmd.ActorID),
		Supporters:   cmd.Supporters,
		State:        entities.StateDraft,
		Category:     strings.TrimSpace(cmd.Category),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Motions.SaveMotion(ctx, motion); err != nil {
		return entities.Motion{}, err
	}
	logger.Info("motion created",
		"event", "motion_created",
		"module", sourceModule,
		"layer", "application",
		"motion_id", motion.MotionID,
		"meeting_id", motion.MeetingID,
	)
	return motion, nil
}

// Transition validates and applies one workflow transition. The state check
// is re-applied by the repository (state-guarded update), so two admins
// racing on the same motion cannot both win.
func (uc MotionUseCase) Transition(ctx context.Context, cmd TransitionCommand) (entities.Motion, error) {
	logger := application.ResolveLogger(uc.Logger)

	motion, err := uc.Motions.GetMotion(ctx, strings.TrimSpace(cmd.MotionID))
	if err != nil {
		return entities.Motion{}, err
	}
	if !entities.ValidState(cmd.NewState) || !entities.CanTransition(motion.State, cmd.NewState) {
		return entities.Motion{}, transitionError(motion.State, cmd.NewState)
	}

	level, isSubmitter, err := uc.resolveAuthorityForMotion(ctx, motion, cmd.ActorID)
	if err != nil {
		return entities.Motion{}, err
	}
	if err := checkTransitionAuthority(cmd.NewState, level, isSubmitter); err != nil {
		logger.Warn("motion transition denied",
			"event", "motion_transition_denied",
			"module", sourceModule,
			"layer", "application",
			"motion_id", motion.MotionID,
			"from_state", string(motion.State),
			"to_state", string(cmd.NewState),
		)
		return entities.Motion{}, err
	}

	if cmd.NewState == entities.StateVoting {
		if err := uc.ensurePoll(ctx, motion, cmd.ActorID); err != nil {
			return entities.Motion{}, err
		}
	}
	if motion.State == entities.StateVoting && (cmd.NewState == entities.StateAccepted || cmd.NewState == entities.StateRejected) {
		if err := uc.checkDecisionGate(ctx, motion); err != nil {
			return entities.Motion{}, err
		}
	}

	now := uc.now()
	updated, err := uc.Motions.UpdateWorkflowState(ctx, motion.MotionID, motion.State, cmd.NewState, now)
	if err != nil {
		return entities.Motion{}, err
	}
	if !updated {
		return entities.Motion{}, domainerrors.ErrStateConflict
	}

	recordID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Motion{}, err
	}
	if err := uc.Motions.AppendTransition(ctx, entities.TransitionRecord{
		RecordID:   recordID,
		MotionID:   motion.MotionID,
		FromState:  motion.State,
		ToState:    cmd.NewState,
		ActorID:    strings.TrimSpace(cmd.ActorID),
		OccurredAt: now,
	}); err != nil {
		return entities.Motion{}, err
	}
	if err := uc.appendEvent(ctx, now, "governance.motion.transitioned", motion.MotionID, map[string]any{
		"meeting_id": motion.MeetingID,
		"from_state": string(motion.State),
		"to_state":   string(cmd.NewState),
	}); err != nil {
		return entities.Motion{}, err
	}

	logger.Info("motion transitioned",
		"event", "motion_transitioned",
		"module", sourceModule,
		"layer", "application",
		"motion_id", motion.MotionID,
		"from_state", string(motion.State),
		"to_state", string(cmd.NewState),
	)
	return uc.Motions.GetMotion(ctx, motion.MotionID)
}

// DeleteMotion removes a motion. Only the submitter or the meeting owner may
// delete.
func (uc MotionUseCase) DeleteMotion(ctx context.Context, motionID string, actorID string) error {
	motion, err := uc.Motions.GetMotion(ctx, strings.TrimSpace(motionID))
	if err != nil {
		return err
	}
	level, isSubmitter, err := uc.resolveAuthorityForMotion(ctx, motion, actorID)
	if err != nil {
		return err
	}
	if !isSubmitter && !level.AtLeast(authority.Owner) {
		return domainerrors.ErrNotAuthorized
	}
	return uc.Motions.DeleteMotion(ctx, motion.MotionID)
}

// ensurePoll backs the chosen policy for motions entering voting: when no
// poll is attached yet, a draft yes/no poll is provisioned for the motion.
func (uc MotionUseCase) ensurePoll(ctx context.Context, motion entities.Motion, actorID string) error {
	if uc.Provisioner == nil {
		return nil
	}
	_, found, err := uc.Polls.PollByMotion(ctx, motion.MotionID)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	pollID, err := uc.Provisioner.CreateDraftPoll(ctx, motion.MeetingID, motion.MotionID, motion.Title, actorID)
	if err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("draft poll provisioned for motion",
		"event", "motion_poll_provisioned",
		"module", sourceModule,
		"layer", "application",
		"motion_id", motion.MotionID,
		"poll_id", pollID,
	)
	return nil
}

// checkDecisionGate blocks voting -> accepted/rejected while the motion's
// poll is open. A closed poll (results computed) or a never-opened one
// (direct decision) both pass.
func (uc MotionUseCase) checkDecisionGate(ctx context.Context, motion entities.Motion) error {
	poll, found, err := uc.Polls.PollByMotion(ctx, motion.MotionID)
	if err != nil {
		return err
	}
	if found && poll.Status == "open" {
		return domainerrors.ErrPollStillOpen
	}
	return nil
}

func (uc MotionUseCase) resolveAuthority(ctx context.Context, meetingID string, actorID string) (authority.Level, ports.MeetingProjection, error) {
	meeting, found, err := uc.Meetings.MeetingInfo(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return authority.Viewer, ports.MeetingProjection{}, err
	}
	if !found {
		return authority.Viewer, ports.MeetingProjection{}, domainerrors.ErrMeetingNotFound
	}
	if meeting.OwnerID == strings.TrimSpace(actorID) {
		return authority.Owner, meeting, nil
	}
	participant, found, err := uc.Meetings.Participant(ctx, meeting.MeetingID, strings.TrimSpace(actorID))
	if err != nil {
		return authority.Viewer, meeting, err
	}
	if !found {
		return authority.Viewer, meeting, nil
	}
	return authority.FromParticipantRole(participant.Role), meeting, nil
}

func (uc MotionUseCase) resolveAuthorityForMotion(ctx context.Context, motion entities.Motion, actorID string) (authority.Level, bool, error) {
	level, _, err := uc.resolveAuthority(ctx, motion.MeetingID, actorID)
	if err != nil {
		return authority.Viewer, false, err
	}
	return level, motion.SubmittedBy == strings.TrimSpace(actorID), nil
}

// checkTransitionAuthority encodes who may drive each target state: the
// submitter advances a draft and may withdraw; everything else is meeting
// admin territory.
func checkTransitionAuthority(target entities.WorkflowState, level authority.Level, isSubmitter bool) error {
	switch target {
	case entities.StateSubmitted, entities.StateWithdrawn:
		if isSubmitter || level.AtLeast(authority.Admin) {
			return nil
		}
	default:
		if level.AtLeast(authority.Admin) {
			return nil
		}
	}
	return domainerrors.ErrNotAuthorized
}

func transitionError(current entities.WorkflowState, requested entities.WorkflowState) error {
	allowed := entities.AllowedTransitions(current)
	names := make([]string, 0, len(allowed))
	for _, state := range allowed {
		names = append(names, string(state))
	}
	return &domainerrors.TransitionError{
		CurrentState: string(current),
		Requested:    string(requested),
		Allowed:      names,
	}
}

func (uc MotionUseCase) appendEvent(ctx context.Context, now time.Time, eventType string, entityID string, payload any) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceModule:   sourceModule,
		OccurredAtUTC:  now.UTC(),
		EntityType:     "motion",
		EntityID:       entityID,
		PayloadVersion: 1,
		Payload:        payload,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, outbox.Message{
		OutboxID:     eventID,
		EventType:    eventType,
		PartitionKey: entityID,
		Payload:      raw,
		Status:       outbox.StatusPending,
		CreatedAt:    now.UTC(),
	})
}
