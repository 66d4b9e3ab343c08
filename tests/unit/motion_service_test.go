package unit

import (
	"context"
	"errors"
	"testing"

	motionservice "plenum/contexts/governance/motion-service"
	"plenum/contexts/governance/motion-service/domain/entities"
	domainerrors "plenum/contexts/governance/motion-service/domain/errors"
	"plenum/contexts/governance/motion-service/ports"
	httptransport "plenum/contexts/governance/motion-service/transport/http"
)

func newMotionModule() motionservice.Module {
	module := motionservice.NewInMemoryModule(nil)
	module.Store.SetMeeting(ports.MeetingProjection{
		MeetingID: "meeting-1",
		OwnerID:   "owner-1",
		Status:    "in_progress",
	})
	module.Store.SetParticipant(ports.ParticipantProjection{
		MeetingID: "meeting-1",
		UserID:    "admin-1",
		Role:      "admin",
	})
	module.Store.SetParticipant(ports.ParticipantProjection{
		MeetingID: "meeting-1",
		UserID:    "member-1",
		Role:      "member",
	})
	return module
}

func createMotion(t *testing.T, module motionservice.Module, submitter string) httptransport.MotionResponse {
	t.Helper()
	motion, err := module.Handler.CreateMotionHandler(context.Background(), submitter, httptransport.CreateMotionRequest{
		MeetingID: "meeting-1",
		Title:     "Adopt the annual budget",
		Text:      "The assembly adopts the budget as proposed.",
	})
	if err != nil {
		t.Fatalf("create motion failed: %v", err)
	}
	return motion
}

func transition(t *testing.T, module motionservice.Module, motionID string, actor string, state string) httptransport.MotionResponse {
	t.Helper()
	motion, err := module.Handler.TransitionHandler(context.Background(), motionID, actor, httptransport.TransitionRequest{NewState: state})
	if err != nil {
		t.Fatalf("transition to %s failed: %v", state, err)
	}
	return motion
}

func TestMotionWorkflowHappyPath(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")
	if motion.State != "draft" {
		t.Fatalf("expected draft motion, got %s", motion.State)
	}

	motion = transition(t, module, motion.MotionID, "member-1", "submitted")
	motion = transition(t, module, motion.MotionID, "admin-1", "screening")
	motion = transition(t, module, motion.MotionID, "admin-1", "discussion")
	motion = transition(t, module, motion.MotionID, "admin-1", "voting")
	if motion.State != "voting" {
		t.Fatalf("expected voting state, got %s", motion.State)
	}

	history, err := module.Handler.HistoryHandler(context.Background(), motion.MotionID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history.Items) != 4 {
		t.Fatalf("expected 4 transition records, got %d", len(history.Items))
	}
	if history.Items[0].FromState != "draft" || history.Items[0].ToState != "submitted" {
		t.Fatalf("unexpected first record: %+v", history.Items[0])
	}
}

func TestMotionDisallowedTransitionsRejected(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")

	for _, target := range []string{"screening", "discussion", "voting", "accepted", "rejected", "referred"} {
		_, err := module.Handler.TransitionHandler(context.Background(), motion.MotionID, "admin-1", httptransport.TransitionRequest{NewState: target})
		if err == nil {
			t.Fatalf("expected draft -> %s to be rejected", target)
		}
		var transitionErr *domainerrors.TransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("expected TransitionError for draft -> %s, got %v", target, err)
		}
		if !errors.Is(err, domainerrors.ErrInvalidTransition) {
			t.Fatalf("TransitionError should match ErrInvalidTransition")
		}
		if transitionErr.CurrentState != "draft" {
			t.Fatalf("expected current state draft, got %s", transitionErr.CurrentState)
		}
		if len(transitionErr.Allowed) != 2 {
			t.Fatalf("expected 2 allowed transitions from draft, got %v", transitionErr.Allowed)
		}
	}

	unchanged, err := module.Handler.GetMotionHandler(context.Background(), motion.MotionID)
	if err != nil {
		t.Fatalf("get motion failed: %v", err)
	}
	if unchanged.State != "draft" {
		t.Fatalf("rejected transition must not change state, got %s", unchanged.State)
	}
}

func TestMotionTransitionAuthority(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")
	motion = transition(t, module, motion.MotionID, "member-1", "submitted")

	// An ordinary member cannot screen a motion.
	_, err := module.Handler.TransitionHandler(context.Background(), motion.MotionID, "member-1", httptransport.TransitionRequest{NewState: "screening"})
	if !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for member screening, got %v", err)
	}

	// The submitter may withdraw at any non-terminal state.
	withdrawn := transition(t, module, motion.MotionID, "member-1", "withdrawn")
	if withdrawn.State != "withdrawn" {
		t.Fatalf("expected withdrawn, got %s", withdrawn.State)
	}

	// Terminal states allow nothing further.
	_, err = module.Handler.TransitionHandler(context.Background(), motion.MotionID, "admin-1", httptransport.TransitionRequest{NewState: "submitted"})
	var transitionErr *domainerrors.TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError from withdrawn, got %v", err)
	}
	if len(transitionErr.Allowed) != 0 {
		t.Fatalf("expected no allowed transitions from withdrawn, got %v", transitionErr.Allowed)
	}
}

func TestMotionReferredLoopsBackToScreening(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")
	transition(t, module, motion.MotionID, "member-1", "submitted")
	transition(t, module, motion.MotionID, "admin-1", "screening")
	transition(t, module, motion.MotionID, "admin-1", "discussion")
	referred := transition(t, module, motion.MotionID, "admin-1", "referred")
	if referred.State != "referred" {
		t.Fatalf("expected referred, got %s", referred.State)
	}
	back := transition(t, module, motion.MotionID, "admin-1", "screening")
	if back.State != "screening" {
		t.Fatalf("expected screening after referral return, got %s", back.State)
	}
}

func TestMotionVotingEntryProvisionsDraftPoll(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")
	transition(t, module, motion.MotionID, "member-1", "submitted")
	transition(t, module, motion.MotionID, "admin-1", "screening")
	transition(t, module, motion.MotionID, "admin-1", "discussion")
	transition(t, module, motion.MotionID, "admin-1", "voting")

	poll, found, err := module.Store.PollByMotion(context.Background(), motion.MotionID)
	if err != nil {
		t.Fatalf("poll lookup failed: %v", err)
	}
	if !found {
		t.Fatalf("expected a draft poll provisioned for the motion")
	}
	if poll.Status != "draft" {
		t.Fatalf("expected draft poll, got %s", poll.Status)
	}
}

func TestMotionDecisionGateBlocksOpenPoll(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")
	transition(t, module, motion.MotionID, "member-1", "submitted")
	transition(t, module, motion.MotionID, "admin-1", "screening")
	transition(t, module, motion.MotionID, "admin-1", "discussion")
	transition(t, module, motion.MotionID, "admin-1", "voting")

	module.Store.SetPollState(motion.MotionID, ports.PollProjection{PollID: "poll-1", Status: "open"})
	_, err := module.Handler.TransitionHandler(context.Background(), motion.MotionID, "admin-1", httptransport.TransitionRequest{NewState: "accepted"})
	if !errors.Is(err, domainerrors.ErrPollStillOpen) {
		t.Fatalf("expected ErrPollStillOpen, got %v", err)
	}

	module.Store.SetPollState(motion.MotionID, ports.PollProjection{PollID: "poll-1", Status: "closed"})
	accepted := transition(t, module, motion.MotionID, "admin-1", "accepted")
	if accepted.State != "accepted" {
		t.Fatalf("expected accepted, got %s", accepted.State)
	}
}

func TestMotionAllowedTransitionsQuery(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")

	resp, err := module.Handler.AllowedTransitionsHandler(context.Background(), motion.MotionID)
	if err != nil {
		t.Fatalf("allowed transitions failed: %v", err)
	}
	if resp.CurrentState != "draft" {
		t.Fatalf("expected draft, got %s", resp.CurrentState)
	}
	want := map[string]bool{"submitted": true, "withdrawn": true}
	if len(resp.AllowedTransitions) != len(want) {
		t.Fatalf("unexpected allowed set %v", resp.AllowedTransitions)
	}
	for _, state := range resp.AllowedTransitions {
		if !want[state] {
			t.Fatalf("unexpected allowed transition %s", state)
		}
	}
}

func TestMotionDeleteOnlySubmitterOrOwner(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")

	if err := module.Handler.DeleteMotionHandler(context.Background(), motion.MotionID, "admin-1"); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for admin delete, got %v", err)
	}
	if err := module.Handler.DeleteMotionHandler(context.Background(), motion.MotionID, "owner-1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := module.Handler.GetMotionHandler(context.Background(), motion.MotionID); !errors.Is(err, domainerrors.ErrMotionNotFound) {
		t.Fatalf("expected ErrMotionNotFound after delete, got %v", err)
	}
}

func TestMotionUnknownStateRejected(t *testing.T) {
	module := newMotionModule()
	motion := createMotion(t, module, "member-1")
	_, err := module.Handler.TransitionHandler(context.Background(), motion.MotionID, "admin-1", httptransport.TransitionRequest{NewState: "archived"})
	var transitionErr *domainerrors.TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError for unknown state, got %v", err)
	}
	if transitionErr.Requested != string(entities.WorkflowState("archived")) {
		t.Fatalf("expected requested archived, got %s", transitionErr.Requested)
	}
}
