package unit

import (
	"context"
	"errors"
	"testing"

	motionservice "plenum/contexts/governance/motion-service"
	motionmemory "plenum/contexts/governance/motion-service/adapters/memory"
	motionerrors "plenum/contexts/governance/motion-service/domain/errors"
	motionports "plenum/contexts/governance/motion-service/ports"
	motionhttp "plenum/contexts/governance/motion-service/transport/http"
	pollservice "plenum/contexts/governance/poll-service"
	pollcommands "plenum/contexts/governance/poll-service/application/commands"
	pollentities "plenum/contexts/governance/poll-service/domain/entities"
	pollports "plenum/contexts/governance/poll-service/ports"
	pollhttp "plenum/contexts/governance/poll-service/transport/http"
)

// pollModuleBridge exposes the poll module to the motion workflow the same
// way the production wiring does: provisioning draft polls and reporting
// the state of the poll attached to a motion.
type pollModuleBridge struct {
	polls pollservice.Module
}

func (b pollModuleBridge) CreateDraftPoll(ctx context.Context, meetingID string, motionID string, title string, actorID string) (string, error) {
	poll, err := b.polls.Handler.Polls.CreatePoll(ctx, pollcommands.CreatePollCommand{
		ActorID:   actorID,
		MeetingID: meetingID,
		MotionID:  motionID,
		Title:     title,
		Type:      pollentities.PollTypeYesNo,
	})
	if err != nil {
		return "", err
	}
	return poll.PollID, nil
}

func (b pollModuleBridge) PollByMotion(ctx context.Context, motionID string) (motionports.PollProjection, bool, error) {
	resp, err := b.polls.Handler.ListPollsHandler(ctx, "meeting-1")
	if err != nil {
		return motionports.PollProjection{}, false, err
	}
	for _, poll := range resp.Items {
		if poll.MotionID == motionID {
			return motionports.PollProjection{PollID: poll.PollID, Status: poll.Status}, true, nil
		}
	}
	return motionports.PollProjection{}, false, nil
}

// TestGovernanceFlowMotionToDecision walks a motion through the whole
// workflow against a live poll module: entering voting provisions a draft
// poll, a tied ballot keeps the record honest, and the decision is only
// possible once the poll closes.
func TestGovernanceFlowMotionToDecision(t *testing.T) {
	ctx := context.Background()

	pollModule := pollservice.NewInMemoryModule(nil)
	pollModule.Store.SetMeeting(pollports.MeetingProjection{
		MeetingID: "meeting-1",
		OwnerID:   "owner-1",
		Status:    "in_progress",
		QuorumMet: true,
	})
	pollModule.Store.SetParticipant(pollports.ParticipantProjection{
		MeetingID: "meeting-1", UserID: "admin-1", Role: "admin", CanVote: true, VoteWeight: 1,
	})
	pollModule.Store.SetParticipant(pollports.ParticipantProjection{
		MeetingID: "meeting-1", UserID: "member-1", Role: "member", CanVote: true, VoteWeight: 1,
	})

	motionStore := motionmemory.NewStore()
	motionStore.SetMeeting(motionports.MeetingProjection{MeetingID: "meeting-1", OwnerID: "owner-1", Status: "in_progress"})
	motionStore.SetParticipant(motionports.ParticipantProjection{MeetingID: "meeting-1", UserID: "admin-1", Role: "admin"})
	motionStore.SetParticipant(motionports.ParticipantProjection{MeetingID: "meeting-1", UserID: "member-1", Role: "member"})

	bridge := pollModuleBridge{polls: pollModule}
	motionModule := motionservice.NewModule(motionservice.Dependencies{
		Motions:     motionStore,
		Meetings:    motionStore,
		Polls:       bridge,
		Provisioner: bridge,
		Outbox:      motionStore,
		Clock:       motionStore,
		IDGen:       motionStore,
	})

	motion, err := motionModule.Handler.CreateMotionHandler(ctx, "member-1", motionhttp.CreateMotionRequest{
		MeetingID: "meeting-1",
		Title:     "Adopt the bylaws revision",
		Text:      "The assembly adopts the revised bylaws.",
	})
	if err != nil {
		t.Fatalf("create motion failed: %v", err)
	}

	for _, step := range []struct {
		actor string
		state string
	}{
		{"member-1", "submitted"},
		{"admin-1", "screening"},
		{"admin-1", "discussion"},
		{"admin-1", "voting"},
	} {
		if _, err := motionModule.Handler.TransitionHandler(ctx, motion.MotionID, step.actor, motionhttp.TransitionRequest{NewState: step.state}); err != nil {
			t.Fatalf("transition to %s failed: %v", step.state, err)
		}
	}

	// Entering voting provisioned a draft yes/no poll in the poll module.
	attached, found, err := bridge.PollByMotion(ctx, motion.MotionID)
	if err != nil || !found {
		t.Fatalf("expected provisioned poll, found=%v err=%v", found, err)
	}
	if attached.Status != "draft" {
		t.Fatalf("expected draft poll, got %s", attached.Status)
	}

	if _, err := pollModule.Handler.OpenPollHandler(ctx, attached.PollID, "admin-1"); err != nil {
		t.Fatalf("open poll failed: %v", err)
	}

	// An open poll blocks the decision.
	_, err = motionModule.Handler.TransitionHandler(ctx, motion.MotionID, "admin-1", motionhttp.TransitionRequest{NewState: "accepted"})
	if !errors.Is(err, motionerrors.ErrPollStillOpen) {
		t.Fatalf("expected ErrPollStillOpen, got %v", err)
	}

	if _, err := pollModule.Handler.CastVoteHandler(ctx, attached.PollID, "admin-1", pollhttp.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("admin vote failed: %v", err)
	}
	if _, err := pollModule.Handler.CastVoteHandler(ctx, attached.PollID, "member-1", pollhttp.CastVoteRequest{Choice: "no"}); err != nil {
		t.Fatalf("member vote failed: %v", err)
	}

	if _, err := pollModule.Handler.ClosePollHandler(ctx, attached.PollID, "admin-1"); err != nil {
		t.Fatalf("close poll failed: %v", err)
	}

	results, err := pollModule.Handler.ResultsHandler(ctx, attached.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.Outcome != pollentities.OutcomeTied || !results.Tied {
		t.Fatalf("expected tied outcome for 1-1 ballot, got %+v", results)
	}
	if results.TotalBallots != 2 || results.TotalWeight != 2 {
		t.Fatalf("unexpected totals: %+v", results)
	}

	// With the poll closed the chair records the decision.
	decided, err := motionModule.Handler.TransitionHandler(ctx, motion.MotionID, "admin-1", motionhttp.TransitionRequest{NewState: "rejected"})
	if err != nil {
		t.Fatalf("decision transition failed: %v", err)
	}
	if decided.State != "rejected" {
		t.Fatalf("expected rejected, got %s", decided.State)
	}

	history, err := motionModule.Handler.HistoryHandler(ctx, motion.MotionID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history.Items) != 5 {
		t.Fatalf("expected 5 transition records, got %d", len(history.Items))
	}
	last := history.Items[len(history.Items)-1]
	if last.FromState != "voting" || last.ToState != "rejected" {
		t.Fatalf("unexpected final record: %+v", last)
	}
}
