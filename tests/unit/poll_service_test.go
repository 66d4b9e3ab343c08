package unit

import (
	"context"
	"errors"
	"testing"

	pollservice "plenum/contexts/governance/poll-service"
	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
	"plenum/contexts/governance/poll-service/ports"
	httptransport "plenum/contexts/governance/poll-service/transport/http"
)

func newPollModule() pollservice.Module {
	module := pollservice.NewInMemoryModule(nil)
	module.Store.SetMeeting(ports.MeetingProjection{
		MeetingID: "meeting-1",
		OwnerID:   "owner-1",
		Status:    "in_progress",
		QuorumMet: true,
	})
	module.Store.SetParticipant(ports.ParticipantProjection{
		MeetingID:  "meeting-1",
		UserID:     "admin-1",
		Role:       "admin",
		CanVote:    true,
		VoteWeight: 1,
	})
	module.Store.SetParticipant(ports.ParticipantProjection{
		MeetingID:  "meeting-1",
		UserID:     "member-1",
		Role:       "member",
		CanVote:    true,
		VoteWeight: 3,
	})
	module.Store.SetParticipant(ports.ParticipantProjection{
		MeetingID:  "meeting-1",
		UserID:     "member-2",
		Role:       "member",
		CanVote:    true,
		VoteWeight: 1,
	})
	module.Store.SetParticipant(ports.ParticipantProjection{
		MeetingID: "meeting-1",
		UserID:    "observer-1",
		Role:      "observer",
		CanVote:   false,
	})
	return module
}

func createYesNoPoll(t *testing.T, module pollservice.Module, anonymous bool) httptransport.PollResponse {
	t.Helper()
	poll, err := module.Handler.CreatePollHandler(context.Background(), "admin-1", httptransport.CreatePollRequest{
		MeetingID: "meeting-1",
		Title:     "Adopt the budget",
		PollType:  "yes_no",
		Anonymous: anonymous,
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	return poll
}

func TestPollLifecycleAndWeightedTally(t *testing.T) {
	module := newPollModule()
	poll := createYesNoPoll(t, module, false)
	if poll.Status != "draft" {
		t.Fatalf("expected draft poll, got %s", poll.Status)
	}
	if len(poll.Options) != 2 {
		t.Fatalf("expected builtin yes/no options, got %v", poll.Options)
	}

	opened, err := module.Handler.OpenPollHandler(context.Background(), poll.PollID, "admin-1")
	if err != nil {
		t.Fatalf("open poll failed: %v", err)
	}
	if opened.Status != "open" {
		t.Fatalf("expected open poll, got %s", opened.Status)
	}

	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("member-1 vote failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-2", httptransport.CastVoteRequest{Choice: "no"}); err != nil {
		t.Fatalf("member-2 vote failed: %v", err)
	}

	closed, err := module.Handler.ClosePollHandler(context.Background(), poll.PollID, "admin-1")
	if err != nil {
		t.Fatalf("close poll failed: %v", err)
	}
	if closed.Status != "closed" {
		t.Fatalf("expected closed poll, got %s", closed.Status)
	}

	results, err := module.Handler.ResultsHandler(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.TotalBallots != 2 {
		t.Fatalf("expected 2 ballots, got %d", results.TotalBallots)
	}
	if results.TotalWeight != 4 {
		t.Fatalf("expected total weight 4, got %f", results.TotalWeight)
	}
	if results.Outcome != "carried" || results.Winner != "yes" {
		t.Fatalf("expected weighted yes to carry, got outcome=%s winner=%s", results.Outcome, results.Winner)
	}
	if !results.QuorumMet {
		t.Fatalf("expected quorum met snapshot")
	}
}

func TestPollDuplicateVoteRejected(t *testing.T) {
	module := newPollModule()
	poll := createYesNoPoll(t, module, false)
	if _, err := module.Handler.OpenPollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("open poll failed: %v", err)
	}

	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	_, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Choice: "no"})
	if !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected ErrDuplicateVote, got %v", err)
	}

	votes, err := module.Handler.ListVotesHandler(context.Background(), poll.PollID, "admin-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes.Items) != 1 {
		t.Fatalf("expected exactly one recorded vote, got %d", len(votes.Items))
	}
	if votes.Items[0].Choice != "yes" {
		t.Fatalf("first ballot must win, got %s", votes.Items[0].Choice)
	}
}

func TestPollDoubleCloseRejected(t *testing.T) {
	module := newPollModule()
	poll := createYesNoPoll(t, module, false)
	if _, err := module.Handler.OpenPollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("open poll failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.ClosePollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	first, err := module.Handler.ResultsHandler(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}

	_, err = module.Handler.ClosePollHandler(context.Background(), poll.PollID, "admin-1")
	if !errors.Is(err, domainerrors.ErrPollNotOpen) {
		t.Fatalf("expected ErrPollNotOpen on double close, got %v", err)
	}

	second, err := module.Handler.ResultsHandler(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results after rejected close failed: %v", err)
	}
	if first.TotalBallots != second.TotalBallots || first.Winner != second.Winner || first.Outcome != second.Outcome {
		t.Fatalf("results changed after rejected close: %+v vs %+v", first, second)
	}
}

func TestPollVotingGates(t *testing.T) {
	module := newPollModule()
	poll := createYesNoPoll(t, module, false)

	// Draft poll accepts no ballots.
	_, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Choice: "yes"})
	if !errors.Is(err, domainerrors.ErrPollNotOpen) {
		t.Fatalf("expected ErrPollNotOpen for draft poll, got %v", err)
	}

	if _, err := module.Handler.OpenPollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("open poll failed: %v", err)
	}

	// Observers cannot vote.
	_, err = module.Handler.CastVoteHandler(context.Background(), poll.PollID, "observer-1", httptransport.CastVoteRequest{Choice: "yes"})
	if !errors.Is(err, domainerrors.ErrVotingForbidden) {
		t.Fatalf("expected ErrVotingForbidden for observer, got %v", err)
	}

	// Strangers cannot vote.
	_, err = module.Handler.CastVoteHandler(context.Background(), poll.PollID, "stranger-1", httptransport.CastVoteRequest{Choice: "yes"})
	if !errors.Is(err, domainerrors.ErrVotingForbidden) {
		t.Fatalf("expected ErrVotingForbidden for stranger, got %v", err)
	}

	// Unknown options are rejected.
	_, err = module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Choice: "maybe"})
	if !errors.Is(err, domainerrors.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}

	// Only meeting admins drive the lifecycle.
	_, err = module.Handler.ClosePollHandler(context.Background(), poll.PollID, "member-1")
	if !errors.Is(err, domainerrors.ErrNotMeetingAdmin) {
		t.Fatalf("expected ErrNotMeetingAdmin, got %v", err)
	}
}

func TestPollAnonymousListingRedactsVoters(t *testing.T) {
	module := newPollModule()
	poll := createYesNoPoll(t, module, true)
	if _, err := module.Handler.OpenPollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("open poll failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	asMember, err := module.Handler.ListVotesHandler(context.Background(), poll.PollID, "member-2")
	if err != nil {
		t.Fatalf("member listing failed: %v", err)
	}
	if asMember.Items[0].UserID != "" {
		t.Fatalf("anonymous poll must redact voter identity for members, got %s", asMember.Items[0].UserID)
	}

	asAdmin, err := module.Handler.ListVotesHandler(context.Background(), poll.PollID, "admin-1")
	if err != nil {
		t.Fatalf("admin listing failed: %v", err)
	}
	if asAdmin.Items[0].UserID != "member-1" {
		t.Fatalf("admins see voter identity, got %q", asAdmin.Items[0].UserID)
	}
}

func TestPollPublishRequiresClosed(t *testing.T) {
	module := newPollModule()
	poll := createYesNoPoll(t, module, false)

	_, err := module.Handler.PublishPollHandler(context.Background(), poll.PollID, "admin-1")
	if !errors.Is(err, domainerrors.ErrPollNotClosed) {
		t.Fatalf("expected ErrPollNotClosed for draft publish, got %v", err)
	}

	if _, err := module.Handler.OpenPollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("open poll failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.ClosePollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	published, err := module.Handler.PublishPollHandler(context.Background(), poll.PollID, "admin-1")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if published.Status != "published" {
		t.Fatalf("expected published, got %s", published.Status)
	}

	// Publishing again is idempotent.
	again, err := module.Handler.PublishPollHandler(context.Background(), poll.PollID, "admin-1")
	if err != nil {
		t.Fatalf("repeat publish failed: %v", err)
	}
	if again.Status != "published" {
		t.Fatalf("expected published, got %s", again.Status)
	}
}

func TestRankedChoicePollEndToEnd(t *testing.T) {
	module := newPollModule()
	poll, err := module.Handler.CreatePollHandler(context.Background(), "admin-1", httptransport.CreatePollRequest{
		MeetingID: "meeting-1",
		Title:     "Elect the chair",
		PollType:  "ranked_choice",
		Options: []httptransport.OptionPayload{
			{OptionID: "a", Label: "Alice"},
			{OptionID: "b", Label: "Bakr"},
			{OptionID: "c", Label: "Chen"},
		},
	})
	if err != nil {
		t.Fatalf("create ranked poll failed: %v", err)
	}
	if _, err := module.Handler.OpenPollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("open failed: %v", err)
	}

	// member-1 weight 3 prefers a; member-2 and admin-1 weight 1 prefer b then a.
	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-1", httptransport.CastVoteRequest{Ranking: []string{"a", "c"}}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "member-2", httptransport.CastVoteRequest{Ranking: []string{"b", "a"}}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), poll.PollID, "admin-1", httptransport.CastVoteRequest{Ranking: []string{"c", "b"}}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if _, err := module.Handler.ClosePollHandler(context.Background(), poll.PollID, "admin-1"); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	results, err := module.Handler.ResultsHandler(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	// Round 1: a=3, b=1, c=1 of 5 active weight. a clears the >2.5 majority.
	if results.Winner != "a" {
		t.Fatalf("expected a to win, got %s", results.Winner)
	}
	if results.Outcome != "decided" {
		t.Fatalf("expected decided outcome, got %s", results.Outcome)
	}
}
