package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	meetingservice "plenum/contexts/governance/meeting-service"
	motionservice "plenum/contexts/governance/motion-service"
	motionports "plenum/contexts/governance/motion-service/ports"
	motionhttp "plenum/contexts/governance/motion-service/transport/http"
	pollservice "plenum/contexts/governance/poll-service"
	pollports "plenum/contexts/governance/poll-service/ports"
	pollhttp "plenum/contexts/governance/poll-service/transport/http"
)

func newYesNoPollRequest() pollhttp.CreatePollRequest {
	return pollhttp.CreatePollRequest{
		MeetingID: "meeting-1",
		Title:     "Adopt the budget",
		PollType:  "yes_no",
	}
}

func newTestServer() *Server {
	meetings := meetingservice.NewInMemoryModule(nil)
	motions := motionservice.NewInMemoryModule(nil)
	polls := pollservice.NewInMemoryModule(nil)

	motions.Store.SetMeeting(motionports.MeetingProjection{MeetingID: "meeting-1", OwnerID: "owner-1", Status: "in_progress"})
	motions.Store.SetParticipant(motionports.ParticipantProjection{MeetingID: "meeting-1", UserID: "member-1", Role: "member"})
	polls.Store.SetMeeting(pollports.MeetingProjection{MeetingID: "meeting-1", OwnerID: "owner-1", Status: "in_progress", QuorumMet: true})
	polls.Store.SetParticipant(pollports.ParticipantProjection{MeetingID: "meeting-1", UserID: "member-1", Role: "member", CanVote: true, VoteWeight: 1})

	return New(meetings, motions, polls, nil, ":0")
}

func TestMotionCreateRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"meeting_id":"meeting-1","title":"Adopt budget","text":"Adopt the budget."}`)
	req := httptest.NewRequest(http.MethodPost, "/governance/motions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestVoteCastRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/governance/polls/poll-1/votes", bytes.NewReader([]byte(`{"choice":"yes"}`)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMeetingStartRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/governance/meetings/meeting-1/start", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMotionTransitionConflictCarriesAllowedSet(t *testing.T) {
	server := newTestServer()
	motion, err := server.motions.Handler.CreateMotionHandler(context.Background(), "member-1", motionhttp.CreateMotionRequest{
		MeetingID: "meeting-1",
		Title:     "Adopt budget",
		Text:      "Adopt the budget.",
	})
	if err != nil {
		t.Fatalf("create motion failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/governance/motions/"+motion.MotionID+"/transition", bytes.NewReader([]byte(`{"new_state":"voting"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "member-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp motionhttp.TransitionErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode conflict body failed: %v", err)
	}
	if resp.Code != "invalid_transition" || resp.CurrentState != "draft" {
		t.Fatalf("unexpected conflict payload: %+v", resp)
	}
	if len(resp.AllowedTransitions) != 2 {
		t.Fatalf("expected 2 allowed transitions, got %v", resp.AllowedTransitions)
	}
}

func TestPollCloseDeniedForMember(t *testing.T) {
	server := newTestServer()
	poll, err := server.polls.Handler.CreatePollHandler(context.Background(), "owner-1", newYesNoPollRequest())
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	if _, err := server.polls.Handler.OpenPollHandler(context.Background(), poll.PollID, "owner-1"); err != nil {
		t.Fatalf("open poll failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/governance/polls/"+poll.PollID+"/close", nil)
	req.Header.Set("X-User-Id", "member-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnknownMotionReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/governance/motions/no-such-motion", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
