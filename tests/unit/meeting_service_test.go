package unit

import (
	"context"
	"errors"
	"testing"

	meetingservice "plenum/contexts/governance/meeting-service"
	domainerrors "plenum/contexts/governance/meeting-service/domain/errors"
	httptransport "plenum/contexts/governance/meeting-service/transport/http"
)

func newMeeting(t *testing.T, module meetingservice.Module, quorumType string, quorumRequired float64) httptransport.MeetingResponse {
	t.Helper()
	meeting, err := module.Handler.CreateMeetingHandler(context.Background(), "owner-1", httptransport.CreateMeetingRequest{
		Title:          "General Assembly",
		QuorumType:     quorumType,
		QuorumRequired: quorumRequired,
	})
	if err != nil {
		t.Fatalf("create meeting failed: %v", err)
	}
	return meeting
}

func addVoter(t *testing.T, module meetingservice.Module, meetingID string, userID string, weight float64) {
	t.Helper()
	_, err := module.Handler.AddParticipantHandler(context.Background(), meetingID, "owner-1", httptransport.AddParticipantRequest{
		UserID:     userID,
		Role:       "member",
		CanVote:    true,
		VoteWeight: weight,
	})
	if err != nil {
		t.Fatalf("add participant %s failed: %v", userID, err)
	}
}

func markAttendance(t *testing.T, module meetingservice.Module, meetingID string, userID string, attendance string) httptransport.ParticipantResponse {
	t.Helper()
	resp, err := module.Handler.SetAttendanceHandler(context.Background(), meetingID, userID, userID, httptransport.SetAttendanceRequest{Attendance: attendance})
	if err != nil {
		t.Fatalf("set attendance for %s failed: %v", userID, err)
	}
	return resp
}

func TestMeetingCreationEnrollsCreatorAsAdmin(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 0)
	if meeting.Status != "draft" {
		t.Fatalf("expected draft meeting, got %s", meeting.Status)
	}

	roster, err := module.Handler.ListParticipantsHandler(context.Background(), meeting.MeetingID)
	if err != nil {
		t.Fatalf("list participants failed: %v", err)
	}
	if len(roster.Items) != 1 {
		t.Fatalf("expected creator enrolled, got %d participants", len(roster.Items))
	}
	creator := roster.Items[0]
	if creator.UserID != "owner-1" || creator.Role != "admin" || !creator.CanVote || creator.VoteWeight != 1 {
		t.Fatalf("unexpected creator enrollment: %+v", creator)
	}
}

func TestMeetingLifecycle(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 0)

	scheduled, err := module.Handler.ScheduleMeetingHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.ScheduleMeetingRequest{
		ScheduledFor: "2026-09-01T18:00:00Z",
	})
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if scheduled.Status != "scheduled" || scheduled.ScheduledFor == "" {
		t.Fatalf("unexpected scheduled meeting: %+v", scheduled)
	}

	started, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "owner-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if started.Status != "in_progress" || started.StartedAt == "" {
		t.Fatalf("unexpected started meeting: %+v", started)
	}

	closed, err := module.Handler.CloseMeetingHandler(context.Background(), meeting.MeetingID, "owner-1")
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Status != "completed" || closed.ClosedAt == "" {
		t.Fatalf("unexpected closed meeting: %+v", closed)
	}

	// Completed meetings are frozen against roster edits.
	_, err = module.Handler.AddParticipantHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AddParticipantRequest{UserID: "late-1", CanVote: true})
	if !errors.Is(err, domainerrors.ErrMeetingNotEditable) {
		t.Fatalf("expected ErrMeetingNotEditable, got %v", err)
	}

	reopened, err := module.Handler.ReopenMeetingHandler(context.Background(), meeting.MeetingID, "owner-1")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Status != "in_progress" {
		t.Fatalf("expected in_progress after reopen, got %s", reopened.Status)
	}

	// A live meeting cannot be cancelled.
	_, err = module.Handler.CancelMeetingHandler(context.Background(), meeting.MeetingID, "owner-1")
	if !errors.Is(err, domainerrors.ErrInvalidMeetingStatus) {
		t.Fatalf("expected ErrInvalidMeetingStatus, got %v", err)
	}
}

func TestMeetingLifecycleRequiresAdmin(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 0)
	addVoter(t, module, meeting.MeetingID, "member-1", 1)

	_, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "member-1")
	if !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for member start, got %v", err)
	}
	_, err = module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "stranger-1")
	if !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger start, got %v", err)
	}
}

func TestCountQuorumFlipsWithAttendance(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 2)
	addVoter(t, module, meeting.MeetingID, "member-1", 1)
	addVoter(t, module, meeting.MeetingID, "member-2", 1)

	started, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "owner-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if started.QuorumMet {
		t.Fatalf("quorum must not be met with nobody present")
	}

	markAttendance(t, module, meeting.MeetingID, "member-1", "present")
	markAttendance(t, module, meeting.MeetingID, "member-2", "present")

	current, err := module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID)
	if err != nil {
		t.Fatalf("get meeting failed: %v", err)
	}
	if !current.QuorumMet {
		t.Fatalf("expected quorum met with 2 present voters")
	}

	// Quorum drops again when a member leaves.
	markAttendance(t, module, meeting.MeetingID, "member-2", "absent")
	current, err = module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID)
	if err != nil {
		t.Fatalf("get meeting failed: %v", err)
	}
	if current.QuorumMet {
		t.Fatalf("expected quorum lost after member left")
	}
}

func TestCountQuorumIncludesPresentNonVoters(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 3)
	addVoter(t, module, meeting.MeetingID, "member-1", 1)
	if _, err := module.Handler.AddParticipantHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AddParticipantRequest{
		UserID: "observer-1",
		Role:   "observer",
	}); err != nil {
		t.Fatalf("add observer failed: %v", err)
	}

	if _, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "owner-1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	markAttendance(t, module, meeting.MeetingID, "owner-1", "present")
	markAttendance(t, module, meeting.MeetingID, "member-1", "present")
	current, _ := module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID)
	if current.QuorumMet {
		t.Fatalf("2 of 3 present must not meet quorum")
	}

	// Attendance counts regardless of voting rights.
	markAttendance(t, module, meeting.MeetingID, "observer-1", "present")
	current, _ = module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID)
	if !current.QuorumMet {
		t.Fatalf("3 present participants meet a count quorum of 3")
	}
}

func TestWeightedQuorumIgnoresNonVoterWeight(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "weighted", 2)
	addVoter(t, module, meeting.MeetingID, "member-1", 1)
	if _, err := module.Handler.AddParticipantHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AddParticipantRequest{
		UserID:     "observer-1",
		Role:       "observer",
		VoteWeight: 5,
	}); err != nil {
		t.Fatalf("add observer failed: %v", err)
	}

	if _, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "owner-1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	markAttendance(t, module, meeting.MeetingID, "observer-1", "present")
	current, _ := module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID)
	if current.QuorumMet {
		t.Fatalf("a present non-voter contributes no weight")
	}

	markAttendance(t, module, meeting.MeetingID, "owner-1", "present")
	markAttendance(t, module, meeting.MeetingID, "member-1", "present")
	current, _ = module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID)
	if !current.QuorumMet {
		t.Fatalf("weight 2 of 2 meets weighted quorum")
	}
}

func TestWeightedQuorumCountsVoteWeight(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "weighted", 5)
	addVoter(t, module, meeting.MeetingID, "delegate-1", 4)
	addVoter(t, module, meeting.MeetingID, "member-1", 1)

	if _, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "owner-1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	markAttendance(t, module, meeting.MeetingID, "delegate-1", "present")
	current, _ := module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID)
	if current.QuorumMet {
		t.Fatalf("weight 4 of 5 must not meet quorum")
	}

	markAttendance(t, module, meeting.MeetingID, "member-1", "present")
	current, _ = module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID)
	if !current.QuorumMet {
		t.Fatalf("weight 5 of 5 meets quorum")
	}
}

func TestAttendanceIsIdempotent(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 1)
	addVoter(t, module, meeting.MeetingID, "member-1", 1)

	first := markAttendance(t, module, meeting.MeetingID, "member-1", "present")
	second := markAttendance(t, module, meeting.MeetingID, "member-1", "present")
	if first.Attendance != "present" || second.Attendance != "present" {
		t.Fatalf("expected present attendance, got %s then %s", first.Attendance, second.Attendance)
	}
}

func TestDuplicateParticipantRejected(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 0)
	addVoter(t, module, meeting.MeetingID, "member-1", 1)

	_, err := module.Handler.AddParticipantHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AddParticipantRequest{
		UserID:  "member-1",
		CanVote: true,
	})
	if !errors.Is(err, domainerrors.ErrDuplicateParticipant) {
		t.Fatalf("expected ErrDuplicateParticipant, got %v", err)
	}
}

func TestAgendaAdvanceWalksOrder(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 0)

	for _, item := range []struct {
		title string
		order int
	}{
		{"Budget", 2},
		{"Welcome", 1},
		{"Elections", 3},
	} {
		if _, err := module.Handler.CreateAgendaItemHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.CreateAgendaItemRequest{
			Title: item.title,
			Order: item.order,
		}); err != nil {
			t.Fatalf("create agenda item %s failed: %v", item.title, err)
		}
	}

	// Agenda advance needs a live session.
	_, err := module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{})
	if !errors.Is(err, domainerrors.ErrMeetingNotInProgress) {
		t.Fatalf("expected ErrMeetingNotInProgress, got %v", err)
	}

	if _, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "owner-1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	first, err := module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{})
	if err != nil {
		t.Fatalf("first advance failed: %v", err)
	}
	if first.Title != "Welcome" || first.Status != "in_progress" {
		t.Fatalf("expected Welcome active first, got %+v", first)
	}

	second, err := module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{})
	if err != nil {
		t.Fatalf("second advance failed: %v", err)
	}
	if second.Title != "Budget" {
		t.Fatalf("expected Budget second, got %s", second.Title)
	}

	agenda, err := module.Handler.ListAgendaHandler(context.Background(), meeting.MeetingID)
	if err != nil {
		t.Fatalf("list agenda failed: %v", err)
	}
	if agenda.Items[0].Status != "completed" {
		t.Fatalf("previous item must complete on advance, got %s", agenda.Items[0].Status)
	}

	third, err := module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{})
	if err != nil {
		t.Fatalf("third advance failed: %v", err)
	}
	if third.Title != "Elections" {
		t.Fatalf("expected Elections third, got %s", third.Title)
	}

	_, err = module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{})
	if !errors.Is(err, domainerrors.ErrAgendaExhausted) {
		t.Fatalf("expected ErrAgendaExhausted, got %v", err)
	}
}

func TestAgendaAdvanceToNamedItem(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 0)

	for _, item := range []struct {
		title string
		order int
	}{
		{"Welcome", 1},
		{"Budget", 2},
	} {
		if _, err := module.Handler.CreateAgendaItemHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.CreateAgendaItemRequest{Title: item.title, Order: item.order}); err != nil {
			t.Fatalf("create agenda item %s failed: %v", item.title, err)
		}
	}
	elections, err := module.Handler.CreateAgendaItemHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.CreateAgendaItemRequest{Title: "Elections", Order: 3})
	if err != nil {
		t.Fatalf("create agenda item failed: %v", err)
	}

	if _, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "owner-1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// The chair takes items out of order: straight to Elections.
	jumped, err := module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{ToItemID: elections.AgendaItemID})
	if err != nil {
		t.Fatalf("targeted advance failed: %v", err)
	}
	if jumped.Title != "Elections" || jumped.Status != "in_progress" {
		t.Fatalf("expected Elections active, got %+v", jumped)
	}

	// A plain advance then completes Elections and returns to the earliest
	// pending item.
	next, err := module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{})
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if next.Title != "Welcome" {
		t.Fatalf("expected Welcome after jump, got %s", next.Title)
	}

	// The named item must be pending.
	_, err = module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{ToItemID: elections.AgendaItemID})
	if !errors.Is(err, domainerrors.ErrInvalidAgendaInput) {
		t.Fatalf("expected ErrInvalidAgendaInput for completed target, got %v", err)
	}

	// And it must belong to the meeting's agenda.
	_, err = module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{ToItemID: "no-such-item"})
	if !errors.Is(err, domainerrors.ErrAgendaItemNotFound) {
		t.Fatalf("expected ErrAgendaItemNotFound for foreign target, got %v", err)
	}
}

func TestAgendaSkipKeepsStatusOnAdvance(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 0)

	welcome, err := module.Handler.CreateAgendaItemHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.CreateAgendaItemRequest{Title: "Welcome", Order: 1})
	if err != nil {
		t.Fatalf("create agenda item failed: %v", err)
	}
	if _, err := module.Handler.CreateAgendaItemHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.CreateAgendaItemRequest{Title: "Budget", Order: 2}); err != nil {
		t.Fatalf("create agenda item failed: %v", err)
	}

	if _, err := module.Handler.StartMeetingHandler(context.Background(), meeting.MeetingID, "owner-1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	skipped, err := module.Handler.SkipAgendaItemHandler(context.Background(), welcome.AgendaItemID, "owner-1")
	if err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if skipped.Status != "skipped" {
		t.Fatalf("expected skipped, got %s", skipped.Status)
	}

	next, err := module.Handler.AdvanceAgendaHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.AdvanceAgendaRequest{})
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if next.Title != "Budget" {
		t.Fatalf("expected Budget after skip, got %s", next.Title)
	}

	agenda, err := module.Handler.ListAgendaHandler(context.Background(), meeting.MeetingID)
	if err != nil {
		t.Fatalf("list agenda failed: %v", err)
	}
	if agenda.Items[0].Status != "skipped" {
		t.Fatalf("skipped item keeps its status, got %s", agenda.Items[0].Status)
	}
}

func TestMeetingDeleteCascades(t *testing.T) {
	module := meetingservice.NewInMemoryModule(nil)
	meeting := newMeeting(t, module, "count", 0)
	addVoter(t, module, meeting.MeetingID, "member-1", 1)
	if _, err := module.Handler.CreateAgendaItemHandler(context.Background(), meeting.MeetingID, "owner-1", httptransport.CreateAgendaItemRequest{Title: "Welcome", Order: 1}); err != nil {
		t.Fatalf("create agenda item failed: %v", err)
	}

	// Only the owner deletes; participants get denied.
	if err := module.Handler.DeleteMeetingHandler(context.Background(), meeting.MeetingID, "member-1"); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := module.Handler.DeleteMeetingHandler(context.Background(), meeting.MeetingID, "owner-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := module.Handler.GetMeetingHandler(context.Background(), meeting.MeetingID); !errors.Is(err, domainerrors.ErrMeetingNotFound) {
		t.Fatalf("expected ErrMeetingNotFound, got %v", err)
	}
}
