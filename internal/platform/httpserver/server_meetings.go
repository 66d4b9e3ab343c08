package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	meetingerrors "plenum/contexts/governance/meeting-service/domain/errors"
	meetinghttp "plenum/contexts/governance/meeting-service/transport/http"
)

func (s *Server) registerMeetingRoutes() {
	s.mux.HandleFunc("POST /governance/meetings", s.handleCreateMeeting)
	s.mux.HandleFunc("GET /governance/meetings", s.handleListMeetings)
	s.mux.HandleFunc("GET /governance/meetings/{meeting_id}", s.handleGetMeeting)
	s.mux.HandleFunc("PUT /governance/meetings/{meeting_id}", s.handleUpdateMeeting)
	s.mux.HandleFunc("DELETE /governance/meetings/{meeting_id}", s.handleDeleteMeeting)
	s.mux.HandleFunc("POST /governance/meetings/{meeting_id}/schedule", s.handleScheduleMeeting)
	s.mux.HandleFunc("POST /governance/meetings/{meeting_id}/start", s.handleStartMeeting)
	s.mux.HandleFunc("POST /governance/meetings/{meeting_id}/close", s.handleCloseMeeting)
	s.mux.HandleFunc("POST /governance/meetings/{meeting_id}/reopen", s.handleReopenMeeting)
	s.mux.HandleFunc("POST /governance/meetings/{meeting_id}/cancel", s.handleCancelMeeting)

	s.mux.HandleFunc("POST /governance/meetings/{meeting_id}/participants", s.handleAddParticipant)
	s.mux.HandleFunc("GET /governance/meetings/{meeting_id}/participants", s.handleListParticipants)
	s.mux.HandleFunc("PUT /governance/meetings/{meeting_id}/participants/{user_id}/role", s.handleSetRole)
	s.mux.HandleFunc("PUT /governance/meetings/{meeting_id}/participants/{user_id}/attendance", s.handleSetAttendance)

	s.mux.HandleFunc("POST /governance/meetings/{meeting_id}/agenda", s.handleCreateAgendaItem)
	s.mux.HandleFunc("GET /governance/meetings/{meeting_id}/agenda", s.handleListAgenda)
	s.mux.HandleFunc("POST /governance/meetings/{meeting_id}/agenda/advance", s.handleAdvanceAgenda)
	s.mux.HandleFunc("PUT /governance/agenda-items/{agenda_item_id}", s.handleUpdateAgendaItem)
	s.mux.HandleFunc("DELETE /governance/agenda-items/{agenda_item_id}", s.handleDeleteAgendaItem)
	s.mux.HandleFunc("POST /governance/agenda-items/{agenda_item_id}/skip", s.handleSkipAgendaItem)
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.CreateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.CreateMeetingHandler(r.Context(), actorID, req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.meetings.Handler.ListMeetingsHandler(r.Context())
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.meetings.Handler.GetMeetingHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.UpdateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.UpdateMeetingHandler(r.Context(), r.PathValue("meeting_id"), actorID, req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if err := s.meetings.Handler.DeleteMeetingHandler(r.Context(), r.PathValue("meeting_id"), actorID); err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.ScheduleMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.ScheduleMeetingHandler(r.Context(), r.PathValue("meeting_id"), actorID, req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartMeeting(w http.ResponseWriter, r *http.Request) {
	s.handleMeetingLifecycle(w, r, s.meetings.Handler.StartMeetingHandler)
}

func (s *Server) handleCloseMeeting(w http.ResponseWriter, r *http.Request) {
	s.handleMeetingLifecycle(w, r, s.meetings.Handler.CloseMeetingHandler)
}

func (s *Server) handleReopenMeeting(w http.ResponseWriter, r *http.Request) {
	s.handleMeetingLifecycle(w, r, s.meetings.Handler.ReopenMeetingHandler)
}

func (s *Server) handleCancelMeeting(w http.ResponseWriter, r *http.Request) {
	s.handleMeetingLifecycle(w, r, s.meetings.Handler.CancelMeetingHandler)
}

func (s *Server) handleMeetingLifecycle(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, meetingID string, actorID string) (meetinghttp.MeetingResponse, error),
) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := op(r.Context(), r.PathValue("meeting_id"), actorID)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.AddParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.AddParticipantHandler(r.Context(), r.PathValue("meeting_id"), actorID, req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	resp, err := s.meetings.Handler.ListParticipantsHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.SetRoleHandler(r.Context(), r.PathValue("meeting_id"), actorID, r.PathValue("user_id"), req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetAttendance(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.SetAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.SetAttendanceHandler(r.Context(), r.PathValue("meeting_id"), actorID, r.PathValue("user_id"), req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAgendaItem(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.CreateAgendaItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.CreateAgendaItemHandler(r.Context(), r.PathValue("meeting_id"), actorID, req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListAgenda(w http.ResponseWriter, r *http.Request) {
	resp, err := s.meetings.Handler.ListAgendaHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvanceAgenda(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.AdvanceAgendaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.AdvanceAgendaHandler(r.Context(), r.PathValue("meeting_id"), actorID, req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateAgendaItem(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req meetinghttp.UpdateAgendaItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMeetingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.meetings.Handler.UpdateAgendaItemHandler(r.Context(), r.PathValue("agenda_item_id"), actorID, req)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteAgendaItem(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if err := s.meetings.Handler.DeleteAgendaItemHandler(r.Context(), r.PathValue("agenda_item_id"), actorID); err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSkipAgendaItem(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMeetingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.meetings.Handler.SkipAgendaItemHandler(r.Context(), r.PathValue("agenda_item_id"), actorID)
	if err != nil {
		writeMeetingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMeetingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, meetingerrors.ErrMeetingNotFound):
		writeMeetingError(w, http.StatusNotFound, "meeting_not_found", err.Error())
	case errors.Is(err, meetingerrors.ErrParticipantNotFound):
		writeMeetingError(w, http.StatusNotFound, "participant_not_found", err.Error())
	case errors.Is(err, meetingerrors.ErrAgendaItemNotFound):
		writeMeetingError(w, http.StatusNotFound, "agenda_item_not_found", err.Error())
	case errors.Is(err, meetingerrors.ErrDuplicateParticipant):
		writeMeetingError(w, http.StatusConflict, "duplicate_participant", err.Error())
	case errors.Is(err, meetingerrors.ErrMeetingNotEditable),
		errors.Is(err, meetingerrors.ErrMeetingNotInProgress),
		errors.Is(err, meetingerrors.ErrInvalidMeetingStatus),
		errors.Is(err, meetingerrors.ErrAgendaExhausted):
		writeMeetingError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, meetingerrors.ErrStateConflict):
		writeMeetingError(w, http.StatusConflict, "state_conflict", err.Error())
	case errors.Is(err, meetingerrors.ErrNotAuthorized):
		writeMeetingError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, meetingerrors.ErrInvalidMeetingInput),
		errors.Is(err, meetingerrors.ErrInvalidParticipantInput),
		errors.Is(err, meetingerrors.ErrInvalidAgendaInput):
		writeMeetingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeMeetingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMeetingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, meetinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
