package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	pollerrors "plenum/contexts/governance/poll-service/domain/errors"
	pollhttp "plenum/contexts/governance/poll-service/transport/http"
)

func (s *Server) registerPollRoutes() {
	s.mux.HandleFunc("POST /governance/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /governance/polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("POST /governance/polls/{poll_id}/open", s.handleOpenPoll)
	s.mux.HandleFunc("POST /governance/polls/{poll_id}/close", s.handleClosePoll)
	s.mux.HandleFunc("POST /governance/polls/{poll_id}/publish", s.handlePublishPoll)
	s.mux.HandleFunc("POST /governance/polls/{poll_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /governance/polls/{poll_id}/votes", s.handleListVotes)
	s.mux.HandleFunc("GET /governance/polls/{poll_id}/results", s.handlePollResults)
	s.mux.HandleFunc("GET /governance/meetings/{meeting_id}/polls", s.handleListPolls)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req pollhttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.polls.Handler.CreatePollHandler(r.Context(), actorID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.GetPollHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenPoll(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.polls.Handler.OpenPollHandler(r.Context(), r.PathValue("poll_id"), actorID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClosePoll(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.polls.Handler.ClosePollHandler(r.Context(), r.PathValue("poll_id"), actorID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePublishPoll(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.polls.Handler.PublishPollHandler(r.Context(), r.PathValue("poll_id"), actorID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req pollhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.polls.Handler.CastVoteHandler(r.Context(), r.PathValue("poll_id"), userID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	resp, err := s.polls.Handler.ListVotesHandler(r.Context(), r.PathValue("poll_id"), actorID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePollResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.ResultsHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.ListPollsHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writePollDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pollerrors.ErrPollNotFound):
		writePollError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrMeetingNotFound):
		writePollError(w, http.StatusNotFound, "meeting_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrDuplicateVote):
		writePollError(w, http.StatusConflict, "duplicate_vote", err.Error())
	case errors.Is(err, pollerrors.ErrPollNotDraft),
		errors.Is(err, pollerrors.ErrPollNotOpen),
		errors.Is(err, pollerrors.ErrPollNotClosed):
		writePollError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, pollerrors.ErrVotingForbidden),
		errors.Is(err, pollerrors.ErrNotMeetingAdmin):
		writePollError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidPollInput),
		errors.Is(err, pollerrors.ErrInvalidVoteValue),
		errors.Is(err, pollerrors.ErrUnknownOption):
		writePollError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writePollError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePollError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pollhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
