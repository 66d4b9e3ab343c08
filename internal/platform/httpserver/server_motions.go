package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	motionerrors "plenum/contexts/governance/motion-service/domain/errors"
	motionhttp "plenum/contexts/governance/motion-service/transport/http"
)

func (s *Server) registerMotionRoutes() {
	s.mux.HandleFunc("POST /governance/motions", s.handleCreateMotion)
	s.mux.HandleFunc("GET /governance/motions/{motion_id}", s.handleGetMotion)
	s.mux.HandleFunc("DELETE /governance/motions/{motion_id}", s.handleDeleteMotion)
	s.mux.HandleFunc("POST /governance/motions/{motion_id}/transition", s.handleTransitionMotion)
	s.mux.HandleFunc("GET /governance/motions/{motion_id}/transitions", s.handleAllowedTransitions)
	s.mux.HandleFunc("GET /governance/motions/{motion_id}/history", s.handleMotionHistory)
	s.mux.HandleFunc("GET /governance/meetings/{meeting_id}/motions", s.handleListMotions)
}

func (s *Server) handleCreateMotion(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMotionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req motionhttp.CreateMotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMotionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.motions.Handler.CreateMotionHandler(r.Context(), actorID, req)
	if err != nil {
		writeMotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetMotion(w http.ResponseWriter, r *http.Request) {
	resp, err := s.motions.Handler.GetMotionHandler(r.Context(), r.PathValue("motion_id"))
	if err != nil {
		writeMotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteMotion(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMotionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if err := s.motions.Handler.DeleteMotionHandler(r.Context(), r.PathValue("motion_id"), actorID); err != nil {
		writeMotionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTransitionMotion(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeMotionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req motionhttp.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMotionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.motions.Handler.TransitionHandler(r.Context(), r.PathValue("motion_id"), actorID, req)
	if err != nil {
		writeMotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAllowedTransitions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.motions.Handler.AllowedTransitionsHandler(r.Context(), r.PathValue("motion_id"))
	if err != nil {
		writeMotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMotionHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.motions.Handler.HistoryHandler(r.Context(), r.PathValue("motion_id"))
	if err != nil {
		writeMotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMotions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.motions.Handler.ListMotionsHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeMotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMotionDomainError(w http.ResponseWriter, err error) {
	var transitionErr *motionerrors.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, motionhttp.TransitionErrorResponse{
			Code:               "invalid_transition",
			Message:            transitionErr.Error(),
			CurrentState:       transitionErr.CurrentState,
			RequestedState:     transitionErr.Requested,
			AllowedTransitions: transitionErr.Allowed,
		})
	case errors.Is(err, motionerrors.ErrMotionNotFound):
		writeMotionError(w, http.StatusNotFound, "motion_not_found", err.Error())
	case errors.Is(err, motionerrors.ErrMeetingNotFound):
		writeMotionError(w, http.StatusNotFound, "meeting_not_found", err.Error())
	case errors.Is(err, motionerrors.ErrNotAuthorized):
		writeMotionError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, motionerrors.ErrPollStillOpen):
		writeMotionError(w, http.StatusConflict, "poll_still_open", err.Error())
	case errors.Is(err, motionerrors.ErrStateConflict):
		writeMotionError(w, http.StatusConflict, "state_conflict", err.Error())
	case errors.Is(err, motionerrors.ErrInvalidMotionInput):
		writeMotionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeMotionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMotionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, motionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
