package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	meetingservice "plenum/contexts/governance/meeting-service"
	motionservice "plenum/contexts/governance/motion-service"
	pollservice "plenum/contexts/governance/poll-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "plenum/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	meetings meetingservice.Module
	motions  motionservice.Module
	polls    pollservice.Module
}

func New(
	meetings meetingservice.Module,
	motions motionservice.Module,
	polls pollservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		meetings: meetings,
		motions:  motions,
		polls:    polls,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.registerMeetingRoutes()
	s.registerMotionRoutes()
	s.registerPollRoutes()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
