package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"debatewatch-server/pkg/config"
	"debatewatch-server/pkg/metrics"
	"debatewatch-server/pkg/session"

	"github.com/sirupsen/logrus"
)

// Server exposes the debate analysis API: session lifecycle, utterance
// ingestion, speaker management and the live event stream
type Server struct {
	config     config.HTTPConfig
	logger     *logrus.Logger
	manager    *session.Manager
	hub        *EventHub
	httpServer *http.Server
	mux        *http.ServeMux
	startTime  time.Time
}

// NewServer creates the HTTP server and registers all routes
func NewServer(logger *logrus.Logger, cfg config.HTTPConfig, manager *session.Manager, hub *EventHub) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		manager:   manager,
		hub:       hub,
		mux:       http.NewServeMux(),
		startTime: time.Now(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)

	if cfg.EnableMetrics {
		s.mux.Handle("GET /metrics", metrics.GetHandler())
	}

	if cfg.EnableAPI {
		s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
		s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
		s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
		s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleEndSession)
		s.mux.HandleFunc("POST /api/sessions/{id}/utterances", s.handleAddUtterance)
		s.mux.HandleFunc("POST /api/sessions/{id}/utterances/{utteranceID}/claim", s.handleMarkAsClaim)
		s.mux.HandleFunc("GET /api/sessions/{id}/claims", s.handleListClaims)
		s.mux.HandleFunc("GET /api/sessions/{id}/speakers", s.handleListSpeakers)
		s.mux.HandleFunc("GET /api/sessions/{id}/speakers/{speakerID}", s.handleGetSpeaker)
		s.mux.HandleFunc("POST /api/sessions/{id}/speakers", s.handleAddSpeaker)
		s.mux.HandleFunc("DELETE /api/sessions/{id}/speakers/{speakerID}", s.handleRemoveSpeaker)
		s.mux.HandleFunc("PUT /api/sessions/{id}/speakers/{speakerID}/current", s.handleSetCurrentSpeaker)
	}

	if hub != nil {
		s.mux.HandleFunc("GET /ws", hub.ServeWS)
	}

	return s
}

// Start begins serving. Blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      requestMiddleware(s.logger, s.mux),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.WithField("address", addr).Info("HTTP server listening")

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the full middleware-wrapped handler, used by tests
func (s *Server) Handler() http.Handler {
	return requestMiddleware(s.logger, s.mux)
}
