package session

import (
	"context"
	"sync"
	"time"

	"debatewatch-server/pkg/analysis"
	"debatewatch-server/pkg/config"
	"debatewatch-server/pkg/errors"
	"debatewatch-server/pkg/factcheck"
	"debatewatch-server/pkg/messaging"
	"debatewatch-server/pkg/metrics"
	"debatewatch-server/pkg/speaker"
	"debatewatch-server/pkg/transcript"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager owns the active debate sessions and the components shared
// between them: the analyzer, the fact-check orchestrator and the event
// publisher
type Manager struct {
	logger       *logrus.Logger
	config       *config.Config
	analyzer     *analysis.Analyzer
	orchestrator *factcheck.Orchestrator
	publisher    messaging.EventPublisher

	ctx context.Context

	mutex    sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager
func NewManager(ctx context.Context, logger *logrus.Logger, cfg *config.Config,
	orchestrator *factcheck.Orchestrator, publisher messaging.EventPublisher) *Manager {

	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}

	return &Manager{
		logger:       logger,
		config:       cfg,
		analyzer:     analysis.NewAnalyzer(logger),
		orchestrator: orchestrator,
		publisher:    publisher,
		ctx:          ctx,
		sessions:     make(map[string]*Session),
	}
}

// Analyzer returns the shared text analyzer
func (m *Manager) Analyzer() *analysis.Analyzer {
	return m.analyzer
}

// CreateSession starts a new debate session with the given speakers.
// A session needs between 2 and 8 speakers.
func (m *Manager) CreateSession(title string, speakerNames []string) (*Session, error) {
	if len(speakerNames) < config.MinSpeakers {
		return nil, errors.NewSpeakerMinimum(config.MinSpeakers,
			map[string]interface{}{"provided": len(speakerNames)})
	}
	if len(speakerNames) > config.MaxSpeakers {
		return nil, errors.NewSpeakerLimitReached(config.MaxSpeakers,
			map[string]interface{}{"provided": len(speakerNames)})
	}

	roster := speaker.NewRoster(m.logger, speaker.NewEngine(m.logger))
	for _, name := range speakerNames {
		if _, err := roster.AddSpeaker(name); err != nil {
			return nil, errors.Wrap(err, "failed to build session roster")
		}
	}

	aggregator := transcript.NewAggregator(m.logger, m.analyzer, transcript.Config{
		ContinuousAnalysis: m.config.Analysis.ContinuousAnalysis,
		ContextWindow:      m.config.Analysis.ContextWindow,
	})

	s := &Session{
		ID:           uuid.NewString(),
		Title:        title,
		CreatedAt:    time.Now(),
		aggregator:   aggregator,
		roster:       roster,
		orchestrator: m.orchestrator,
		publisher:    m.publisher,
		ctx:          m.ctx,
		results:      make(map[string]*factcheck.Result),
	}
	s.logger = m.logger.WithFields(logrus.Fields{
		"component":  "session",
		"session_id": s.ID,
	})

	aggregator.AddClaimListener(s)
	m.orchestrator.AddResultListener(s)
	roster.AddNotificationListener(s)

	m.mutex.Lock()
	m.sessions[s.ID] = s
	m.mutex.Unlock()

	m.updateGauges()

	m.logger.WithFields(logrus.Fields{
		"session_id": s.ID,
		"title":      title,
		"speakers":   len(speakerNames),
	}).Info("Session created")

	return s, nil
}

// GetSession returns a session by id
func (m *Manager) GetSession(sessionID string) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	s, exists := m.sessions[sessionID]
	if !exists {
		return nil, errors.Wrap(errors.ErrSessionNotFound, "unknown session",
			map[string]interface{}{"session_id": sessionID})
	}
	return s, nil
}

// ListSessions returns all active sessions
func (m *Manager) ListSessions() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}

// EndSession closes a session to new utterances and drops it from the
// active set
func (m *Manager) EndSession(sessionID string) error {
	m.mutex.Lock()
	s, exists := m.sessions[sessionID]
	if exists {
		delete(m.sessions, sessionID)
	}
	m.mutex.Unlock()

	if !exists {
		return errors.Wrap(errors.ErrSessionNotFound, "unknown session",
			map[string]interface{}{"session_id": sessionID})
	}

	s.End()
	m.updateGauges()
	return nil
}

// Close ends every active session
func (m *Manager) Close() {
	m.mutex.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mutex.Unlock()

	for _, s := range sessions {
		s.End()
	}
	m.updateGauges()
}

func (m *Manager) updateGauges() {
	m.mutex.RLock()
	sessionCount := len(m.sessions)
	speakerCount := 0
	for _, s := range m.sessions {
		speakerCount += s.roster.Count()
	}
	m.mutex.RUnlock()

	metrics.SetActiveSessions(sessionCount)
	metrics.SetActiveSpeakers(speakerCount)
}
