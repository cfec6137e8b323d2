package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"debatewatch-server/pkg/analysis"
	"debatewatch-server/pkg/config"
	"debatewatch-server/pkg/factcheck"
	"debatewatch-server/pkg/messaging"
	"debatewatch-server/pkg/session"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Enabled:   true,
			Port:      8080,
			EnableAPI: true,
		},
		FactCheck: config.FactCheckConfig{
			Mode:             "claimbuster",
			TolerancePercent: 15,
			ProviderTimeout:  2 * time.Second,
			CacheTTL:         time.Minute,
		},
		Analysis: config.AnalysisConfig{
			ContinuousAnalysis: true,
			ContextWindow:      3,
		},
	}

	orchestrator := factcheck.NewOrchestrator(logger, cfg.FactCheck, analysis.NewAnalyzer(logger))
	manager := session.NewManager(context.Background(), logger, cfg, orchestrator, &messaging.MockPublisher{})

	return NewServer(logger, cfg.HTTP, manager, nil)
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(into))
}

func createTestSession(t *testing.T, server *Server) string {
	t.Helper()

	recorder := doJSON(t, server, "POST", "/api/sessions", map[string]interface{}{
		"title":    "test debate",
		"speakers": []string{"Alice", "Bob"},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var summary session.Summary
	decodeBody(t, recorder, &summary)
	require.NotEmpty(t, summary.ID)
	return summary.ID
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	decodeBody(t, recorder, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateSessionEndpoint(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, "POST", "/api/sessions", map[string]interface{}{
		"title":    "vaccine debate",
		"speakers": []string{"Alice", "Bob", "Carol"},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var summary session.Summary
	decodeBody(t, recorder, &summary)
	assert.Equal(t, "vaccine debate", summary.Title)
	assert.Len(t, summary.Speakers, 3)
}

func TestCreateSessionSpeakerBoundsEndpoint(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, "POST", "/api/sessions", map[string]interface{}{
		"title":    "lonely",
		"speakers": []string{"Alice"},
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	names := make([]string, 9)
	for i := range names {
		names[i] = "Speaker"
	}
	recorder = doJSON(t, server, "POST", "/api/sessions", map[string]interface{}{
		"title":    "crowded",
		"speakers": names,
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestGetUnknownSessionReturns404(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, "GET", "/api/sessions/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var body map[string]interface{}
	decodeBody(t, recorder, &body)
	assert.NotEmpty(t, body["error"])
}

func TestAddUtteranceEndpoint(t *testing.T) {
	server := newTestServer(t)
	sessionID := createTestSession(t, server)

	recorder := doJSON(t, server, "GET", fmt.Sprintf("/api/sessions/%s/speakers", sessionID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var speakers []map[string]interface{}
	decodeBody(t, recorder, &speakers)
	require.Len(t, speakers, 2)
	speakerID := speakers[0]["id"].(string)

	recorder = doJSON(t, server, "POST", fmt.Sprintf("/api/sessions/%s/utterances", sessionID), map[string]interface{}{
		"speaker_id": speakerID,
		"text":       "Studies show vaccines cause autism",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var body struct {
		Utterance map[string]interface{}   `json:"utterance"`
		Claims    []map[string]interface{} `json:"claims"`
	}
	decodeBody(t, recorder, &body)
	assert.Equal(t, true, body.Utterance["is_claim"])
	require.Len(t, body.Claims, 1)
	assert.Equal(t, "Health", body.Claims[0]["topic"])
}

func TestAddUtteranceValidation(t *testing.T) {
	server := newTestServer(t)
	sessionID := createTestSession(t, server)

	recorder := doJSON(t, server, "POST", fmt.Sprintf("/api/sessions/%s/utterances", sessionID), map[string]interface{}{
		"text": "No speaker given",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, server, "POST", fmt.Sprintf("/api/sessions/%s/utterances", sessionID), map[string]interface{}{
		"speaker_id": "ghost",
		"text":       "Unknown speaker",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestMarkAsClaimEndpoint(t *testing.T) {
	server := newTestServer(t)
	sessionID := createTestSession(t, server)

	recorder := doJSON(t, server, "GET", fmt.Sprintf("/api/sessions/%s/speakers", sessionID), nil)
	var speakers []map[string]interface{}
	decodeBody(t, recorder, &speakers)
	speakerID := speakers[0]["id"].(string)

	recorder = doJSON(t, server, "POST", fmt.Sprintf("/api/sessions/%s/utterances", sessionID), map[string]interface{}{
		"speaker_id": speakerID,
		"text":       "Good morning everyone",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var body struct {
		Utterance map[string]interface{} `json:"utterance"`
	}
	decodeBody(t, recorder, &body)
	utteranceID := body.Utterance["id"].(string)

	path := fmt.Sprintf("/api/sessions/%s/utterances/%s/claim", sessionID, utteranceID)

	recorder = doJSON(t, server, "POST", path, nil)
	assert.Equal(t, http.StatusCreated, recorder.Code)

	// Marking the same utterance again is acknowledged, not duplicated
	recorder = doJSON(t, server, "POST", path, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var repeat map[string]interface{}
	decodeBody(t, recorder, &repeat)
	assert.Equal(t, true, repeat["already_claim"])

	recorder = doJSON(t, server, "POST", fmt.Sprintf("/api/sessions/%s/utterances/nope/claim", sessionID), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListClaimsEndpoint(t *testing.T) {
	server := newTestServer(t)
	sessionID := createTestSession(t, server)

	recorder := doJSON(t, server, "GET", fmt.Sprintf("/api/sessions/%s/speakers", sessionID), nil)
	var speakers []map[string]interface{}
	decodeBody(t, recorder, &speakers)
	speakerID := speakers[0]["id"].(string)

	recorder = doJSON(t, server, "POST", fmt.Sprintf("/api/sessions/%s/utterances", sessionID), map[string]interface{}{
		"speaker_id": speakerID,
		"text":       "Studies show coffee prevents cancer",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, server, "GET", fmt.Sprintf("/api/sessions/%s/claims", sessionID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var items []map[string]interface{}
	decodeBody(t, recorder, &items)
	require.Len(t, items, 1)
	assert.NotNil(t, items[0]["claim"])
}

func TestSpeakerManagementEndpoints(t *testing.T) {
	server := newTestServer(t)
	sessionID := createTestSession(t, server)

	recorder := doJSON(t, server, "POST", fmt.Sprintf("/api/sessions/%s/speakers", sessionID), map[string]interface{}{
		"name": "Carol",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var carol map[string]interface{}
	decodeBody(t, recorder, &carol)
	carolID := carol["id"].(string)

	recorder = doJSON(t, server, "PUT", fmt.Sprintf("/api/sessions/%s/speakers/%s/current", sessionID, carolID), nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, server, "GET", fmt.Sprintf("/api/sessions/%s/speakers/%s", sessionID, carolID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var fetched map[string]interface{}
	decodeBody(t, recorder, &fetched)
	assert.Equal(t, "Carol", fetched["name"])
	assert.Equal(t, true, fetched["is_current"])

	recorder = doJSON(t, server, "DELETE", fmt.Sprintf("/api/sessions/%s/speakers/%s", sessionID, carolID), nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	// Two speakers remain, the floor. Removing another is rejected.
	recorder = doJSON(t, server, "GET", fmt.Sprintf("/api/sessions/%s/speakers", sessionID), nil)
	var speakers []map[string]interface{}
	decodeBody(t, recorder, &speakers)
	require.Len(t, speakers, 2)

	recorder = doJSON(t, server, "DELETE", fmt.Sprintf("/api/sessions/%s/speakers/%s", sessionID, speakers[0]["id"].(string)), nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestEndSessionEndpoint(t *testing.T) {
	server := newTestServer(t)
	sessionID := createTestSession(t, server)

	recorder := doJSON(t, server, "DELETE", fmt.Sprintf("/api/sessions/%s", sessionID), nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, server, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
