package http

import (
	"encoding/json"
	"net/http"
	"time"

	"debatewatch-server/pkg/errors"
	"debatewatch-server/pkg/session"
	"debatewatch-server/pkg/version"
)

type createSessionRequest struct {
	Title    string   `json:"title"`
	Speakers []string `json:"speakers"`
}

type addUtteranceRequest struct {
	SpeakerID string `json:"speaker_id"`
	Text      string `json:"text"`
	Emotion   string `json:"emotion,omitempty"`
}

type addSpeakerRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error  string                 `json:"error"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"version":         version.Version,
		"uptime_seconds":  int(time.Since(s.startTime).Seconds()),
		"active_sessions": len(s.manager.ListSessions()),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	sess, err := s.manager.CreateSession(req.Title, req.Speakers)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess.Summarize())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.manager.ListSessions()
	summaries := make([]*session.Summary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, sess.Summarize())
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Summarize())
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.EndSession(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddUtterance(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req addUtteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidInput("invalid request body"))
		return
	}
	if req.Text == "" || req.SpeakerID == "" {
		writeError(w, errors.NewInvalidInput("speaker_id and text are required"))
		return
	}

	utterance, claims, err := sess.AddUtterance(req.SpeakerID, req.Text, time.Now(), req.Emotion)
	if err != nil {
		writeError(w, err)
		return
	}

	if utterance == nil {
		// Near-duplicate of the previous utterance, suppressed
		writeJSON(w, http.StatusOK, map[string]interface{}{"suppressed": true})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"utterance": utterance,
		"claims":    claims,
	})
}

func (s *Server) handleMarkAsClaim(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	claim, already, err := sess.MarkAsClaim(r.PathValue("utteranceID"))
	if err != nil {
		writeError(w, err)
		return
	}

	if already {
		writeJSON(w, http.StatusOK, map[string]interface{}{"already_claim": true})
		return
	}

	writeJSON(w, http.StatusCreated, claim)
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	type claimWithResult struct {
		Claim  interface{} `json:"claim"`
		Result interface{} `json:"result,omitempty"`
	}

	items := make([]claimWithResult, 0)
	for _, claim := range sess.Claims() {
		item := claimWithResult{Claim: claim}
		if result, resolved := sess.GetResult(claim.ID); resolved {
			item.Result = result
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListSpeakers(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Roster().Speakers())
}

func (s *Server) handleGetSpeaker(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	speaker, err := sess.Roster().GetSpeaker(r.PathValue("speakerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, speaker)
}

func (s *Server) handleAddSpeaker(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req addSpeakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	speaker, err := sess.Roster().AddSpeaker(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, speaker)
}

func (s *Server) handleRemoveSpeaker(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Roster().RemoveSpeaker(r.PathValue("speakerID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetCurrentSpeaker(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.GetSession(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Roster().SetCurrentSpeaker(r.PathValue("speakerID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.IsErrorType(err, errors.ErrSessionNotFound),
		errors.IsErrorType(err, errors.ErrSpeakerNotFound),
		errors.IsErrorType(err, errors.ErrUtteranceNotFound),
		errors.IsErrorType(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.IsErrorType(err, errors.ErrSpeakerLimitReached),
		errors.IsErrorType(err, errors.ErrSpeakerMinimum):
		status = http.StatusConflict
	case errors.IsErrorType(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	response := errorResponse{Error: err.Error()}
	response.Fields = errors.GetErrorFields(err)

	writeJSON(w, status, response)
}
