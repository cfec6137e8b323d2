package speaker

import (
	"sync"

	"debatewatch-server/pkg/config"
	"debatewatch-server/pkg/errors"
	"debatewatch-server/pkg/factcheck"
	"debatewatch-server/pkg/transcript"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// speakerPalette assigns presentation colors by join order; one entry
// per roster slot
var speakerPalette = []string{
	"blue", "red", "green", "orange", "purple", "teal", "magenta", "gold",
}

// Roster holds the speakers of one debate session. A session runs with
// 2 to 8 speakers and exactly one of them is current at any time.
//
// Stats updates take a per-speaker lock: fact checks for the same
// speaker are serialized, fact checks for different speakers proceed
// independently. Accessors return deep-copied snapshots taken under
// that lock, never the live aggregate.
type Roster struct {
	logger *logrus.Entry
	engine *Engine

	mutex    sync.RWMutex
	speakers map[string]*Speaker
	order    []string
	current  string

	locks map[string]*sync.Mutex

	listeners     []NotificationListener
	listenerMutex sync.RWMutex
}

// NewRoster creates an empty roster
func NewRoster(logger *logrus.Logger, engine *Engine) *Roster {
	return &Roster{
		logger:   logger.WithField("component", "speaker_roster"),
		engine:   engine,
		speakers: make(map[string]*Speaker),
		locks:    make(map[string]*sync.Mutex),
	}
}

// AddNotificationListener registers a listener for stats side effects
func (r *Roster) AddNotificationListener(listener NotificationListener) {
	r.listenerMutex.Lock()
	defer r.listenerMutex.Unlock()
	r.listeners = append(r.listeners, listener)
}

// AddSpeaker adds a speaker to the session. The first speaker added
// becomes current. Adding beyond the 8-speaker limit is rejected.
func (r *Roster) AddSpeaker(name string) (*Speaker, error) {
	if name == "" {
		return nil, errors.NewInvalidInput("speaker name is required")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.speakers) >= config.MaxSpeakers {
		return nil, errors.NewSpeakerLimitReached(config.MaxSpeakers)
	}

	s := NewSpeaker(uuid.NewString(), name)
	s.ColorTag = speakerPalette[len(r.speakers)%len(speakerPalette)]
	if len(r.speakers) == 0 {
		s.IsCurrent = true
		r.current = s.ID
	}

	r.speakers[s.ID] = s
	r.order = append(r.order, s.ID)
	r.locks[s.ID] = &sync.Mutex{}

	r.logger.WithFields(logrus.Fields{
		"speaker_id": s.ID,
		"name":       name,
		"count":      len(r.speakers),
	}).Info("Speaker added")

	return s.Clone(), nil
}

// RemoveSpeaker removes a speaker. Removing below the 2-speaker minimum
// is rejected and leaves the roster unchanged. When the current speaker
// is removed, the earliest remaining speaker becomes current.
func (r *Roster) RemoveSpeaker(speakerID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.speakers[speakerID]; !exists {
		return errors.NewSpeakerNotFound(speakerID)
	}
	if len(r.speakers) <= config.MinSpeakers {
		return errors.NewSpeakerMinimum(config.MinSpeakers)
	}

	delete(r.speakers, speakerID)
	delete(r.locks, speakerID)
	for i, id := range r.order {
		if id == speakerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.current == speakerID && len(r.order) > 0 {
		r.current = r.order[0]
		r.speakers[r.current].IsCurrent = true
	}

	r.logger.WithFields(logrus.Fields{
		"speaker_id": speakerID,
		"count":      len(r.speakers),
	}).Info("Speaker removed")

	return nil
}

// SetCurrentSpeaker marks a speaker as the one currently talking,
// clearing the flag on everyone else
func (r *Roster) SetCurrentSpeaker(speakerID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	target, exists := r.speakers[speakerID]
	if !exists {
		return errors.NewSpeakerNotFound(speakerID)
	}

	for _, s := range r.speakers {
		s.IsCurrent = false
	}
	target.IsCurrent = true
	r.current = speakerID

	return nil
}

// CurrentSpeaker returns a snapshot of the speaker currently talking
func (r *Roster) CurrentSpeaker() (*Speaker, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	s, exists := r.speakers[r.current]
	if !exists {
		return nil, false
	}
	return r.snapshotLocked(s), true
}

// GetSpeaker returns a snapshot of a speaker by id
func (r *Roster) GetSpeaker(speakerID string) (*Speaker, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	s, exists := r.speakers[speakerID]
	if !exists {
		return nil, errors.NewSpeakerNotFound(speakerID)
	}
	return r.snapshotLocked(s), nil
}

// Speakers returns snapshots of all speakers in join order
func (r *Roster) Speakers() []*Speaker {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*Speaker, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.snapshotLocked(r.speakers[id]))
	}
	return result
}

// snapshotLocked deep-copies a speaker under its stats lock so readers
// never observe an in-flight engine update. Caller holds the roster lock.
func (r *Roster) snapshotLocked(s *Speaker) *Speaker {
	lock := r.locks[s.ID]
	lock.Lock()
	defer lock.Unlock()
	return s.Clone()
}

// Count returns the number of speakers in the session
func (r *Roster) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.speakers)
}

// ApplyFactCheck folds a verdict into the owning speaker's aggregate
// under that speaker's write lock and fans out notifications
func (r *Roster) ApplyFactCheck(claim *transcript.Claim, result *factcheck.Result) (*Speaker, error) {
	r.mutex.RLock()
	s, exists := r.speakers[claim.SpeakerID]
	lock := r.locks[claim.SpeakerID]
	r.mutex.RUnlock()

	if !exists {
		return nil, errors.NewSpeakerNotFound(claim.SpeakerID,
			map[string]interface{}{"claim_id": claim.ID})
	}

	lock.Lock()
	r.engine.ApplyFactCheck(s, claim, result)
	snapshot := s.Clone()
	lock.Unlock()

	for _, notification := range r.engine.Notifications(claim, result) {
		r.notifyListeners(notification)
	}

	return snapshot, nil
}

func (r *Roster) notifyListeners(notification *Notification) {
	r.listenerMutex.RLock()
	listeners := make([]NotificationListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.listenerMutex.RUnlock()

	for _, listener := range listeners {
		func(l NotificationListener) {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.WithFields(logrus.Fields{
						"type":  notification.Type,
						"panic": rec,
					}).Error("Recovered from panic in notification listener")
				}
			}()
			l.OnNotification(notification)
		}(listener)
	}
}
