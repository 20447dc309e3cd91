package store

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/devchat-app/devchat/backend/internal/model/chat"
)

// Storage keys, shared with the browser builds of the client.
const (
	keySessions = "chatSessions"
	keyActiveID = "activeSessionId"
)

// SessionStore mirrors the in-memory session list to durable local storage.
// Persistence failures never propagate: reads degrade to empty state, writes
// are logged and skipped for that cycle.
type SessionStore struct {
	kv      KV
	enabled bool
	logger  *zap.Logger
}

// NewSessionStore wraps kv. With enabled=false the store is in the
// configuration-required guard mode: Load returns empty state and Save does
// nothing, so an unusable run never touches storage.
func NewSessionStore(kv KV, enabled bool, logger *zap.Logger) *SessionStore {
	return &SessionStore{kv: kv, enabled: enabled, logger: logger}
}

// Enabled reports whether the store persists at all.
func (s *SessionStore) Enabled() bool {
	return s.enabled
}

// Load reads persisted sessions and the active session id. Missing or
// malformed data is treated as absent; Load never fails.
func (s *SessionStore) Load() ([]chat.Session, string) {
	if !s.enabled {
		return nil, ""
	}

	var sessions []chat.Session
	raw, ok, err := s.kv.Get(keySessions)
	if err != nil {
		s.logger.Warn("failed to read persisted sessions", zap.Error(err))
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
			s.logger.Warn("discarding malformed persisted sessions", zap.Error(err))
			sessions = nil
		}
	}

	activeID := ""
	rawID, ok, err := s.kv.Get(keyActiveID)
	if err != nil {
		s.logger.Warn("failed to read persisted active session id", zap.Error(err))
	} else if ok {
		activeID = rawID
	}

	// A stale id referencing a session that no longer exists means no
	// active session.
	if activeID != "" && !containsSession(sessions, activeID) {
		activeID = ""
	}

	return sessions, activeID
}

// Save writes the current state. The active id is only overwritten when one
// is set; clearing the active session leaves the stored id in place, and the
// stale-id check in Load discards it if it no longer resolves.
func (s *SessionStore) Save(sessions []chat.Session, activeID string) {
	if !s.enabled {
		return
	}

	if sessions == nil {
		sessions = []chat.Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		s.logger.Error("failed to encode sessions", zap.Error(err))
		return
	}
	if err := s.kv.Put(keySessions, string(data)); err != nil {
		s.logger.Warn("failed to persist sessions", zap.Error(err))
	}

	if activeID == "" {
		return
	}
	if err := s.kv.Put(keyActiveID, activeID); err != nil {
		s.logger.Warn("failed to persist active session id", zap.Error(err))
	}
}

func containsSession(sessions []chat.Session, id string) bool {
	for _, session := range sessions {
		if session.ID == id {
			return true
		}
	}
	return false
}
