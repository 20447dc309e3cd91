package chat

import "time"

// Session is one persisted conversation thread bound to exactly one persona.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a copy whose message slice is detached from the receiver,
// so callers can hand sessions out without sharing mutable state.
func (s Session) Clone() Session {
	s.Messages = append([]Message(nil), s.Messages...)
	return s
}
