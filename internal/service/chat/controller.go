package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devchat-app/devchat/backend/internal/model/chat"
	"github.com/devchat-app/devchat/backend/internal/model/persona"
	"github.com/devchat-app/devchat/backend/internal/store"
)

var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotConfigured   = errors.New("completion service not configured")
	// ErrTurnInFlight rejects a second send on a session whose previous
	// turn has not completed, which would otherwise leave the history
	// snapshot ambiguous.
	ErrTurnInFlight = errors.New("a turn is already in flight for this session")
)

const defaultTitle = "New Chat"

// Completer is the completion-service surface the controller consumes. The
// fragment channel always terminates and never carries errors.
type Completer interface {
	StreamReply(ctx context.Context, history []chat.Message, systemInstruction string) <-chan string
	SummarizeTitle(ctx context.Context, prompt string) string
}

// UpdateType tags turn progress events.
type UpdateType string

const (
	UpdateStart UpdateType = "start"
	UpdateDelta UpdateType = "delta"
	UpdateTitle UpdateType = "title"
	UpdateEnd   UpdateType = "end"
)

// Update is pushed to transport observers as a turn progresses. Title
// updates may arrive interleaved with deltas; both carry the session id
// they apply to.
type Update struct {
	Type      UpdateType `json:"type"`
	SessionID string     `json:"sessionId"`
	Content   string     `json:"content,omitempty"`
}

// Controller owns the application state: the ordered session list, the
// active session id and the per-session turn guard. All mutations flow
// through its methods, derive fresh slices (readers always see consistent
// copies) and are mirrored to the session store.
type Controller struct {
	mu       sync.RWMutex
	sessions []chat.Session // most-recent-first
	activeID string
	inFlight map[string]bool

	personas  persona.Store
	completer Completer
	store     *store.SessionStore
	logger    *zap.Logger
}

// NewController loads persisted state and returns the ready controller.
// completer may be nil, which puts the controller in the
// configuration-required state: sends are rejected and nothing is persisted
// (the store is expected to be disabled alongside).
func NewController(personas persona.Store, completer Completer, sessionStore *store.SessionStore, logger *zap.Logger) *Controller {
	sessions, activeID := sessionStore.Load()
	return &Controller{
		sessions:  sessions,
		activeID:  activeID,
		inFlight:  make(map[string]bool),
		personas:  personas,
		completer: completer,
		store:     sessionStore,
		logger:    logger,
	}
}

// ConfigRequired reports whether the completion credential is missing.
func (c *Controller) ConfigRequired() bool {
	return c.completer == nil
}

// Sessions returns a detached copy of the session list, most recent first.
func (c *Controller) Sessions() []chat.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]chat.Session, len(c.sessions))
	for i, session := range c.sessions {
		out[i] = session.Clone()
	}
	return out
}

// ActiveSession returns the currently selected session, if any.
func (c *Controller) ActiveSession() (chat.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := c.indexOfLocked(c.activeID)
	if idx < 0 {
		return chat.Session{}, false
	}
	return c.sessions[idx].Clone(), true
}

// ActiveSessionID returns the active session id, empty when none.
func (c *Controller) ActiveSessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeID
}

// IsResponding reports whether a turn is in flight for the active session.
func (c *Controller) IsResponding() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight[c.activeID]
}

// CreateSession starts a new conversation bound to the persona, prepends it
// to the session list and makes it active.
func (c *Controller) CreateSession(personaID string) (chat.Session, error) {
	if _, ok := c.personas.FindByID(personaID); !ok {
		return chat.Session{}, ErrPersonaNotFound
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		Title:     defaultTitle,
		Messages:  []chat.Message{},
		PersonaID: personaID,
		CreatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	c.sessions = append([]chat.Session{session}, c.sessions...)
	c.activeID = session.ID
	c.persistLocked()
	c.mu.Unlock()

	c.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("persona_id", personaID),
	)
	return session, nil
}

// SelectSession makes an existing session active.
func (c *Controller) SelectSession(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOfLocked(id) < 0 {
		return ErrSessionNotFound
	}
	c.activeID = id
	c.persistLocked()
	return nil
}

// ClearActiveSession deselects the active session, returning the client to
// its persona-selection view.
func (c *Controller) ClearActiveSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = ""
	c.persistLocked()
}

// SendMessage runs one turn against the active session: append the user
// message, stream the model reply into a trailing placeholder message and,
// on the session's first exchange, summarize a title concurrently. notify
// (optional) observes progress; title events may interleave with deltas.
//
// A blank prompt or a missing active session is a silent no-op. A send on a
// session whose turn is still streaming returns ErrTurnInFlight. The method
// returns after the stream is exhausted and any title update has been
// applied.
func (c *Controller) SendMessage(ctx context.Context, prompt string, notify func(Update)) error {
	if c.completer == nil {
		return ErrNotConfigured
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil
	}

	c.mu.Lock()
	sessionID := c.activeID
	idx := c.indexOfLocked(sessionID)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}
	if c.inFlight[sessionID] {
		c.mu.Unlock()
		return ErrTurnInFlight
	}

	session := c.sessions[idx]
	pers, ok := c.personas.FindByID(session.PersonaID)
	if !ok {
		c.mu.Unlock()
		return ErrPersonaNotFound
	}

	// History snapshot as it existed before this turn touched the session.
	snapshot := append([]chat.Message(nil), session.Messages...)
	firstTurn := len(snapshot) == 0

	c.inFlight[sessionID] = true
	c.appendMessageLocked(sessionID, chat.Message{Role: chat.RoleUser, Content: prompt})
	c.appendMessageLocked(sessionID, chat.Message{Role: chat.RoleModel, Content: ""})
	c.mu.Unlock()

	emit := func(update Update) {
		if notify != nil {
			notify(update)
		}
	}
	emit(Update{Type: UpdateStart, SessionID: sessionID})

	var titleDone sync.WaitGroup
	if firstTurn {
		titleDone.Add(1)
		go func() {
			defer titleDone.Done()
			title := c.completer.SummarizeTitle(ctx, prompt)
			c.setTitle(sessionID, title)
			emit(Update{Type: UpdateTitle, SessionID: sessionID, Content: title})
		}()
	}

	history := append(snapshot, chat.Message{Role: chat.RoleUser, Content: prompt})
	for fragment := range c.completer.StreamReply(ctx, history, pers.SystemInstruction) {
		c.appendToLastMessage(sessionID, fragment)
		emit(Update{Type: UpdateDelta, SessionID: sessionID, Content: fragment})
	}

	titleDone.Wait()

	c.mu.Lock()
	delete(c.inFlight, sessionID)
	c.mu.Unlock()

	emit(Update{Type: UpdateEnd, SessionID: sessionID})
	return nil
}

// appendToLastMessage applies a streamed fragment to the trailing message of
// the session addressed by id. The session is looked up by id on every
// application, so a stream keeps landing in its own session if the user
// switches the active one mid-turn.
func (c *Controller) appendToLastMessage(sessionID, fragment string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOfLocked(sessionID)
	if idx < 0 {
		return
	}
	session := c.sessions[idx]
	if len(session.Messages) == 0 {
		return
	}
	messages := append([]chat.Message(nil), session.Messages...)
	messages[len(messages)-1].Content += fragment
	session.Messages = messages
	c.replaceLocked(idx, session)
	c.persistLocked()
}

// setTitle overwrites the title of the session addressed by id. Title and
// messages are disjoint fields, so this can interleave with fragment
// application; the mutex serializes the slice replacement.
func (c *Controller) setTitle(sessionID, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOfLocked(sessionID)
	if idx < 0 {
		return
	}
	session := c.sessions[idx]
	session.Title = title
	c.replaceLocked(idx, session)
	c.persistLocked()
}

func (c *Controller) appendMessageLocked(sessionID string, message chat.Message) {
	idx := c.indexOfLocked(sessionID)
	if idx < 0 {
		return
	}
	session := c.sessions[idx]
	session.Messages = append(append([]chat.Message(nil), session.Messages...), message)
	c.replaceLocked(idx, session)
	c.persistLocked()
}

func (c *Controller) replaceLocked(idx int, session chat.Session) {
	next := append([]chat.Session(nil), c.sessions...)
	next[idx] = session
	c.sessions = next
}

func (c *Controller) indexOfLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, session := range c.sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) persistLocked() {
	c.store.Save(c.sessions, c.activeID)
}
