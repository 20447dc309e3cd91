package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devchat-app/devchat/backend/internal/model/chat"
	"github.com/devchat-app/devchat/backend/internal/model/persona"
	chatservice "github.com/devchat-app/devchat/backend/internal/service/chat"
	"github.com/devchat-app/devchat/backend/internal/store"
)

type stubCompleter struct{}

func (stubCompleter) StreamReply(_ context.Context, _ []chat.Message, _ string) <-chan string {
	out := make(chan string)
	close(out)
	return out
}

func (stubCompleter) SummarizeTitle(_ context.Context, _ string) string {
	return "New Chat"
}

func setupRouter(t *testing.T, completer chatservice.Completer) (*chi.Mux, *chatservice.Controller) {
	t.Helper()
	sessionStore := store.NewSessionStore(store.NewMemoryKV(), completer != nil, zap.NewNop())
	personas := persona.NewMemoryStore(persona.Seed())
	controller := chatservice.NewController(personas, completer, sessionStore, zap.NewNop())

	r := chi.NewRouter()
	New(controller).RegisterRoutes(r)
	return r, controller
}

func TestCreateSessionValidPersona(t *testing.T) {
	r, _ := setupRouter(t, stubCompleter{})
	payload, _ := json.Marshal(map[string]string{"personaId": "general"})

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var session chat.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.PersonaID != "general" || session.Title != "New Chat" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestCreateSessionInvalidPersona(t *testing.T) {
	r, _ := setupRouter(t, stubCompleter{})
	payload, _ := json.Marshal(map[string]string{"personaId": "non-existent"})

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionMissingPersonaID(t *testing.T) {
	r, _ := setupRouter(t, stubCompleter{})

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{}`)))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionConfigRequired(t *testing.T) {
	r, _ := setupRouter(t, nil)
	payload, _ := json.Marshal(map[string]string{"personaId": "general"})

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestStateReflectsSessions(t *testing.T) {
	r, controller := setupRouter(t, stubCompleter{})
	created, err := controller.CreateSession("python")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var state statePayload
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.ActiveSessionID != created.ID {
		t.Fatalf("unexpected active id: %q", state.ActiveSessionID)
	}
	if state.ConfigRequired || state.IsResponding {
		t.Fatalf("unexpected flags: %+v", state)
	}
	if len(state.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(state.Sessions))
	}
}

func TestSelectUnknownSession(t *testing.T) {
	r, _ := setupRouter(t, stubCompleter{})

	req := httptest.NewRequest(http.MethodPost, "/sessions/nope/select", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestClearActiveSession(t *testing.T) {
	r, controller := setupRouter(t, stubCompleter{})
	controller.CreateSession("sql")

	req := httptest.NewRequest(http.MethodDelete, "/sessions/active", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if controller.ActiveSessionID() != "" {
		t.Fatal("active session must be cleared")
	}
}
