package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devchat-app/devchat/backend/internal/model/chat"
	chatservice "github.com/devchat-app/devchat/backend/internal/service/chat"
	"github.com/devchat-app/devchat/backend/pkg/utils"
)

// Handler exposes session state and lifecycle operations.
type Handler struct {
	controller *chatservice.Controller
}

func New(controller *chatservice.Controller) *Handler {
	return &Handler{controller: controller}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/state", h.handleState)
	r.Post("/sessions", h.handleCreateSession)
	r.Post("/sessions/{sessionID}/select", h.handleSelectSession)
	r.Delete("/sessions/active", h.handleClearActiveSession)
}

type statePayload struct {
	Sessions        []chat.Session `json:"sessions"`
	ActiveSessionID string         `json:"activeSessionId,omitempty"`
	IsResponding    bool           `json:"isResponding"`
	ConfigRequired  bool           `json:"configRequired"`
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, statePayload{
		Sessions:        h.controller.Sessions(),
		ActiveSessionID: h.controller.ActiveSessionID(),
		IsResponding:    h.controller.IsResponding(),
		ConfigRequired:  h.controller.ConfigRequired(),
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if h.controller.ConfigRequired() {
		utils.RespondError(w, http.StatusServiceUnavailable, "configuration required")
		return
	}

	var payload struct {
		PersonaID string `json:"personaId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.PersonaID == "" {
		utils.RespondError(w, http.StatusBadRequest, "personaId is required")
		return
	}

	session, err := h.controller.CreateSession(payload.PersonaID)
	if err != nil {
		if errors.Is(err, chatservice.ErrPersonaNotFound) {
			utils.RespondError(w, http.StatusBadRequest, "persona not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleSelectSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.controller.SelectSession(sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "selected"})
}

func (h *Handler) handleClearActiveSession(w http.ResponseWriter, r *http.Request) {
	h.controller.ClearActiveSession()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
