package stream

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/devchat-app/devchat/backend/internal/service/chat"
	"github.com/devchat-app/devchat/backend/pkg/utils"
)

// Handler streams one turn on the active session over Server-Sent Events.
type Handler struct {
	controller *chatservice.Controller
}

func New(controller *chatservice.Controller) *Handler {
	return &Handler{controller: controller}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	if h.controller.ConfigRequired() {
		utils.RespondError(w, http.StatusServiceUnavailable, "configuration required")
		return
	}

	message := r.URL.Query().Get("message")
	if strings.TrimSpace(message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	if _, ok := h.controller.ActiveSession(); !ok {
		utils.RespondError(w, http.StatusBadRequest, "no active session")
		return
	}

	if h.controller.IsResponding() {
		utils.RespondError(w, http.StatusConflict, "a turn is already in flight")
		return
	}

	utils.SetupSSEHeaders(w)

	// Title updates arrive from a second goroutine; serialize writes.
	var writeMu sync.Mutex
	notify := func(update chatservice.Update) {
		writeMu.Lock()
		defer writeMu.Unlock()
		utils.SendSSEChunk(w, flusher, update)
	}

	if err := h.controller.SendMessage(r.Context(), message, notify); err != nil {
		writeMu.Lock()
		utils.SendSSEChunk(w, flusher, map[string]string{"type": "error", "error": err.Error()})
		writeMu.Unlock()
	}
}
