package ws

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/devchat-app/devchat/backend/internal/logging"
	chatservice "github.com/devchat-app/devchat/backend/internal/service/chat"
)

// Handler is the WebSocket chat transport. Clients send one frame per turn
// and receive the same updates the SSE transport emits.
type Handler struct {
	controller *chatservice.Controller
	upgrader   websocket.Upgrader
}

func New(controller *chatservice.Controller) *Handler {
	return &Handler{
		controller: controller,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Updates for one turn arrive from two goroutines (stream consumer and
	// title summarizer); the connection allows only one concurrent writer.
	var writeMu sync.Mutex
	send := func(v interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(v); err != nil {
			logging.L().Warn("websocket write failed", zap.Error(err))
		}
	}

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.L().Warn("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		switch frame.Type {
		case "send":
			if h.controller.ConfigRequired() {
				send(errorFrame{Type: "error", Error: "configuration required"})
				continue
			}
			err := h.controller.SendMessage(r.Context(), frame.Message, func(update chatservice.Update) {
				send(update)
			})
			if err != nil {
				send(errorFrame{Type: "error", Error: err.Error()})
			}
		default:
			send(errorFrame{Type: "error", Error: "unknown frame type"})
		}
	}
}
