package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/devchat-app/devchat/backend/internal/logging"
)

// SetupSSEHeaders prepares the response for a Server-Sent Events stream.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// SendSSEChunk marshals payload and writes it as one SSE data frame.
func SendSSEChunk(w http.ResponseWriter, flusher http.Flusher, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.L().Warn("failed to marshal sse payload", zap.Error(err))
		return
	}

	if _, err := w.Write([]byte("data: ")); err != nil {
		logging.L().Warn("failed to write sse prefix", zap.Error(err))
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.L().Warn("failed to write sse payload", zap.Error(err))
		return
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		logging.L().Warn("failed to write sse terminator", zap.Error(err))
		return
	}
	flusher.Flush()
}
