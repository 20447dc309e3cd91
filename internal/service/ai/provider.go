package ai

import (
	"context"

	"github.com/devchat-app/devchat/backend/internal/config"
	"github.com/devchat-app/devchat/backend/internal/model/chat"
)

// ReplyStream exposes a vendor completion stream. Recv returns io.EOF once
// the service signals completion.
type ReplyStream interface {
	Recv() (string, error)
	Close()
}

// Provider is a text completion backend. Implementations surface transport
// errors as-is; Service turns them into the user-visible fallback.
type Provider interface {
	// StreamReply seeds a conversation with every history message but the
	// last and submits the last as the live turn.
	StreamReply(ctx context.Context, history []chat.Message, systemInstruction string) (ReplyStream, error)
	// GenerateText performs a single non-streaming completion.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// NewProvider selects the configured completion backend.
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderArk:
		return NewArkProvider(ctx, cfg)
	default:
		return NewGeminiProvider(ctx, cfg)
	}
}
