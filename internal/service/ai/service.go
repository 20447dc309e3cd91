package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/devchat-app/devchat/backend/internal/model/chat"
)

const (
	// FallbackReply is the single fragment emitted when the completion
	// service fails for any reason.
	FallbackReply = "Sorry, I encountered an error. Please try again."
	// FallbackTitle replaces a title that could not be generated.
	FallbackTitle = "New Chat"
)

const titlePrompt = `Generate a concise, 5-word-or-less title for a chat conversation that starts with this prompt: "%s". Do not use quotes or any other formatting in the title.`

// Service wraps a Provider with the failure semantics the controller relies
// on: streams always terminate, and errors degrade to literal fallbacks
// instead of propagating.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// StreamReply returns a channel of reply fragments for the supplied history.
// The channel always closes; on provider failure it carries exactly one
// fallback fragment past whatever was already emitted, so the consumer's
// accumulation logic never sees an error.
func (s *Service) StreamReply(ctx context.Context, history []chat.Message, systemInstruction string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		stream, err := s.provider.StreamReply(ctx, history, systemInstruction)
		if err != nil {
			s.logger.Warn("completion stream failed to start", zap.Error(err))
			out <- FallbackReply
			return
		}
		defer stream.Close()

		for {
			fragment, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				s.logger.Warn("completion stream aborted", zap.Error(err))
				out <- FallbackReply
				return
			}
			if fragment == "" {
				continue
			}
			out <- fragment
		}
	}()
	return out
}

// SummarizeTitle produces a short session title from the first user prompt.
// Any failure yields the fixed fallback.
func (s *Service) SummarizeTitle(ctx context.Context, prompt string) string {
	raw, err := s.provider.GenerateText(ctx, fmt.Sprintf(titlePrompt, prompt))
	if err != nil {
		s.logger.Warn("title summarization failed", zap.Error(err))
		return FallbackTitle
	}
	return sanitizeTitle(raw)
}

// sanitizeTitle trims whitespace and strips quotation characters the model
// sometimes wraps titles in.
func sanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.ReplaceAll(title, `"`, "")
	title = strings.TrimSpace(title)
	if title == "" {
		return FallbackTitle
	}
	return title
}
