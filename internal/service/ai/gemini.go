package ai

import (
	"context"
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"

	"github.com/devchat-app/devchat/backend/internal/config"
	"github.com/devchat-app/devchat/backend/internal/model/chat"
)

// GeminiProvider serves completions through the Google GenAI SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, cfg config.AIConfig) (*GeminiProvider, error) {
	client, err := cfg.NewGeminiClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiProvider{client: client, model: cfg.GeminiModel}, nil
}

func (p *GeminiProvider) StreamReply(ctx context.Context, history []chat.Message, systemInstruction string) (ReplyStream, error) {
	prior := make([]*genai.Content, 0, len(history)-1)
	for _, msg := range history[:len(history)-1] {
		role := genai.RoleModel
		if msg.Role == chat.RoleUser {
			role = genai.RoleUser
		}
		prior = append(prior, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	var cfg *genai.GenerateContentConfig
	if systemInstruction != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		}
	}

	session, err := p.client.Chats.Create(ctx, p.model, cfg, prior)
	if err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}

	last := history[len(history)-1]
	next, stop := iter.Pull2(session.SendMessageStream(ctx, genai.Part{Text: last.Content}))
	return &geminiStream{next: next, stop: stop}, nil
}

func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (s *geminiStream) Recv() (string, error) {
	resp, err, ok := s.next()
	if !ok {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (s *geminiStream) Close() {
	s.stop()
}
