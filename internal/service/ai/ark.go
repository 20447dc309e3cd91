package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/devchat-app/devchat/backend/internal/config"
	"github.com/devchat-app/devchat/backend/internal/model/chat"
)

// ArkProvider serves completions through an eino chain backed by an Ark
// chat model.
type ArkProvider struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

func NewArkProvider(ctx context.Context, cfg config.AIConfig) (*ArkProvider, error) {
	chatModel, err := cfg.NewArkChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkProvider{chatModel: chatModel, chain: runnable}, nil
}

func (p *ArkProvider) StreamReply(ctx context.Context, history []chat.Message, systemInstruction string) (ReplyStream, error) {
	stream, err := p.chain.Stream(ctx, chainInput(history, systemInstruction))
	if err != nil {
		return nil, fmt.Errorf("failed to stream chain output: %w", err)
	}
	return &arkStream{inner: stream}, nil
}

func (p *ArkProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	response, err := p.chain.Invoke(ctx, map[string]any{
		"system":  "",
		"history": []*schema.Message(nil),
		"query":   prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run chain: %w", err)
	}
	return response.Content, nil
}

// chainInput maps session history onto the chain variables: everything
// before the last message seeds the context, the last message is the live
// turn.
func chainInput(history []chat.Message, systemInstruction string) map[string]any {
	prior := history[:len(history)-1]
	msgs := make([]*schema.Message, 0, len(prior))
	for _, msg := range prior {
		switch msg.Role {
		case chat.RoleUser:
			msgs = append(msgs, schema.UserMessage(msg.Content))
		case chat.RoleModel:
			msgs = append(msgs, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return map[string]any{
		"system":  systemInstruction,
		"history": msgs,
		"query":   history[len(history)-1].Content,
	}
}

type arkStream struct {
	inner *schema.StreamReader[*schema.Message]
}

func (s *arkStream) Recv() (string, error) {
	for {
		chunk, err := s.inner.Recv()
		if err != nil {
			// io.EOF passes through as stream exhaustion.
			return "", err
		}
		if chunk == nil {
			continue
		}
		return chunk.Content, nil
	}
}

func (s *arkStream) Close() {
	s.inner.Close()
}
