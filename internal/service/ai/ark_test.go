package ai

import (
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/devchat-app/devchat/backend/internal/model/chat"
)

func TestChainInputSplitsHistoryAndLiveTurn(t *testing.T) {
	history := []chat.Message{
		{Role: chat.RoleUser, Content: "first question"},
		{Role: chat.RoleModel, Content: "first answer"},
		{Role: chat.RoleUser, Content: "second question"},
	}

	input := chainInput(history, "be helpful")

	if input["system"] != "be helpful" {
		t.Fatalf("unexpected system: %v", input["system"])
	}
	if input["query"] != "second question" {
		t.Fatalf("unexpected query: %v", input["query"])
	}

	msgs, ok := input["history"].([]*schema.Message)
	if !ok {
		t.Fatalf("history has unexpected type: %T", input["history"])
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 prior messages, got %d", len(msgs))
	}
	if msgs[0].Role != schema.User || msgs[0].Content != "first question" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Role != schema.Assistant || msgs[1].Content != "first answer" {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}
}

func TestChainInputSingleTurn(t *testing.T) {
	history := []chat.Message{{Role: chat.RoleUser, Content: "hello"}}

	input := chainInput(history, "")

	msgs := input["history"].([]*schema.Message)
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d", len(msgs))
	}
	if input["query"] != "hello" {
		t.Fatalf("unexpected query: %v", input["query"])
	}
}
