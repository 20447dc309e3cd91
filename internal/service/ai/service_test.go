package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/devchat-app/devchat/backend/internal/model/chat"
)

type fakeStream struct {
	fragments []string
	failAfter bool
	pos       int
}

func (s *fakeStream) Recv() (string, error) {
	if s.pos < len(s.fragments) {
		fragment := s.fragments[s.pos]
		s.pos++
		return fragment, nil
	}
	if s.failAfter {
		return "", errors.New("connection reset")
	}
	return "", io.EOF
}

func (s *fakeStream) Close() {}

type fakeProvider struct {
	fragments []string
	startErr  error
	failAfter bool

	text    string
	textErr error
}

func (p *fakeProvider) StreamReply(_ context.Context, _ []chat.Message, _ string) (ReplyStream, error) {
	if p.startErr != nil {
		return nil, p.startErr
	}
	return &fakeStream{fragments: p.fragments, failAfter: p.failAfter}, nil
}

func (p *fakeProvider) GenerateText(_ context.Context, _ string) (string, error) {
	return p.text, p.textErr
}

func collect(ch <-chan string) []string {
	var out []string
	for fragment := range ch {
		out = append(out, fragment)
	}
	return out
}

func history() []chat.Message {
	return []chat.Message{{Role: chat.RoleUser, Content: "hello"}}
}

func TestStreamReplyChunkingIsTransparent(t *testing.T) {
	one := NewService(&fakeProvider{fragments: []string{"Hello world"}}, zap.NewNop())
	two := NewService(&fakeProvider{fragments: []string{"Hello ", "world"}}, zap.NewNop())

	whole := strings.Join(collect(one.StreamReply(context.Background(), history(), "")), "")
	split := strings.Join(collect(two.StreamReply(context.Background(), history(), "")), "")

	if whole != split || whole != "Hello world" {
		t.Fatalf("chunking changed content: %q vs %q", whole, split)
	}
}

func TestStreamReplySkipsEmptyFragments(t *testing.T) {
	svc := NewService(&fakeProvider{fragments: []string{"", "Hi", ""}}, zap.NewNop())

	got := collect(svc.StreamReply(context.Background(), history(), ""))
	if len(got) != 1 || got[0] != "Hi" {
		t.Fatalf("unexpected fragments: %v", got)
	}
}

func TestStreamReplyStartFailureYieldsFallback(t *testing.T) {
	svc := NewService(&fakeProvider{startErr: errors.New("401 unauthorized")}, zap.NewNop())

	got := collect(svc.StreamReply(context.Background(), history(), ""))
	if len(got) != 1 || got[0] != FallbackReply {
		t.Fatalf("expected single fallback fragment, got %v", got)
	}
}

func TestStreamReplyMidStreamFailureAppendsFallback(t *testing.T) {
	svc := NewService(&fakeProvider{fragments: []string{"partial "}, failAfter: true}, zap.NewNop())

	got := collect(svc.StreamReply(context.Background(), history(), ""))
	if len(got) != 2 || got[0] != "partial " || got[1] != FallbackReply {
		t.Fatalf("expected partial output plus fallback, got %v", got)
	}
}

func TestSummarizeTitleStripsQuotes(t *testing.T) {
	svc := NewService(&fakeProvider{text: ` "Closure Basics" `}, zap.NewNop())

	if got := svc.SummarizeTitle(context.Background(), "What is a closure?"); got != "Closure Basics" {
		t.Fatalf("unexpected title: %q", got)
	}
}

func TestSummarizeTitleFallsBackOnError(t *testing.T) {
	svc := NewService(&fakeProvider{textErr: errors.New("quota exceeded")}, zap.NewNop())

	if got := svc.SummarizeTitle(context.Background(), "hi"); got != FallbackTitle {
		t.Fatalf("unexpected title: %q", got)
	}
}

func TestSummarizeTitleFallsBackOnEmptyOutput(t *testing.T) {
	svc := NewService(&fakeProvider{text: `""`}, zap.NewNop())

	if got := svc.SummarizeTitle(context.Background(), "hi"); got != FallbackTitle {
		t.Fatalf("unexpected title: %q", got)
	}
}
