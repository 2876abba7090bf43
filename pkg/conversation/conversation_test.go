package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/message"
)

// fakeClient replays scripted responses and records everything it is sent.
type fakeClient struct {
	replies []string
	err     error
	calls   [][]llm.Message
	opts    []*llm.Options
}

func (f *fakeClient) Generate(ctx context.Context, msgs []llm.Message, opts *llm.Options) (string, error) {
	f.calls = append(f.calls, msgs)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	reply := "ok"
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func TestSendAppendsBothTurns(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{replies: []string{"Hi there"}}
	conv, err := New(fake, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	reply, err := conv.Send(ctx, "Hello", nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "Hi there" {
		t.Fatalf("reply = %q, want %q", reply, "Hi there")
	}

	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("expected user + assistant turns, got %d", len(history))
	}
	if history[0].Role != message.RoleUser || history[0].Content != "Hello" {
		t.Fatalf("unexpected user turn: %+v", history[0])
	}
	if history[1].Role != message.RoleAssistant || history[1].Content != "Hi there" {
		t.Fatalf("unexpected assistant turn: %+v", history[1])
	}
}

func TestSystemPromptFoldedOntoFirstMessageOnly(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{replies: []string{"Because.", "Still because."}}
	conv, err := New(fake, Config{SystemPrompt: "Be concise."})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := conv.Send(ctx, "Hello", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := conv.Send(ctx, "Why?", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	sent := fake.calls[1]
	if len(sent) != 3 {
		t.Fatalf("expected 3 outbound messages, got %d", len(sent))
	}

	const block = "<instructions>\nBe concise.\n</instructions>\n\n"
	if !strings.HasPrefix(sent[0].Text, block) {
		t.Fatalf("first outbound message must start with the instruction block, got %q", sent[0].Text)
	}
	if !strings.Contains(sent[0].Text, "Hello") {
		t.Fatalf("original first message text lost: %q", sent[0].Text)
	}
	for i, m := range sent[1:] {
		if strings.Contains(m.Text, "<instructions>") {
			t.Fatalf("instruction block leaked into outbound message %d: %q", i+1, m.Text)
		}
	}

	// The stored history is untouched by the folding.
	if conv.History()[0].Content != "Hello" {
		t.Fatalf("history mutated by prompt folding: %q", conv.History()[0].Content)
	}
}

func TestSendPropagatesTransportError(t *testing.T) {
	ctx := context.Background()
	transportErr := &llm.TransportError{Provider: "bedrock", Op: "converse", Code: "ThrottlingException", Err: errors.New("rate exceeded")}
	fake := &fakeClient{err: transportErr}
	conv, err := New(fake, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = conv.Send(ctx, "Hello", nil)
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected the transport error unchanged, got %v", err)
	}

	// The user turn stays in history even when the call failed.
	history := conv.History()
	if len(history) != 1 || history[0].Role != message.RoleUser {
		t.Fatalf("expected the failed user turn to remain, got %+v", history)
	}
}

func TestPerCallOptionsWinOverDefaults(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{}
	conv, err := New(fake, Config{
		DefaultOptions: &llm.Options{MaxTokens: 100, Temperature: llm.Float(0.7)},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := conv.Send(ctx, "Hello", &llm.Options{Temperature: llm.Float(0.2)}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	got := fake.opts[0]
	if got.MaxTokens != 100 {
		t.Fatalf("default MaxTokens lost: %d", got.MaxTokens)
	}
	if got.Temperature == nil || *got.Temperature != 0.2 {
		t.Fatalf("per-call temperature should win, got %v", got.Temperature)
	}
}

func TestFullHistoryNeverCompacted(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{}
	conv, err := New(fake, Config{
		Budget: &BudgetConfig{MaxEstimatedTokens: 30, RecentKeepCount: 2, MinSummarizeBatch: 2},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 6; i++ {
		if _, err := conv.Send(ctx, strings.Repeat("m", 40), nil); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	full := conv.FullHistory()
	if len(full) != 12 {
		t.Fatalf("full history should hold all 12 turns, got %d", len(full))
	}
	for _, turn := range full {
		if turn.IsSummary() {
			t.Fatal("summary turn leaked into full history")
		}
	}
	if len(conv.History()) >= 12 {
		t.Fatal("active history was never compacted")
	}
}

func TestClearEmptiesConversation(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{}
	conv, err := New(fake, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := conv.Send(ctx, "Hello", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	conv.Clear()

	if len(conv.History()) != 0 || len(conv.FullHistory()) != 0 || conv.CurrentUsage() != 0 {
		t.Fatal("Clear left conversation state behind")
	}
}
