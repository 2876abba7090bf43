package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/message"
)

func TestSummarizeBuildsTranscriptOldestFirst(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{replies: []string{"A short digest."}}
	gen := NewSummaryGenerator(fake)

	turns := []message.Turn{
		message.NewTurn(message.RoleUser, "hello", 0),
		message.NewTurn(message.RoleAssistant, "hi, how can I help?", 1),
		message.NewTurn(message.RoleUser, "tell me about Go", 2),
	}

	text, err := gen.Summarize(ctx, turns)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if text != "A short digest." {
		t.Fatalf("summary text = %q", text)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected one model call, got %d", len(fake.calls))
	}
	sent := fake.calls[0]
	if len(sent) != 2 {
		t.Fatalf("expected system + user message, got %d messages", len(sent))
	}
	if !strings.Contains(sent[0].Text, "expert at summarizing") {
		t.Fatalf("missing summarizer system instruction: %q", sent[0].Text)
	}

	transcript := sent[1].Text
	want := "USER:\nhello\n\nASSISTANT:\nhi, how can I help?\n\nUSER:\ntell me about Go"
	if !strings.Contains(transcript, want) {
		t.Fatalf("transcript not oldest-first with role labels:\n%s", transcript)
	}
}

func TestSummarizeUsesConservativeOptions(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{replies: []string{"digest"}}
	gen := NewSummaryGenerator(fake)

	if _, err := gen.Summarize(ctx, []message.Turn{message.NewTurn(message.RoleUser, "hi", 0)}); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	opts := fake.opts[0]
	if opts.MaxTokens != 512 {
		t.Fatalf("summary MaxTokens = %d, want 512", opts.MaxTokens)
	}
	if opts.Temperature == nil || *opts.Temperature != 0.2 {
		t.Fatalf("summary temperature = %v, want 0.2", opts.Temperature)
	}
}

func TestSummarizePropagatesModelError(t *testing.T) {
	ctx := context.Background()
	modelErr := errors.New("model unavailable")
	gen := NewSummaryGenerator(&fakeClient{err: modelErr})

	_, err := gen.Summarize(ctx, []message.Turn{message.NewTurn(message.RoleUser, "hi", 0)})
	if !errors.Is(err, modelErr) {
		t.Fatalf("expected model error propagated, got %v", err)
	}
}

func TestSummarizeRejectsEmptyResults(t *testing.T) {
	ctx := context.Background()

	if _, err := NewSummaryGenerator(&fakeClient{}).Summarize(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty batch")
	}

	gen := NewSummaryGenerator(&fakeClient{replies: []string{"   \n"}})
	if _, err := gen.Summarize(ctx, []message.Turn{message.NewTurn(message.RoleUser, "hi", 0)}); err == nil {
		t.Fatal("expected error for whitespace-only summary")
	}
}
