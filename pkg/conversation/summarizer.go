package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/message"
)

const summarizerSystemPrompt = "You are an expert at summarizing conversations. " +
	"Produce concise summaries that preserve key points, decisions, and context."

const summarizePromptTemplate = `Please create a concise summary of the following conversation. Preserve:
1. Key points and topics discussed
2. Decisions or conclusions reached
3. Context needed to continue the conversation

%s

Summary:`

// Summary generation is a background concern: keep it cheap and boring.
const (
	summaryMaxTokens   = 512
	summaryTemperature = 0.2
)

// SummaryGenerator compresses a batch of old turns into one digest by
// calling the inference client with a fixed summarization prompt.
type SummaryGenerator struct {
	client llm.InferenceClient
}

// NewSummaryGenerator creates a summary generator backed by client.
func NewSummaryGenerator(client llm.InferenceClient) *SummaryGenerator {
	return &SummaryGenerator{client: client}
}

// Summarize concatenates turns oldest-first and asks the model for a
// digest. It returns the raw summary text; the caller decides how to wrap
// it into a turn and what to do on error.
func (g *SummaryGenerator) Summarize(ctx context.Context, turns []message.Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("no turns to summarize")
	}

	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		blocks = append(blocks, fmt.Sprintf("%s:\n%s", strings.ToUpper(string(t.Role)), t.Content))
	}
	prompt := fmt.Sprintf(summarizePromptTemplate, strings.Join(blocks, "\n\n"))

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Text: summarizerSystemPrompt},
		{Role: llm.RoleUser, Text: prompt},
	}
	opts := &llm.Options{
		MaxTokens:   summaryMaxTokens,
		Temperature: llm.Float(summaryTemperature),
	}

	text, err := g.client.Generate(ctx, msgs, opts)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("model returned an empty summary")
	}
	return text, nil
}
