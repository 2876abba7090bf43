package conversation

import (
	"context"
	"strings"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/message"
)

// Config configures a conversation session.
type Config struct {
	// ModelID is informational; the bound inference client decides which
	// model actually serves the session.
	ModelID string

	// SystemPrompt, when set, is folded into the first outbound message of
	// every request as a delimited instruction block.
	SystemPrompt string

	// MaxTokenLimit is the estimated-token budget for active history.
	// 0 means DefaultMaxTokenLimit.
	MaxTokenLimit int

	// Budget overrides the derived budget entirely when non-nil, for
	// callers that need non-default keep/batch settings.
	Budget *BudgetConfig

	// DefaultOptions are merged under per-call options on every Send.
	DefaultOptions *llm.Options
}

// Conversation is the public session facade: it composes a context window
// with an inference client. One logical caller per instance; calls must be
// serialized.
type Conversation struct {
	client   llm.InferenceClient
	window   *ContextWindow
	system   string
	defaults *llm.Options
}

// New creates a conversation session over the given inference client.
func New(client llm.InferenceClient, cfg Config) (*Conversation, error) {
	budget := DefaultBudgetConfig(cfg.MaxTokenLimit)
	if cfg.MaxTokenLimit == 0 {
		budget.MaxEstimatedTokens = DefaultMaxTokenLimit
	}
	if cfg.Budget != nil {
		budget = *cfg.Budget
	}

	window, err := NewContextWindow(budget, NewSummaryGenerator(client))
	if err != nil {
		return nil, err
	}

	return &Conversation{
		client:   client,
		window:   window,
		system:   cfg.SystemPrompt,
		defaults: cfg.DefaultOptions.Clone(),
	}, nil
}

// Send appends the user turn, invokes the model with the active history,
// appends the assistant reply, and returns it. Transport errors propagate
// unchanged; the user turn stays in history either way.
func (c *Conversation) Send(ctx context.Context, text string, opts *llm.Options) (string, error) {
	c.window.Append(ctx, message.RoleUser, text)

	outbound := c.buildOutbound()
	merged := llm.MergeOptions(c.defaults, opts)

	reply, err := c.client.Generate(ctx, outbound, merged)
	if err != nil {
		return "", err
	}

	c.window.Append(ctx, message.RoleAssistant, reply)
	return reply, nil
}

// History returns a copy of the active, budget-constrained history.
func (c *Conversation) History() []message.Turn {
	return c.window.History()
}

// FullHistory returns a copy of every turn ever added, never compacted.
func (c *Conversation) FullHistory() []message.Turn {
	return c.window.FullHistory()
}

// CurrentUsage returns the estimated token count of the active history.
func (c *Conversation) CurrentUsage() int {
	return c.window.CurrentUsage()
}

// Clear resets the conversation to empty.
func (c *Conversation) Clear() {
	c.window.Clear()
}

// buildOutbound assembles the wire message list from active history.
// System turns never travel in the list: a configured system prompt is
// folded into the first outbound message as a delimited instruction block,
// exactly once per request. Summary turns go out with the user role since
// the wire protocol only knows user and assistant.
func (c *Conversation) buildOutbound() []llm.Message {
	history := c.window.History()
	out := make([]llm.Message, 0, len(history))
	for _, t := range history {
		switch t.Role {
		case message.RoleSystem:
			continue
		case message.RoleAssistant:
			out = append(out, llm.Message{Role: llm.RoleAssistant, Text: t.Content})
		default:
			out = append(out, llm.Message{Role: llm.RoleUser, Text: t.Content})
		}
	}

	if c.system != "" && len(out) > 0 {
		var b strings.Builder
		b.WriteString("<instructions>\n")
		b.WriteString(c.system)
		b.WriteString("\n</instructions>\n\n")
		b.WriteString(out[0].Text)
		out[0].Text = b.String()
	}
	return out
}
