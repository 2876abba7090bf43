// Package conversation implements multi-turn conversation state under a
// bounded context-size budget: turn history, token estimation, and
// compaction of old turns via summarization.
package conversation

import (
	"context"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
	pkgLogger "github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/logger"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/message"
)

// Package-level logger for context-window operations
var logger = pkgLogger.NewComponentLogger("context-window")

// Defaults for BudgetConfig and the conversation token budget.
const (
	DefaultMaxTokenLimit     = 8000
	DefaultRecentKeepCount   = 6
	DefaultMinSummarizeBatch = 4
)

// summaryContentPrefix wraps a generated digest when it replaces old turns.
const summaryContentPrefix = "CONVERSATION SUMMARY (previous messages): "

// fallbackSummaryContent is used verbatim when summary generation fails.
// Losing summarization fidelity is preferable to failing the caller's append.
const fallbackSummaryContent = "Previous messages were summarized but details are not available."

// BudgetConfig bounds the active history of a context window.
type BudgetConfig struct {
	// MaxEstimatedTokens is the budget for active history, in estimated
	// tokens. Must be positive.
	MaxEstimatedTokens int

	// RecentKeepCount is how many recent non-system turns survive a
	// compaction untouched.
	RecentKeepCount int

	// MinSummarizeBatch is the smallest old-turn batch worth a model call;
	// smaller batches are dropped instead of summarized. Must be at least 1.
	MinSummarizeBatch int
}

// DefaultBudgetConfig returns a budget with the default keep and batch
// settings for the given token limit.
func DefaultBudgetConfig(maxEstimatedTokens int) BudgetConfig {
	return BudgetConfig{
		MaxEstimatedTokens: maxEstimatedTokens,
		RecentKeepCount:    DefaultRecentKeepCount,
		MinSummarizeBatch:  DefaultMinSummarizeBatch,
	}
}

func (c BudgetConfig) validate() error {
	if c.MaxEstimatedTokens <= 0 {
		return &llm.ConfigurationError{Field: "MaxEstimatedTokens", Reason: "must be positive"}
	}
	if c.RecentKeepCount < 0 {
		return &llm.ConfigurationError{Field: "RecentKeepCount", Reason: "must not be negative"}
	}
	if c.MinSummarizeBatch < 1 {
		return &llm.ConfigurationError{Field: "MinSummarizeBatch", Reason: "must be at least 1"}
	}
	return nil
}

// Summarizer compresses a batch of turns into one digest string.
type Summarizer interface {
	Summarize(ctx context.Context, turns []message.Turn) (string, error)
}

// ContextWindow owns a conversation's turn history and keeps the active
// portion within its token budget. It maintains two sequences: the active
// history (a suffix-biased, budget-constrained view used to build requests)
// and the full history (append-only, never compacted).
//
// A ContextWindow is not safe for concurrent use; callers serialize access
// the same way they serialize the owning conversation.
type ContextWindow struct {
	cfg        BudgetConfig
	summarizer Summarizer

	history   []message.Turn
	full      []message.Turn
	nextOrder int
}

// NewContextWindow creates an empty context window. The summarizer may be
// nil, in which case compacted batches are replaced by the fallback stub
// instead of a generated summary.
func NewContextWindow(cfg BudgetConfig, summarizer Summarizer) (*ContextWindow, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &ContextWindow{
		cfg:        cfg,
		summarizer: summarizer,
	}, nil
}

// EstimateTokens estimates the token count of text as ceil(len/4), the
// common ~4 bytes per token heuristic. This is deliberately not a real
// tokenizer: it is deterministic, cheap, and close enough for budgeting.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// Append records a turn in both sequences and runs the compaction check.
// The context is only used if compaction needs to call the summarizer.
func (w *ContextWindow) Append(ctx context.Context, role message.Role, content string) {
	turn := message.NewTurn(role, content, w.nextOrder)
	w.nextOrder++
	w.history = append(w.history, turn)
	w.full = append(w.full, turn)
	w.compactIfNeeded(ctx)
}

// CurrentUsage returns the estimated token count of the active history.
// Only turn content counts; roles and metadata are excluded.
func (w *ContextWindow) CurrentUsage() int {
	total := 0
	for _, t := range w.history {
		total += EstimateTokens(t.Content)
	}
	return total
}

// History returns a copy of the active, budget-constrained turn sequence.
func (w *ContextWindow) History() []message.Turn {
	return append([]message.Turn(nil), w.history...)
}

// FullHistory returns a copy of every turn ever appended, in append order.
// This sequence is never compacted.
func (w *ContextWindow) FullHistory() []message.Turn {
	return append([]message.Turn(nil), w.full...)
}

// Len returns the number of turns in the active history.
func (w *ContextWindow) Len() int {
	return len(w.history)
}

// Clear resets both sequences and the order counter.
func (w *ContextWindow) Clear() {
	w.history = nil
	w.full = nil
	w.nextOrder = 0
}

// compactIfNeeded runs at most once per append and never loops: if the
// summary plus the retained recent turns still exceed the budget, the
// overshoot is accepted and surfaces on the next usage read. One pass is
// enough in practice because both the summary and the recent set are small
// by construction.
func (w *ContextWindow) compactIfNeeded(ctx context.Context) {
	usage := w.CurrentUsage()
	if usage <= w.cfg.MaxEstimatedTokens {
		return
	}

	var systemTurns, others []message.Turn
	for _, t := range w.history {
		if t.Role == message.RoleSystem {
			systemTurns = append(systemTurns, t)
		} else {
			others = append(others, t)
		}
	}

	// System turns alone may exceed the budget; they are never trimmed.
	if len(others) == 0 {
		return
	}

	keep := w.cfg.RecentKeepCount
	if keep > len(others) {
		keep = len(others)
	}
	recent := others[len(others)-keep:]
	old := others[:len(others)-keep]

	if len(old) < w.cfg.MinSummarizeBatch {
		// Not enough old turns to justify a model call; drop them.
		w.history = rebuildHistory(systemTurns, nil, recent)
		logger.DebugWithIcon("🧹", "Dropped old turns below summarize batch threshold",
			"dropped", len(old), "kept_recent", len(recent), "usage_before", usage)
		return
	}

	content := fallbackSummaryContent
	if w.summarizer != nil {
		text, err := w.summarizer.Summarize(ctx, old)
		if err != nil {
			// Degrade gracefully: the conversation survives with a stub
			// summary, and the reason stays visible in the logs.
			logger.WarnWithIcon("🤖", "Summary generation failed, using fallback",
				"error", err, "old_turns", len(old))
		} else {
			content = summaryContentPrefix + text
		}
	}

	summary := message.NewTurn(message.RoleSummary, content, w.nextOrder)
	w.nextOrder++
	w.history = rebuildHistory(systemTurns, &summary, recent)

	logger.InfoWithIcon("📝", "Compacted conversation history",
		"summarized", len(old), "kept_recent", len(recent),
		"usage_before", usage, "usage_after", w.CurrentUsage())
}

func rebuildHistory(systemTurns []message.Turn, summary *message.Turn, recent []message.Turn) []message.Turn {
	out := make([]message.Turn, 0, len(systemTurns)+1+len(recent))
	out = append(out, systemTurns...)
	if summary != nil {
		out = append(out, *summary)
	}
	return append(out, recent...)
}
