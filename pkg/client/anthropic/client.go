// Package anthropic implements the inference transport against the
// Anthropic API directly, for running without AWS credentials.
package anthropic

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
)

const (
	defaultModelID   = "claude-3-5-sonnet-latest"
	defaultMaxTokens = 4000
)

// Client speaks the llm.InferenceClient contract over the Anthropic
// Messages API.
type Client struct {
	client    *anthropic.Client
	modelID   string
	maxTokens int
}

var _ llm.InferenceClient = (*Client)(nil)

// NewClient creates a direct Anthropic client. The API key is taken from
// the ANTHROPIC_API_KEY environment variable.
func NewClient(modelID string, maxTokens int) (*Client, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	if modelID == "" {
		modelID = defaultModelID
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client:    &client,
		modelID:   modelID,
		maxTokens: maxTokens,
	}, nil
}

// ModelID returns the model this client is bound to.
func (c *Client) ModelID() string {
	return c.modelID
}

// Generate implements llm.InferenceClient.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, opts *llm.Options) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelID),
		MaxTokens: int64(c.maxTokens),
	}

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Text})
		case llm.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		}
	}
	if len(params.Messages) == 0 {
		return "", &llm.ConfigurationError{Field: "messages", Reason: "must contain at least one non-system message"}
	}

	applyOptions(&params, opts)

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", &llm.TransportError{Provider: "anthropic", Op: "messages", Err: err}
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &llm.TransportError{Provider: "anthropic", Op: "messages",
			Err: fmt.Errorf("no text content in model response")}
	}
	return sb.String(), nil
}

// applyOptions maps the shared option set onto Anthropic params. The only
// Extra key this backend understands is top_k; the Messages API has no
// open-ended parameter pass-through.
func applyOptions(params *anthropic.MessageNewParams, opts *llm.Options) {
	if opts == nil {
		return
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = int64(opts.MaxTokens)
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.Float(*opts.Temperature)
	}
	if opts.TopP != nil {
		params.TopP = anthropic.Float(*opts.TopP)
	}
	if len(opts.StopSequences) > 0 {
		params.StopSequences = opts.StopSequences
	}
	if raw, ok := opts.Extra["top_k"]; ok {
		switch v := raw.(type) {
		case int:
			params.TopK = anthropic.Int(int64(v))
		case int64:
			params.TopK = anthropic.Int(v)
		case float64:
			params.TopK = anthropic.Int(int64(v))
		}
	}
}
