// Package bedrock implements the inference transport over the AWS Bedrock
// Converse API.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/conversation"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
	pkgLogger "github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/logger"
)

var logger = pkgLogger.NewComponentLogger("bedrock")

const (
	defaultRegion  = "us-west-2"
	defaultModelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"

	// Default response-length cap. Set high to avoid truncation surprises.
	defaultMaxTokens = 4000
)

// Config holds construction-time settings for the Bedrock client.
type Config struct {
	Region          string // AWS region, defaults to us-west-2
	ModelID         string // model to invoke, defaults to Claude 3.5 Sonnet v2
	Profile         string // AWS shared-config profile (optional)
	AccessKeyID     string // explicit credentials (optional)
	SecretAccessKey string
	MaxTokens       int // default response token cap, defaults to 4000
}

// Client is a thin wrapper over the Bedrock runtime that speaks the
// llm.InferenceClient contract. It is stateless apart from configuration
// and safe for concurrent use.
type Client struct {
	runtime   *bedrockruntime.Client
	modelID   string
	maxTokens int
}

var _ llm.StreamingInferenceClient = (*Client)(nil)

// NewClient loads AWS configuration and creates a Bedrock runtime client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.ModelID == "" {
		cfg.ModelID = defaultModelID
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		runtime:   bedrockruntime.NewFromConfig(awsCfg),
		modelID:   cfg.ModelID,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// ModelID returns the model this client is bound to.
func (c *Client) ModelID() string {
	return c.modelID
}

// WithModel returns a copy of the client bound to a different model,
// sharing the underlying runtime.
func (c *Client) WithModel(modelID string) *Client {
	clone := *c
	clone.modelID = modelID
	return &clone
}

// NewConversation starts a conversation session bound to this client.
// If cfg.ModelID is set the session uses that model instead of the
// client's default.
func (c *Client) NewConversation(cfg conversation.Config) (*conversation.Conversation, error) {
	client := c
	if cfg.ModelID != "" && cfg.ModelID != c.modelID {
		client = c.WithModel(cfg.ModelID)
	}
	return conversation.New(client, cfg)
}

// Generate implements llm.InferenceClient via the Converse API.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, opts *llm.Options) (string, error) {
	input, err := c.buildConverseInput(messages, opts)
	if err != nil {
		return "", err
	}

	out, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return "", transportError("converse", err)
	}

	text := extractText(out.Output)
	if text == "" {
		return "", transportError("converse", fmt.Errorf("no text content in model response"))
	}

	if out.Usage != nil {
		logger.DebugWithIcon("📊", "Converse usage",
			"model", c.modelID,
			"input_tokens", aws.ToInt32(out.Usage.InputTokens),
			"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
			"stop_reason", string(out.StopReason))
	}
	if out.StopReason == types.StopReasonMaxTokens {
		logger.WarnWithIcon("🚨", "Response truncated by max token limit", "model", c.modelID)
	}

	return text, nil
}

// Invoke sends a single prompt (no history) and returns the response text.
func (c *Client) Invoke(ctx context.Context, prompt string, opts *llm.Options) (string, error) {
	return c.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Text: prompt}}, opts)
}

// extractText flattens the text blocks of a Converse response message.
func extractText(output types.ConverseOutput) string {
	msg, ok := output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(t.Value)
		}
	}
	return sb.String()
}

// transportError wraps a Bedrock failure, surfacing the service error code
// when the SDK exposes one.
func transportError(op string, err error) *llm.TransportError {
	te := &llm.TransportError{Provider: "bedrock", Op: op, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		te.Code = apiErr.ErrorCode()
	}
	return te
}
