package bedrock

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
)

func testClient() *Client {
	return &Client{modelID: "anthropic.claude-3-haiku-20240307-v1:0", maxTokens: 4000}
}

func TestCamelizeKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"top_k", "topK"},
		{"max_tokens", "maxTokens"},
		{"stop_sequences", "stopSequences"},
		{"anthropic_version", "anthropicVersion"},
		{"temperature", "temperature"},
		{"topK", "topK"},
	}
	for _, c := range cases {
		if got := camelizeKey(c.in); got != c.want {
			t.Fatalf("camelizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildConverseInputSplitsSystemMessages(t *testing.T) {
	c := testClient()
	input, err := c.buildConverseInput([]llm.Message{
		{Role: llm.RoleSystem, Text: "Be terse."},
		{Role: llm.RoleUser, Text: "Hello"},
		{Role: llm.RoleAssistant, Text: "Hi"},
	}, nil)
	if err != nil {
		t.Fatalf("buildConverseInput failed: %v", err)
	}

	if aws.ToString(input.ModelId) != c.modelID {
		t.Fatalf("model id = %q", aws.ToString(input.ModelId))
	}
	if len(input.System) != 1 {
		t.Fatalf("expected 1 system block, got %d", len(input.System))
	}
	sys, ok := input.System[0].(*types.SystemContentBlockMemberText)
	if !ok || sys.Value != "Be terse." {
		t.Fatalf("unexpected system block: %#v", input.System[0])
	}

	if len(input.Messages) != 2 {
		t.Fatalf("expected 2 wire messages, got %d", len(input.Messages))
	}
	if input.Messages[0].Role != types.ConversationRoleUser {
		t.Fatalf("first message role = %v", input.Messages[0].Role)
	}
	if input.Messages[1].Role != types.ConversationRoleAssistant {
		t.Fatalf("second message role = %v", input.Messages[1].Role)
	}
	text, ok := input.Messages[0].Content[0].(*types.ContentBlockMemberText)
	if !ok || text.Value != "Hello" {
		t.Fatalf("unexpected content block: %#v", input.Messages[0].Content[0])
	}
}

func TestBuildConverseInputRequiresNonSystemMessage(t *testing.T) {
	c := testClient()
	_, err := c.buildConverseInput([]llm.Message{{Role: llm.RoleSystem, Text: "only system"}}, nil)

	var confErr *llm.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestInferenceConfigDefaultsToClientMaxTokens(t *testing.T) {
	cfg := testClient().buildInferenceConfig(nil)
	if aws.ToInt32(cfg.MaxTokens) != 4000 {
		t.Fatalf("default MaxTokens = %d, want 4000", aws.ToInt32(cfg.MaxTokens))
	}
	if cfg.Temperature != nil || cfg.TopP != nil {
		t.Fatal("unset sampling params must stay nil")
	}
}

func TestInferenceConfigExtraAliasesFill(t *testing.T) {
	cfg := testClient().buildInferenceConfig(&llm.Options{
		Extra: map[string]any{
			"max_tokens":     500,
			"temperature":    0.3,
			"top_p":          0.8,
			"stop_sequences": []string{"END"},
		},
	})

	if aws.ToInt32(cfg.MaxTokens) != 500 {
		t.Fatalf("alias max_tokens not applied: %d", aws.ToInt32(cfg.MaxTokens))
	}
	if aws.ToFloat32(cfg.Temperature) != 0.3 {
		t.Fatalf("alias temperature not applied: %v", aws.ToFloat32(cfg.Temperature))
	}
	if aws.ToFloat32(cfg.TopP) != 0.8 {
		t.Fatalf("alias top_p not applied: %v", aws.ToFloat32(cfg.TopP))
	}
	if len(cfg.StopSequences) != 1 || cfg.StopSequences[0] != "END" {
		t.Fatalf("alias stop_sequences not applied: %v", cfg.StopSequences)
	}
}

func TestInferenceConfigTypedFieldsWinOverAliases(t *testing.T) {
	cfg := testClient().buildInferenceConfig(&llm.Options{
		MaxTokens:   200,
		Temperature: llm.Float(0.9),
		Extra: map[string]any{
			"max_tokens":  500,
			"temperature": 0.1,
		},
	})

	if aws.ToInt32(cfg.MaxTokens) != 200 {
		t.Fatalf("typed MaxTokens must win, got %d", aws.ToInt32(cfg.MaxTokens))
	}
	if aws.ToFloat32(cfg.Temperature) != 0.9 {
		t.Fatalf("typed Temperature must win, got %v", aws.ToFloat32(cfg.Temperature))
	}
}

func TestAdditionalFieldsCamelizedAndAliasesExcluded(t *testing.T) {
	extra := additionalFields(&llm.Options{
		Extra: map[string]any{
			"top_k":       40,
			"max_tokens":  500, // alias, handled by inferenceConfig
			"temperature": 0.1, // alias
		},
	})

	if len(extra) != 1 {
		t.Fatalf("expected only non-alias keys, got %v", extra)
	}
	if extra["topK"] != 40 {
		t.Fatalf("top_k not camelized into additional fields: %v", extra)
	}
}

func TestAdditionalFieldsEmpty(t *testing.T) {
	if extra := additionalFields(nil); extra != nil {
		t.Fatalf("nil options must yield no additional fields, got %v", extra)
	}
	if extra := additionalFields(&llm.Options{Extra: map[string]any{"max_tokens": 1}}); len(extra) != 0 {
		t.Fatalf("alias-only extras must yield no additional fields, got %v", extra)
	}
}
