package bedrock

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
)

// inferenceParamAliases is the fixed mapping from the underscored parameter
// names accepted in llm.Options.Extra to the Converse inferenceConfig
// fields they feed. Typed Options fields always win over their alias.
//
//	max_tokens     -> inferenceConfig.maxTokens
//	temperature    -> inferenceConfig.temperature
//	top_p          -> inferenceConfig.topP
//	stop_sequences -> inferenceConfig.stopSequences
//
// Every other Extra key is camelized (underscored form to camelCase) and
// passed through verbatim in additionalModelRequestFields.
const (
	aliasMaxTokens     = "max_tokens"
	aliasTemperature   = "temperature"
	aliasTopP          = "top_p"
	aliasStopSequences = "stop_sequences"
)

// buildConverseInput assembles the wire request: system entries become
// Converse system blocks, the rest become role-tagged content blocks, and
// options split between inferenceConfig and additionalModelRequestFields.
func (c *Client) buildConverseInput(messages []llm.Message, opts *llm.Options) (*bedrockruntime.ConverseInput, error) {
	wireMessages, system, err := toConverseMessages(messages)
	if err != nil {
		return nil, err
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(c.modelID),
		Messages:        wireMessages,
		System:          system,
		InferenceConfig: c.buildInferenceConfig(opts),
	}
	if extra := additionalFields(opts); len(extra) > 0 {
		input.AdditionalModelRequestFields = document.NewLazyDocument(extra)
	}
	return input, nil
}

func toConverseMessages(messages []llm.Message) ([]types.Message, []types.SystemContentBlock, error) {
	var wire []types.Message
	var system []types.SystemContentBlock

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, &types.SystemContentBlockMemberText{Value: m.Text})
		case llm.RoleAssistant:
			wire = append(wire, types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Text}},
			})
		default:
			wire = append(wire, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Text}},
			})
		}
	}
	if len(wire) == 0 {
		return nil, nil, &llm.ConfigurationError{Field: "messages", Reason: "must contain at least one non-system message"}
	}
	return wire, system, nil
}

func (c *Client) buildInferenceConfig(opts *llm.Options) *types.InferenceConfiguration {
	cfg := &types.InferenceConfiguration{
		MaxTokens: aws.Int32(int32(c.maxTokens)),
	}
	if opts == nil {
		return cfg
	}

	// Extra aliases fill gaps; typed fields overwrite them below.
	if v, ok := floatExtra(opts, aliasMaxTokens); ok {
		cfg.MaxTokens = aws.Int32(int32(v))
	}
	if v, ok := floatExtra(opts, aliasTemperature); ok {
		cfg.Temperature = aws.Float32(float32(v))
	}
	if v, ok := floatExtra(opts, aliasTopP); ok {
		cfg.TopP = aws.Float32(float32(v))
	}
	if seqs, ok := opts.Extra[aliasStopSequences].([]string); ok {
		cfg.StopSequences = seqs
	}

	if opts.MaxTokens > 0 {
		cfg.MaxTokens = aws.Int32(int32(opts.MaxTokens))
	}
	if opts.Temperature != nil {
		cfg.Temperature = aws.Float32(float32(*opts.Temperature))
	}
	if opts.TopP != nil {
		cfg.TopP = aws.Float32(float32(*opts.TopP))
	}
	if len(opts.StopSequences) > 0 {
		cfg.StopSequences = opts.StopSequences
	}
	return cfg
}

// additionalFields collects the Extra keys that are not inferenceConfig
// aliases, camelizing each key to the form model providers expect.
func additionalFields(opts *llm.Options) map[string]any {
	if opts == nil || len(opts.Extra) == 0 {
		return nil
	}
	out := make(map[string]any)
	for k, v := range opts.Extra {
		switch k {
		case aliasMaxTokens, aliasTemperature, aliasTopP, aliasStopSequences:
			continue
		}
		out[camelizeKey(k)] = v
	}
	return out
}

// floatExtra reads a numeric Extra value regardless of how the caller
// spelled the literal (int or float).
func floatExtra(opts *llm.Options, key string) (float64, bool) {
	raw, ok := opts.Extra[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// camelizeKey converts an underscored key to camelCase: "top_k" -> "topK".
// Keys without underscores pass through unchanged.
func camelizeKey(key string) string {
	parts := strings.Split(key, "_")
	if len(parts) == 1 {
		return key
	}
	var sb strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			sb.WriteString(p)
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}
