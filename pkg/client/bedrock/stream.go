package bedrock

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
)

// GenerateStream implements llm.StreamingInferenceClient via ConverseStream.
// fn is called for each text delta as it arrives; the full response text is
// returned once the stream completes.
func (c *Client) GenerateStream(ctx context.Context, messages []llm.Message, opts *llm.Options, fn llm.StreamChunkFunc) (string, error) {
	converseInput, err := c.buildConverseInput(messages, opts)
	if err != nil {
		return "", err
	}

	input := &bedrockruntime.ConverseStreamInput{
		ModelId:                      converseInput.ModelId,
		Messages:                     converseInput.Messages,
		System:                       converseInput.System,
		InferenceConfig:              converseInput.InferenceConfig,
		AdditionalModelRequestFields: converseInput.AdditionalModelRequestFields,
	}

	out, err := c.runtime.ConverseStream(ctx, input)
	if err != nil {
		return "", transportError("converse-stream", err)
	}

	stream := out.GetStream()
	defer stream.Close()

	var sb strings.Builder
	for event := range stream.Events() {
		switch v := event.(type) {
		case *types.ConverseStreamOutputMemberContentBlockDelta:
			if delta, ok := v.Value.Delta.(*types.ContentBlockDeltaMemberText); ok {
				sb.WriteString(delta.Value)
				if fn != nil {
					fn(delta.Value)
				}
			}
		case *types.ConverseStreamOutputMemberMetadata:
			if v.Value.Usage != nil {
				logger.DebugWithIcon("📊", "ConverseStream usage",
					"model", c.modelID,
					"input_tokens", aws.ToInt32(v.Value.Usage.InputTokens),
					"output_tokens", aws.ToInt32(v.Value.Usage.OutputTokens))
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", transportError("converse-stream", err)
	}

	if sb.Len() == 0 {
		return "", transportError("converse-stream", fmt.Errorf("no text content in model response"))
	}
	return sb.String(), nil
}

// InvokeStream sends a single prompt and streams the response.
func (c *Client) InvokeStream(ctx context.Context, prompt string, opts *llm.Options, fn llm.StreamChunkFunc) (string, error) {
	return c.GenerateStream(ctx, []llm.Message{{Role: llm.RoleUser, Text: prompt}}, opts, fn)
}
