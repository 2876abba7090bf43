package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
)

const structuredPromptTemplate = `%s

Respond ONLY with a JSON object matching this JSON Schema. No prose, no code fences.

%s`

const jsonPromptSuffix = "\n\nRespond ONLY with a valid JSON object. No prose, no code fences."

// Structured invokes the model and unmarshals its response into T. The
// schema of T (including jsonschema struct tags) is reflected into the
// prompt to guide the model. Parsing failures return a *llm.ParseError
// carrying the raw response text.
func Structured[T any](ctx context.Context, c *Client, prompt string, opts *llm.Options) (T, error) {
	var result T

	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(&result)
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return result, fmt.Errorf("failed to marshal schema: %w", err)
	}

	text, err := c.Invoke(ctx, fmt.Sprintf(structuredPromptTemplate, prompt, schemaJSON), opts)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(extractJSON(text)), &result); err != nil {
		return result, &llm.ParseError{Raw: text, Err: err}
	}
	return result, nil
}

// InvokeJSON invokes the model requesting free-form JSON output and returns
// the decoded object. Use Structured when a schema is known up front.
func (c *Client) InvokeJSON(ctx context.Context, prompt string, opts *llm.Options) (map[string]any, error) {
	text, err := c.Invoke(ctx, prompt+jsonPromptSuffix, opts)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(extractJSON(text)), &result); err != nil {
		return nil, &llm.ParseError{Raw: text, Err: err}
	}
	return result, nil
}

// extractJSON pulls the JSON object out of a model response that may wrap
// it in code fences or surrounding prose. Models do this even when told not
// to, so parsing is lenient before it is strict.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	var end int
	if text[start] == '{' {
		end = strings.LastIndex(text, "}")
	} else {
		end = strings.LastIndex(text, "]")
	}
	if end <= start {
		return text
	}
	return text[start : end+1]
}
