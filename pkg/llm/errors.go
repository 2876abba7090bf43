package llm

import (
	"fmt"
)

// TransportError reports a failed model invocation: network, auth,
// throttling, or a malformed response. The conversation layer propagates it
// unchanged from Send; the summarizer catches it and degrades to a fallback
// summary instead.
type TransportError struct {
	Provider string // backend name, e.g. "bedrock"
	Op       string // failed operation, e.g. "converse"
	Code     string // provider error code when available
	Err      error
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s failed (%s): %v", e.Provider, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports that a model response could not be parsed into the
// requested structure. Raw carries the full response text for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports invalid construction-time configuration.
// Configuration is validated eagerly; nothing limps along on a bad config.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}
