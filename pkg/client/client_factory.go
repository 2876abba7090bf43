// Package client selects and constructs an inference backend.
package client

import (
	"context"
	"fmt"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/client/anthropic"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/client/bedrock"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
)

// BackendConfig names a backend and the settings it needs.
type BackendConfig struct {
	Backend         string // "bedrock" (default) or "anthropic"
	Region          string
	ModelID         string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	MaxTokens       int
}

// New creates the inference client for the configured backend.
func New(ctx context.Context, cfg BackendConfig) (llm.InferenceClient, error) {
	switch cfg.Backend {
	case "", "bedrock":
		return bedrock.NewClient(ctx, bedrock.Config{
			Region:          cfg.Region,
			ModelID:         cfg.ModelID,
			Profile:         cfg.Profile,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			MaxTokens:       cfg.MaxTokens,
		})
	case "anthropic", "claude":
		return anthropic.NewClient(cfg.ModelID, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported backend: %q", cfg.Backend)
	}
}
