// Package config loads and validates application settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings represents the main application settings
type Settings struct {
	Backend      Backend      `json:"backend" yaml:"backend"`
	Conversation Conversation `json:"conversation" yaml:"conversation"`
	LogLevel     string       `json:"log_level" yaml:"log_level"`
}

// Backend contains inference backend configuration
type Backend struct {
	Name      string   `json:"name" yaml:"name"`                                   // "bedrock" or "anthropic"
	Region    string   `json:"region,omitempty" yaml:"region,omitempty"`           // AWS region (bedrock only)
	Profile   string   `json:"profile,omitempty" yaml:"profile,omitempty"`         // AWS shared-config profile (bedrock only)
	ModelID   string   `json:"model_id" yaml:"model_id"`                           // model to invoke
	MaxTokens int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`   // response token cap (0 = backend default)
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"` // default sampling temperature
	TopP      *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`             // default nucleus sampling
}

// Conversation contains context-window configuration
type Conversation struct {
	SystemPrompt      string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	MaxTokenLimit     int    `json:"max_token_limit,omitempty" yaml:"max_token_limit,omitempty"`         // estimated-token budget for active history
	RecentKeepCount   int    `json:"recent_keep_count,omitempty" yaml:"recent_keep_count,omitempty"`     // recent turns kept through compaction
	MinSummarizeBatch int    `json:"min_summarize_batch,omitempty" yaml:"min_summarize_batch,omitempty"` // smallest batch worth summarizing
}

// LoadSettings loads application settings from a JSON or YAML file. An
// empty path searches the default locations and falls back to defaults.
func LoadSettings(configPath string) (*Settings, error) {
	if configPath == "" {
		configPath = findSettingsFile()
		if configPath == "" {
			return GetDefaultSettings(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read settings file %s", configPath)
	}

	var settings Settings
	if isYAMLPath(configPath) {
		err = yaml.Unmarshal(data, &settings)
	} else {
		err = json.Unmarshal(data, &settings)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse settings file %s", configPath)
	}

	applyDefaults(&settings)
	return &settings, nil
}

// SaveSettings writes settings to a JSON or YAML file based on extension.
func SaveSettings(configPath string, settings *Settings) error {
	if configPath == "" {
		configPath = filepath.Join(".ezbedrock", "settings.json")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	var data []byte
	var err error
	if isYAMLPath(configPath) {
		data, err = yaml.Marshal(settings)
	} else {
		data, err = json.MarshalIndent(settings, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write settings file %s", configPath)
	}
	return nil
}

// GetDefaultSettings returns default application settings
func GetDefaultSettings() *Settings {
	s := &Settings{}
	applyDefaults(s)
	return s
}

// ValidateSettings checks settings for configuration errors before any
// client is constructed.
func ValidateSettings(s *Settings) error {
	switch s.Backend.Name {
	case "bedrock", "anthropic", "claude":
	default:
		return fmt.Errorf("unsupported backend: %q", s.Backend.Name)
	}
	if s.Conversation.MaxTokenLimit < 0 {
		return fmt.Errorf("max_token_limit must not be negative")
	}
	if s.Conversation.RecentKeepCount < 0 {
		return fmt.Errorf("recent_keep_count must not be negative")
	}
	if s.Conversation.MinSummarizeBatch < 0 {
		return fmt.Errorf("min_summarize_batch must not be negative")
	}
	switch s.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %q", s.LogLevel)
	}
	return nil
}

func applyDefaults(s *Settings) {
	if s.Backend.Name == "" {
		s.Backend.Name = "bedrock"
	}
	if s.Backend.Region == "" {
		s.Backend.Region = "us-west-2"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.Conversation.MaxTokenLimit == 0 {
		s.Conversation.MaxTokenLimit = 8000
	}
}

// findSettingsFile searches the default locations in order of preference.
func findSettingsFile() string {
	candidates := []string{
		filepath.Join(".ezbedrock", "settings.json"),
		filepath.Join(".ezbedrock", "settings.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "ezbedrock", "settings.json"),
			filepath.Join(home, ".config", "ezbedrock", "settings.yaml"),
		)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
