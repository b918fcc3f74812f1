// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Host is the base URL for the OpenAI-compatible chat/embedding API.
	// Example: "https://openrouter.ai/api/v1", "http://localhost:11434/v1"
	Host string

	// APIKey authenticates requests. May be empty for local services;
	// gateways report GatewayUnconfigured when a key is required but missing.
	APIKey string

	// ChatModel is the model identifier for completions.
	// Must be vision-capable when image inputs are used.
	// Example: "anthropic/claude-3.5-sonnet", "qwen2.5:3b"
	ChatModel string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "openai/text-embedding-3-small", "embeddinggemma"
	EmbeddingModel string

	// MaxTokens bounds the completion length per call.
	// Default: 4096
	MaxTokens int

	// TextTimeout is the per-call deadline for text-only completions.
	// Default: 60s
	TextTimeout time.Duration

	// VisionTimeout is the per-call deadline for vision and combined
	// fast-path completions, which generate slowly on large contexts.
	// Default: 120s
	VisionTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the API base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithChatModel sets the completion model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithMaxTokens sets the completion length bound.
func WithMaxTokens(max int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = max
	}
}

// WithTimeouts sets the per-call deadlines for text and vision completions.
func WithTimeouts(text, vision time.Duration) ConfigOption {
	return func(c *Config) {
		c.TextTimeout = text
		c.VisionTimeout = vision
	}
}

// DefaultConfig returns a Config with sensible defaults for OpenRouter.
func DefaultConfig() *Config {
	return &Config{
		Host:           "https://openrouter.ai/api/v1",
		ChatModel:      "anthropic/claude-3.5-sonnet",
		EmbeddingModel: "openai/text-embedding-3-small",
		MaxTokens:      4096,
		TextTimeout:    60 * time.Second,
		VisionTimeout:  120 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithChatModel("qwen2.5:3b"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to the host if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// An empty APIKey is valid here; whether a key is required is decided at
// call time by the gateway.
func (c *Config) Validate() error {
	// Normalize first to ensure the host is in correct format
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.MaxTokens <= 0 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.TextTimeout <= 0 || c.VisionTimeout <= 0 {
		return errors.New("ai config: timeouts must be positive")
	}
	return nil
}

// Configured reports whether an API key is present.
func (c *Config) Configured() bool {
	return c.APIKey != ""
}
