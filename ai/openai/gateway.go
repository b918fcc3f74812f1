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


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/distillery/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Gateway implements ai.ModelGateway using OpenAI-compatible chat APIs.
// One Complete call is one network round trip; retries and response
// parsing belong to the caller.
type Gateway struct {
	client     llms.Model
	maxTokens  int
	configured bool
	logger     *slog.Logger
}

// newGateway is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGateway(config *ai.Config) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication; the configured flag records whether a real
	// key is present so Complete can fail fast with Unconfigured.
	token := config.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		client:     client,
		maxTokens:  config.MaxTokens,
		configured: config.Configured() || isLocalHost(config.Host),
		logger:     slog.Default().With("component", "openai-gateway"),
	}, nil
}

// NewGateway creates a new model gateway using the provided configuration.
//
// Returns ai.ModelGateway interface to enforce abstraction.
func NewGateway(config *ai.Config) (ai.ModelGateway, error) {
	return newGateway(config)
}

// Complete sends the messages to the model and returns the raw completion text.
func (g *Gateway) Complete(ctx context.Context, messages []ai.Message, temperature float64) (string, error) {
	if len(messages) == 0 {
		return "", ai.ErrEmptyMessages
	}
	if !g.configured {
		return "", ai.NewGatewayError(ai.GatewayUnconfigured, "missing API key", nil)
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, toMessageContent(msg))
	}

	response, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		g.logger.Error("completion failed", "err", err)
		return "", classifyError(err)
	}

	if len(response.Choices) == 0 {
		g.logger.Warn("no choices returned from model")
		return "", ai.NewGatewayError(ai.GatewayMalformed, "no choices in response", nil)
	}

	text := response.Choices[0].Content
	if strings.TrimSpace(text) == "" {
		return "", ai.NewGatewayError(ai.GatewayMalformed, "empty completion", nil)
	}

	return text, nil
}

// toMessageContent converts an ai.Message to the langchaingo wire shape.
func toMessageContent(msg ai.Message) llms.MessageContent {
	role := llms.ChatMessageTypeHuman
	if msg.Role == ai.RoleSystem {
		role = llms.ChatMessageTypeSystem
	}

	parts := make([]llms.ContentPart, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case ai.TextPart:
			parts = append(parts, llms.TextPart(p.Text))
		case ai.ImagePart:
			parts = append(parts, llms.BinaryPart(p.MediaType, p.Data))
		}
	}

	return llms.MessageContent{Role: role, Parts: parts}
}

// classifyError maps a transport error onto the gateway failure taxonomy.
// Authentication rejections are Unconfigured (fatal for the run);
// everything else at this layer is Transient.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "401") ||
		strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid api key") {
		return ai.NewGatewayError(ai.GatewayUnconfigured, "authentication rejected", err)
	}
	return ai.NewGatewayError(ai.GatewayTransient, "completion request failed", err)
}

// isLocalHost reports whether the host points at a local service, which
// typically needs no API key.
func isLocalHost(host string) bool {
	return strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1")
}
