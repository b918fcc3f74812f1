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


// Package ai provides abstractions for AI services used in Distillery.
//
// This package defines interfaces for AI operations including model
// completions, text embeddings, and image grounding. It follows the
// dependency inversion principle, allowing the distillation pipeline and
// business logic to depend on abstractions rather than concrete
// implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - ModelGateway: One round trip to a text-and-vision-capable LLM
//   - Embedder: Generates vector embeddings from text
//   - ImageResolver: Resolves image references to binary content
//
// The ModelGateway deliberately does no retrying and no parsing: failure
// classification (GatewayError) is the whole of its error contract, so
// that callers can distinguish fatal misconfiguration from per-call
// failures that warrant a degraded fallback.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewGateway, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	gateway, err := openai.NewGateway(config)  // returns ai.ModelGateway
//
// Test utility constructors (mock.NewMockGateway, mock.NewMockEmbedder)
// return CONCRETE types to enable test assertions and behavior injection
// via the mock's public fields and methods (CallCount, Enqueue, Reset).
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithAPIKey(key))
//	gateway, err := openai.NewGateway(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reply, err := gateway.Complete(ctx, []ai.Message{
//	    ai.SystemText("You are a knowledge management expert."),
//	    ai.UserText("Distill the following content..."),
//	}, 0.3)
package ai
