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


// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP APIs (OpenRouter, OpenAI, Ollama, LocalAI, vLLM).
//
// The Gateway maps role-tagged messages with text and inline image parts
// onto multimodal chat completions, and classifies transport failures
// into the ai.GatewayError taxonomy: authentication problems become
// GatewayUnconfigured, upstream errors become GatewayTransient, and
// empty response bodies become GatewayMalformed. The Embedder wraps the
// same client family for vector embeddings.
//
// Both services are safe for concurrent use; concurrent requests are not
// serialized at this layer.
package openai
