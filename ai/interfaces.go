package ai

import "context"

// ModelGateway performs a single request/response round trip to a
// text-and-vision-capable LLM. Implementations must be thread-safe for
// concurrent use.
type ModelGateway interface {
	// Complete sends the role-tagged messages to the model with the given
	// sampling temperature and returns the raw text completion.
	// Exactly one network round trip; no internal retries, no parsing.
	// Callers must not invoke with an empty message sequence.
	// Failures are reported as *GatewayError so the caller can distinguish
	// misconfiguration (abort) from transient or malformed responses
	// (degrade and continue).
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ImageResolver resolves an opaque image reference (local path, upload-dir
// relative path, or remote URL) to binary content for a vision request.
type ImageResolver interface {
	// Resolve returns the image bytes and media type for the reference.
	// Returns an error wrapping ErrImageNotFound if the reference cannot
	// be resolved.
	Resolve(ctx context.Context, ref string) (*ImageData, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages ModelGateway and Embedder instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Gateway returns the model completion service.
	// The returned ModelGateway is safe for concurrent use.
	Gateway() ModelGateway

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
