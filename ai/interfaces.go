package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Every returned vector is L2-normalized to unit length. Implementations must
// be thread-safe for concurrent use; embedding is read-only over a shared model
// resource with no per-call mutation.
type Embedder interface {
	// EmbedText generates a unit-norm vector embedding for a single text string.
	// It is a size-one convenience wrapper over EmbedTexts.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates unit-norm vector embeddings for multiple text strings.
	// Implementations batch internally to bound peak memory. The returned slice
	// contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates the embedding service for convenient initialization and
// lifecycle management. A provider owns the underlying model client; Close
// releases it.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
