package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. The embedding model itself always runs out of process; this is
// the only boundary through which the pipeline reaches it.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. The returned slice contains embeddings in the same order as
	// the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the embedding model, recorded on
	// every chunk as source_model.
	Model() string
}
