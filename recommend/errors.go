package recommend

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidTopK is returned when topK is not positive.
	ErrInvalidTopK = errors.New("topK must be positive")

	// ErrEmptyQuery is returned when the query text is empty.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrInvalidThreshold is returned when a confidence threshold lies
	// outside [0,1].
	ErrInvalidThreshold = errors.New("threshold must be in [0,1]")
)
