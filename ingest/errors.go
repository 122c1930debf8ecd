package ingest

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrJournalRepositoryRequired is returned when a journal repository is not provided.
	ErrJournalRepositoryRequired = errors.New("journal repository required")

	// ErrProgressRepositoryRequired is returned when a progress repository is not provided.
	ErrProgressRepositoryRequired = errors.New("progress repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSourceRequired is returned when a document source is not provided.
	ErrSourceRequired = errors.New("document source required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be positive")

	// ErrInvalidCollectionsPerCycle is returned when the per-cycle collection
	// count is not positive.
	ErrInvalidCollectionsPerCycle = errors.New("collectionsPerCycle must be positive")

	// ErrEmbeddingCountMismatch is returned when the embedder returns a
	// different number of vectors than texts requested.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match text count")
)
