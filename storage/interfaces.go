package storage

import (
	"context"

	"github.com/podrec/podrec/core"
)

// Repository provides common storage operations shared across all
// repositories. Implementations must be thread-safe and support concurrent
// access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing transcript chunks.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage in a single
	// transaction. Sets CreatedAt if not already set. Callers are
	// expected to have validated the chunks and checked for duplicates;
	// an existing chunk_id yields ErrDuplicateKey and nothing from the
	// batch is written.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// ExistingIDs reports which of the given chunk IDs are already
	// present. The whole batch is checked in one read transaction.
	ExistingIDs(ctx context.Context, ids ...string) (map[string]bool, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id string) (*core.Chunk, error)

	// GetChunksByEpisode retrieves all chunks for an episode, ordered by
	// chunk_index ascending. Used to reconstruct surrounding context for
	// a recommended chunk.
	GetChunksByEpisode(ctx context.Context, episodeId int) ([]*core.Chunk, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// FindSimilar finds chunks similar to the given vector.
	// When category is non-empty only chunks of that category are
	// considered. Results are ordered by similarity score (highest
	// first), breaking ties by apple_rating, then insertion recency
	// (CreatedAt), then published_date, up to limit results.
	FindSimilar(ctx context.Context, vector []float32, category string, limit int) ([]*core.ChunkMatch, error)
}

// ProgressRepository persists the single ingestion progress record.
type ProgressRepository interface {
	Repository

	// LoadProgress retrieves the ingestion progress record.
	// Returns ErrNotFound if no progress has been saved yet.
	LoadProgress(ctx context.Context) (*core.Progress, error)

	// SaveProgress durably stores the ingestion progress record,
	// replacing any previous one.
	SaveProgress(ctx context.Context, progress *core.Progress) error
}

// JournalRepository provides the append-only exception journal.
type JournalRepository interface {
	Repository

	// AppendException appends a record to the exception journal.
	// Records are never updated or deleted.
	AppendException(ctx context.Context, record *core.ExceptionRecord) error

	// ListExceptions retrieves journal records in append order,
	// up to limit results. A non-positive limit returns all records.
	ListExceptions(ctx context.Context, limit int) ([]*core.ExceptionRecord, error)
}
