// Copyright 2025 Podrec Authors
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


package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/podrec/podrec/core"
	"github.com/podrec/podrec/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage in a single transaction.
// The whole batch is rejected with ErrDuplicateKey if any chunk_id is
// already present.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.ChunkId)
			if _, err := tx.Get(key); err == nil {
				return storage.ErrDuplicateKey
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			if chunk.CreatedAt.IsZero() {
				chunk.CreatedAt = time.Now().UTC()
			}

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			// Episode index for chunk_index ordered lookups
			episodeKey := makeEpisodeKey(chunk.EpisodeId, chunk.ChunkIndex)
			if err := tx.Set(episodeKey, []byte(chunk.ChunkId)); err != nil {
				return err
			}

			// Category index for filtered similarity scans
			if chunk.Category != "" {
				categoryKey := makeCategoryKey(chunk.Category, chunk.ChunkId)
				if err := tx.Set(categoryKey, []byte(chunk.ChunkId)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// ExistingIDs reports which of the given chunk IDs are already present,
// checked in a single read transaction.
func (r *ChunkRepository) ExistingIDs(ctx context.Context, ids ...string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			_, err := tx.Get(makeChunkKey(id))
			switch err {
			case nil:
				existing[id] = true
			case badger.ErrKeyNotFound:
				// absent
			default:
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id string) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunksByEpisode retrieves all chunks for an episode in chunk_index
// order.
func (r *ChunkRepository) GetChunksByEpisode(ctx context.Context, episodeId int) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialEpisodeKey(episodeId)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID string
			if err := iter.Item().Value(func(val []byte) error {
				chunkID = string(val)
				return nil
			}); err != nil {
				return err
			}

			chunk, err := readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountChunks returns the total number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindSimilar scans chunks and returns the ones most similar to the given
// vector. A non-empty category restricts the scan to that category's index.
// Results are ordered by similarity descending, then apple_rating, then
// published_date.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, category string, limit int) ([]*core.ChunkMatch, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ChunkMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if category != "" {
			return r.scanCategory(tx, vector, category, &results)
		}
		return r.scanAll(tx, vector, &results)
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, compareMatches)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *ChunkRepository) scanAll(tx *badger.Txn, vector []float32, results *[]*core.ChunkMatch) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(chunkRecordPrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var chunk *core.Chunk
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			chunk, err = storage.UnmarshalChunk(val)
			return err
		}); err != nil {
			return err
		}
		scoreChunk(chunk, vector, results)
	}
	return nil
}

func (r *ChunkRepository) scanCategory(tx *badger.Txn, vector []float32, category string, results *[]*core.ChunkMatch) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialCategoryKey(category)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var chunkID string
		if err := iter.Item().Value(func(val []byte) error {
			chunkID = string(val)
			return nil
		}); err != nil {
			return err
		}

		chunk, err := readChunk(tx, makeChunkKey(chunkID))
		if err != nil {
			return err
		}
		scoreChunk(chunk, vector, results)
	}
	return nil
}

func scoreChunk(chunk *core.Chunk, vector []float32, results *[]*core.ChunkMatch) {
	if chunk == nil || len(chunk.Embedding) == 0 {
		return
	}
	*results = append(*results, &core.ChunkMatch{
		Chunk: chunk,
		Score: cosineSimilarity(vector, chunk.Embedding),
	})
}

// compareMatches orders by similarity descending, breaking ties by
// apple_rating, then insertion recency, then published_date (ISO dates
// compare lexicographically).
func compareMatches(a, b *core.ChunkMatch) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	switch {
	case a.Chunk.AppleRating > b.Chunk.AppleRating:
		return -1
	case a.Chunk.AppleRating < b.Chunk.AppleRating:
		return 1
	}
	switch {
	case a.Chunk.CreatedAt.After(b.Chunk.CreatedAt):
		return -1
	case b.Chunk.CreatedAt.After(a.Chunk.CreatedAt):
		return 1
	}
	switch {
	case a.Chunk.PublishedDate > b.Chunk.PublishedDate:
		return -1
	case a.Chunk.PublishedDate < b.Chunk.PublishedDate:
		return 1
	}
	return 0
}

// readChunk reads a chunk from the transaction.
// Returns nil without error when the key does not exist.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
