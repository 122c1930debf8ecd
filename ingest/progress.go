package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/podrec/podrec/core"
	"github.com/podrec/podrec/storage"
)

// ProgressStore is the single writer of the ingestion progress record.
// Worker goroutines report through it; a mutex serializes every mutation
// so the persisted record never interleaves partial updates.
type ProgressStore struct {
	repo storage.ProgressRepository

	mu       sync.Mutex
	progress *core.Progress
}

// NewProgressStore creates a ProgressStore over the given repository.
func NewProgressStore(repo storage.ProgressRepository) (*ProgressStore, error) {
	if repo == nil {
		return nil, ErrProgressRepositoryRequired
	}
	return &ProgressStore{repo: repo}, nil
}

// Load reads the persisted progress record, starting fresh when none
// exists yet.
func (s *ProgressStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.repo.LoadProgress(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.progress = &core.Progress{}
			return nil
		}
		return err
	}
	s.progress = progress
	return nil
}

// Current returns a copy of the in-memory progress record.
func (s *ProgressStore) Current() core.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return core.Progress{}
	}
	copied := *s.progress
	copied.CompletedCollections = append([]string(nil), s.progress.CompletedCollections...)
	return copied
}

// Completed reports whether a collection has already been fully ingested.
func (s *ProgressStore) Completed(collectionId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress != nil && s.progress.Completed(collectionId)
}

// MarkCompleted records a collection as fully ingested and persists the
// progress record in the same critical section. Only call this after the
// collection's chunks are durably stored.
func (s *ProgressStore) MarkCompleted(ctx context.Context, collectionId string, processedChunks int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progress == nil {
		s.progress = &core.Progress{}
	}
	if !s.progress.Completed(collectionId) {
		s.progress.CompletedCollections = append(s.progress.CompletedCollections, collectionId)
	}
	s.progress.LastProcessedCollection = collectionId
	s.progress.TotalProcessedChunks += processedChunks

	return s.repo.SaveProgress(ctx, s.progress)
}

// AdvanceCycle increments the cycle counter and clears per-cycle state,
// persisting the result.
func (s *ProgressStore) AdvanceCycle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progress == nil {
		s.progress = &core.Progress{}
	}
	s.progress.CurrentCycle++
	s.progress.CompletedCollections = nil
	s.progress.LastProcessedCollection = ""

	return s.repo.SaveProgress(ctx, s.progress)
}
