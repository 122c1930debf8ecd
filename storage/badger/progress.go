package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/podrec/podrec/core"
	"github.com/podrec/podrec/storage"
)

// ProgressRepository implements storage.ProgressRepository for BadgerDB.
// There is exactly one progress record per database.
type ProgressRepository struct {
	backend *Backend
}

var _ storage.ProgressRepository = (*ProgressRepository)(nil)

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(backend *Backend) *ProgressRepository {
	return &ProgressRepository{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (r *ProgressRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ProgressRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// LoadProgress retrieves the ingestion progress record.
func (r *ProgressRepository) LoadProgress(ctx context.Context) (*core.Progress, error) {
	var result *core.Progress
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeProgressKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalProgress(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// SaveProgress durably stores the progress record, replacing any previous
// one. UpdatedAt is stamped on every save.
func (r *ProgressRepository) SaveProgress(ctx context.Context, progress *core.Progress) error {
	progress.UpdatedAt = time.Now().UTC()
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeProgressKey(), storage.MarshalProgress(progress)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
