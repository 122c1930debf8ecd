package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/podrec/podrec/core"
	"github.com/podrec/podrec/storage"
)

// JournalRepository implements storage.JournalRepository for BadgerDB.
// Records are keyed by a monotonic sequence so iteration preserves append
// order; nothing ever updates or deletes them.
type JournalRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.JournalRepository = (*JournalRepository)(nil)

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(backend *Backend) (*JournalRepository, error) {
	seq, err := backend.GetSequence(journalSeq)
	if err != nil {
		return nil, err
	}
	return &JournalRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the journal sequence.
func (r *JournalRepository) Close() error {
	return r.seq.Release()
}

// WithTransaction delegates to the backend.
func (r *JournalRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendException appends a record to the exception journal.
func (r *JournalRepository) AppendException(ctx context.Context, record *core.ExceptionRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	seq, err := r.seq.Next()
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJournalKey(seq)
		if err := tx.Set(key, storage.MarshalExceptionRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListExceptions retrieves journal records in append order.
func (r *JournalRepository) ListExceptions(ctx context.Context, limit int) ([]*core.ExceptionRecord, error) {
	var results []*core.ExceptionRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(journalPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			var record *core.ExceptionRecord
			if err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				record, unmarshalErr = storage.UnmarshalExceptionRecord(val)
				return unmarshalErr
			}); err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	return results, err
}
