package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/storage"
)

// SourceRepository implements storage.SourceRepository for BadgerDB.
type SourceRepository struct {
	backend *Backend
}

var _ storage.SourceRepository = (*SourceRepository)(nil)

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(backend *Backend) (*SourceRepository, error) {
	return &SourceRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *SourceRepository) Close() error {
	return nil
}

// AddSources adds source records, keyed by their content-based IDs.
// Re-adding an existing ID overwrites the record, so ingestion can be rerun.
func (r *SourceRepository) AddSources(ctx context.Context, sources ...*core.SourceRecord) ([]*core.SourceRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, source := range sources {
			if source.InsertedAt.IsZero() {
				source.InsertedAt = time.Now().UTC()
			}

			key := makeSourceKey(source.Id)
			if err := tx.Set(key, storage.MarshalSourceRecord(source)); err != nil {
				return err
			}

			typeKey := makeSourceTypeKey(source.Type, source.Id)
			if err := tx.Set(typeKey, storage.MarshalID(source.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	return sources, err
}

// GetSource retrieves a source record by ID.
func (r *SourceRepository) GetSource(ctx context.Context, id core.ID) (*core.SourceRecord, error) {
	var result *core.SourceRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSourceKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalSourceRecord(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// ListSources returns all source records of the given type.
func (r *SourceRepository) ListSources(ctx context.Context, sourceType core.SourceType) ([]*core.SourceRecord, error) {
	var results []*core.SourceRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSourceTypeKey(sourceType)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := tx.Get(makeSourceKey(id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			var record *core.SourceRecord
			if err := item.Value(func(val []byte) error {
				var unmarshalErr error
				record, unmarshalErr = storage.UnmarshalSourceRecord(val)
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

// CountSources returns the number of source records of the given type.
func (r *SourceRepository) CountSources(ctx context.Context, sourceType core.SourceType) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSourceTypeKey(sourceType)
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
