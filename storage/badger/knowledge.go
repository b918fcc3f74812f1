package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	return &KnowledgeRepository{backend: backend}, nil
}

// Close releases repository resources. The backend stays open; the
// owner of the Backend closes it.
func (r *KnowledgeRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *KnowledgeRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *KnowledgeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// recordContentID derives a deterministic ID from the record's raw
// material so that identical submissions collapse to one record.
func recordContentID(record *core.KnowledgeRecord) core.ID {
	parts := append([]string{record.OriginalContent, record.SourceURL}, record.Images...)
	return core.IDFromContent(strings.Join(parts, "\x00"))
}

// AddKnowledgeRecords adds one or more knowledge records to storage.
func (r *KnowledgeRepository) AddKnowledgeRecords(ctx context.Context, records ...*core.KnowledgeRecord) ([]*core.KnowledgeRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record.Id == 0 {
				record.Id = recordContentID(record)
			}

			key := makeKnowledgeRecordKey(record.Id)
			if _, err := tx.Get(key); err == nil {
				return storage.ErrDuplicateKey
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			now := time.Now().UTC()
			if record.CreatedAt.IsZero() {
				record.CreatedAt = now
			}
			record.UpdatedAt = now
			if record.Status == "" {
				record.Status = core.StatusPending
			}

			value, err := storage.MarshalKnowledgeRecord(record)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}

			dateKey := makeKnowledgeDateKey(record.CreatedAt, record.Id)
			if err := tx.Set(dateKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}

			if err := r.setStatusIndex(tx, record); err != nil {
				return err
			}
			if err := r.setTagIndex(tx, record); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// UpdateKnowledgeRecords updates existing knowledge records.
func (r *KnowledgeRepository) UpdateKnowledgeRecords(ctx context.Context, records ...*core.KnowledgeRecord) ([]*core.KnowledgeRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeKnowledgeRecordKey(record.Id)

			old, err := r.readKnowledgeRecord(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			record.CreatedAt = old.CreatedAt
			record.UpdatedAt = time.Now().UTC()

			value, err := storage.MarshalKnowledgeRecord(record)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if old.Status != record.Status {
				if err := tx.Delete(makeKnowledgeStatusKey(old.Status, old.Id)); err != nil {
					return err
				}
				if err := r.setStatusIndex(tx, record); err != nil {
					return err
				}
			}

			if !slices.Equal(cardTags(old), cardTags(record)) {
				if err := r.deleteTagIndex(tx, old); err != nil {
					return err
				}
				if err := r.setTagIndex(tx, record); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// DeleteKnowledgeRecords removes knowledge records by their IDs.
func (r *KnowledgeRepository) DeleteKnowledgeRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeKnowledgeRecordKey(id)

			record, err := r.readKnowledgeRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeKnowledgeDateKey(record.CreatedAt, record.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeKnowledgeStatusKey(record.Status, record.Id)); err != nil {
				return err
			}
			if err := r.deleteTagIndex(tx, record); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetKnowledgeRecord retrieves a single knowledge record by ID.
func (r *KnowledgeRepository) GetKnowledgeRecord(ctx context.Context, id core.ID) (*core.KnowledgeRecord, error) {
	var result *core.KnowledgeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readKnowledgeRecord(tx, makeKnowledgeRecordKey(id))
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

// GetKnowledgeRecords retrieves multiple knowledge records by their IDs.
func (r *KnowledgeRepository) GetKnowledgeRecords(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeRecord, error) {
	var result []*core.KnowledgeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readKnowledgeRecord(tx, makeKnowledgeRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetKnowledgeRecordsByDateRange retrieves records within a time range.
func (r *KnowledgeRepository) GetKnowledgeRecordsByDateRange(ctx context.Context, start, end time.Time) ([]*core.KnowledgeRecord, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.KnowledgeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialKnowledgeDateKey(start)
		endKey := makePartialKnowledgeDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := r.readKnowledgeRecord(tx, makeKnowledgeRecordKey(recordID))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentKnowledgeRecords retrieves the N most recently created
// records, newest first.
func (r *KnowledgeRepository) GetRecentKnowledgeRecords(ctx context.Context, limit int) ([]*core.KnowledgeRecord, error) {
	var results []*core.KnowledgeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible date index key
		startKey := makePartialKnowledgeDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(knowledgeRecordDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := r.readKnowledgeRecord(tx, makeKnowledgeRecordKey(recordID))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// GetKnowledgeRecordsByStatus retrieves IDs of records in the given
// processing status.
func (r *KnowledgeRepository) GetKnowledgeRecordsByStatus(ctx context.Context, status core.ProcessingStatus) ([]core.ID, error) {
	return r.collectIndexedIDs(makePartialKnowledgeStatusKey(status))
}

// GetKnowledgeRecordsByTag retrieves IDs of records whose card carries
// the given tag. Matching is case-insensitive: the index stores tags
// lowercased and the lookup folds the query the same way.
func (r *KnowledgeRepository) GetKnowledgeRecordsByTag(ctx context.Context, tag string) ([]core.ID, error) {
	return r.collectIndexedIDs(makePartialKnowledgeTagKey(tag))
}

// ForEachKnowledgeRecord invokes fn for every stored record.
func (r *KnowledgeRepository) ForEachKnowledgeRecord(ctx context.Context, fn func(record *core.KnowledgeRecord) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(knowledgeRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.KnowledgeRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalKnowledgeRecord(val)
				return err
			}); err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountKnowledgeRecords returns the total number of stored records.
func (r *KnowledgeRepository) CountKnowledgeRecords(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(knowledgeRecordPrefix + ":")
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

// Helper methods

// collectIndexedIDs gathers the record IDs stored under an index prefix.
func (r *KnowledgeRepository) collectIndexedIDs(prefix []byte) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	return ids, err
}

// readKnowledgeRecord reads a knowledge record from the transaction.
func (r *KnowledgeRepository) readKnowledgeRecord(tx *badger.Txn, key []byte) (*core.KnowledgeRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.KnowledgeRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalKnowledgeRecord(val)
		return unmarshalErr
	})
	return record, err
}

func (r *KnowledgeRepository) setStatusIndex(tx *badger.Txn, record *core.KnowledgeRecord) error {
	key := makeKnowledgeStatusKey(record.Status, record.Id)
	return tx.Set(key, storage.MarshalID(record.Id))
}

func (r *KnowledgeRepository) setTagIndex(tx *badger.Txn, record *core.KnowledgeRecord) error {
	for _, tag := range cardTags(record) {
		key := makeKnowledgeTagKey(tag, record.Id)
		if err := tx.Set(key, storage.MarshalID(record.Id)); err != nil {
			return err
		}
	}
	return nil
}

func (r *KnowledgeRepository) deleteTagIndex(tx *badger.Txn, record *core.KnowledgeRecord) error {
	for _, tag := range cardTags(record) {
		if err := tx.Delete(makeKnowledgeTagKey(tag, record.Id)); err != nil {
			return err
		}
	}
	return nil
}

// cardTags returns the record's card tags, or nil when no card exists.
func cardTags(record *core.KnowledgeRecord) []string {
	if record.Card == nil {
		return nil
	}
	return record.Card.Tags
}
