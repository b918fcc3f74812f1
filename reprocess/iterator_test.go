package reprocess

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/storage"
	"github.com/poiesic/distillery/storage/badger"
)

func setupTestRepo(t *testing.T) storage.KnowledgeRepository {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, backend.Close())
	})
	return repo
}

func addTestRecords(t *testing.T, repo storage.KnowledgeRepository, count int) []*core.KnowledgeRecord {
	t.Helper()

	records := make([]*core.KnowledgeRecord, count)
	for i := 0; i < count; i++ {
		records[i] = &core.KnowledgeRecord{
			OriginalContent: fmt.Sprintf("note %d about distributed systems", i),
			SourceType:      core.SourceTypeManual,
			CreatedAt:       time.Now().UTC(),
		}
	}
	added, err := repo.AddKnowledgeRecords(context.Background(), records...)
	require.NoError(t, err)
	require.Len(t, added, count)
	return added
}

func TestRecordIterator_ForEach(t *testing.T) {
	repo := setupTestRepo(t)
	addTestRecords(t, repo, 10)

	it := NewRecordIterator(repo, 3)

	batches := 0
	total := 0
	err := it.ForEach(context.Background(), func(records []*core.KnowledgeRecord) error {
		batches++
		total += len(records)
		assert.LessOrEqual(t, len(records), 3, "batch should not exceed batch size")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, total, "should visit every record")
	assert.Equal(t, 4, batches, "10 records in batches of 3")
}

func TestRecordIterator_Empty(t *testing.T) {
	repo := setupTestRepo(t)

	it := NewRecordIterator(repo, 5)

	called := false
	err := it.ForEach(context.Background(), func(records []*core.KnowledgeRecord) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called, "fn should not be called for an empty database")
}

func TestRecordIterator_StopsOnError(t *testing.T) {
	repo := setupTestRepo(t)
	addTestRecords(t, repo, 10)

	it := NewRecordIterator(repo, 2)

	batchErr := errors.New("batch failed")
	batches := 0
	err := it.ForEach(context.Background(), func(records []*core.KnowledgeRecord) error {
		batches++
		if batches == 2 {
			return batchErr
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, batchErr)
	assert.Equal(t, 2, batches, "iteration should stop at the failing batch")
}

func TestRecordIterator_ContextCancellation(t *testing.T) {
	repo := setupTestRepo(t)
	addTestRecords(t, repo, 10)

	ctx, cancel := context.WithCancel(context.Background())

	it := NewRecordIterator(repo, 2)

	batches := 0
	err := it.ForEach(ctx, func(records []*core.KnowledgeRecord) error {
		batches++
		if batches == 2 {
			cancel()
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, batches, 3, "should stop shortly after cancellation")
}

func TestRecordIterator_DefaultBatchSize(t *testing.T) {
	repo := setupTestRepo(t)

	it := NewRecordIterator(repo, 0)
	assert.Equal(t, DefaultBatchSize, it.batchSize)

	it = NewRecordIterator(repo, -5)
	assert.Equal(t, DefaultBatchSize, it.batchSize)
}
