package reprocess

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/distillery/ai/mock"
)

func TestBatchProcessor_Process(t *testing.T) {
	repo := setupTestRepo(t)
	records := addTestRecords(t, repo, 4)

	embedder := mock.NewMockEmbedder()
	bp := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	err := bp.Process(context.Background(), records)
	require.NoError(t, err)

	for _, record := range records {
		stored, err := repo.GetKnowledgeRecord(context.Background(), record.Id)
		require.NoError(t, err)
		require.NotEmpty(t, stored.Vector, "record %d should have an embedding", record.Id)

		var magnitude float32
		for _, v := range stored.Vector {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
	}
}

func TestBatchProcessor_RetriesTransientFailures(t *testing.T) {
	repo := setupTestRepo(t)
	records := addTestRecords(t, repo, 2)

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rate limited")
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{3.0, 4.0, 0.0}
		}
		return out, nil
	}

	bp := NewBatchProcessor(repo, embedder, 5, time.Millisecond)
	err := bp.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "should succeed on third attempt")

	stored, err := repo.GetKnowledgeRecord(context.Background(), records[0].Id)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, stored.Vector[0], 0.001, "vector should be normalized")
	assert.InDelta(t, 0.8, stored.Vector[1], 0.001)
}

func TestBatchProcessor_ExhaustedRetries(t *testing.T) {
	repo := setupTestRepo(t)
	records := addTestRecords(t, repo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service unavailable")
	}

	bp := NewBatchProcessor(repo, embedder, 2, time.Millisecond)
	err := bp.Process(context.Background(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate embeddings")
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo := setupTestRepo(t)
	records := addTestRecords(t, repo, 3)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0, 0}}, nil
	}

	bp := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
	err := bp.Process(context.Background(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	repo := setupTestRepo(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		t.Fatal("embedder should not be called for an empty batch")
		return nil, nil
	}

	bp := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
	err := bp.Process(context.Background(), nil)
	require.NoError(t, err)
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, normalized[0], 0.001)
	assert.InDelta(t, 0.8, normalized[1], 0.001)

	zero := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)

	var empty []float32
	assert.Empty(t, NormalizeVector(empty))
}
