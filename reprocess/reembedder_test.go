package reprocess

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/distillery/ai/mock"
	"github.com/poiesic/distillery/core"
)

func TestReembedder_Run(t *testing.T) {
	repo := setupTestRepo(t)
	addTestRecords(t, repo, 10)

	ctx := context.Background()

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reembedder := NewReembedder(repo, embedder, config, &buf)
	err := reembedder.Run(ctx)
	require.NoError(t, err)

	count := 0
	err = repo.ForEachKnowledgeRecord(ctx, func(record *core.KnowledgeRecord) error {
		count++
		require.NotEmpty(t, record.Vector, "record %d should have embedding", record.Id)

		var magnitude float32
		for _, v := range record.Vector {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	output := buf.String()
	assert.Contains(t, output, "10/10", "should show completion")
	assert.Contains(t, output, "Reembedding complete", "should report completion")
}

func TestReembedder_EmptyDatabase(t *testing.T) {
	repo := setupTestRepo(t)

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), DefaultConfig(), &buf)
	err := reembedder.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "0 records", "should report zero records")
}

func TestReembedder_NilConfigUsesDefaults(t *testing.T) {
	repo := setupTestRepo(t)

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), nil, &buf)
	require.NotNil(t, reembedder.config)
	assert.Equal(t, DefaultConfig().BatchSize, reembedder.config.BatchSize)
}

func TestReembedder_ContextCancellation(t *testing.T) {
	repo := setupTestRepo(t)
	addTestRecords(t, repo, 10)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}

	var buf bytes.Buffer
	config := &Config{BatchSize: 2, ReportInterval: 2, MaxRetries: 1, RetryDelay: time.Millisecond}
	reembedder := NewReembedder(repo, embedder, config, &buf)

	err := reembedder.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, calls, 3, "should stop shortly after cancellation")
}
