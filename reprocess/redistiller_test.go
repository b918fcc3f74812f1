package reprocess

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/distillery/ai"
	"github.com/poiesic/distillery/ai/mock"
	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/distill"
)

const testCardResponse = `{
	"title": "Distributed systems primer",
	"summary": "Notes on distributed systems fundamentals.",
	"key_points": ["consistency models", "failure detection"],
	"tags": ["distributed-systems"],
	"category": "concept",
	"difficulty": "intermediate",
	"action_items": ["read the Raft paper"]
}`

func newTestDistillPipeline(t *testing.T) *distill.Pipeline {
	t.Helper()

	gateway := mock.NewMockGateway()
	gateway.CompleteFunc = func(ctx context.Context, messages []ai.Message, temperature float64) (string, error) {
		return testCardResponse, nil
	}

	pipeline, err := distill.NewPipeline(gateway)
	require.NoError(t, err)
	return pipeline
}

func TestRedistiller_Run(t *testing.T) {
	repo := setupTestRepo(t)
	addTestRecords(t, repo, 5)

	ctx := context.Background()

	var buf bytes.Buffer
	redistiller := NewRedistiller(repo, newTestDistillPipeline(t), &Config{
		BatchSize:      2,
		ReportInterval: 2,
		MaxRetries:     1,
		RetryDelay:     time.Millisecond,
	}, &buf)

	err := redistiller.Run(ctx)
	require.NoError(t, err)

	count := 0
	err = repo.ForEachKnowledgeRecord(ctx, func(record *core.KnowledgeRecord) error {
		count++
		require.NotNil(t, record.Card, "record %d should have a card", record.Id)
		assert.Equal(t, "Distributed systems primer", record.Card.Title)
		assert.Equal(t, core.StatusCompleted, record.Status)
		assert.False(t, record.ProcessedAt.IsZero(), "processed time should be set")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	output := buf.String()
	assert.Contains(t, output, "Redistillation complete", "should report completion")
	assert.Contains(t, output, "Processed 5 records", "should report processed count")
}

func TestRedistiller_OnlyFailed(t *testing.T) {
	repo := setupTestRepo(t)
	records := addTestRecords(t, repo, 4)

	ctx := context.Background()

	records[0].Status = core.StatusFailed
	records[2].Status = core.StatusFailed
	_, err := repo.UpdateKnowledgeRecords(ctx, records[0], records[2])
	require.NoError(t, err)

	var buf bytes.Buffer
	redistiller := NewRedistiller(repo, newTestDistillPipeline(t), nil, &buf)
	redistiller.OnlyFailed = true

	err = redistiller.Run(ctx)
	require.NoError(t, err)

	completed := 0
	pending := 0
	err = repo.ForEachKnowledgeRecord(ctx, func(record *core.KnowledgeRecord) error {
		switch record.Status {
		case core.StatusCompleted:
			completed++
			require.NotNil(t, record.Card)
		case core.StatusPending:
			pending++
			assert.Nil(t, record.Card, "untouched record should have no card")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, completed, "only failed records should be redistilled")
	assert.Equal(t, 2, pending, "pending records should be skipped")

	assert.Contains(t, buf.String(), "skipped 2", "should report skipped count")
}

func TestRedistiller_UnconfiguredGatewayKeepsRecordsFailed(t *testing.T) {
	repo := setupTestRepo(t)
	records := addTestRecords(t, repo, 2)

	ctx := context.Background()

	for _, record := range records {
		record.Status = core.StatusFailed
	}
	_, err := repo.UpdateKnowledgeRecords(ctx, records...)
	require.NoError(t, err)

	gateway := mock.NewMockGateway()
	gateway.CompleteFunc = func(ctx context.Context, messages []ai.Message, temperature float64) (string, error) {
		return "", ai.NewGatewayError(ai.GatewayUnconfigured, "missing api key", nil)
	}
	pipeline, err := distill.NewPipeline(gateway)
	require.NoError(t, err)

	var buf bytes.Buffer
	redistiller := NewRedistiller(repo, pipeline, nil, &buf)
	redistiller.OnlyFailed = true

	require.NoError(t, redistiller.Run(ctx))

	// Retrying against a broken gateway must leave the records
	// eligible for the next retry pass.
	err = repo.ForEachKnowledgeRecord(ctx, func(record *core.KnowledgeRecord) error {
		assert.Equal(t, core.StatusFailed, record.Status)
		require.NotNil(t, record.Card)
		assert.Equal(t, "AI gateway not configured", record.Card.Title)
		return nil
	})
	require.NoError(t, err)
}

func TestRedistiller_EmptyDatabase(t *testing.T) {
	repo := setupTestRepo(t)

	var buf bytes.Buffer
	redistiller := NewRedistiller(repo, newTestDistillPipeline(t), nil, &buf)

	err := redistiller.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "0 records", "should report zero records")
}
