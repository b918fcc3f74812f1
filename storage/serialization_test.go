package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/distillery/core"
)

func TestIDRoundTrip(t *testing.T) {
	ids := []core.ID{0, 1, 42, 1<<32 - 1, 1<<64 - 1}
	for _, id := range ids {
		data := MarshalID(id)
		require.Len(t, data, 8)

		got, err := UnmarshalID(data)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestUnmarshalIDRejectsBadLength(t *testing.T) {
	_, err := UnmarshalID([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestKnowledgeRecordRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &core.KnowledgeRecord{
		Id:              core.IDFromContent("roundtrip"),
		Title:           "Redis basics",
		OriginalContent: "Redis is an in-memory data store.",
		Images:          []string{"diagram.png"},
		SourceType:      core.SourceTypeManual,
		SourceURL:       "https://redis.io",
		Status:          core.StatusCompleted,
		Vector:          []float32{0.1, 0.2, 0.3},
		CreatedAt:       now,
		UpdatedAt:       now,
		ProcessedAt:     now,
		Card: &core.KnowledgeCard{
			Title:       "Redis basics",
			Summary:     "An in-memory data store used as cache and database.",
			KeyPoints:   []string{"single-threaded core"},
			Tags:        []string{"redis", "verified"},
			Category:    "database",
			Difficulty:  "beginner",
			ActionItems: []string{"try the tutorial"},
			RepoURL:     "https://github.com/redis/redis",
			QuickReference: &core.QuickReference{
				Install: "apt install redis",
				Run:     "redis-server",
			},
			ProsCons: &core.ProsCons{
				Pros: []string{"fast"},
				Cons: []string{"memory bound"},
			},
		},
	}

	data, err := MarshalKnowledgeRecord(record)
	require.NoError(t, err)

	got, err := UnmarshalKnowledgeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestKnowledgeRecordWithoutCard(t *testing.T) {
	record := &core.KnowledgeRecord{
		Id:              7,
		OriginalContent: "pending content",
		SourceType:      core.SourceTypeAPI,
		Status:          core.StatusPending,
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
		UpdatedAt:       time.Now().UTC().Truncate(time.Second),
	}

	data, err := MarshalKnowledgeRecord(record)
	require.NoError(t, err)

	got, err := UnmarshalKnowledgeRecord(data)
	require.NoError(t, err)
	assert.Nil(t, got.Card)
	assert.Equal(t, core.StatusPending, got.Status)
}

func TestUnmarshalKnowledgeRecordRejectsGarbage(t *testing.T) {
	_, err := UnmarshalKnowledgeRecord([]byte("not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
