package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/distillery/ai/mock"
	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/storage"
	"github.com/poiesic/distillery/storage/badger"
)

// queryVectors maps test texts to fixed unit vectors so similarity
// scores are predictable.
var queryVectors = map[string][]float32{
	"redis caching":    {1, 0, 0},
	"container builds": {0, 1, 0},
	"unrelated topic":  {0, 0, 1},
}

func newTestSearcher(t *testing.T) (*Searcher, storage.KnowledgeRepository) {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		if v, ok := queryVectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockGateway(), embedder)

	searcher, err := NewSearcher(repo, provider)
	require.NoError(t, err)
	return searcher, repo
}

func addRecord(t *testing.T, repo storage.KnowledgeRepository, content string, vector []float32, tags ...string) *core.KnowledgeRecord {
	t.Helper()

	record := &core.KnowledgeRecord{
		OriginalContent: content,
		SourceType:      core.SourceTypeManual,
		Vector:          vector,
	}
	if len(tags) > 0 {
		record.Card = &core.KnowledgeCard{
			Title: content, Summary: content, Category: "dev", Difficulty: "beginner",
			KeyPoints: []string{}, Tags: tags, ActionItems: []string{},
		}
	}

	added, err := repo.AddKnowledgeRecords(context.Background(), record)
	require.NoError(t, err)
	return added[0]
}

func TestNewSearcherValidation(t *testing.T) {
	_, err := NewSearcher(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	_, err = NewSearcher(repo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestFindSimilarSemanticOnly(t *testing.T) {
	searcher, repo := newTestSearcher(t)

	hit := addRecord(t, repo, "redis is great for caching", []float32{0.95, 0.05, 0})
	addRecord(t, repo, "docker container builds", []float32{0, 1, 0})

	results, err := searcher.FindSimilar(context.Background(), "redis caching", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, hit.Id, results[0].Record.Id)
}

func TestFindSimilarTagOnly(t *testing.T) {
	searcher, repo := newTestSearcher(t)

	// No vector, so only the tag index can surface this record.
	tagged := addRecord(t, repo, "notes about kubernetes networking", nil, "kubernetes")

	results, err := searcher.FindSimilar(context.Background(), "kubernetes", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tagged.Id, results[0].Record.Id)
	// Tag-only hits score a fixed 1.2 plus the verbatim boost.
	assert.InDelta(t, 1.5, float64(results[0].Score), 1e-6)
}

func TestFindSimilarTagIgnoresCase(t *testing.T) {
	searcher, repo := newTestSearcher(t)

	// The card carries a capitalized tag while query tokens arrive
	// lowercased; the tag index folds both sides.
	tagged := addRecord(t, repo, "notes about kubernetes networking", nil, "Kubernetes")

	results, err := searcher.FindSimilar(context.Background(), "Kubernetes", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tagged.Id, results[0].Record.Id)
}

func TestFindSimilarCombinedScoresHigher(t *testing.T) {
	searcher, repo := newTestSearcher(t)

	both := addRecord(t, repo, "redis cache patterns", []float32{1, 0, 0}, "redis")
	semanticOnly := addRecord(t, repo, "memcached notes", []float32{0.9, 0.1, 0})

	results, err := searcher.FindSimilar(context.Background(), "redis caching", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, both.Id, results[0].Record.Id)
	assert.Equal(t, semanticOnly.Id, results[1].Record.Id)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFindSimilarNoMatches(t *testing.T) {
	searcher, repo := newTestSearcher(t)

	addRecord(t, repo, "docker container builds", []float32{0, 1, 0})

	results, err := searcher.FindSimilar(context.Background(), "unrelated topic", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilarSkipsArchived(t *testing.T) {
	searcher, repo := newTestSearcher(t)

	record := addRecord(t, repo, "redis caching strategies", []float32{1, 0, 0})
	record.IsArchived = true
	_, err := repo.UpdateKnowledgeRecords(context.Background(), record)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "redis caching", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilarRespectsMaxHits(t *testing.T) {
	searcher, repo := newTestSearcher(t)

	addRecord(t, repo, "redis caching intro", []float32{1, 0, 0})
	addRecord(t, repo, "redis caching advanced", []float32{0.98, 0.02, 0})
	addRecord(t, repo, "redis caching patterns", []float32{0.95, 0.05, 0})

	results, err := searcher.FindSimilar(context.Background(), "redis caching", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestContainsAllTokens(t *testing.T) {
	tests := []struct {
		document string
		query    string
		want     bool
	}{
		{"Redis is an in-memory data store", "redis store", true},
		{"Redis is an in-memory data store", "redis postgres", false},
		{"The quick brown fox", "the a an", false}, // only stop words
		{"", "redis", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, containsAllTokens(tt.document, tt.query), "doc=%q query=%q", tt.document, tt.query)
	}
}
