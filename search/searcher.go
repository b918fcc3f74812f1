package search

import (
	"context"
	"log/slog"
	"maps"
	"sort"
	"strings"

	"github.com/poiesic/distillery/ai"
	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/storage"
)

// similarityThreshold is the minimum cosine similarity for a semantic hit.
const similarityThreshold = 0.60

// Searcher provides hybrid semantic and tag-based search over
// knowledge records.
type Searcher struct {
	repository storage.KnowledgeRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	repository storage.KnowledgeRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   provider.Embedder(),
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for knowledge records similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for knowledge records similar to the
// query with monitoring. The monitor receives callbacks at each stage
// of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// 1. Perform semantic search
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.repository.FindSimilar(ctx, embedding, similarityThreshold, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar records", "err", err)
		return nil, err
	}

	// Track semantic results
	semanticSet := make(map[uint64]bool)
	semanticScores := make(map[uint64]float32)
	semanticIds := make([]uint64, 0, len(matches))
	for _, match := range matches {
		semanticSet[uint64(match.Record.Id)] = true
		semanticScores[uint64(match.Record.Id)] = match.Score
		semanticIds = append(semanticIds, uint64(match.Record.Id))
	}
	monitor.AfterSemanticSearch(semanticIds)

	// 2. Find records whose card tags match query words
	taggedSet := make(map[uint64]bool)
	for _, word := range queryTokens(query) {
		recordIds, err := s.repository.GetKnowledgeRecordsByTag(ctx, word)
		if err != nil {
			s.logger.Warn("failed to get records for tag", "tag", word, "err", err)
			continue
		}
		if len(recordIds) > 0 {
			ids := make([]uint64, len(recordIds))
			for i, id := range recordIds {
				ids[i] = uint64(id)
			}
			monitor.FoundTaggedRecords(word, ids)
		}
		for _, recordId := range recordIds {
			taggedSet[uint64(recordId)] = true
		}
	}
	monitor.AfterTagSearch(maps.Keys(taggedSet))

	// 3. Combine and score results
	allIds := make(map[uint64]bool)
	for id := range semanticSet {
		allIds[id] = true
	}
	for id := range taggedSet {
		allIds[id] = true
	}

	if len(allIds) == 0 {
		return []*core.SearchResult{}, nil
	}

	uniqueIds := make([]core.ID, 0, len(allIds))
	for id := range allIds {
		uniqueIds = append(uniqueIds, core.ID(id))
	}

	records, err := s.repository.GetKnowledgeRecords(ctx, uniqueIds...)
	if err != nil {
		s.logger.Error("error retrieving knowledge records", "recordCount", len(uniqueIds), "err", err)
		return nil, err
	}
	monitor.AfterRecordRetrieval(records)

	// Score and build results
	results := make([]*core.SearchResult, 0, len(records))

	for _, record := range records {
		if record == nil || record.IsArchived {
			continue
		}

		inSemantic := semanticSet[uint64(record.Id)]
		inTagged := taggedSet[uint64(record.Id)]

		var score float32
		if inSemantic && inTagged {
			// In both: boost by 1.5x, weighted by similarity score
			score = 1.5 * semanticScores[uint64(record.Id)]
			monitor.SemanticAndTagHit(record)
		} else if inTagged {
			// Tag only: 1.2
			score = 1.2
			monitor.TagHit(record)
		} else {
			// Semantic only: 1.0, weighted by similarity score
			score = 1.0 * semanticScores[uint64(record.Id)]
			monitor.SemanticHit(record)
		}

		// Apply verbatim match boost
		if containsAllTokens(recordText(record), query) {
			score += 0.3
		}

		results = append(results, &core.SearchResult{
			Record: record,
			Score:  score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}

// recordText gathers the searchable text of a record: the card's title,
// summary and key points when present, plus the raw content.
func recordText(record *core.KnowledgeRecord) string {
	parts := []string{record.Title, record.OriginalContent}
	if record.Card != nil {
		parts = append(parts, record.Card.Title, record.Card.Summary)
		parts = append(parts, record.Card.KeyPoints...)
	}
	return strings.Join(parts, "\n")
}
