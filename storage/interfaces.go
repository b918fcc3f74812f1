package storage

import (
	"context"
	"time"

	"github.com/poiesic/distillery/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds knowledge records similar to the given vector.
	// Returns matches with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first). Archived
	// records are excluded.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// KnowledgeRepository provides operations for managing knowledge records.
type KnowledgeRepository interface {
	Repository

	// AddKnowledgeRecords adds one or more knowledge records to storage.
	// Records with Id=0 get a content-based ID derived from their raw
	// material. Sets CreatedAt/UpdatedAt if not already set.
	// Returns ErrDuplicateKey if a record with the same ID exists.
	AddKnowledgeRecords(ctx context.Context, records ...*core.KnowledgeRecord) ([]*core.KnowledgeRecord, error)

	// UpdateKnowledgeRecords updates existing knowledge records.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateKnowledgeRecords(ctx context.Context, records ...*core.KnowledgeRecord) ([]*core.KnowledgeRecord, error)

	// DeleteKnowledgeRecords removes knowledge records by their IDs.
	// Also removes associated index entries.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteKnowledgeRecords(ctx context.Context, ids ...core.ID) error

	// GetKnowledgeRecord retrieves a single knowledge record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetKnowledgeRecord(ctx context.Context, id core.ID) (*core.KnowledgeRecord, error)

	// GetKnowledgeRecords retrieves multiple knowledge records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetKnowledgeRecords(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeRecord, error)

	// GetKnowledgeRecordsByDateRange retrieves records within a time range.
	// Returns records where start <= CreatedAt < end, ordered by creation time.
	GetKnowledgeRecordsByDateRange(ctx context.Context, start, end time.Time) ([]*core.KnowledgeRecord, error)

	// GetRecentKnowledgeRecords retrieves the N most recently created
	// records, newest first.
	GetRecentKnowledgeRecords(ctx context.Context, limit int) ([]*core.KnowledgeRecord, error)

	// GetKnowledgeRecordsByStatus retrieves IDs of records in the given
	// processing status.
	GetKnowledgeRecordsByStatus(ctx context.Context, status core.ProcessingStatus) ([]core.ID, error)

	// GetKnowledgeRecordsByTag retrieves IDs of records whose card
	// carries the given tag. Matching is case-insensitive.
	GetKnowledgeRecordsByTag(ctx context.Context, tag string) ([]core.ID, error)

	// ForEachKnowledgeRecord invokes fn for every stored record in key
	// order. Iteration stops at the first error from fn.
	ForEachKnowledgeRecord(ctx context.Context, fn func(record *core.KnowledgeRecord) error) error

	// CountKnowledgeRecords returns the total number of stored records.
	CountKnowledgeRecords(ctx context.Context) (int, error)
}
