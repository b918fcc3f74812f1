// Package reprocess provides bulk maintenance over stored knowledge
// records: regenerating embeddings after an embedding model change, and
// redistilling cards after a prompt or chat model change.
//
// Both operations stream records in batches with progress reporting and
// retry failed model calls with exponential backoff.
package reprocess
