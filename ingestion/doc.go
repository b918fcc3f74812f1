// Package ingestion provides pipeline orchestration for capturing
// knowledge records.
//
// The Pipeline type manages the ingestion workflow:
//   - Storing raw material as pending records
//   - Distilling records into knowledge cards asynchronously
//   - Generating embeddings over the distilled cards asynchronously
//
// Processing is performed concurrently using worker pools. Errors
// during async processing are logged but do not fail the ingestion
// operation.
package ingestion
