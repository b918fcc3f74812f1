// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateKnowledgeRecord validates a KnowledgeRecord according to domain rules.
//
// Validation rules:
//   - At least one of OriginalContent (non-blank) or Images must be present
//   - SourceType must be a known value
//   - Status must be a known value
//
// NOT validated (populated by processors):
//   - Card (nil until distillation completes)
//   - Vector (empty until the embedding processor runs)
//   - ID (0 is valid from database sequences)
func ValidateKnowledgeRecord(record *KnowledgeRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidKnowledgeRecord)
	}

	if strings.TrimSpace(record.OriginalContent) == "" && len(record.Images) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeRecord, ErrNoContent)
	}

	if err := ValidateSourceType(record.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeRecord, err)
	}

	if err := ValidateStatus(record.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeRecord, err)
	}

	return nil
}

// ValidateKnowledgeCard validates a KnowledgeCard according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Required list fields must be non-nil (call Normalize first)
func ValidateKnowledgeCard(card *KnowledgeCard) error {
	if card == nil {
		return fmt.Errorf("%w: card is nil", ErrInvalidKnowledgeCard)
	}

	if card.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeCard, ErrEmptyTitle)
	}

	if card.KeyPoints == nil || card.Tags == nil || card.ActionItems == nil {
		return fmt.Errorf("%w: required list field is nil", ErrInvalidKnowledgeCard)
	}

	return nil
}

// ValidateSourceType validates that a SourceType has a valid value.
func ValidateSourceType(sourceType SourceType) error {
	switch sourceType {
	case SourceTypeManual, SourceTypeURL, SourceTypeFile, SourceTypeAPI, SourceTypeImage:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidSourceType, sourceType)
}

// ValidateStatus validates that a ProcessingStatus has a valid value.
func ValidateStatus(status ProcessingStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidStatus, status)
}
