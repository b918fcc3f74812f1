package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceType identifies where a knowledge record's raw material came from.
type SourceType string

const (
	SourceTypeManual SourceType = "manual"
	SourceTypeURL    SourceType = "url"
	SourceTypeFile   SourceType = "file"
	SourceTypeAPI    SourceType = "api"
	SourceTypeImage  SourceType = "image"
)

// ProcessingStatus tracks how far a knowledge record has progressed
// through distillation.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// LearningResource is an external resource reference attached to a card.
type LearningResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// QuickReference holds the commands a reader reaches for first.
type QuickReference struct {
	Install string `json:"install,omitempty"`
	Run     string `json:"run,omitempty"`
	Docs    string `json:"docs,omitempty"`
}

// ProsCons lists strengths and limitations side by side.
type ProsCons struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// KnowledgeCard is the terminal artifact of the distillation pipeline.
//
// The required fields (Title through ActionItems) are always present with
// valid-typed defaults, even when every pipeline stage failed. Callers
// never see a partially-typed card; call Normalize before handing one out.
type KnowledgeCard struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	ActionItems []string `json:"action_items"`

	// Usage and deployment info (for code/projects)
	UsageExample    string `json:"usage_example,omitempty"`
	DeploymentGuide string `json:"deployment_guide,omitempty"`
	IsOpenSource    bool   `json:"is_open_source,omitempty"`
	RepoURL         string `json:"repo_url,omitempty"`

	// Richer optional bundle
	OfficialDocs      string             `json:"official_docs,omitempty"`
	QuickReference    *QuickReference    `json:"quick_reference,omitempty"`
	RelatedTopics     []string           `json:"related_topics,omitempty"`
	LearningResources []LearningResource `json:"learning_resources,omitempty"`
	ProsCons          *ProsCons          `json:"pros_cons,omitempty"`
	BestPractices     []string           `json:"best_practices,omitempty"`
	CommonMistakes    []string           `json:"common_mistakes,omitempty"`
}

// Normalize replaces nil slices with empty ones so that every required
// field carries a valid-typed value.
func (c *KnowledgeCard) Normalize() {
	if c.KeyPoints == nil {
		c.KeyPoints = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.ActionItems == nil {
		c.ActionItems = []string{}
	}
}

// HasTag reports whether the card carries the given tag.
func (c *KnowledgeCard) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// KnowledgeRecord represents a stored knowledge entry.
// It owns the raw input material, the distilled card once processing
// completes, and an embedding vector for semantic search.
type KnowledgeRecord struct {
	Id              ID               `json:"id"`
	Title           string           `json:"title"`
	OriginalContent string           `json:"original_content"`
	Images          []string         `json:"images,omitempty"` // Image references attached to the record
	SourceType      SourceType       `json:"source_type"`
	SourceURL       string           `json:"source_url,omitempty"`
	Card            *KnowledgeCard   `json:"card,omitempty"` // Populated once distillation completes
	Status          ProcessingStatus `json:"status"`
	Vector          []float32        `json:"vector,omitempty"` // Embedding over title+summary (populated by processors)
	IsArchived      bool             `json:"is_archived,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	ProcessedAt     time.Time        `json:"processed_at,omitempty"`
}

// EmbeddingText returns the text a record's embedding is computed from.
// Prefers the distilled card's title and summary over the raw content.
func (r *KnowledgeRecord) EmbeddingText() string {
	if r.Card != nil && (r.Card.Title != "" || r.Card.Summary != "") {
		if r.Card.Title == "" {
			return r.Card.Summary
		}
		return r.Card.Title + "\n" + r.Card.Summary
	}
	return r.OriginalContent
}

// SimilarityMatch represents a knowledge record match from vector similarity search.
type SimilarityMatch struct {
	RecordId ID
	Score    float32
}

// SearchResult represents a search result with the full record and relevance score.
type SearchResult struct {
	Record *KnowledgeRecord
	Score  float32
}
