package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestKnowledgeCard_Normalize(t *testing.T) {
	card := &KnowledgeCard{Title: "test"}
	card.Normalize()

	if card.KeyPoints == nil {
		t.Error("Normalize() left KeyPoints nil")
	}
	if card.Tags == nil {
		t.Error("Normalize() left Tags nil")
	}
	if card.ActionItems == nil {
		t.Error("Normalize() left ActionItems nil")
	}
}

func TestKnowledgeCard_Normalize_PreservesValues(t *testing.T) {
	card := &KnowledgeCard{
		Title:     "test",
		KeyPoints: []string{"a", "b"},
		Tags:      []string{"go"},
	}
	card.Normalize()

	if len(card.KeyPoints) != 2 {
		t.Errorf("Normalize() modified KeyPoints: got %d items", len(card.KeyPoints))
	}
	if len(card.Tags) != 1 {
		t.Errorf("Normalize() modified Tags: got %d items", len(card.Tags))
	}
}

func TestKnowledgeCard_HasTag(t *testing.T) {
	card := &KnowledgeCard{Tags: []string{"go", "verified"}}

	if !card.HasTag("verified") {
		t.Error("HasTag() = false for present tag")
	}
	if card.HasTag("rust") {
		t.Error("HasTag() = true for absent tag")
	}
}

func TestKnowledgeRecord_EmbeddingText(t *testing.T) {
	tests := []struct {
		name   string
		record KnowledgeRecord
		want   string
	}{
		{
			name: "card with title and summary",
			record: KnowledgeRecord{
				OriginalContent: "raw",
				Card:            &KnowledgeCard{Title: "React", Summary: "A JS library"},
			},
			want: "React\nA JS library",
		},
		{
			name: "card with summary only",
			record: KnowledgeRecord{
				OriginalContent: "raw",
				Card:            &KnowledgeCard{Summary: "A JS library"},
			},
			want: "A JS library",
		},
		{
			name: "no card falls back to raw content",
			record: KnowledgeRecord{
				OriginalContent: "raw content",
			},
			want: "raw content",
		},
		{
			name: "empty card falls back to raw content",
			record: KnowledgeRecord{
				OriginalContent: "raw content",
				Card:            &KnowledgeCard{},
			},
			want: "raw content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.EmbeddingText()
			if got != tt.want {
				t.Errorf("EmbeddingText() = %q, want %q", got, tt.want)
			}
		})
	}
}
