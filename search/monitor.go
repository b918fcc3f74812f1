package search

import (
	"iter"

	"github.com/poiesic/distillery/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(ids []uint64)
	FoundTaggedRecords(tag string, recordIds []uint64)
	AfterTagSearch(iter.Seq[uint64])
	AfterRecordRetrieval(records []*core.KnowledgeRecord)
	SemanticAndTagHit(record *core.KnowledgeRecord)
	SemanticHit(record *core.KnowledgeRecord)
	TagHit(record *core.KnowledgeRecord)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterSemanticSearch(_ []uint64)                 {}
func (n *noopMonitor) FoundTaggedRecords(_ string, _ []uint64)        {}
func (n *noopMonitor) AfterTagSearch(_ iter.Seq[uint64])              {}
func (n *noopMonitor) AfterRecordRetrieval(_ []*core.KnowledgeRecord) {}
func (n *noopMonitor) SemanticAndTagHit(_ *core.KnowledgeRecord)      {}
func (n *noopMonitor) SemanticHit(_ *core.KnowledgeRecord)            {}
func (n *noopMonitor) TagHit(_ *core.KnowledgeRecord)                 {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                  {}
