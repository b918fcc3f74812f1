package badger

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/distillery/core"
)

// Key prefixes for different data types
const (
	knowledgeRecordPrefix     = "knorec"
	knowledgeRecordDatePrefix = "knorecd"
	knowledgeStatusPrefix     = "knorecs"
	knowledgeTagPrefix        = "knorect"
)

// makeKnowledgeRecordKey generates a key for a knowledge record by ID.
func makeKnowledgeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", knowledgeRecordPrefix, id))
}

// makeKnowledgeDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeKnowledgeDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := []byte(knowledgeRecordDatePrefix + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic sort matches chronological order
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialKnowledgeDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialKnowledgeDateKey(timestamp time.Time) []byte {
	prefix := []byte(knowledgeRecordDatePrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeKnowledgeStatusKey generates a composite key for the status index.
// Format: prefix:status:id
func makeKnowledgeStatusKey(status core.ProcessingStatus, id core.ID) []byte {
	prefix := []byte(knowledgeStatusPrefix + ":" + string(status) + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialKnowledgeStatusKey generates a partial key for status queries.
func makePartialKnowledgeStatusKey(status core.ProcessingStatus) []byte {
	return []byte(knowledgeStatusPrefix + ":" + string(status) + ":")
}

// makeKnowledgeTagKey generates a composite key for the tag index.
// Tags are indexed lowercased so lookups are case-insensitive.
// Format: prefix:tag:id
func makeKnowledgeTagKey(tag string, id core.ID) []byte {
	prefix := []byte(knowledgeTagPrefix + ":" + strings.ToLower(tag) + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialKnowledgeTagKey generates a partial key for tag queries.
func makePartialKnowledgeTagKey(tag string) []byte {
	return []byte(knowledgeTagPrefix + ":" + strings.ToLower(tag) + ":")
}
