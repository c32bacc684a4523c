package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/simcheck/core"
)

// Key prefixes for different data types
const (
	checkRecordPrefix  = "chkrec"
	checkQueuePrefix   = "chkq"
	checkReportPrefix  = "chkrep"
	sourceRecordPrefix = "srcrec"
	sourceTypePrefix   = "srcty"
)

// makeCheckKey generates a key for a check record by ID.
func makeCheckKey(id core.CheckID) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkRecordPrefix, id))
}

// makeReportKey generates a key for a check's report.
func makeReportKey(id core.CheckID) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkReportPrefix, id))
}

// makeCheckQueueKey generates a composite key for the pending queue.
// Format: prefix:createdAt:checkID
func makeCheckQueueKey(createdAt time.Time, id core.CheckID) []byte {
	prefix := checkQueuePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + 16 // 8 bytes for timestamp + 16 bytes for UUID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort yields oldest-first
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id[:])
	return buf
}

// queueKeyCheckID extracts the check ID from a queue key.
func queueKeyCheckID(key []byte) (core.CheckID, bool) {
	var id core.CheckID
	if len(key) < 16 {
		return id, false
	}
	copy(id[:], key[len(key)-16:])
	return id, true
}

// makeSourceKey generates a key for a source record by ID.
func makeSourceKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sourceRecordPrefix, id))
}

// makeSourceTypeKey generates a composite key for the source type index.
// Format: prefix:type:sourceID
func makeSourceTypeKey(sourceType core.SourceType, id core.ID) []byte {
	prefix := makePartialSourceTypeKey(sourceType)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialSourceTypeKey generates a partial key for type-scoped scans.
func makePartialSourceTypeKey(sourceType core.SourceType) []byte {
	return []byte(fmt.Sprintf("%s:%d:", sourceTypePrefix, sourceType))
}
