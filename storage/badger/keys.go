package badger

import "github.com/poiesic/semkey/core"

// Key prefixes for stored data types
const (
	entryPrefix = "identr:"
)

// makeEntryKey generates the storage key for an index entry. The record
// key is MUS-encoded, which length-prefixes both components and keeps the
// mapping unambiguous regardless of what characters the identifiers hold.
func makeEntryKey(key core.RecordKey) []byte {
	size := core.KeyMUS.Size(key)
	buf := make([]byte, len(entryPrefix)+size)
	offset := copy(buf, entryPrefix)
	core.KeyMUS.Marshal(key, buf[offset:])
	return buf
}
