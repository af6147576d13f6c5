package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a 64-bit identifier for index entries, derived from a RecordKey.
type ID uint64

// RecordKey is the composite identifier of a source record: the data source
// code plus the record id assigned by that source. It is unique system-wide.
type RecordKey struct {
	DataSource string
	RecordID   string
}

// String returns the key in "DATA_SOURCE:RECORD_ID" form.
func (k RecordKey) String() string {
	return k.DataSource + ":" + k.RecordID
}

// IDFromKey generates a deterministic ID from a RecordKey using BLAKE2b hashing.
// The same key always produces the same ID.
func IDFromKey(key RecordKey) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(key.DataSource))
	h.Write([]byte{0x1f})
	h.Write([]byte(key.RecordID))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IndexEntry is the (key, label, embedding) triple owned by the vector index
// and persisted in the durable entry store. Label is the canonical name the
// embedding was computed from.
type IndexEntry struct {
	Key        RecordKey
	Label      string
	Embedding  []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Provenance records which candidate-generation method produced a candidate.
type Provenance int

const (
	// ProvenanceExact marks candidates produced by exact/phonetic matching.
	ProvenanceExact Provenance = iota + 1
	// ProvenanceSemantic marks candidates produced by vector similarity.
	ProvenanceSemantic
	// ProvenanceBoth marks candidates produced by both methods.
	ProvenanceBoth
)

// String returns the provenance name used in logs and CLI output.
func (p Provenance) String() string {
	switch p {
	case ProvenanceExact:
		return "exact"
	case ProvenanceSemantic:
		return "semantic"
	case ProvenanceBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Candidate is a record proposed as a possible match for a query, before
// scoring. Similarity is populated only when the semantic path found the
// candidate (cosine similarity, 0.0-1.0).
type Candidate struct {
	Key        RecordKey
	Provenance Provenance
	Similarity float32
}

// CandidateSet is a set of candidates keyed by record identity. It is a set,
// not a ranked list; ranking is the resolution engine's job.
type CandidateSet map[RecordKey]Candidate

// Clone returns a structurally equal copy of the set.
func (s CandidateSet) Clone() CandidateSet {
	out := make(CandidateSet, len(s))
	for k, c := range s {
		out[k] = c
	}
	return out
}

// ExactSet builds a CandidateSet of provenance ProvenanceExact from keys.
// This is the shape in which an external exact/phonetic matcher hands its
// candidates to the merger.
func ExactSet(keys ...RecordKey) CandidateSet {
	out := make(CandidateSet, len(keys))
	for _, k := range keys {
		out[k] = Candidate{Key: k, Provenance: ProvenanceExact}
	}
	return out
}
