package ingestion

import (
	"fmt"

	"github.com/poiesic/semkey/core"
)

// Status is the terminal outcome of ingesting one record.
type Status int

const (
	// StatusIndexed means the record's name was embedded, persisted and
	// inserted into the vector index.
	StatusIndexed Status = iota + 1

	// StatusSkippedNoName means no usable name was found in the record.
	// This is a normal outcome for records about non-person entities.
	StatusSkippedNoName

	// StatusInvalid means the record failed validation and was not
	// processed.
	StatusInvalid

	// StatusEmbedFailed means the embedding call failed for this record
	// even after it was retried individually.
	StatusEmbedFailed

	// StatusWriteFailed means the embedding was produced but persisting
	// or indexing it failed.
	StatusWriteFailed
)

func (s Status) String() string {
	switch s {
	case StatusIndexed:
		return "indexed"
	case StatusSkippedNoName:
		return "skipped_no_name"
	case StatusInvalid:
		return "invalid"
	case StatusEmbedFailed:
		return "embed_failed"
	case StatusWriteFailed:
		return "write_failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Result reports what happened to a single ingested record. Name is
// populated whenever extraction succeeded, Err whenever the status is a
// failure.
type Result struct {
	Key    core.RecordKey
	Status Status
	Name   string
	Err    error
}
