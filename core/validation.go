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

import "fmt"

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - DataSource must not be empty
//   - RecordID must not be empty
//   - Root must be a mapping
//
// NOT validated:
//   - Name fields (absence of a derivable name is a valid outcome, not an error)
func ValidateRecord(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if rec.Key.DataSource == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrMissingDataSource)
	}

	if rec.Key.RecordID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrMissingRecordID)
	}

	if rec.Root == nil || rec.Root.Kind != KindMapping {
		return fmt.Errorf("%w: root is not a mapping", ErrInvalidRecord)
	}

	return nil
}

// ValidateEntry validates an IndexEntry according to domain rules.
//
// Validation rules:
//   - Key must be a valid RecordKey
//   - Label must not be empty
//   - Embedding must not be empty
func ValidateEntry(entry *IndexEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Key.DataSource == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrMissingDataSource)
	}

	if entry.Key.RecordID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrMissingRecordID)
	}

	if entry.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyLabel)
	}

	if len(entry.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyEmbedding)
	}

	return nil
}

// ValidateProvenance validates that a Provenance has a valid value.
func ValidateProvenance(p Provenance) error {
	if p != ProvenanceExact && p != ProvenanceSemantic && p != ProvenanceBoth {
		return fmt.Errorf("%w: value %d", ErrInvalidProvenance, p)
	}
	return nil
}
