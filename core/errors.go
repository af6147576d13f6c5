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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a Record failed validation or decoding.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrMissingDataSource indicates the DATA_SOURCE field is absent or empty.
	ErrMissingDataSource = errors.New("data source cannot be empty")

	// ErrMissingRecordID indicates the RECORD_ID field is absent or empty.
	ErrMissingRecordID = errors.New("record id cannot be empty")

	// ErrInvalidEntry indicates an IndexEntry failed validation.
	ErrInvalidEntry = errors.New("invalid index entry")

	// ErrEmptyLabel indicates the entry Label field is empty.
	ErrEmptyLabel = errors.New("entry label cannot be empty")

	// ErrEmptyEmbedding indicates the entry Embedding field is empty.
	ErrEmptyEmbedding = errors.New("entry embedding cannot be empty")

	// ErrInvalidProvenance indicates an invalid Provenance value.
	ErrInvalidProvenance = errors.New("invalid provenance")
)
