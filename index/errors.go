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


package index

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexUnavailable is returned by Query before the index has been
	// marked ready, i.e. while entries are still being replayed from the
	// durable store.
	ErrIndexUnavailable = errors.New("index not ready")

	// ErrDegenerateVector is returned when a vector has zero magnitude and
	// therefore no defined cosine similarity to anything.
	ErrDegenerateVector = errors.New("vector has zero magnitude")

	// ErrEntryNotFound is returned by Delete when the key is not indexed.
	ErrEntryNotFound = errors.New("entry not found in index")

	// ErrQueryTimeout is returned when the query deadline expired before
	// any graph traversal could begin.
	ErrQueryTimeout = errors.New("query deadline expired before search started")

	// ErrInvalidOptions is returned by New for out-of-range parameters.
	ErrInvalidOptions = errors.New("invalid index options")
)

// DimensionMismatchError reports a vector whose length does not match the
// dimensionality the index was built with.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
