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

// Package index provides an in-memory approximate nearest neighbour index
// over name embeddings, keyed by record identity.
//
// The index is a hierarchical navigable small world (HNSW) graph using
// cosine similarity. Re-inserting a key replaces its previous vector:
// the old graph node is tombstoned and a fresh node is linked in, so
// queries only ever surface the latest embedding for a record. Tombstoned
// nodes stay in the graph as traversal waypoints until the process
// restarts and the index is rebuilt from the entry store.
//
// All methods are safe for concurrent use. Queries honour context
// deadlines: a search that runs out of time returns the hits gathered so
// far with the Truncated flag set.
package index
