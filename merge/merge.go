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

// Package merge combines exact-match candidates with semantic neighbours
// into a single deduplicated candidate set for downstream scoring.
package merge

import (
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/index"
)

// Candidates unions the exact-match set with semantic index hits.
//
// A record found only by exact matching keeps ProvenanceExact; one found
// only by the index carries ProvenanceSemantic and its similarity; one
// found by both is promoted to ProvenanceBoth, keeping the similarity
// from the semantic hit. Neither input is mutated, and the result is
// independent of the inputs: merging an empty hit list returns a copy
// structurally equal to the exact set.
func Candidates(exact core.CandidateSet, semantic []index.Hit) core.CandidateSet {
	merged := exact.Clone()

	for _, hit := range semantic {
		if existing, ok := merged[hit.Key]; ok {
			existing.Provenance = core.ProvenanceBoth
			existing.Similarity = hit.Similarity
			merged[hit.Key] = existing
			continue
		}
		merged[hit.Key] = core.Candidate{
			Key:        hit.Key,
			Provenance: core.ProvenanceSemantic,
			Similarity: hit.Similarity,
		}
	}

	return merged
}
