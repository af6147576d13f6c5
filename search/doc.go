// Package search resolves a query record into a candidate set. It runs
// the semantic half of candidate generation (name extraction, embedding,
// vector index query) and merges the hits with the exact-match
// candidates supplied by the caller's deterministic matcher. A Monitor
// can observe each stage, and a Scorer can rank the merged set.
package search
