// Package mock provides deterministic test doubles for the ai interfaces.
//
// The default MockEmbedder builds vectors from per-token hash seeds with a
// small nickname table, so tests get model-like behavior (shared and aliased
// name tokens cluster, unrelated names land near-orthogonal) without any
// external service.
package mock
