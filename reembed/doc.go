// Package reembed regenerates the embeddings of every stored entry with
// a new or updated embedding model, writing the fresh vectors back to
// the durable store and the live index.
//
// Entries are processed in batches with progress reporting and
// exponential-backoff retry around the embedding API, so a large corpus
// can be migrated in one run.
package reembed
