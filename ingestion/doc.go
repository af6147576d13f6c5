// Package ingestion turns raw source records into indexed name
// embeddings. For each record it extracts the best available name,
// embeds it, persists the entry to the durable store and inserts it into
// the vector index, reporting a per-record outcome. Records without a
// usable name are skipped, and one record's failure never blocks the
// rest of its batch.
package ingestion
