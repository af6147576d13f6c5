package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/semkey/ai"
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/index"
	"github.com/poiesic/semkey/storage"
)

// BatchProcessor re-embeds one batch of entries and writes the new
// vectors back to the store and, when an index is attached, the index.
type BatchProcessor struct {
	repo           storage.EntryRepository
	idx            *index.Index
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor. idx may be nil for
// store-only migrations where the index is rebuilt on next startup.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.EntryRepository, idx *index.Index, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		idx:            idx,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process re-embeds the labels of a batch of entries and persists the
// result.
func (bp *BatchProcessor) Process(ctx context.Context, entries []*core.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Label
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(entries) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(entries), len(embeddings))
	}

	for i := range entries {
		entries[i].Embedding = embeddings[i]
	}

	if _, err := bp.repo.PutEntries(ctx, entries...); err != nil {
		return fmt.Errorf("failed to update entries: %w", err)
	}

	if bp.idx != nil {
		for _, entry := range entries {
			if err := bp.idx.Insert(entry.Key, entry.Label, entry.Embedding); err != nil {
				return fmt.Errorf("failed to reindex %s: %w", entry.Key, err)
			}
		}
	}

	return nil
}
