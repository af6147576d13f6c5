package reembed

import (
	"context"

	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/storage"
)

const (
	// DefaultBatchSize is the default number of entries per batch
	DefaultBatchSize = 100
)

// EntryIterator walks every stored entry in batches.
type EntryIterator struct {
	repo      storage.EntryRepository
	batchSize int
}

// NewEntryIterator creates a new entry iterator.
// batchSize: number of entries per batch (must be > 0)
func NewEntryIterator(repo storage.EntryRepository, batchSize int) *EntryIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &EntryIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach scans the store and calls fn once per full batch, plus once for
// the final partial batch. Iteration stops on the first error from fn or
// when ctx is cancelled.
func (it *EntryIterator) ForEach(ctx context.Context, fn func([]*core.IndexEntry) error) error {
	batch := make([]*core.IndexEntry, 0, it.batchSize)

	err := it.repo.ScanEntries(ctx, func(entry *core.IndexEntry) error {
		batch = append(batch, entry)
		if len(batch) < it.batchSize {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	})
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}
