package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/semkey/ai"
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/extract"
	"github.com/poiesic/semkey/index"
	"github.com/poiesic/semkey/storage"
)

const defaultBatchSize = 32

// Pipeline orchestrates record ingestion: name extraction, embedding,
// durable storage and index insertion. Batches are embedded concurrently
// on a worker pool; within a batch the store write happens before the
// index insert, so the store never lags the index.
type Pipeline struct {
	entries   storage.EntryRepository
	index     *index.Index
	embedder  ai.Embedder
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many names are sent to the embedder per call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	entries storage.EntryRepository,
	idx *index.Index,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if entries == nil {
		return nil, ErrEntryRepositoryRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		entries:   entries,
		index:     idx,
		embedder:  provider.Embedder(),
		pool:      pool,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// pending links an extracted name back to its result slot.
type pending struct {
	slot int
	name string
}

// Ingest processes records and returns one result per record, in input
// order. A record's failure is reported in its result rather than as an
// error; the returned error covers only pipeline-level problems.
func (p *Pipeline) Ingest(ctx context.Context, records ...*core.Record) ([]*Result, error) {
	results := make([]*Result, len(records))

	var named []pending
	for i, rec := range records {
		if err := core.ValidateRecord(rec); err != nil {
			results[i] = &Result{Status: StatusInvalid, Err: err}
			continue
		}
		name, ok := extract.Name(rec)
		if !ok {
			results[i] = &Result{Key: rec.Key, Status: StatusSkippedNoName}
			continue
		}
		results[i] = &Result{Key: rec.Key, Name: name}
		named = append(named, pending{slot: i, name: name})
	}

	var wg sync.WaitGroup
	for start := 0; start < len(named); start += p.batchSize {
		end := start + p.batchSize
		if end > len(named) {
			end = len(named)
		}
		batch := named[start:end]

		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			p.processBatch(ctx, batch, results)
		}); err != nil {
			wg.Done()
			for _, item := range batch {
				results[item.slot].Status = StatusWriteFailed
				results[item.slot].Err = err
			}
		}
	}
	wg.Wait()

	p.logSummary(results)
	return results, nil
}

// Delete removes records from both the durable store and the index.
// Returns storage.ErrNotFound if any key is not stored. A key present in
// the store but absent from the index is tolerated; the store is the
// system of record.
func (p *Pipeline) Delete(ctx context.Context, keys ...core.RecordKey) error {
	if err := p.entries.DeleteEntries(ctx, keys...); err != nil {
		return err
	}

	for _, key := range keys {
		if err := p.index.Delete(key); err != nil {
			p.logger.Warn("entry deleted from store but not indexed",
				slog.String("key", key.String()),
				slog.String("err", err.Error()))
		}
	}
	return nil
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// processBatch embeds one batch of names and writes the successful ones
// through to the store and index.
func (p *Pipeline) processBatch(ctx context.Context, batch []pending, results []*Result) {
	texts := make([]string, len(batch))
	for j, item := range batch {
		texts[j] = item.name
	}

	items := ai.EmbedEach(ctx, p.embedder, texts)

	entries := make([]*core.IndexEntry, 0, len(batch))
	slots := make([]int, 0, len(batch))
	for j, item := range items {
		r := results[batch[j].slot]
		if item.Err != nil {
			r.Status = StatusEmbedFailed
			r.Err = item.Err
			continue
		}
		entries = append(entries, &core.IndexEntry{
			Key:       r.Key,
			Label:     r.Name,
			Embedding: item.Vector,
		})
		slots = append(slots, batch[j].slot)
	}

	if len(entries) == 0 {
		return
	}

	// Batch write first; on failure retry entries one at a time so a
	// single bad entry or a transaction conflict only fails its own
	// record. Mirrors the embedding fallback in ai.EmbedEach.
	if _, err := p.entries.PutEntries(ctx, entries...); err != nil {
		p.logger.Warn("batch persist failed, retrying per entry", slog.String("err", err.Error()))
		for k, entry := range entries {
			if _, err := p.entries.PutEntries(ctx, entry); err != nil {
				p.logger.Error("error persisting entry",
					slog.String("key", entry.Key.String()),
					slog.String("err", err.Error()))
				r := results[slots[k]]
				r.Status = StatusWriteFailed
				r.Err = err
			}
		}
	}

	for k, entry := range entries {
		r := results[slots[k]]
		if r.Status == StatusWriteFailed {
			continue
		}
		if err := p.index.Insert(entry.Key, entry.Label, entry.Embedding); err != nil {
			r.Status = StatusWriteFailed
			r.Err = err
			continue
		}
		r.Status = StatusIndexed
	}
}

func (p *Pipeline) logSummary(results []*Result) {
	counts := make(map[Status]int, 5)
	for _, r := range results {
		counts[r.Status]++
	}

	p.logger.Info("ingest batch complete",
		slog.Int("records", len(results)),
		slog.Int("indexed", counts[StatusIndexed]),
		slog.Int("skipped_no_name", counts[StatusSkippedNoName]),
		slog.Int("invalid", counts[StatusInvalid]),
		slog.Int("embed_failed", counts[StatusEmbedFailed]),
		slog.Int("write_failed", counts[StatusWriteFailed]))
}
