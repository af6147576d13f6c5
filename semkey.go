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


package semkey

import (
	"context"
	"log/slog"

	"github.com/poiesic/semkey/ai"
	"github.com/poiesic/semkey/ai/openai"
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/index"
	"github.com/poiesic/semkey/ingestion"
	"github.com/poiesic/semkey/search"
	"github.com/poiesic/semkey/storage"
	"github.com/poiesic/semkey/storage/badger"
)

// System bundles the durable entry store, the in-memory vector index and
// the embedding provider behind one handle. Open it once per process;
// the index is rebuilt from the store before queries are served.
type System struct {
	backend   *badger.Backend
	entryRepo storage.EntryRepository
	idx       *index.Index
	provider  ai.Provider
	logger    *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig  *ai.Config
	provider  ai.Provider
	indexOpts []index.Option
	inMemory  bool
	logger    *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a ready-made AI provider instead of constructing
// one from config. Used by tests to inject the mock provider.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithIndexOptions forwards options to the vector index.
func WithIndexOptions(opts ...index.Option) SystemOption {
	return func(o *systemOptions) {
		o.indexOpts = append(o.indexOpts, opts...)
	}
}

// WithInMemoryStore keeps the entry store in memory. Nothing survives a
// restart; intended for tests and experiments.
func WithInMemoryStore() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// WithSystemLogger sets the logger for the system and its components.
func WithSystemLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open opens the entry store at filePath, rebuilds the vector index from
// it and returns a ready-to-query System.
func Open(ctx context.Context, filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	entryRepo, err := badger.NewEntryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			entryRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	indexOpts := append([]index.Option{index.WithDeferredReady(), index.WithLogger(options.logger)}, options.indexOpts...)
	idx, err := index.New(options.aiConfig.Dimension, indexOpts...)
	if err != nil {
		provider.Close()
		entryRepo.Close()
		backend.Close()
		return nil, err
	}

	s := &System{
		backend:   backend,
		entryRepo: entryRepo,
		idx:       idx,
		provider:  provider,
		logger:    options.logger,
	}

	if err := s.replay(ctx); err != nil {
		s.Close()
		return nil, err
	}
	idx.MarkReady()

	return s, nil
}

// replay loads every stored entry into the fresh index.
func (s *System) replay(ctx context.Context) error {
	var replayed int
	err := s.entryRepo.ScanEntries(ctx, func(entry *core.IndexEntry) error {
		if err := s.idx.Insert(entry.Key, entry.Label, entry.Embedding); err != nil {
			// A single bad entry (wrong dimension after a model change,
			// zero vector) should not keep the system down.
			s.logger.Warn("skipping unindexable entry",
				slog.String("key", entry.Key.String()),
				slog.String("err", err.Error()))
			return nil
		}
		replayed++
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("index rebuilt from entry store", slog.Int("entries", replayed))
	return nil
}

// Close releases the provider, repositories and backend.
func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.entryRepo.Close(); err != nil {
		s.logger.Error("error closing entry repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// EntryRepository exposes the durable entry store.
func (s *System) EntryRepository() storage.EntryRepository {
	return s.entryRepo
}

// Index exposes the vector index.
func (s *System) Index() *index.Index {
	return s.idx
}

// Provider exposes the embedding provider.
func (s *System) Provider() ai.Provider {
	return s.provider
}

// NewIngestionPipeline creates an ingestion pipeline over this system's
// store and index.
func (s *System) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.entryRepo, s.idx, s.provider, opts...)
}

// NewSearcher creates a searcher over this system's index.
func (s *System) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.idx, s.provider, opts...)
}
