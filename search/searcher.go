package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/semkey/ai"
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/extract"
	"github.com/poiesic/semkey/index"
	"github.com/poiesic/semkey/merge"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a semantic
	// candidate.
	DefaultThreshold = 0.75

	// DefaultLimit caps how many semantic candidates one query adds.
	DefaultLimit = 10
)

// Scorer ranks a merged candidate set against the query record. It is
// implemented by the surrounding entity-resolution engine; candidate
// generation itself never scores beyond raw similarity.
type Scorer interface {
	Score(ctx context.Context, query *core.Record, candidates core.CandidateSet) (core.CandidateSet, error)
}

// Searcher generates match candidates for query records.
type Searcher struct {
	index     *index.Index
	embedder  ai.Embedder
	threshold float32
	limit     int
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithThreshold sets the minimum similarity for semantic candidates.
// Default is 0.75.
func WithThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		s.threshold = threshold
		return nil
	}
}

// WithLimit caps semantic candidates per query.
// Default is 10.
func WithLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit < 1 {
			limit = 1
		}
		s.limit = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(idx *index.Index, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		index:     idx,
		embedder:  provider.Embedder(),
		threshold: DefaultThreshold,
		limit:     DefaultLimit,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Candidates resolves a query record into a merged candidate set. The
// exact set, produced by the caller's deterministic matcher, is always
// carried through; the semantic path adds neighbours of the query's
// extracted name. A query without a usable name yields the exact set
// unchanged.
func (s *Searcher) Candidates(ctx context.Context, query *core.Record, exact core.CandidateSet) (core.CandidateSet, error) {
	return s.CandidatesWithMonitor(ctx, query, exact, nil)
}

// CandidatesWithMonitor is Candidates with stage callbacks.
func (s *Searcher) CandidatesWithMonitor(ctx context.Context, query *core.Record, exact core.CandidateSet, monitor Monitor) (core.CandidateSet, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	name, ok := extract.Name(query)
	if !ok {
		monitor.NoName()
		s.logger.Debug("query record has no usable name, exact candidates only",
			slog.String("key", query.Key.String()))
		merged := exact.Clone()
		monitor.Finish(merged)
		return merged, nil
	}
	monitor.Start(name)

	hits, err := s.similar(ctx, name, monitor)
	if err != nil {
		return nil, err
	}

	merged := merge.Candidates(exact, hits)
	for _, candidate := range merged {
		switch candidate.Provenance {
		case core.ProvenanceBoth:
			monitor.BothHit(candidate)
		case core.ProvenanceSemantic:
			monitor.SemanticHit(candidate)
		default:
			monitor.ExactHit(candidate)
		}
	}

	monitor.Finish(merged)
	return merged, nil
}

// FindSimilar embeds a name and returns its nearest indexed entries,
// filtered by the configured threshold and limit.
func (s *Searcher) FindSimilar(ctx context.Context, name string) ([]index.Hit, error) {
	return s.similar(ctx, name, &noopMonitor{})
}

func (s *Searcher) similar(ctx context.Context, name string, monitor Monitor) ([]index.Hit, error) {
	embedding, err := s.embedder.EmbedText(ctx, name)
	if err != nil {
		s.logger.Error("error generating embedding for query name", slog.String("err", err.Error()))
		return nil, err
	}
	monitor.AfterEmbedding(embedding)

	result, err := s.index.Query(ctx, embedding, s.threshold, s.limit)
	if err != nil {
		return nil, err
	}
	if result.Truncated {
		s.logger.Warn("index query hit its deadline, results may be incomplete",
			slog.Int("hits", len(result.Hits)))
	}
	monitor.AfterSemanticSearch(result.Hits, result.Truncated)

	return result.Hits, nil
}
