package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/semkey/ai/mock"
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/index"
)

func queryRecord(id string, fields ...core.Field) *core.Record {
	base := []core.Field{
		{Name: "DATA_SOURCE", Value: core.StringValue("SEARCH")},
		{Name: "RECORD_ID", Value: core.StringValue(id)},
	}
	return &core.Record{
		Key:  core.RecordKey{DataSource: "SEARCH", RecordID: id},
		Root: core.Mapping(append(base, fields...)...),
	}
}

func nameField(name string) core.Field {
	return core.Field{Name: "PRIMARY_NAME_FULL", Value: core.StringValue(name)}
}

func indexedKey(id string) core.RecordKey {
	return core.RecordKey{DataSource: "CUSTOMERS", RecordID: id}
}

// newTestSearcher indexes a small population of names with the
// deterministic mock embedder.
func newTestSearcher(t *testing.T, opts ...Option) (*Searcher, *mock.MockProvider) {
	t.Helper()

	provider := mock.NewMockProvider()
	embedder := provider.GetMockEmbedder()

	idx, err := index.New(embedder.Dimension, index.WithSeed(1))
	require.NoError(t, err)

	ctx := context.Background()
	for id, name := range map[string]string{
		"1001": "Robert Johnson",
		"1002": "Bobby Johnson",
		"2001": "Alice Wong",
	} {
		vec, err := embedder.EmbedText(ctx, name)
		require.NoError(t, err)
		require.NoError(t, idx.Insert(indexedKey(id), name, vec))
	}

	s, err := NewSearcher(idx, provider, opts...)
	require.NoError(t, err)
	return s, provider
}

func TestCandidatesFindsNameVariants(t *testing.T) {
	s, _ := newTestSearcher(t)

	candidates, err := s.Candidates(context.Background(), queryRecord("q1", nameField("Bob Johnson")), nil)
	require.NoError(t, err)

	assert.Contains(t, candidates, indexedKey("1001"))
	assert.Contains(t, candidates, indexedKey("1002"))
	assert.NotContains(t, candidates, indexedKey("2001"))

	for _, c := range candidates {
		assert.Equal(t, core.ProvenanceSemantic, c.Provenance)
		assert.GreaterOrEqual(t, c.Similarity, float32(DefaultThreshold))
	}
}

func TestCandidatesMergesWithExactSet(t *testing.T) {
	s, _ := newTestSearcher(t)

	exact := core.ExactSet(indexedKey("1002"), indexedKey("9999"))
	candidates, err := s.Candidates(context.Background(), queryRecord("q1", nameField("Bob Johnson")), exact)
	require.NoError(t, err)

	assert.Equal(t, core.ProvenanceBoth, candidates[indexedKey("1002")].Provenance)
	assert.Positive(t, candidates[indexedKey("1002")].Similarity)
	assert.Equal(t, core.ProvenanceSemantic, candidates[indexedKey("1001")].Provenance)
	assert.Equal(t, core.ProvenanceExact, candidates[indexedKey("9999")].Provenance)
}

func TestCandidatesNamelessQueryKeepsExactOnly(t *testing.T) {
	s, provider := newTestSearcher(t)

	record := queryRecord("q1", core.Field{Name: "PHONE_NUMBER", Value: core.StringValue("702-919-1300")})
	exact := core.ExactSet(indexedKey("1001"))

	calls := provider.GetMockEmbedder().CallCount()
	candidates, err := s.Candidates(context.Background(), record, exact)
	require.NoError(t, err)

	assert.Equal(t, exact, candidates)
	assert.Equal(t, calls, provider.GetMockEmbedder().CallCount(), "nameless query must not embed")
}

func TestCandidatesHonoursLimit(t *testing.T) {
	s, _ := newTestSearcher(t, WithLimit(1))

	candidates, err := s.Candidates(context.Background(), queryRecord("q1", nameField("Bob Johnson")), nil)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestCandidatesHonoursThreshold(t *testing.T) {
	// A threshold above 1 excludes everything.
	s, _ := newTestSearcher(t, WithThreshold(1.01))

	candidates, err := s.Candidates(context.Background(), queryRecord("q1", nameField("Bob Johnson")), nil)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

// recordingMonitor captures the callbacks it receives.
type recordingMonitor struct {
	started   string
	noName    bool
	embedded  bool
	hits      int
	both      int
	semantic  int
	exact     int
	finished  bool
	finalSize int
}

func (m *recordingMonitor) Start(name string)        { m.started = name }
func (m *recordingMonitor) NoName()                  { m.noName = true }
func (m *recordingMonitor) AfterEmbedding([]float32) { m.embedded = true }
func (m *recordingMonitor) AfterSemanticSearch(hits []index.Hit, _ bool) {
	m.hits = len(hits)
}
func (m *recordingMonitor) BothHit(core.Candidate)     { m.both++ }
func (m *recordingMonitor) SemanticHit(core.Candidate) { m.semantic++ }
func (m *recordingMonitor) ExactHit(core.Candidate)    { m.exact++ }
func (m *recordingMonitor) Finish(c core.CandidateSet) {
	m.finished = true
	m.finalSize = len(c)
}

func TestCandidatesWithMonitor(t *testing.T) {
	s, _ := newTestSearcher(t)

	monitor := &recordingMonitor{}
	exact := core.ExactSet(indexedKey("1002"), indexedKey("9999"))
	_, err := s.CandidatesWithMonitor(context.Background(), queryRecord("q1", nameField("Bob Johnson")), exact, monitor)
	require.NoError(t, err)

	assert.Equal(t, "Bob Johnson", monitor.started)
	assert.False(t, monitor.noName)
	assert.True(t, monitor.embedded)
	assert.Equal(t, 2, monitor.hits)
	assert.Equal(t, 1, monitor.both)
	assert.Equal(t, 1, monitor.semantic)
	assert.Equal(t, 1, monitor.exact)
	assert.True(t, monitor.finished)
	assert.Equal(t, 3, monitor.finalSize)
}

func TestCandidatesWithMonitorNoName(t *testing.T) {
	s, _ := newTestSearcher(t)

	monitor := &recordingMonitor{}
	record := queryRecord("q1", core.Field{Name: "PHONE_NUMBER", Value: core.StringValue("702-919-1300")})
	_, err := s.CandidatesWithMonitor(context.Background(), record, nil, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.noName)
	assert.True(t, monitor.finished)
	assert.Zero(t, monitor.finalSize)
}

func TestFindSimilar(t *testing.T) {
	s, _ := newTestSearcher(t)

	hits, err := s.FindSimilar(context.Background(), "Robert Johnson")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Robert Johnson", hits[0].Label)
}

// thresholdScorer keeps only candidates at or above a similarity floor,
// standing in for an external resolution engine.
type thresholdScorer struct {
	floor float32
}

func (s *thresholdScorer) Score(_ context.Context, _ *core.Record, candidates core.CandidateSet) (core.CandidateSet, error) {
	out := make(core.CandidateSet, len(candidates))
	for key, cand := range candidates {
		if cand.Provenance == core.ProvenanceExact || cand.Similarity >= s.floor {
			out[key] = cand
		}
	}
	return out, nil
}

func TestScorerConsumesCandidates(t *testing.T) {
	s, _ := newTestSearcher(t)

	record := queryRecord("q1", nameField("Bob Johnson"))
	exact := core.ExactSet(indexedKey("9999"))
	candidates, err := s.Candidates(context.Background(), record, exact)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	var scorer Scorer = &thresholdScorer{floor: 1.1}
	scored, err := scorer.Score(context.Background(), record, candidates)
	require.NoError(t, err)

	// Only the exact candidate survives an unreachable similarity floor.
	require.Len(t, scored, 1)
	assert.Equal(t, core.ProvenanceExact, scored[indexedKey("9999")].Provenance)
}

func TestNewSearcherValidation(t *testing.T) {
	provider := mock.NewMockProvider()
	idx, err := index.New(4, index.WithSeed(1))
	require.NoError(t, err)

	_, err = NewSearcher(nil, provider)
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewSearcher(idx, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
