package index

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/semkey/core"
)

func testKey(id string) core.RecordKey {
	return core.RecordKey{DataSource: "PEOPLE", RecordID: id}
}

func basisVector(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

func randomVector(r *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for j := range v {
		v[j] = r.Float32()
	}
	return v
}

func TestQueryReturnsSelf(t *testing.T) {
	idx, err := New(16, WithSeed(1))
	require.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	vectors := make(map[string][]float32, 20)
	for n := 0; n < 20; n++ {
		id := strconv.Itoa(n)
		vectors[id] = randomVector(r, 16)
		require.NoError(t, idx.Insert(testKey(id), "person "+id, vectors[id]))
	}

	for id, vec := range vectors {
		result, err := idx.Query(context.Background(), vec, 0.99, 1)
		require.NoError(t, err)
		require.Len(t, result.Hits, 1, "query for %s", id)
		assert.Equal(t, testKey(id), result.Hits[0].Key)
		assert.InDelta(t, 1.0, float64(result.Hits[0].Similarity), 1e-4)
	}
}

func TestQueryOrderedByDescendingSimilarity(t *testing.T) {
	idx, err := New(8, WithSeed(1))
	require.NoError(t, err)

	r := rand.New(rand.NewSource(11))
	for n := 0; n < 50; n++ {
		require.NoError(t, idx.Insert(testKey(strconv.Itoa(n)), "", randomVector(r, 8)))
	}

	result, err := idx.Query(context.Background(), randomVector(r, 8), 0, 20)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)

	for n := 1; n < len(result.Hits); n++ {
		assert.LessOrEqual(t, result.Hits[n].Similarity, result.Hits[n-1].Similarity)
	}
}

func TestQueryHonoursThresholdAndLimit(t *testing.T) {
	idx, err := New(8, WithSeed(1))
	require.NoError(t, err)

	r := rand.New(rand.NewSource(3))
	for n := 0; n < 100; n++ {
		require.NoError(t, idx.Insert(testKey(strconv.Itoa(n)), "", randomVector(r, 8)))
	}

	const threshold = 0.8
	result, err := idx.Query(context.Background(), randomVector(r, 8), threshold, 5)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result.Hits), 5)
	for _, hit := range result.Hits {
		assert.GreaterOrEqual(t, hit.Similarity, float32(threshold))
	}
}

func TestInsertReplacesPreviousVector(t *testing.T) {
	idx, err := New(4, WithSeed(1))
	require.NoError(t, err)

	key := testKey("1001")
	require.NoError(t, idx.Insert(key, "Robert Smith", basisVector(4, 0)))
	require.NoError(t, idx.Insert(key, "Robert Smith", basisVector(4, 1)))

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 1, idx.Stats().Tombstones)

	// The old vector must no longer match.
	result, err := idx.Query(context.Background(), basisVector(4, 0), 0.5, 10)
	require.NoError(t, err)
	for _, hit := range result.Hits {
		assert.NotEqual(t, key, hit.Key)
	}

	result, err = idx.Query(context.Background(), basisVector(4, 1), 0.5, 10)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, key, result.Hits[0].Key)
}

func TestDelete(t *testing.T) {
	idx, err := New(4, WithSeed(1))
	require.NoError(t, err)

	key := testKey("1001")
	require.NoError(t, idx.Insert(key, "", basisVector(4, 0)))
	require.NoError(t, idx.Insert(testKey("1002"), "", basisVector(4, 1)))

	require.NoError(t, idx.Delete(key))
	assert.False(t, idx.Has(key))
	assert.Equal(t, 1, idx.Len())

	result, err := idx.Query(context.Background(), basisVector(4, 0), 0, 10)
	require.NoError(t, err)
	for _, hit := range result.Hits {
		assert.NotEqual(t, key, hit.Key)
	}

	err = idx.Delete(key)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestDimensionMismatch(t *testing.T) {
	idx, err := New(8, WithSeed(1))
	require.NoError(t, err)

	err = idx.Insert(testKey("1"), "", make([]float32, 4))
	var dim *DimensionMismatchError
	require.ErrorAs(t, err, &dim)
	assert.Equal(t, 8, dim.Expected)
	assert.Equal(t, 4, dim.Actual)

	_, err = idx.Query(context.Background(), make([]float32, 16), 0, 1)
	require.ErrorAs(t, err, &dim)
	assert.Equal(t, 16, dim.Actual)
}

func TestDegenerateVectorRejected(t *testing.T) {
	idx, err := New(4, WithSeed(1))
	require.NoError(t, err)

	err = idx.Insert(testKey("1"), "", make([]float32, 4))
	assert.ErrorIs(t, err, ErrDegenerateVector)

	require.NoError(t, idx.Insert(testKey("2"), "", basisVector(4, 0)))
	_, err = idx.Query(context.Background(), make([]float32, 4), 0, 1)
	assert.ErrorIs(t, err, ErrDegenerateVector)
}

func TestDeferredReady(t *testing.T) {
	idx, err := New(4, WithSeed(1), WithDeferredReady())
	require.NoError(t, err)

	// Replay-style inserts are allowed while unavailable.
	require.NoError(t, idx.Insert(testKey("1"), "", basisVector(4, 0)))

	_, err = idx.Query(context.Background(), basisVector(4, 0), 0, 1)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
	assert.False(t, idx.IsReady())

	idx.MarkReady()
	assert.True(t, idx.IsReady())

	result, err := idx.Query(context.Background(), basisVector(4, 0), 0, 1)
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)
}

func TestQueryExpiredContext(t *testing.T) {
	idx, err := New(4, WithSeed(1))
	require.NoError(t, err)
	require.NoError(t, idx.Insert(testKey("1"), "", basisVector(4, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = idx.Query(ctx, basisVector(4, 0), 0, 1)
	assert.ErrorIs(t, err, ErrQueryTimeout)
}

// countdownContext reports expiry after a fixed number of Err checks,
// so the deadline lands mid-traversal instead of before it.
type countdownContext struct {
	context.Context
	checks int
}

func (c *countdownContext) Err() error {
	if c.checks--; c.checks < 0 {
		return context.DeadlineExceeded
	}
	return nil
}

func TestQueryTruncatedMidTraversal(t *testing.T) {
	const dim = 16

	idx, err := New(dim, WithSeed(1), WithM(8), WithEFConstruction(48), WithEFSearch(64))
	require.NoError(t, err)

	r := rand.New(rand.NewSource(9))
	for n := 0; n < 500; n++ {
		require.NoError(t, idx.Insert(testKey(strconv.Itoa(n)), "", randomVector(r, dim)))
	}

	// One check spent on the pre-traversal guard, the rest on beam steps.
	ctx := &countdownContext{Context: context.Background(), checks: 3}
	result, err := idx.Query(ctx, randomVector(r, dim), 0, 10)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.NotEmpty(t, result.Hits)
}

func TestQueryEmptyIndex(t *testing.T) {
	idx, err := New(4, WithSeed(1))
	require.NoError(t, err)

	result, err := idx.Query(context.Background(), basisVector(4, 0), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
	assert.False(t, result.Truncated)
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = New(4, WithM(1))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = New(4, WithEFConstruction(2))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	idx, err := New(4, WithSeed(1))
	require.NoError(t, err)
	_, err = idx.Query(context.Background(), basisVector(4, 0), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestErrorsUnwrap(t *testing.T) {
	err := errors.Join(ErrDegenerateVector)
	assert.ErrorIs(t, err, ErrDegenerateVector)
}
