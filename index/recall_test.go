package index

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecallAgainstBruteForce measures how much of the exact top-k the
// graph search recovers on a random corpus. The approximate search is
// expected to miss occasionally; sustained recall below the floor means
// the graph construction is broken, not merely tuned badly.
func TestRecallAgainstBruteForce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping recall measurement in short mode")
	}

	const (
		corpus  = 2000
		queries = 50
		k       = 10
		dim     = 32
	)

	idx, err := New(dim, WithSeed(1), WithEFConstruction(100), WithEFSearch(64))
	require.NoError(t, err)

	r := rand.New(rand.NewSource(42))
	for n := 0; n < corpus; n++ {
		require.NoError(t, idx.Insert(testKey(strconv.Itoa(n)), "", randomVector(r, dim)))
	}

	var hits, wanted int
	for q := 0; q < queries; q++ {
		vec := randomVector(r, dim)

		exact, err := idx.BruteQuery(vec, 0, k)
		require.NoError(t, err)

		approx, err := idx.Query(context.Background(), vec, 0, k)
		require.NoError(t, err)
		require.False(t, approx.Truncated)

		got := make(map[string]struct{}, len(approx.Hits))
		for _, hit := range approx.Hits {
			got[hit.Key.RecordID] = struct{}{}
		}
		for _, hit := range exact {
			wanted++
			if _, ok := got[hit.Key.RecordID]; ok {
				hits++
			}
		}
	}

	recall := float64(hits) / float64(wanted)
	t.Logf("recall@%d = %.3f (%d/%d)", k, recall, hits, wanted)
	assert.GreaterOrEqual(t, recall, 0.8)
}

func TestBruteQueryMatchesInsertedVectors(t *testing.T) {
	idx, err := New(4, WithSeed(1))
	require.NoError(t, err)

	require.NoError(t, idx.Insert(testKey("1"), "a", basisVector(4, 0)))
	require.NoError(t, idx.Insert(testKey("2"), "b", basisVector(4, 1)))

	hits, err := idx.BruteQuery(basisVector(4, 0), 0.5, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, testKey("1"), hits[0].Key)
	assert.Equal(t, "a", hits[0].Label)
}

func TestBruteQuerySkipsTombstones(t *testing.T) {
	idx, err := New(4, WithSeed(1))
	require.NoError(t, err)

	key := testKey("1")
	require.NoError(t, idx.Insert(key, "", basisVector(4, 0)))
	require.NoError(t, idx.Insert(key, "", basisVector(4, 1)))

	hits, err := idx.BruteQuery(basisVector(4, 0), 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
