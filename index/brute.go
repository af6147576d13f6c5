package index

import "sort"

// BruteQuery scans every live entry linearly and returns exact results in
// the same shape as Query. It exists to measure the approximate graph's
// recall and for tiny indexes where a scan is cheaper than a traversal.
func (i *Index) BruteQuery(vector []float32, threshold float32, limit int) ([]Hit, error) {
	if len(vector) != i.opts.Dimension {
		return nil, &DimensionMismatchError{Expected: i.opts.Dimension, Actual: len(vector)}
	}
	qnorm := l2Norm(vector)
	if qnorm == 0 {
		return nil, ErrDegenerateVector
	}

	i.mu.RLock()
	nodes := i.nodes
	i.mu.RUnlock()

	hits := make([]Hit, 0, limit)
	for _, n := range nodes {
		if n.deleted.Load() {
			continue
		}
		sim := 1 - cosineDistance(vector, qnorm, n.vector, n.norm)
		if sim < threshold {
			continue
		}
		hits = append(hits, Hit{Key: n.key, Label: n.label, Similarity: sim})
	}

	sort.Slice(hits, func(a, b int) bool { return hits[a].Similarity > hits[b].Similarity })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, nil
}
