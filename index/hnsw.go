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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/poiesic/semkey/core"
)

const maxLayer = 32

// Hit is a single query match.
type Hit struct {
	Key        core.RecordKey
	Label      string
	Similarity float32
}

// SearchResult carries query hits ordered by descending similarity.
// Truncated is set when the query deadline expired mid-traversal and the
// hits reflect only the portion of the graph explored so far.
type SearchResult struct {
	Hits      []Hit
	Truncated bool
}

// Stats is a point-in-time snapshot of index shape.
type Stats struct {
	Live       int
	Tombstones int
	MaxLevel   int
}

// node is a vertex in the HNSW graph. The vector, norm, key, label and
// level are immutable after construction; conns is guarded by mu and
// deleted flips at most once.
type node struct {
	key    core.RecordKey
	label  string
	vector []float32
	norm   float32
	level  int

	deleted atomic.Bool

	mu    sync.RWMutex
	conns [][]uint32
}

// Index is a concurrency-safe HNSW graph over cosine similarity.
type Index struct {
	opts Options
	log  *slog.Logger

	// mu guards the node slice, the key map and the entry point. Nodes
	// are append-only; tombstoning replaces removal so traversals over a
	// slice snapshot stay valid without holding mu.
	mu       sync.RWMutex
	nodes    []*node
	byKey    map[core.RecordKey]uint32
	ep       uint32
	maxLevel int
	live     int

	ready atomic.Bool

	levelMu sync.Mutex
	rng     *rand.Rand
	ml      float64

	visitedPool sync.Pool
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int, opts ...Option) (*Index, error) {
	o, err := newOptions(dimension, opts...)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		opts:  o,
		log:   o.Logger.With(slog.String("component", "index")),
		byKey: make(map[core.RecordKey]uint32),
		rng:   rand.New(rand.NewSource(o.Seed)),
		ml:    1 / math.Log(float64(o.M)),
	}
	idx.visitedPool.New = func() any { return newVisitedSet(1024) }
	idx.ready.Store(!o.DeferReady)

	return idx, nil
}

// MarkReady opens the index to queries. Call after replaying persisted
// entries into an index built with WithDeferredReady.
func (i *Index) MarkReady() {
	if !i.ready.Swap(true) {
		i.log.Info("index ready", slog.Int("entries", i.Len()))
	}
}

// IsReady reports whether queries are being served.
func (i *Index) IsReady() bool { return i.ready.Load() }

// Dimension returns the vector length the index was built with.
func (i *Index) Dimension() int { return i.opts.Dimension }

// Len returns the number of live entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.live
}

// Has reports whether key is currently indexed.
func (i *Index) Has(key core.RecordKey) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.byKey[key]
	return ok
}

// Stats returns a snapshot of graph shape.
func (i *Index) Stats() Stats {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return Stats{
		Live:       i.live,
		Tombstones: len(i.nodes) - i.live,
		MaxLevel:   i.maxLevel,
	}
}

// Insert adds the vector for key, replacing any previous vector stored
// under the same key. The old graph node is tombstoned rather than
// unlinked, so in-flight queries keep a consistent view.
func (i *Index) Insert(key core.RecordKey, label string, vector []float32) error {
	if len(vector) != i.opts.Dimension {
		return &DimensionMismatchError{Expected: i.opts.Dimension, Actual: len(vector)}
	}

	vec := slices.Clone(vector)
	norm := l2Norm(vec)
	if norm == 0 {
		return ErrDegenerateVector
	}

	level := i.randomLevel()
	n := &node{
		key:    key,
		label:  label,
		vector: vec,
		norm:   norm,
		level:  level,
		conns:  make([][]uint32, level+1),
	}

	i.mu.Lock()
	if oldID, ok := i.byKey[key]; ok {
		i.nodes[oldID].deleted.Store(true)
		i.live--
	}
	id := uint32(len(i.nodes))
	i.nodes = append(i.nodes, n)
	i.byKey[key] = id
	i.live++
	if id == 0 {
		i.ep = id
		i.maxLevel = level
		i.mu.Unlock()
		return nil
	}
	nodes := i.nodes
	ep := i.ep
	top := i.maxLevel
	i.mu.Unlock()

	i.link(id, n, ep, top, nodes)

	if level > top {
		i.mu.Lock()
		if level > i.maxLevel {
			i.maxLevel = level
			i.ep = id
		}
		i.mu.Unlock()
	}

	return nil
}

// Delete removes key from the index. The graph node is tombstoned and
// stops appearing in query results immediately.
func (i *Index) Delete(key core.RecordKey) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	id, ok := i.byKey[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, key)
	}
	delete(i.byKey, key)
	i.nodes[id].deleted.Store(true)
	i.live--

	return nil
}

// Query returns the indexed entries whose cosine similarity to vector is
// at least threshold, best first, at most limit of them. If the context
// deadline expires during traversal the hits gathered so far are returned
// with Truncated set; if it expired before traversal began the error is
// ErrQueryTimeout.
func (i *Index) Query(ctx context.Context, vector []float32, threshold float32, limit int) (*SearchResult, error) {
	if !i.ready.Load() {
		return nil, ErrIndexUnavailable
	}
	if len(vector) != i.opts.Dimension {
		return nil, &DimensionMismatchError{Expected: i.opts.Dimension, Actual: len(vector)}
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidOptions, limit)
	}
	qnorm := l2Norm(vector)
	if qnorm == 0 {
		return nil, ErrDegenerateVector
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryTimeout, err)
	}

	i.mu.RLock()
	nodes := i.nodes
	ep := i.ep
	top := i.maxLevel
	live := i.live
	i.mu.RUnlock()

	if live == 0 {
		return &SearchResult{}, nil
	}

	cur := ep
	for l := top; l > 0; l-- {
		cur = i.greedyClosest(vector, qnorm, cur, l, nodes)
	}

	vs := i.visitedPool.Get().(*visitedSet)
	defer func() {
		vs.Reset()
		i.visitedPool.Put(vs)
	}()

	ef := i.opts.EFSearch
	if limit > ef {
		ef = limit
	}
	results, truncated := i.searchLayer(ctx, vector, qnorm, cur, ef, 0, nodes, vs)

	// Drain the max-heap into ascending distance order.
	ordered := make([]queueItem, results.Len())
	for j := len(ordered) - 1; j >= 0; j-- {
		ordered[j], _ = results.Pop()
	}

	hits := make([]Hit, 0, limit)
	for _, it := range ordered {
		n := nodes[it.node]
		if n.deleted.Load() {
			continue
		}
		sim := 1 - it.dist
		if sim < threshold {
			break
		}
		hits = append(hits, Hit{Key: n.key, Label: n.label, Similarity: sim})
		if len(hits) == limit {
			break
		}
	}

	return &SearchResult{Hits: hits, Truncated: truncated}, nil
}

// link wires a freshly appended node into the graph, layer by layer from
// its top level down to zero.
func (i *Index) link(id uint32, n *node, ep uint32, top int, nodes []*node) {
	cur := ep
	for l := top; l > n.level; l-- {
		cur = i.greedyClosest(n.vector, n.norm, cur, l, nodes)
	}

	vs := i.visitedPool.Get().(*visitedSet)
	defer func() {
		vs.Reset()
		i.visitedPool.Put(vs)
	}()

	start := n.level
	if top < start {
		start = top
	}
	for l := start; l >= 0; l-- {
		vs.Reset()
		cands, _ := i.searchLayer(context.Background(), n.vector, n.norm, cur, i.opts.EFConstruction, l, nodes, vs)
		selected := i.selectNeighbours(cands, i.opts.M, nodes)

		n.mu.Lock()
		n.conns[l] = selected
		n.mu.Unlock()

		for _, nb := range selected {
			i.linkBack(nb, id, l, nodes)
		}
		if len(selected) > 0 {
			cur = selected[0]
		}
	}
}

// greedyClosest walks a single layer from ep, always moving to the
// nearest neighbour, until no neighbour improves on the current node.
func (i *Index) greedyClosest(q []float32, qnorm float32, ep uint32, layer int, nodes []*node) uint32 {
	cur := ep
	curDist := cosineDistance(q, qnorm, nodes[cur].vector, nodes[cur].norm)

	var scratch []uint32
	for {
		cn := nodes[cur]
		cn.mu.RLock()
		if layer < len(cn.conns) {
			scratch = append(scratch[:0], cn.conns[layer]...)
		} else {
			scratch = scratch[:0]
		}
		cn.mu.RUnlock()

		improved := false
		for _, nb := range scratch {
			if int(nb) >= len(nodes) {
				continue
			}
			if d := cosineDistance(q, qnorm, nodes[nb].vector, nodes[nb].norm); d < curDist {
				cur, curDist = nb, d
				improved = true
			}
		}
		if !improved {
			return cur
		}
	}
}

// searchLayer performs a best-first beam search of one layer, returning
// up to ef closest nodes as a max-heap, farthest on top. The second
// return value reports whether the context expired mid-search.
func (i *Index) searchLayer(ctx context.Context, q []float32, qnorm float32, ep uint32, ef, layer int, nodes []*node, vs *visitedSet) (*priorityQueue, bool) {
	results := newPriorityQueue(true, ef+1)
	frontier := newPriorityQueue(false, ef)

	d := cosineDistance(q, qnorm, nodes[ep].vector, nodes[ep].norm)
	vs.Visit(ep)
	frontier.Push(queueItem{node: ep, dist: d})
	results.Push(queueItem{node: ep, dist: d})

	truncated := false
	var scratch []uint32
	for frontier.Len() > 0 {
		if ctx.Err() != nil {
			truncated = true
			break
		}

		c, _ := frontier.Pop()
		if worst, _ := results.Top(); results.Len() >= ef && c.dist > worst.dist {
			break
		}

		cn := nodes[c.node]
		cn.mu.RLock()
		if layer < len(cn.conns) {
			scratch = append(scratch[:0], cn.conns[layer]...)
		} else {
			scratch = scratch[:0]
		}
		cn.mu.RUnlock()

		for _, nb := range scratch {
			// Concurrent inserts may have appended nodes past this
			// traversal's snapshot; they become reachable next query.
			if int(nb) >= len(nodes) {
				continue
			}
			if vs.Visit(nb) {
				continue
			}
			nd := cosineDistance(q, qnorm, nodes[nb].vector, nodes[nb].norm)
			if worst, ok := results.Top(); !ok || results.Len() < ef || nd < worst.dist {
				frontier.Push(queueItem{node: nb, dist: nd})
				results.Push(queueItem{node: nb, dist: nd})
				if results.Len() > ef {
					results.Pop()
				}
			}
		}
	}

	return results, truncated
}

// selectNeighbours applies the HNSW diversity heuristic: candidates are
// taken closest first and kept only when closer to the query than to any
// neighbour already selected, which spreads links across clusters.
func (i *Index) selectNeighbours(cands *priorityQueue, m int, nodes []*node) []uint32 {
	ordered := make([]queueItem, cands.Len())
	for j := len(ordered) - 1; j >= 0; j-- {
		ordered[j], _ = cands.Pop()
	}

	selected := make([]uint32, 0, m)
	for _, it := range ordered {
		if len(selected) == m {
			break
		}
		cn := nodes[it.node]
		keep := true
		for _, s := range selected {
			sn := nodes[s]
			if cosineDistance(cn.vector, cn.norm, sn.vector, sn.norm) < it.dist {
				keep = false
				break
			}
		}
		if keep {
			selected = append(selected, it.node)
		}
	}

	return selected
}

// linkBack adds id to nb's connection list on layer, pruning back to the
// layer's limit by keeping the closest links. Distance reads need only
// nb's lock since vectors are immutable; pruning re-reads i.nodes so the
// list can hold ids newer than the caller's snapshot.
func (i *Index) linkBack(nb, id uint32, layer int, nodes []*node) {
	limit := i.opts.M
	if layer == 0 {
		limit = 2 * i.opts.M
	}

	n := nodes[nb]
	n.mu.Lock()
	defer n.mu.Unlock()

	if layer >= len(n.conns) {
		return
	}
	conns := append(n.conns[layer], id)
	if len(conns) > limit {
		// nb's list may hold ids appended by other inserters after the
		// caller's snapshot was taken. Every linked id is in i.nodes, so
		// a fresh snapshot covers all of them.
		i.mu.RLock()
		nodes = i.nodes
		i.mu.RUnlock()

		items := make([]queueItem, len(conns))
		for j, c := range conns {
			items[j] = queueItem{
				node: c,
				dist: cosineDistance(n.vector, n.norm, nodes[c].vector, nodes[c].norm),
			}
		}
		sort.Slice(items, func(a, b int) bool { return items[a].dist < items[b].dist })
		conns = conns[:0]
		for _, it := range items[:limit] {
			conns = append(conns, it.node)
		}
	}
	n.conns[layer] = conns
}

func (i *Index) randomLevel() int {
	i.levelMu.Lock()
	r := i.rng.Float64()
	i.levelMu.Unlock()

	if r == 0 {
		r = math.SmallestNonzeroFloat64
	}
	level := int(math.Floor(-math.Log(r) * i.ml))
	if level > maxLayer {
		level = maxLayer
	}
	return level
}

func cosineDistance(a []float32, anorm float32, b []float32, bnorm float32) float32 {
	return 1 - dot(a, b)/(anorm*bnorm)
}

func dot(a, b []float32) float32 {
	var sum float32
	for j := range a {
		sum += a[j] * b[j]
	}
	return sum
}

func l2Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(dot(v, v))))
}
