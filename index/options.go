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
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultM is the number of bidirectional links created per node on
	// the upper layers. Layer zero allows twice as many.
	DefaultM = 16

	// DefaultEFConstruction is the size of the dynamic candidate list
	// during insertion.
	DefaultEFConstruction = 200

	// DefaultEFSearch is the size of the dynamic candidate list during
	// queries. Queries asking for more than this many hits widen the
	// list automatically.
	DefaultEFSearch = 100
)

// Options configures an Index.
type Options struct {
	// Dimension is the required length of every vector.
	Dimension int

	// M is the maximum number of connections per node on layers above
	// zero. Layer zero permits 2*M.
	M int

	// EFConstruction controls how thoroughly neighbours are explored
	// while linking a new node. Higher is slower and better connected.
	EFConstruction int

	// EFSearch controls how thoroughly the graph is explored per query.
	EFSearch int

	// Seed seeds the level generator. Zero means time-based.
	Seed int64

	// DeferReady starts the index in the unavailable state. Queries fail
	// with ErrIndexUnavailable until MarkReady is called, which lets a
	// caller replay persisted entries before serving.
	DeferReady bool

	// Logger receives structured diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithM sets the per-node connection limit for upper layers.
func WithM(m int) Option {
	return func(o *Options) { o.M = m }
}

// WithEFConstruction sets the candidate list size used during inserts.
func WithEFConstruction(ef int) Option {
	return func(o *Options) { o.EFConstruction = ef }
}

// WithEFSearch sets the candidate list size used during queries.
func WithEFSearch(ef int) Option {
	return func(o *Options) { o.EFSearch = ef }
}

// WithSeed fixes the level generator seed, making graph shape
// reproducible across runs.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithDeferredReady keeps the index unavailable to queries until
// MarkReady is called.
func WithDeferredReady() Option {
	return func(o *Options) { o.DeferReady = true }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func newOptions(dimension int, opts ...Option) (Options, error) {
	o := Options{
		Dimension:      dimension,
		M:              DefaultM,
		EFConstruction: DefaultEFConstruction,
		EFSearch:       DefaultEFSearch,
		Logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.Dimension <= 0 {
		return o, fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidOptions, o.Dimension)
	}
	if o.M < 2 {
		return o, fmt.Errorf("%w: M must be at least 2, got %d", ErrInvalidOptions, o.M)
	}
	if o.EFConstruction < o.M {
		return o, fmt.Errorf("%w: efConstruction %d below M %d", ErrInvalidOptions, o.EFConstruction, o.M)
	}
	if o.EFSearch < 1 {
		return o, fmt.Errorf("%w: efSearch must be positive, got %d", ErrInvalidOptions, o.EFSearch)
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	return o, nil
}
