package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/poiesic/semkey/ai"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension of generated vectors. Default ai.DefaultDimension.
	Dimension int

	callCount int
}

// nicknames maps common name variants onto one canonical token, so that the
// default vectors behave like a model that knows "Bobby Johnson" and
// "Robert Johnson" mean the same person.
var nicknames = map[string]string{
	"bob":   "robert",
	"bobby": "robert",
	"rob":   "robert",
	"bill":  "william",
	"will":  "william",
	"liz":   "elizabeth",
	"beth":  "elizabeth",
	"jim":   "james",
	"jimmy": "james",
	"peggy": "margaret",
	"dick":  "richard",
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions and function injection.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{Dimension: ai.DefaultDimension}
}

// EmbedText generates a deterministic embedding from the text's tokens.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return m.vector(text), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vector(text)
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected functions.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// vector builds the default deterministic embedding: the normalized sum of
// one pseudo-random unit vector per canonical token. Texts sharing tokens get
// high cosine similarity; unrelated texts land near-orthogonal.
func (m *MockEmbedder) vector(text string) []float32 {
	dim := m.Dimension
	if dim <= 0 {
		dim = ai.DefaultDimension
	}

	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		tokens = []string{text}
	}

	acc := make([]float32, dim)
	for _, token := range tokens {
		if canonical, ok := nicknames[token]; ok {
			token = canonical
		}
		addTokenVector(acc, token)
	}

	return normalize(acc)
}

// addTokenVector accumulates a deterministic unit vector for one token,
// generated from an FNV hash seed and an LCG.
func addTokenVector(acc []float32, token string) {
	h := fnv.New32a()
	h.Write([]byte(token))
	seed := h.Sum32()

	raw := make([]float32, len(acc))
	var sumSquares float64
	for i := range raw {
		seed = seed*1664525 + 1013904223 // LCG constants
		raw[i] = float32(seed%2000)/1000.0 - 1.0
		sumSquares += float64(raw[i]) * float64(raw[i])
	}

	norm := float32(math.Sqrt(sumSquares))
	if norm == 0 {
		return
	}
	for i := range acc {
		acc[i] += raw[i] / norm
	}
}

func normalize(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sumSquares))
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}
