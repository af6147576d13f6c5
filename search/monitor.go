package search

import (
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/index"
)

// Monitor provides hooks to observe the candidate-generation process.
// Implement this interface to track intermediate steps during a search.
type Monitor interface {
	Start(name string)
	NoName()
	AfterEmbedding(vector []float32)
	AfterSemanticSearch(hits []index.Hit, truncated bool)
	BothHit(candidate core.Candidate)
	SemanticHit(candidate core.Candidate)
	ExactHit(candidate core.Candidate)
	Finish(candidates core.CandidateSet)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (m *noopMonitor) Start(string)                          {}
func (m *noopMonitor) NoName()                               {}
func (m *noopMonitor) AfterEmbedding([]float32)              {}
func (m *noopMonitor) AfterSemanticSearch([]index.Hit, bool) {}
func (m *noopMonitor) BothHit(core.Candidate)                {}
func (m *noopMonitor) SemanticHit(core.Candidate)            {}
func (m *noopMonitor) ExactHit(core.Candidate)               {}
func (m *noopMonitor) Finish(core.CandidateSet)              {}
