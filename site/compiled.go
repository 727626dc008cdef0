package site

import (
	"sync"

	"github.com/pagewright/pagewright/capture"
)

// CompiledSet tracks the documents that completed at least one successful
// render during the current run. It starts empty each run and only grows.
type CompiledSet struct {
	mu      sync.RWMutex
	members map[capture.DocumentID]struct{}
}

// NewCompiledSet returns an empty set for a fresh run.
func NewCompiledSet() *CompiledSet {
	return &CompiledSet{members: make(map[capture.DocumentID]struct{})}
}

// Add records a successful full render of doc.
func (s *CompiledSet) Add(doc capture.DocumentID) {
	s.mu.Lock()
	s.members[doc] = struct{}{}
	s.mu.Unlock()
}

// Contains reports whether doc has been rendered this run.
func (s *CompiledSet) Contains(doc capture.DocumentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[doc]
	return ok
}

// Len returns the number of rendered documents.
func (s *CompiledSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
