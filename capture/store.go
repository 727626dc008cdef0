package capture

import "sync"

// DocumentID identifies a document within one build run. IDs are assigned by
// the site layer (normalized source paths); this package only indexes by them.
type DocumentID string

// Name keys a captured fragment within a document's namespace.
type Name string

// Store holds captured fragments per document for the duration of one build
// run. A missing (document, name) pair is reported as absent, which is
// distinct from a present-but-empty fragment.
//
// The surrounding compiler may interleave render attempts for different
// documents, so every access takes the store lock.
type Store struct {
	mu       sync.Mutex
	frags    map[DocumentID]map[Name]string
	produced map[DocumentID]struct{}
}

// NewStore returns an empty store for a fresh build run.
func NewStore() *Store {
	return &Store{
		frags:    make(map[DocumentID]map[Name]string),
		produced: make(map[DocumentID]struct{}),
	}
}

func (s *Store) namespaceLocked(doc DocumentID) map[Name]string {
	ns, ok := s.frags[doc]
	if !ok {
		ns = make(map[Name]string)
		s.frags[doc] = ns
	}
	return ns
}

// Set stores or overwrites the fragment under name, creating the document's
// namespace if needed. Merge-policy checks live in Protocol, not here.
func (s *Store) Set(doc DocumentID, name Name, fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespaceLocked(doc)[name] = fragment
}

// Get returns the fragment stored under (doc, name). The second return value
// reports presence. The document's namespace is created lazily as a side
// effect, the named entry is not.
func (s *Store) Get(doc DocumentID, name Name) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fragment, ok := s.namespaceLocked(doc)[name]
	return fragment, ok
}

// Append appends content to the fragment under (doc, name), initializing an
// empty fragment first if the entry is absent.
func (s *Store) Append(doc DocumentID, name Name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.namespaceLocked(doc)
	ns[name] += content
}

// ResetFor discards every fragment captured for doc, replacing its namespace
// with an empty one. Calling it for an unknown document is a no-op beyond
// creating the empty namespace.
func (s *Store) ResetFor(doc DocumentID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frags[doc] = make(map[Name]string)
}

// MarkProduced records that doc produced at least one capture this pass.
// This is bookkeeping adjacent to the compiled set, not membership in it:
// a document is marked here after a successful capture, and only enters the
// compiled set once its full render completes.
func (s *Store) MarkProduced(doc DocumentID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.produced[doc] = struct{}{}
}

// Produced reports whether doc produced any capture this pass.
func (s *Store) Produced(doc DocumentID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.produced[doc]
	return ok
}
