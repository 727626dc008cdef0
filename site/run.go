package site

import (
	"sort"
	"sync"

	"github.com/pagewright/pagewright/capture"
	"github.com/pagewright/pagewright/notify"
)

// Run is the shared state of one build run: the capture store, the compiled
// set, the visit-notification hub, and the document table. It is created at
// run start, passed into every render attempt, and discarded at run end.
type Run struct {
	store    *capture.Store
	compiled *CompiledSet
	hub      *notify.Hub
	protocol *capture.Protocol

	mu       sync.Mutex
	docs     map[capture.DocumentID]*Document
	outdated map[capture.DocumentID]struct{}
	current  capture.DocumentID
	deps     map[capture.DocumentID]map[capture.DocumentID]struct{}
}

// NewRun builds the run context for the given documents.
func NewRun(docs []*Document) *Run {
	run := &Run{
		store:    capture.NewStore(),
		compiled: NewCompiledSet(),
		hub:      notify.NewHub(),
		docs:     make(map[capture.DocumentID]*Document, len(docs)),
		outdated: make(map[capture.DocumentID]struct{}),
		deps:     make(map[capture.DocumentID]map[capture.DocumentID]struct{}),
	}
	for _, doc := range docs {
		run.docs[doc.ID] = doc
	}
	run.protocol = capture.NewProtocol(run.store, hubNotifier{hub: run.hub}, run.compiled, run)

	// Visit announcements double as dependency edges for diagnostics.
	run.hub.Subscribe(notify.VisitStarted, func(payload string) {
		run.recordEdge(capture.DocumentID(payload))
	})
	return run
}

// Protocol returns the capture protocol bound to this run.
func (r *Run) Protocol() *capture.Protocol { return r.protocol }

// Store returns the run's capture store.
func (r *Run) Store() *capture.Store { return r.store }

// Compiled returns the run's compiled set.
func (r *Run) Compiled() *CompiledSet { return r.compiled }

// Hub returns the run's notification hub.
func (r *Run) Hub() *notify.Hub { return r.hub }

// Document looks up a document by identity.
func (r *Run) Document(id capture.DocumentID) (*Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	return doc, ok
}

// DocumentIDs returns every document identity, sorted.
func (r *Run) DocumentIDs() []capture.DocumentID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]capture.DocumentID, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetCurrent records which document the next render attempt belongs to.
// Attempts within one run are rendered one at a time.
func (r *Run) SetCurrent(doc capture.DocumentID) {
	r.mu.Lock()
	r.current = doc
	r.mu.Unlock()
}

// Current returns the document whose render attempt is in progress.
func (r *Run) Current() capture.DocumentID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// MarkOutdated forces doc to be re-rendered regardless of any other
// staleness signal. Part of the capture.Scheduler contract.
func (r *Run) MarkOutdated(doc capture.DocumentID) {
	r.mu.Lock()
	r.outdated[doc] = struct{}{}
	r.mu.Unlock()
}

// Outdated reports whether doc is marked for a forced re-render.
func (r *Run) Outdated(doc capture.DocumentID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.outdated[doc]
	return ok
}

// ClearOutdated removes the forced re-render mark after a successful render.
func (r *Run) ClearOutdated(doc capture.DocumentID) {
	r.mu.Lock()
	delete(r.outdated, doc)
	r.mu.Unlock()
}

// Representations exposes the target's rendered variants to the capture
// protocol. Part of the capture.Scheduler contract.
func (r *Run) Representations(doc capture.DocumentID) []capture.Representation {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.docs[doc]
	if !ok {
		return nil
	}
	reps := make([]capture.Representation, 0, len(target.reps))
	for _, rep := range target.reps {
		reps = append(reps, rep)
	}
	return reps
}

// Dependencies returns the documents the consumer was observed reading from,
// sorted.
func (r *Run) Dependencies(consumer capture.DocumentID) []capture.DocumentID {
	r.mu.Lock()
	defer r.mu.Unlock()
	targets := make([]capture.DocumentID, 0, len(r.deps[consumer]))
	for target := range r.deps[consumer] {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

func (r *Run) recordEdge(target capture.DocumentID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	consumer := r.current
	if consumer == "" || consumer == target {
		return
	}
	edges, ok := r.deps[consumer]
	if !ok {
		edges = make(map[capture.DocumentID]struct{})
		r.deps[consumer] = edges
	}
	edges[target] = struct{}{}
}

// hubNotifier adapts the notification hub to the capture.Notifier contract.
type hubNotifier struct {
	hub *notify.Hub
}

func (n hubNotifier) VisitStarted(doc capture.DocumentID) {
	n.hub.Announce(notify.VisitStarted, string(doc))
}

func (n hubNotifier) VisitEnded(doc capture.DocumentID) {
	n.hub.Announce(notify.VisitEnded, string(doc))
}
