package site

import (
	"sync"

	"github.com/pagewright/pagewright/capture"
)

// defaultRepName is the single representation every document gets; the model
// allows more (print, feed) without changing the capture protocol.
const defaultRepName = "default"

// Document is one markdown source file within a build run.
type Document struct {
	ID     capture.DocumentID // normalized source-relative path, e.g. "guides/beta.md"
	Source string             // on-disk path relative to the source root
	Raw    string
	reps   []*Representation
}

func newDocument(rel string, raw []byte) *Document {
	doc := &Document{
		ID:     capture.DocumentID(rel),
		Source: rel,
		Raw:    string(raw),
	}
	doc.reps = []*Representation{{doc: doc, name: defaultRepName}}
	return doc
}

// Representations returns the document's rendered variants.
func (d *Document) Representations() []*Representation {
	return d.reps
}

// Default returns the document's default representation.
func (d *Document) Default() *Representation {
	return d.reps[0]
}

// Representation is one rendered variant of a document. Its "last" snapshot
// holds the content from the most recent successful render, or the raw source
// while the document is pending a forced re-render.
type Representation struct {
	doc  *Document
	name string

	mu   sync.Mutex
	last string
}

// Document returns the identity of the owning document.
func (r *Representation) Document() capture.DocumentID { return r.doc.ID }

// Name returns the representation name.
func (r *Representation) Name() string { return r.name }

// Last returns the snapshot content.
func (r *Representation) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// SetLast publishes new snapshot content after a successful render.
func (r *Representation) SetLast(content string) {
	r.mu.Lock()
	r.last = content
	r.mu.Unlock()
}

// ResetLastToRaw restores the raw source as the snapshot. Used when the
// document is invalidated mid-run so any concurrent reader sees raw content
// rather than a stale render. A reader may still observe the raw placeholder
// until the re-render lands; that window is inherent to the protocol.
func (r *Representation) ResetLastToRaw() {
	r.SetLast(r.doc.Raw)
}
