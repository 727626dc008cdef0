package capture

// Notifier records dependency edges for the surrounding scheduler. Both calls
// are fire-and-forget.
type Notifier interface {
	VisitStarted(doc DocumentID)
	VisitEnded(doc DocumentID)
}

// Compiled reports whether a document has completed at least one successful
// render during the current run. Membership transitions are owned by the
// surrounding run context, never by this package.
type Compiled interface {
	Contains(doc DocumentID) bool
}

// Representation is one rendered variant of a document, as far as this
// package needs to know it.
type Representation interface {
	Document() DocumentID
	Name() string
	// ResetLastToRaw replaces the representation's last snapshot with the
	// raw, un-rendered source content, so a concurrent consumer reading the
	// same representation mid-transition sees raw content rather than a
	// half-finished render.
	ResetLastToRaw()
}

// Scheduler exposes the hooks the dependency trigger needs from the
// surrounding compiler.
type Scheduler interface {
	// MarkOutdated forces doc to be re-rendered even if its own staleness
	// check would say it is current.
	MarkOutdated(doc DocumentID)
	Representations(doc DocumentID) []Representation
}

// Protocol is the dual-mode capture operation for one build run: write mode
// captures a block's output into the store under a merge policy, read mode
// fetches a fragment from another document, triggering the dependency
// protocol when the producer has not been rendered this pass.
type Protocol struct {
	store     *Store
	notifier  Notifier
	compiled  Compiled
	scheduler Scheduler
}

// NewProtocol binds a protocol to one run's store and collaborators.
func NewProtocol(store *Store, notifier Notifier, compiled Compiled, scheduler Scheduler) *Protocol {
	return &Protocol{store: store, notifier: notifier, compiled: compiled, scheduler: scheduler}
}

// Store returns the run's capture store.
func (p *Protocol) Store() *Store { return p.store }

// Write captures the block's appends to sink and stores them for doc under
// name, applying the merge policy. The captured text never appears in the
// surrounding render. The document is marked as having produced output only
// after the block completes; behavior of a partially-written capture whose
// block fails is unspecified upstream, here the store is left untouched.
func (p *Protocol) Write(doc DocumentID, name Name, policy MergePolicy, sink Sink, block func() error) error {
	switch policy {
	case PolicyError, PolicyOverwrite, PolicyAppend:
	default:
		return &UsageError{Msg: "unknown merge policy " + string(policy)}
	}

	content, err := Capture(sink, block)
	if err != nil {
		return err
	}

	switch policy {
	case PolicyOverwrite:
		p.store.Set(doc, name, "")
	case PolicyAppend:
		if _, ok := p.store.Get(doc, name); !ok {
			p.store.Set(doc, name, "")
		}
	case PolicyError:
		if existing, ok := p.store.Get(doc, name); ok {
			if existing != content {
				return &NameConflictError{Doc: doc, Name: name}
			}
			// Identical re-capture: reset so the append below is idempotent.
		}
		p.store.Set(doc, name, "")
	}

	p.store.MarkProduced(doc)
	p.store.Append(doc, name, content)
	return nil
}

// Read returns the fragment captured for (target, name). When target is not
// the currently-rendering document, the dependency trigger runs first and may
// return *UnmetDependencyError, aborting the current attempt. Reading from
// the current document itself never triggers the protocol. Absence is
// reported through the second return value, never as an error.
func (p *Protocol) Read(current, target DocumentID, name Name) (string, bool, error) {
	if target != current {
		if err := p.trigger(target); err != nil {
			return "", false, err
		}
	}
	fragment, ok := p.store.Get(target, name)
	return fragment, ok, nil
}

// trigger declares the read dependency and, when the target has not been
// rendered this pass, invalidates its state and raises the retry signal.
func (p *Protocol) trigger(target DocumentID) error {
	p.notifier.VisitStarted(target)
	p.notifier.VisitEnded(target)

	if p.compiled.Contains(target) {
		// Rendered this pass: the stored captures are trustworthy.
		return nil
	}

	p.store.ResetFor(target)
	p.scheduler.MarkOutdated(target)

	reps := p.scheduler.Representations(target)
	for _, rep := range reps {
		rep.ResetLastToRaw()
	}

	err := &UnmetDependencyError{Doc: target}
	if len(reps) > 0 {
		err.Rep = reps[0]
	}
	return err
}
