package capture

import (
	"bytes"
	"errors"
	"testing"
)

type fakeNotifier struct {
	started []DocumentID
	ended   []DocumentID
}

func (n *fakeNotifier) VisitStarted(doc DocumentID) { n.started = append(n.started, doc) }
func (n *fakeNotifier) VisitEnded(doc DocumentID)   { n.ended = append(n.ended, doc) }

type fakeCompiled map[DocumentID]struct{}

func (c fakeCompiled) Contains(doc DocumentID) bool {
	_, ok := c[doc]
	return ok
}

type fakeRep struct {
	doc   DocumentID
	name  string
	last  string
	raw   string
	reset int
}

func (r *fakeRep) Document() DocumentID { return r.doc }
func (r *fakeRep) Name() string         { return r.name }
func (r *fakeRep) ResetLastToRaw() {
	r.last = r.raw
	r.reset++
}

type fakeScheduler struct {
	outdated []DocumentID
	reps     map[DocumentID][]Representation
}

func (s *fakeScheduler) MarkOutdated(doc DocumentID) { s.outdated = append(s.outdated, doc) }
func (s *fakeScheduler) Representations(doc DocumentID) []Representation {
	return s.reps[doc]
}

func newTestProtocol(compiled fakeCompiled) (*Protocol, *fakeNotifier, *fakeScheduler) {
	notifier := &fakeNotifier{}
	scheduler := &fakeScheduler{reps: make(map[DocumentID][]Representation)}
	return NewProtocol(NewStore(), notifier, compiled, scheduler), notifier, scheduler
}

func writeFragment(t *testing.T, p *Protocol, doc DocumentID, name Name, policy MergePolicy, content string) error {
	t.Helper()
	var buf bytes.Buffer
	return p.Write(doc, name, policy, &buf, func() error {
		buf.WriteString(content)
		return nil
	})
}

func TestProtocol_WriteThenReadSameDocument(t *testing.T) {
	p, notifier, _ := newTestProtocol(fakeCompiled{})

	if err := writeFragment(t, p, "a.md", "summary", PolicyError, "x"); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok, err := p.Read("a.md", "a.md", "summary")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !ok || got != "x" {
		t.Fatalf("read = %q, %v", got, ok)
	}
	// Self-reads never announce a visit, even when the document is not in
	// the compiled set yet.
	if len(notifier.started) != 0 || len(notifier.ended) != 0 {
		t.Fatalf("self-read announced visits: %v %v", notifier.started, notifier.ended)
	}
}

func TestProtocol_WriteCapturesWithoutEmitting(t *testing.T) {
	p, _, _ := newTestProtocol(fakeCompiled{})

	var buf bytes.Buffer
	buf.WriteString("before ")
	err := p.Write("a.md", "aside", PolicyError, &buf, func() error {
		buf.WriteString("captured text")
		return nil
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "before " {
		t.Fatalf("captured text leaked into output: %q", buf.String())
	}
	if got, _ := p.Store().Get("a.md", "aside"); got != "captured text" {
		t.Fatalf("stored %q", got)
	}
	if !p.Store().Produced("a.md") {
		t.Fatalf("document not marked as having produced output")
	}
}

func TestProtocol_ErrorPolicy(t *testing.T) {
	p, _, _ := newTestProtocol(fakeCompiled{})

	if err := writeFragment(t, p, "a.md", "summary", PolicyError, "x"); err != nil {
		t.Fatalf("first write: %v", err)
	}
	// Identical re-capture is idempotent.
	if err := writeFragment(t, p, "a.md", "summary", PolicyError, "x"); err != nil {
		t.Fatalf("identical re-capture: %v", err)
	}
	if got, _ := p.Store().Get("a.md", "summary"); got != "x" {
		t.Fatalf("stored %q, want %q", got, "x")
	}

	// Differing content is rejected.
	err := writeFragment(t, p, "a.md", "summary", PolicyError, "y")
	var conflict *NameConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected NameConflictError, got %v", err)
	}
	if conflict.Doc != "a.md" || conflict.Name != "summary" {
		t.Fatalf("conflict identifies %q/%q", conflict.Doc, conflict.Name)
	}
	if got, _ := p.Store().Get("a.md", "summary"); got != "x" {
		t.Fatalf("conflict must not modify the store, got %q", got)
	}
}

func TestProtocol_OverwritePolicy(t *testing.T) {
	p, _, _ := newTestProtocol(fakeCompiled{})
	if err := writeFragment(t, p, "a.md", "summary", PolicyError, "x"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writeFragment(t, p, "a.md", "summary", PolicyOverwrite, "y"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := p.Store().Get("a.md", "summary"); got != "y" {
		t.Fatalf("stored %q, want %q", got, "y")
	}
}

func TestProtocol_AppendPolicy(t *testing.T) {
	p, _, _ := newTestProtocol(fakeCompiled{})
	if err := writeFragment(t, p, "a.md", "summary", PolicyError, "x"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writeFragment(t, p, "a.md", "summary", PolicyAppend, "y"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got, _ := p.Store().Get("a.md", "summary"); got != "xy" {
		t.Fatalf("stored %q, want %q", got, "xy")
	}

	// Append with no prior value initializes to empty first.
	if err := writeFragment(t, p, "b.md", "notes", PolicyAppend, "z"); err != nil {
		t.Fatalf("append to absent: %v", err)
	}
	if got, _ := p.Store().Get("b.md", "notes"); got != "z" {
		t.Fatalf("stored %q, want %q", got, "z")
	}
}

func TestProtocol_WriteRejectsUnknownPolicyBeforeRendering(t *testing.T) {
	p, _, _ := newTestProtocol(fakeCompiled{})

	ran := false
	var buf bytes.Buffer
	err := p.Write("a.md", "summary", MergePolicy("merge"), &buf, func() error {
		ran = true
		return nil
	})
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("expected UsageError, got %v", err)
	}
	if ran {
		t.Fatalf("block must not run for an invalid policy")
	}
}

func TestProtocol_WriteBlockFailureLeavesStoreUntouched(t *testing.T) {
	p, _, _ := newTestProtocol(fakeCompiled{})

	boom := errors.New("boom")
	var buf bytes.Buffer
	err := p.Write("a.md", "summary", PolicyError, &buf, func() error {
		buf.WriteString("half")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected block error, got %v", err)
	}
	if _, ok := p.Store().Get("a.md", "summary"); ok {
		t.Fatalf("failed capture must not be stored")
	}
	if p.Store().Produced("a.md") {
		t.Fatalf("failed capture must not mark the document as produced")
	}
}

func TestProtocol_ReadTriggersDependencyProtocolForUncompiledTarget(t *testing.T) {
	p, notifier, scheduler := newTestProtocol(fakeCompiled{})
	rep := &fakeRep{doc: "a.md", name: "default", last: "<p>stale</p>", raw: "raw source"}
	scheduler.reps["a.md"] = []Representation{rep}

	// Stale capture from a previous pass.
	p.Store().Set("a.md", "summary", "stale")

	_, _, err := p.Read("b.md", "a.md", "summary")
	var unmet *UnmetDependencyError
	if !errors.As(err, &unmet) {
		t.Fatalf("expected UnmetDependencyError, got %v", err)
	}
	if unmet.Doc != "a.md" {
		t.Fatalf("signal identifies %q", unmet.Doc)
	}
	if unmet.Rep != rep {
		t.Fatalf("signal should carry the target's representation")
	}

	if len(notifier.started) != 1 || notifier.started[0] != "a.md" {
		t.Fatalf("visit started = %v", notifier.started)
	}
	if len(notifier.ended) != 1 || notifier.ended[0] != "a.md" {
		t.Fatalf("visit ended = %v", notifier.ended)
	}
	if _, ok := p.Store().Get("a.md", "summary"); ok {
		t.Fatalf("stale capture should have been reset")
	}
	if len(scheduler.outdated) != 1 || scheduler.outdated[0] != "a.md" {
		t.Fatalf("outdated = %v", scheduler.outdated)
	}
	if rep.last != "raw source" || rep.reset != 1 {
		t.Fatalf("snapshot not reset to raw: %q (resets %d)", rep.last, rep.reset)
	}
}

func TestProtocol_ReadFromCompiledTargetSkipsInvalidation(t *testing.T) {
	p, notifier, scheduler := newTestProtocol(fakeCompiled{"a.md": {}})
	rep := &fakeRep{doc: "a.md", name: "default", last: "<p>done</p>", raw: "raw source"}
	scheduler.reps["a.md"] = []Representation{rep}
	p.Store().Set("a.md", "summary", "Hello")

	got, ok, err := p.Read("b.md", "a.md", "summary")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !ok || got != "Hello" {
		t.Fatalf("read = %q, %v", got, ok)
	}

	// The visit pair is still announced for the dependency graph.
	if len(notifier.started) != 1 || len(notifier.ended) != 1 {
		t.Fatalf("expected one visit pair, got %v / %v", notifier.started, notifier.ended)
	}
	// No invalidation of any kind.
	if len(scheduler.outdated) != 0 {
		t.Fatalf("compiled target must not be marked outdated")
	}
	if rep.reset != 0 {
		t.Fatalf("compiled target's snapshot must not be reset")
	}
}

func TestProtocol_ReadAbsentFromCompiledTarget(t *testing.T) {
	p, _, _ := newTestProtocol(fakeCompiled{"a.md": {}})

	got, ok, err := p.Read("b.md", "a.md", "missing")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok || got != "" {
		t.Fatalf("expected absent, got %q, %v", got, ok)
	}
}

func TestProtocol_UnmetDependencyWithoutRepresentations(t *testing.T) {
	p, _, _ := newTestProtocol(fakeCompiled{})

	_, _, err := p.Read("b.md", "a.md", "summary")
	var unmet *UnmetDependencyError
	if !errors.As(err, &unmet) {
		t.Fatalf("expected UnmetDependencyError, got %v", err)
	}
	if unmet.Rep != nil {
		t.Fatalf("no representations registered, Rep should be nil")
	}
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		raw     string
		want    MergePolicy
		wantErr bool
	}{
		{raw: "", want: PolicyError},
		{raw: "error", want: PolicyError},
		{raw: "overwrite", want: PolicyOverwrite},
		{raw: "append", want: PolicyAppend},
		{raw: "merge", wantErr: true},
		{raw: "Append", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParsePolicy(tc.raw)
		if tc.wantErr {
			var usage *UsageError
			if !errors.As(err, &usage) {
				t.Fatalf("ParsePolicy(%q): expected UsageError, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePolicy(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
