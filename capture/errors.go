package capture

import "fmt"

// UsageError reports an invalid invocation: wrong argument count or an
// unrecognized option value. It is surfaced to the caller before any side
// effect and never retried.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// NameConflictError reports a re-capture under the error policy whose content
// differs from the already stored fragment. It indicates an authoring
// mistake, not a scheduling problem.
type NameConflictError struct {
	Doc  DocumentID
	Name Name
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("capture %q already set with different content for document %q", e.Name, e.Doc)
}

// UnmetDependencyError signals that a read touched a document that has not
// been rendered in the current pass. It aborts the consuming render attempt
// so the compiler can render the target first and retry; it is a control-flow
// signal for the retry loop, not a user-visible failure, and must never
// escape the compiler.
type UnmetDependencyError struct {
	Doc DocumentID
	// Rep is the target's first representation, nil when the target has no
	// representations registered yet.
	Rep Representation
}

func (e *UnmetDependencyError) Error() string {
	if e.Rep != nil {
		return fmt.Sprintf("unmet dependency on document %q (representation %q)", e.Doc, e.Rep.Name())
	}
	return fmt.Sprintf("unmet dependency on document %q", e.Doc)
}
