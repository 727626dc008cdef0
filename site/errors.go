package site

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pagewright/pagewright/capture"
)

var (
	// ErrInvalidPath is returned when a document reference fails validation.
	ErrInvalidPath = errors.New("invalid path")
	// ErrDependencyCycle signals that a compile pass made no progress while
	// documents were still waiting on each other's captures.
	ErrDependencyCycle = errors.New("dependency cycle")
	// ErrUnknownDocument is returned when an include names a document that
	// does not exist in the source tree.
	ErrUnknownDocument = errors.New("unknown document")
)

// CycleError reports the documents left unresolved when compilation stalls.
type CycleError struct {
	Docs []capture.DocumentID
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Docs))
	for i, doc := range e.Docs {
		names[i] = string(doc)
	}
	return fmt.Sprintf("dependency cycle: could not compile %s", strings.Join(names, ", "))
}

func (e *CycleError) Unwrap() error { return ErrDependencyCycle }
