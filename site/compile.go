package site

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pagewright/pagewright/capture"
)

// Compiler drives render attempts over a run's documents and reacts to unmet
// dependency signals by rendering producers before retrying their consumers.
type Compiler struct {
	run       *Run
	store     *DocumentStore
	logger    *slog.Logger
	maxPasses int
}

func newCompiler(run *Run, store *DocumentStore, logger *slog.Logger, maxPasses int) *Compiler {
	return &Compiler{run: run, store: store, logger: logger, maxPasses: maxPasses}
}

// CompileAll renders every document in the run, retrying consumers whose
// producers had not been rendered yet. It returns the rendered pages sorted
// by route. A pass that makes no progress while work remains is reported as
// a *CycleError; unmet dependency signals never escape this loop.
func (c *Compiler) CompileAll(ctx context.Context) ([]page, error) {
	pending := c.run.DocumentIDs()
	pages := make(map[capture.DocumentID]page, len(pending))

	for pass := 1; len(pending) > 0; pass++ {
		if pass > c.maxPasses {
			return nil, &CycleError{Docs: pending}
		}

		progressed := false
		next := make([]capture.DocumentID, 0, len(pending))
		queuedNext := make(map[capture.DocumentID]struct{}, len(pending))
		queue := func(id capture.DocumentID) {
			if _, dup := queuedNext[id]; dup {
				return
			}
			queuedNext[id] = struct{}{}
			next = append(next, id)
		}

		for _, id := range pending {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if c.run.Compiled().Contains(id) {
				continue
			}

			doc, ok := c.run.Document(id)
			if !ok {
				return nil, ErrUnknownDocument
			}

			c.run.SetCurrent(id)
			pg, err := c.store.RenderDocument(c.run, doc)
			c.run.SetCurrent("")

			var unmet *capture.UnmetDependencyError
			if errors.As(err, &unmet) {
				// Abort this attempt, render the producer first, retry the
				// consumer afterwards. The attempt's output is discarded.
				c.logger.Debug("render deferred",
					"document", string(id),
					"waiting_on", string(unmet.Doc),
					"pass", pass)
				queue(unmet.Doc)
				queue(id)
				continue
			}
			if err != nil {
				return nil, err
			}

			c.run.ClearOutdated(id)
			c.run.Compiled().Add(id)
			doc.Default().SetLast(string(pg.HTML))
			pages[id] = pg
			progressed = true
			c.logger.Debug("rendered", "document", string(id), "pass", pass)
		}

		if len(next) > 0 && !progressed {
			return nil, &CycleError{Docs: next}
		}
		pending = next
	}

	ordered := make([]page, 0, len(pages))
	for _, id := range c.run.DocumentIDs() {
		if pg, ok := pages[id]; ok {
			ordered = append(ordered, pg)
		}
	}
	return ordered, nil
}
