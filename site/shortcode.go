package site

import (
	"fmt"
	"strings"

	"github.com/pagewright/pagewright/capture"
)

// Shortcode directives expose the capture protocol to document authors:
//
//	{{< capture NAME [POLICY] >}} ... {{< /capture >}}
//	{{< include DOC NAME >}}
//
// Directives are expanded before markdown rendering. A capture block's body
// is rendered into the output sink, captured, and removed, so it never
// appears at the call site. An include expands to the fragment captured by
// the named document, empty when absent.

const (
	directiveOpen  = "{{<"
	directiveClose = ">}}"
)

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeDirective
)

type node struct {
	kind      nodeKind
	text      string
	directive string
	args      []string
}

// expandDocument runs the directive pass for doc against the run's capture
// protocol and returns the expanded markdown source.
func expandDocument(run *Run, doc *Document) (string, error) {
	nodes, err := parseDirectives(doc.Raw)
	if err != nil {
		return "", fmt.Errorf("document %s: %w", doc.ID, err)
	}

	e := &expander{run: run, doc: doc, sink: &capture.ChunkSink{}}
	if _, err := e.expand(nodes, 0, false); err != nil {
		return "", err
	}
	return e.sink.String(), nil
}

type expander struct {
	run  *Run
	doc  *Document
	sink *capture.ChunkSink
}

// expand walks nodes from start, writing output to the sink. Inside a capture
// block it returns the index just past the matching close directive.
func (e *expander) expand(nodes []node, start int, insideCapture bool) (int, error) {
	i := start
	for i < len(nodes) {
		n := nodes[i]
		if n.kind == nodeText {
			if _, err := e.sink.WriteString(n.text); err != nil {
				return 0, err
			}
			i++
			continue
		}

		switch n.directive {
		case "capture":
			name, policy, err := captureArgs(n.args)
			if err != nil {
				return 0, fmt.Errorf("document %s: %w", e.doc.ID, err)
			}
			err = e.run.Protocol().Write(e.doc.ID, name, policy, e.sink, func() error {
				next, err := e.expand(nodes, i+1, true)
				if err != nil {
					return err
				}
				i = next
				return nil
			})
			if err != nil {
				return 0, err
			}

		case "/capture":
			if !insideCapture {
				return 0, &capture.UsageError{Msg: fmt.Sprintf("document %s: {{< /capture >}} without open block", e.doc.ID)}
			}
			return i + 1, nil

		case "include":
			if len(n.args) != 2 {
				return 0, &capture.UsageError{Msg: fmt.Sprintf("document %s: include takes a document and a capture name, got %d arguments", e.doc.ID, len(n.args))}
			}
			target, err := e.resolveTarget(n.args[0])
			if err != nil {
				return 0, err
			}
			fragment, ok, err := e.run.Protocol().Read(e.doc.ID, target, capture.Name(n.args[1]))
			if err != nil {
				return 0, err
			}
			if ok {
				if _, err := e.sink.WriteString(fragment); err != nil {
					return 0, err
				}
			}
			i++

		default:
			return 0, &capture.UsageError{Msg: fmt.Sprintf("document %s: unknown directive %q", e.doc.ID, n.directive)}
		}
	}

	if insideCapture {
		return 0, &capture.UsageError{Msg: fmt.Sprintf("document %s: capture block never closed", e.doc.ID)}
	}
	return i, nil
}

// resolveTarget maps an include's document argument to a known document
// identity. Self-references resolve without touching the document table.
func (e *expander) resolveTarget(raw string) (capture.DocumentID, error) {
	rel, err := normalizeRelPath(raw)
	if err != nil {
		return "", fmt.Errorf("document %s: include %q: %w", e.doc.ID, raw, err)
	}
	target := capture.DocumentID(rel)
	if target == e.doc.ID {
		return target, nil
	}
	if _, ok := e.run.Document(target); !ok {
		return "", fmt.Errorf("document %s: include %q: %w", e.doc.ID, raw, ErrUnknownDocument)
	}
	return target, nil
}

func captureArgs(args []string) (capture.Name, capture.MergePolicy, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", "", &capture.UsageError{Msg: fmt.Sprintf("capture takes a name and an optional merge policy, got %d arguments", len(args))}
	}
	name := strings.TrimSpace(args[0])
	if name == "" {
		return "", "", &capture.UsageError{Msg: "capture name must not be empty"}
	}
	raw := ""
	if len(args) == 2 {
		raw = args[1]
	}
	policy, err := capture.ParsePolicy(raw)
	if err != nil {
		return "", "", err
	}
	return capture.Name(name), policy, nil
}

// parseDirectives splits source into literal text and directive nodes.
func parseDirectives(source string) ([]node, error) {
	nodes := make([]node, 0, 8)
	rest := source
	for {
		idx := strings.Index(rest, directiveOpen)
		if idx < 0 {
			if rest != "" {
				nodes = append(nodes, node{kind: nodeText, text: rest})
			}
			return nodes, nil
		}
		if idx > 0 {
			nodes = append(nodes, node{kind: nodeText, text: rest[:idx]})
		}
		rest = rest[idx+len(directiveOpen):]

		end := strings.Index(rest, directiveClose)
		if end < 0 {
			return nil, &capture.UsageError{Msg: "unterminated directive"}
		}
		fields, err := splitArgs(strings.TrimSpace(rest[:end]))
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return nil, &capture.UsageError{Msg: "empty directive"}
		}
		nodes = append(nodes, node{kind: nodeDirective, directive: fields[0], args: fields[1:]})
		rest = rest[end+len(directiveClose):]

		// A directive on a line of its own should not leave a blank line behind.
		if len(rest) > 0 && rest[0] == '\n' {
			rest = rest[1:]
		}
	}
}

// splitArgs tokenizes a directive body: whitespace-separated words, with
// double quotes grouping a single argument.
func splitArgs(body string) ([]string, error) {
	args := make([]string, 0, 3)
	var current strings.Builder
	inQuotes := false
	hasToken := false

	flush := func() {
		if hasToken {
			args = append(args, current.String())
			current.Reset()
			hasToken = false
		}
	}

	for _, r := range body {
		if inQuotes {
			if r == '"' {
				args = append(args, current.String())
				current.Reset()
				inQuotes = false
				continue
			}
			current.WriteRune(r)
			continue
		}
		switch r {
		case '"':
			flush()
			inQuotes = true
		case ' ', '\t', '\n':
			flush()
		default:
			current.WriteRune(r)
			hasToken = true
		}
	}
	if inQuotes {
		return nil, &capture.UsageError{Msg: "unbalanced quote in directive"}
	}
	flush()
	return args, nil
}
