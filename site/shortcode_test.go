package site

import (
	"errors"
	"strings"
	"testing"

	"github.com/pagewright/pagewright/capture"
)

func newTestRun(t *testing.T, sources map[string]string) *Run {
	t.Helper()
	docs := make([]*Document, 0, len(sources))
	for rel, src := range sources {
		docs = append(docs, newDocument(rel, []byte(src)))
	}
	return NewRun(docs)
}

func expandByID(t *testing.T, run *Run, id capture.DocumentID) (string, error) {
	t.Helper()
	doc, ok := run.Document(id)
	if !ok {
		t.Fatalf("document %s not in run", id)
	}
	return expandDocument(run, doc)
}

func TestExpand_CaptureStoresWithoutEmitting(t *testing.T) {
	run := newTestRun(t, map[string]string{
		"a.md": "before\n{{< capture \"summary\" >}}\nHello\n{{< /capture >}}\nafter\n",
	})

	out, err := expandByID(t, run, "a.md")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if strings.Contains(out, "Hello") {
		t.Fatalf("captured text leaked into output: %q", out)
	}
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("surrounding text lost: %q", out)
	}

	fragment, ok := run.Store().Get("a.md", "summary")
	if !ok {
		t.Fatalf("fragment not stored")
	}
	if strings.TrimSpace(fragment) != "Hello" {
		t.Fatalf("stored %q", fragment)
	}
}

func TestExpand_IncludeFromSelf(t *testing.T) {
	run := newTestRun(t, map[string]string{
		"a.md": "{{< capture \"note\" >}}shared{{< /capture >}}\nBody: {{< include \"a.md\" \"note\" >}}\n",
	})

	out, err := expandByID(t, run, "a.md")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !strings.Contains(out, "Body: shared") {
		t.Fatalf("self include not expanded: %q", out)
	}
}

func TestExpand_IncludeAbsentFromCompiledTargetIsEmpty(t *testing.T) {
	run := newTestRun(t, map[string]string{
		"a.md": "x",
		"b.md": "[{{< include \"a.md\" \"missing\" >}}]",
	})
	run.Compiled().Add("a.md")

	out, err := expandByID(t, run, "b.md")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !strings.Contains(out, "[]") {
		t.Fatalf("absent fragment should expand to empty: %q", out)
	}
}

func TestExpand_IncludeNormalizesTargetPath(t *testing.T) {
	run := newTestRun(t, map[string]string{
		"guides/beta.md": "{{< capture \"tip\" >}}T{{< /capture >}}",
		"a.md":           "{{< include \"/guides/beta\" \"tip\" >}}",
	})
	run.Compiled().Add("guides/beta.md")
	run.Store().Set("guides/beta.md", "tip", "T")

	out, err := expandByID(t, run, "a.md")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if out != "T" {
		t.Fatalf("expanded to %q", out)
	}
}

func TestExpand_NestedCapture(t *testing.T) {
	run := newTestRun(t, map[string]string{
		"a.md": "{{< capture \"outer\" >}}O1 {{< capture \"inner\" >}}I{{< /capture >}}O2{{< /capture >}}rest",
	})

	out, err := expandByID(t, run, "a.md")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if out != "rest" {
		t.Fatalf("expanded to %q", out)
	}
	if got, _ := run.Store().Get("a.md", "outer"); got != "O1 O2" {
		t.Fatalf("outer = %q", got)
	}
	if got, _ := run.Store().Get("a.md", "inner"); got != "I" {
		t.Fatalf("inner = %q", got)
	}
}

func TestExpand_MergePolicies(t *testing.T) {
	run := newTestRun(t, map[string]string{
		"a.md": `{{< capture "v" >}}x{{< /capture >}}{{< capture "v" append >}}y{{< /capture >}}`,
		"b.md": `{{< capture "v" >}}x{{< /capture >}}{{< capture "v" overwrite >}}y{{< /capture >}}`,
		"c.md": `{{< capture "v" >}}x{{< /capture >}}{{< capture "v" >}}y{{< /capture >}}`,
	})

	if _, err := expandByID(t, run, "a.md"); err != nil {
		t.Fatalf("append doc: %v", err)
	}
	if got, _ := run.Store().Get("a.md", "v"); got != "xy" {
		t.Fatalf("append = %q", got)
	}

	if _, err := expandByID(t, run, "b.md"); err != nil {
		t.Fatalf("overwrite doc: %v", err)
	}
	if got, _ := run.Store().Get("b.md", "v"); got != "y" {
		t.Fatalf("overwrite = %q", got)
	}

	_, err := expandByID(t, run, "c.md")
	var conflict *capture.NameConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected NameConflictError, got %v", err)
	}
}

func TestExpand_UsageErrors(t *testing.T) {
	cases := map[string]string{
		"capture no args":        `{{< capture >}}x{{< /capture >}}`,
		"capture too many args":  `{{< capture "a" append extra >}}x{{< /capture >}}`,
		"capture unknown policy": `{{< capture "a" merge >}}x{{< /capture >}}`,
		"include one arg":        `{{< include "a.md" >}}`,
		"include three args":     `{{< include "a.md" "n" extra >}}`,
		"unknown directive":      `{{< transclude "a.md" >}}`,
		"unterminated block":     `{{< capture "a" >}}x`,
		"stray close":            `x{{< /capture >}}`,
		"unterminated directive": `{{< capture "a"`,
		"empty directive":        `{{<  >}}`,
		"unbalanced quote":       `{{< capture "a >}}x{{< /capture >}}`,
	}
	for name, src := range cases {
		run := newTestRun(t, map[string]string{"doc.md": src})
		_, err := expandByID(t, run, "doc.md")
		var usage *capture.UsageError
		if !errors.As(err, &usage) {
			t.Fatalf("%s: expected UsageError, got %v", name, err)
		}
	}
}

func TestExpand_IncludeUnknownDocument(t *testing.T) {
	run := newTestRun(t, map[string]string{
		"a.md": `{{< include "ghost.md" "x" >}}`,
	})
	_, err := expandByID(t, run, "a.md")
	if !errors.Is(err, ErrUnknownDocument) {
		t.Fatalf("expected ErrUnknownDocument, got %v", err)
	}
}

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		body string
		want []string
	}{
		{`capture "summary"`, []string{"capture", "summary"}},
		{`capture summary append`, []string{"capture", "summary", "append"}},
		{`include "guides/beta.md" "two words"`, []string{"include", "guides/beta.md", "two words"}},
		{`capture ""`, []string{"capture", ""}},
	}
	for _, tc := range cases {
		got, err := splitArgs(tc.body)
		if err != nil {
			t.Fatalf("splitArgs(%q): %v", tc.body, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("splitArgs(%q) = %v, want %v", tc.body, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("splitArgs(%q) = %v, want %v", tc.body, got, tc.want)
			}
		}
	}
}
