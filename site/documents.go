package site

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/pagewright/pagewright/config"
	"github.com/pagewright/pagewright/fsutil"
	"github.com/pagewright/pagewright/renderer"
	"github.com/pagewright/pagewright/templatex"
)

// DocumentStore wraps source-tree access and markdown rendering.
type DocumentStore struct {
	root     string
	renderer *renderer.Renderer
	homeDoc  string
}

func newDocumentStore(root string, rend *renderer.Renderer, homeDoc string) *DocumentStore {
	return &DocumentStore{root: root, renderer: rend, homeDoc: homeDoc}
}

// LoadAll reads every markdown document from the source tree and returns it
// alongside the non-markdown asset paths. Layout fragments and ignored
// prefixes are excluded from both.
func (d *DocumentStore) LoadAll(cfg *config.Config) ([]*Document, []string, error) {
	files, err := fsutil.ListTree(d.root)
	if err != nil {
		return nil, nil, fmt.Errorf("list source tree: %w", err)
	}

	docs := make([]*Document, 0, len(files))
	assets := make([]string, 0)
	for _, file := range files {
		if cfg.Ignored(file) || isLayoutFragment(file) {
			continue
		}
		if !isMarkdown(file) {
			assets = append(assets, file)
			continue
		}
		raw, err := d.Read(file)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", file, err)
		}
		docs = append(docs, newDocument(file, raw))
	}
	if len(docs) == 0 {
		return nil, nil, fmt.Errorf("source tree %s has no markdown documents", d.root)
	}
	return docs, assets, nil
}

// Read returns the raw content of a source-relative file.
func (d *DocumentStore) Read(relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, filepath.FromSlash(relPath)))
}

// Exists reports whether a source-relative regular file is present.
func (d *DocumentStore) Exists(rel string) (bool, error) {
	info, err := os.Stat(filepath.Join(d.root, filepath.FromSlash(rel)))
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// RenderDocument runs one render attempt for doc within run: the directive
// pass (captures and includes) followed by markdown rendering. An unmet
// dependency surfaces as *capture.UnmetDependencyError; the partial output of
// the attempt is discarded by the caller.
func (d *DocumentStore) RenderDocument(run *Run, doc *Document) (page, error) {
	expanded, err := expandDocument(run, doc)
	if err != nil {
		return page{}, err
	}

	rendered, err := d.renderer.Render([]byte(expanded))
	if err != nil {
		return page{}, fmt.Errorf("render %s: %w", doc.Source, err)
	}

	sections := make([]templatex.TOCEntry, 0, len(rendered.Headings))
	for _, heading := range rendered.Headings {
		sections = append(sections, templatex.TOCEntry{ID: heading.ID, Text: heading.Text, Level: heading.Level})
	}

	title := rendered.MetaString("title")
	if title == "" {
		title = deriveTitle(doc.Source)
	}
	summary := rendered.MetaString("summary")
	if summary == "" {
		summary = summarize(rendered.PlainText)
	}

	return page{
		Source:     doc.Source,
		Route:      routeFromPath(doc.Source, d.homeDoc),
		OutputPath: htmlPathFrom(doc.Source, d.homeDoc),
		Title:      title,
		HTML:       template.HTML(rendered.HTML),
		Sections:   sections,
		Summary:    summary,
		PlainText:  rendered.PlainText,
	}, nil
}

// RenderFragment renders a source-relative markdown file outside the capture
// pipeline. Used for layout fragments.
func (d *DocumentStore) RenderFragment(rel string) (*renderer.RenderResult, error) {
	raw, err := d.Read(rel)
	if err != nil {
		return nil, err
	}
	return d.renderer.Render(raw)
}

// HomeDoc returns the configured home document path.
func (d *DocumentStore) HomeDoc() string { return d.homeDoc }

// Root returns the source tree root.
func (d *DocumentStore) Root() string { return d.root }
