package site

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pagewright/pagewright/templatex"
)

func (s *Service) pageData(doc page) *templatex.PageData {
	snapshot := s.layout.Snapshot()

	data := &templatex.PageData{
		SiteName:        s.siteName(),
		Title:           doc.Title,
		PageTitle:       s.pageTitle(doc.Title),
		HeaderHTML:      snapshot.Header,
		FooterHTML:      snapshot.Footer,
		ContentHTML:     doc.HTML,
		ContentTemplate: templatex.DefaultContentTemplate,
		Sections:        doc.Sections,
		ActivePath:      doc.Route,
		RequestedPath:   doc.Route,
		BaseURL:         s.cfg.BaseURL,
		SearchIndexURL:  path.Join("/", s.cfg.BaseURL, "search-index.json"),
		Breadcrumbs:     buildBreadcrumbs(doc.Route, doc.Title, s.cfg.BaseURL, s.siteName()),
	}
	data.Meta = s.buildMeta(doc.Summary, doc.Title, "article")
	return data
}

func (s *Service) renderPage(data *templatex.PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.Render(&buf, data); err != nil {
		return nil, err
	}
	if !s.cfg.Build.Minify {
		return buf.Bytes(), nil
	}
	return s.renderer.MinifyHTML(buf.Bytes())
}

func (s *Service) writeDocuments(baseDir string, docs []page) error {
	for _, doc := range docs {
		rendered, err := s.renderPage(s.pageData(doc))
		if err != nil {
			return fmt.Errorf("render page %s: %w", doc.Route, err)
		}

		target := filepath.Join(baseDir, filepath.FromSlash(doc.OutputPath))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, rendered, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// renderNotFoundPage renders a themed 404 page for static hosting setups.
func (s *Service) renderNotFoundPage() ([]byte, error) {
	data := s.pageData(page{
		Title: "404 - Not found",
		Route: "",
		HTML:  template.HTML(""),
	})
	data.ContentTemplate = templatex.NotFoundContentTemplate
	data.ActivePath = ""
	data.RequestedPath = ""
	data.Breadcrumbs = nil
	description := "The page you are looking for could not be found."
	data.Meta = s.buildMeta(description, description, "website")
	return s.renderPage(data)
}

func (s *Service) writeNotFoundPage(baseDir string) error {
	pageBytes, err := s.renderNotFoundPage()
	if err != nil {
		return err
	}
	output := filepath.Join(baseDir, "404.html")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(output, pageBytes, 0o644)
}

func (s *Service) buildMeta(summary, fallback, ogType string) templatex.Meta {
	if ogType == "" {
		ogType = "website"
	}
	description := metaDescription(summary, fallback)
	if description == "" {
		description = s.siteName()
	}
	return templatex.Meta{
		Description:   description,
		OpenGraphType: ogType,
		OpenGraphSite: s.siteName(),
	}
}

func (s *Service) siteName() string {
	name := strings.TrimSpace(s.cfg.SiteName)
	if name == "" {
		name = deriveTitle(s.cfg.HomeDoc)
	}
	if name == "" {
		return "Untitled"
	}
	return name
}

func (s *Service) pageTitle(raw string) string {
	title := strings.TrimSpace(raw)
	site := s.siteName()
	if title == "" {
		return site
	}
	if site == "" || strings.EqualFold(title, site) {
		return title
	}
	return fmt.Sprintf("%s - %s", title, site)
}
