package site

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pagewright/pagewright/config"
	"github.com/pagewright/pagewright/fsutil"
	"github.com/pagewright/pagewright/renderer"
	"github.com/pagewright/pagewright/templatex"
)

// Service orchestrates document compilation, indexing, and output writing.
type Service struct {
	cfg       *config.Config
	templates *templatex.Engine
	renderer  *renderer.Renderer
	logger    *slog.Logger

	documents *DocumentStore
	layout    *LayoutCache
}

// NewService constructs a Service instance.
func NewService(cfg *config.Config, templates *templatex.Engine, logger *slog.Logger) *Service {
	rend := renderer.New()
	return &Service{
		cfg:       cfg,
		templates: templates,
		renderer:  rend,
		logger:    logger,
		documents: newDocumentStore(cfg.SourceDir, rend, cfg.HomeDoc),
		layout:    newLayoutCache(),
	}
}

// Build compiles the whole source tree into static HTML assets. Each call is
// one run: capture store and compiled set start empty and are discarded when
// the call returns.
func (s *Service) Build(ctx context.Context) error {
	finalDir := s.cfg.OutputDir
	parent := filepath.Dir(finalDir)
	if parent == "" {
		parent = "."
	}

	tempDir, err := os.MkdirTemp(parent, ".__build-")
	if err != nil {
		return fmt.Errorf("create temp output dir: %w", err)
	}
	cleanTemp := true
	defer func() {
		if cleanTemp && tempDir != "" {
			_ = os.RemoveAll(tempDir)
		}
	}()

	if err := s.refreshLayout(); err != nil {
		return err
	}

	docs, assets, err := s.documents.LoadAll(s.cfg)
	if err != nil {
		return err
	}

	run := NewRun(docs)
	compiler := newCompiler(run, s.documents, s.logger, s.cfg.Build.MaxPasses)
	pages, err := compiler.CompileAll(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("compiled", "documents", run.Compiled().Len())

	for _, file := range assets {
		src := filepath.Join(s.cfg.SourceDir, filepath.FromSlash(file))
		dst := filepath.Join(tempDir, filepath.FromSlash(file))
		if err := fsutil.CopyFile(src, dst); err != nil {
			return fmt.Errorf("copy asset %s: %w", file, err)
		}
	}

	if err := s.writeDocuments(tempDir, pages); err != nil {
		return err
	}
	if err := s.writeNotFoundPage(tempDir); err != nil {
		return err
	}

	indexJSON, err := buildSearchIndex(pages)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(tempDir, "search-index.json"), indexJSON, 0o644); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}

	if s.templates.StaticDir != "" {
		dst := filepath.Join(tempDir, "theme")
		if err := fsutil.CopyTree(s.templates.StaticDir, dst); err != nil {
			return fmt.Errorf("copy theme assets: %w", err)
		}
	}

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("ensure output parent: %w", err)
	}

	backupDir := finalDir + ".old"
	if err := os.RemoveAll(backupDir); err != nil {
		return fmt.Errorf("clean backup dir: %w", err)
	}

	if err := os.Rename(finalDir, backupDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate old output: %w", err)
	}

	if err := os.Rename(tempDir, finalDir); err != nil {
		_ = os.Rename(backupDir, finalDir)
		return fmt.Errorf("activate new output: %w", err)
	}

	_ = os.RemoveAll(backupDir)
	cleanTemp = false
	tempDir = ""
	return nil
}

// refreshLayout renders the header/footer fragments into the layout cache.
// Fragments are plain markdown, outside the capture pipeline.
func (s *Service) refreshLayout() error {
	header, err := s.renderFragment(headerFragment)
	if err != nil {
		return err
	}
	footer, err := s.renderFragment(footerFragment)
	if err != nil {
		return err
	}
	s.layout.Update(header, footer)
	return nil
}

func (s *Service) renderFragment(rel string) (template.HTML, error) {
	exists, err := s.documents.Exists(rel)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", rel, err)
	}
	if !exists {
		return "", nil
	}
	result, err := s.documents.RenderFragment(rel)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", rel, err)
	}
	return template.HTML(result.HTML), nil
}

// SourceDir returns the root of the document source tree.
func (s *Service) SourceDir() string {
	return s.documents.Root()
}
