package site

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// normalizeRelPath canonicalizes a source-relative document reference: slash
// separators, a .md suffix, and no escape from the source root.
func normalizeRelPath(input string) (string, error) {
	candidate := strings.TrimSpace(input)
	candidate = strings.ReplaceAll(candidate, "\\", "/")
	candidate = strings.Trim(candidate, "/")
	if candidate == "" {
		return "", errors.Join(ErrInvalidPath, errors.New("empty path"))
	}
	if strings.Contains(candidate, "\x00") {
		return "", errors.Join(ErrInvalidPath, errors.New("contains null byte"))
	}
	if !strings.HasSuffix(strings.ToLower(candidate), ".md") {
		candidate += ".md"
	}

	cleaned := strings.TrimPrefix(path.Clean(candidate), "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.Join(ErrInvalidPath, errors.New("empty path"))
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.Join(ErrInvalidPath, errors.New("path escapes source root"))
	}
	return cleaned, nil
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// Layout fragments are rendered into the page chrome, never as documents.
func isLayoutFragment(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return base == "_header.md" || base == "_footer.md"
}

func routeFromPath(relPath, homeDoc string) string {
	slash := filepath.ToSlash(relPath)
	if strings.EqualFold(slash, homeDoc) {
		return "/"
	}
	slash = strings.TrimSuffix(slash, filepath.Ext(slash))
	if !strings.HasPrefix(slash, "/") {
		slash = "/" + slash
	}
	return slash
}

func htmlPathFrom(relPath, homeDoc string) string {
	rel := filepath.ToSlash(relPath)
	if strings.EqualFold(rel, homeDoc) {
		return "index.html"
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
}
