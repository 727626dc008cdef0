package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BuildConfig groups build-loop settings.
type BuildConfig struct {
	// MaxPasses caps how many full compile passes the builder attempts before
	// reporting unresolved dependencies. Zero selects the default.
	MaxPasses int  `json:"maxPasses"`
	Minify    bool `json:"minify"`
}

// Config encapsulates build-time options.
type Config struct {
	SourceDir   string      `json:"sourceDir"`
	OutputDir   string      `json:"outputDir"`
	TemplateDir string      `json:"templateDir"`
	HomeDoc     string      `json:"homeDoc"`
	BaseURL     string      `json:"baseUrl"`
	SiteName    string      `json:"siteName"`
	LogLevel    string      `json:"logLevel"`
	Ignore      []string    `json:"ignore"`
	Build       BuildConfig `json:"build"`
}

const defaultMaxPasses = 64

// Load reads configuration from disk and applies sane defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every field at its default value.
func Default() *Config {
	return &Config{
		SourceDir: "content",
		OutputDir: "public",
		HomeDoc:   "index.md",
		BaseURL:   "/",
		LogLevel:  "info",
		Build:     BuildConfig{MaxPasses: defaultMaxPasses, Minify: true},
	}
}

func (c *Config) normalize() error {
	c.SourceDir = strings.TrimSpace(c.SourceDir)
	if c.SourceDir == "" {
		return fmt.Errorf("sourceDir must not be empty")
	}
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir must not be empty")
	}

	c.HomeDoc = strings.TrimPrefix(strings.TrimSpace(c.HomeDoc), "/")
	if c.HomeDoc == "" {
		c.HomeDoc = "index.md"
	}

	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		c.BaseURL = "/"
	}

	if c.Build.MaxPasses < 0 {
		return fmt.Errorf("build.maxPasses must not be negative")
	}
	if c.Build.MaxPasses == 0 {
		c.Build.MaxPasses = defaultMaxPasses
	}

	cleaned := make([]string, 0, len(c.Ignore))
	for _, prefix := range c.Ignore {
		prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "/")
		if prefix != "" {
			cleaned = append(cleaned, prefix)
		}
	}
	c.Ignore = cleaned
	return nil
}

// Ignored reports whether the given source-relative path matches one of the
// configured ignore prefixes.
func (c *Config) Ignored(rel string) bool {
	rel = strings.TrimPrefix(rel, "/")
	for _, prefix := range c.Ignore {
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}
	return false
}
