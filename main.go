package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pagewright/pagewright/config"
	"github.com/pagewright/pagewright/site"
	"github.com/pagewright/pagewright/templatex"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to configuration file")
	sourceDir := flag.String("source", "", "override the document source directory")
	outputDir := flag.String("out", "", "override the output directory")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		panic(err)
	}
	if *sourceDir != "" {
		cfg.SourceDir = *sourceDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting", "name", APP_NAME, "version", versionString(), "source", cfg.SourceDir)

	templates, err := templatex.Load(cfg.TemplateDir)
	if err != nil {
		logger.Error("templates", "error", err)
		os.Exit(1)
	}

	svc := site.NewService(cfg, templates, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Build(ctx); err != nil {
		logger.Error("build", "error", err)
		os.Exit(1)
	}
	logger.Info("build completed", "output", cfg.OutputDir)
}

// loadConfig falls back to defaults when the default config file is absent,
// but an explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == "config.json" && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, err
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
