package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"

	"adspulse/internal/capture"
	"adspulse/internal/config"
	"adspulse/internal/exporter"
	"adspulse/internal/files"
	"adspulse/internal/infrastructure"
)

// Exit code 2 means the archive was read but nothing survived the
// heuristics; 1 covers hard failures.
const (
	exitError   = 1
	exitNoSpool = 2
)

func main() {
	harPath := flag.String("har", "", "HAR archive exported from the browser network panel (required)")
	outDir := flag.String("out", "", "spool directory for accepted bodies (defaults to data/spool relative to executable)")
	saveAll := flag.Bool("save-all", false, "spool any JSON body on a relevant URL without payload sniffing")
	previewPath := flag.String("preview", "", "also write a best-effort preview CSV to this path")
	verbose := flag.Bool("verbose", false, "debug logging")
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	if *harPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -har is required")
		flag.Usage()
		os.Exit(exitError)
	}

	// Initialize paths first to get default directories
	paths, err := config.GetPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize paths: %v\n", err)
		os.Exit(exitError)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Paths.ExecutableDir = paths.ExecutableDir
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *outDir == "" {
		*outDir = paths.SpoolDir
	} else if !filepath.IsAbs(*outDir) {
		// Keep explicit relative paths anchored to the working
		// directory; the file manager resolves bare relatives against
		// the data directory otherwise.
		if abs, err := filepath.Abs(*outDir); err == nil {
			*outDir = abs
		}
	}
	if err := paths.EnsureDirectories(); err != nil {
		infrastructure.WithError(logger, err).Error("Failed to create required directories")
		os.Exit(exitError)
	}
	if *verbose {
		paths.LogPathResolution()
	}

	manager := files.NewManager(paths)
	if !manager.FileExists(*harPath) {
		logger.Error("HAR archive not found", slog.String("path", *harPath))
		fmt.Fprintf(os.Stderr, "HAR archive not found: %s\n", *harPath)
		os.Exit(exitError)
	}

	ctx := infrastructure.EnsureRunID(context.Background())

	tp, err := infrastructure.InitializeTracing(cfg.Tracing, logger)
	if err != nil {
		logger.Warn("Failed to initialize tracing", slog.String("error", err.Error()))
	} else {
		defer tp.Shutdown(context.Background())
		var span trace.Span
		ctx, span = tp.Tracer.Start(ctx, "capture.import")
		defer span.End()
	}

	heur, err := capture.NewHeuristics(cfg.Capture.URLPattern)
	if err != nil {
		infrastructure.WithError(logger, err).Error("Invalid URL pattern")
		os.Exit(exitError)
	}

	var preview *capture.PreviewExtractor
	if *previewPath != "" {
		preview = capture.NewPreviewExtractor()
	}

	logger.InfoContext(ctx, "Starting HAR import",
		slog.String("har", *harPath),
		slog.String("spool_dir", *outDir),
		slog.Bool("save_all", *saveAll || cfg.Capture.SaveAll))

	store := capture.NewStore(*outDir, manager, infrastructure.WithComponent(logger, "spool"))
	importer := capture.NewImporter(heur, store, preview, *saveAll || cfg.Capture.SaveAll,
		infrastructure.WithComponent(logger, "capture"))

	stats, err := importer.Import(ctx, *harPath)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(logger, err).Error("Import failed")
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(exitError)
	}
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"entries": stats.Entries,
		"spooled": stats.Spooled,
	})

	if preview != nil && !preview.Empty() {
		pe := exporter.NewPreviewExporter(paths)
		if err := pe.ExportPreview(preview.Rows(), *previewPath); err != nil {
			infrastructure.WithError(logger, err).Error("Failed to write preview CSV",
				slog.String("path", *previewPath))
			os.Exit(exitError)
		}
		infrastructure.AddSpanEvent(ctx, "preview written", map[string]interface{}{
			"rows": len(preview.Rows()),
		})
		logger.InfoContext(ctx, "Preview written",
			slog.String("path", *previewPath),
			slog.Int("rows", len(preview.Rows())))
	}

	fmt.Println(importSummary(stats))

	if stats.Spooled == 0 {
		logger.Warn("Nothing spooled from archive", slog.String("har", *harPath))
		os.Exit(exitNoSpool)
	}
}

// loadConfig loads the layered configuration, honoring an explicit
// file override from the command line.
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		return config.LoadWithFile(configFile)
	}
	return config.Load()
}

// importSummary renders the per-archive counters as one console line.
func importSummary(stats *capture.ImportStats) string {
	return fmt.Sprintf("Spooled %d of %d entries (%d irrelevant URL, %d wrong type, %d unusable body, %d not metrics)",
		stats.Spooled, stats.Entries,
		stats.URLRejected, stats.TypeRejected, stats.BodySkipped, stats.SniffRejected)
}
