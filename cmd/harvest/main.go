package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"

	"adspulse/internal/config"
	apperrors "adspulse/internal/errors"
	"adspulse/internal/exporter"
	"adspulse/internal/files"
	"adspulse/internal/harvest"
	"adspulse/internal/infrastructure"
)

// Exit codes mirror the error taxonomy: 2 means nothing matched the
// input pattern, 3 means files parsed but no dated record survived.
const (
	exitError   = 1
	exitNoInput = 2
	exitNoData  = 3
)

// keyCensusLimit caps the key-frequency report in verbose runs.
const keyCensusLimit = 40

// streamingRowThreshold switches the CSV write to the row-by-row
// writer once the table no longer fits comfortably in one buffered
// pass. One row per day means this only triggers on multi-year spools.
const streamingRowThreshold = 2000

// harvestFlags carries the parsed command-line values before they are
// merged over the loaded configuration.
type harvestFlags struct {
	policy             string
	tzOffsetHours      int
	includeRangeTotals bool
	derived            bool
	keepRaw            bool
	workers            int
	glob               string
}

func main() {
	inDir := flag.String("in", "", "input directory of captured JSON files (defaults to data/spool relative to executable)")
	globFlag := flag.String("glob", "", "file pattern within the input directory")
	csvPath := flag.String("csv", "", "output CSV path (defaults to data/reports/ads_daily_metrics.csv)")
	policy := flag.String("policy", "", "reduction policy: sum | min-nonzero | min | max | median")
	tzOffset := flag.Int("tz-offset-hours", 0, "whole-hour shift applied to instant-bearing dates")
	includeRangeTotals := flag.Bool("include-range-totals", false, "keep records classified as range totals")
	derived := flag.Bool("derived", false, "append ctr,cpc,cpm,order_rate,roas columns")
	keepRaw := flag.Bool("keep-raw", false, "also emit un-remapped source columns")
	workers := flag.Int("workers", 0, "parallel file parsers (1 = sequential)")
	verbose := flag.Bool("verbose", false, "debug logging plus the key-frequency report")
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

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

	// Flags beat config, config beats defaults; only flags the user
	// actually passed override.
	applyHarvestFlags(&cfg.Harvest, visitedFlags(flag.CommandLine), harvestFlags{
		policy:             *policy,
		tzOffsetHours:      *tzOffset,
		includeRangeTotals: *includeRangeTotals,
		derived:            *derived,
		keepRaw:            *keepRaw,
		workers:            *workers,
		glob:               *globFlag,
	})

	reductionPolicy, err := harvest.ParsePolicy(cfg.Harvest.Policy)
	if err != nil {
		logger.Error("Invalid reduction policy",
			slog.String("policy", cfg.Harvest.Policy),
			slog.String("error", err.Error()))
		os.Exit(exitError)
	}

	if *inDir == "" {
		*inDir = paths.SpoolDir
	}
	if *csvPath == "" {
		*csvPath = paths.DailyMetricsCSV
	}
	if err := paths.EnsureDirectories(); err != nil {
		infrastructure.WithError(logger, err).Error("Failed to create required directories")
		os.Exit(exitError)
	}
	if *verbose {
		paths.LogPathResolution()
	}

	ctx := infrastructure.EnsureRunID(context.Background())

	tp, err := infrastructure.InitializeTracing(cfg.Tracing, logger)
	if err != nil {
		logger.Warn("Failed to initialize tracing", slog.String("error", err.Error()))
	} else {
		defer tp.Shutdown(context.Background())
		var span trace.Span
		ctx, span = tp.Tracer.Start(ctx, "harvest.run")
		defer span.End()
	}

	logger.InfoContext(ctx, "Starting harvest",
		slog.String("input_dir", *inDir),
		slog.String("glob", cfg.Harvest.Glob),
		slog.String("csv", *csvPath),
		slog.String("policy", string(reductionPolicy)),
		slog.Int("tz_offset_hours", cfg.Harvest.TZOffsetHours),
		slog.Int("workers", cfg.Harvest.Workers))

	discovery := files.NewDiscovery(paths.ExecutableDir)
	found, err := discoverInputs(discovery, *inDir, cfg.Harvest.Glob)
	if err != nil {
		infrastructure.WithError(logger, err).Error("Failed to scan input directory")
		os.Exit(exitError)
	}
	if len(found) == 0 {
		logger.Error("No input files matched",
			slog.String("input_dir", *inDir),
			slog.String("glob", cfg.Harvest.Glob))
		fmt.Fprintf(os.Stderr, "No files matching %s in %s\n", cfg.Harvest.Glob, *inDir)
		os.Exit(exitNoInput)
	}

	harvester := harvest.New(harvest.Config{
		Policy:             reductionPolicy,
		TZOffsetHours:      cfg.Harvest.TZOffsetHours,
		IncludeRangeTotals: cfg.Harvest.IncludeRangeTotals,
		KeepRaw:            cfg.Harvest.KeepRaw,
		Derived:            cfg.Harvest.Derived,
		Workers:            cfg.Harvest.Workers,
		MaxDepth:           cfg.Harvest.MaxDepth,
	}, infrastructure.WithComponent(logger, "harvest"))

	result, err := harvester.HarvestFiles(ctx, files.Paths(found))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		if errors.Is(err, apperrors.ErrNoData) {
			logger.Error("No usable records in input",
				slog.Int("files_scanned", result.Stats.FilesScanned),
				slog.Int("files_parsed", result.Stats.FilesParsed))
			fmt.Fprintln(os.Stderr, "No dated metric records found; no CSV written")
			os.Exit(exitNoData)
		}
		infrastructure.WithError(logger, err).Error("Harvest failed")
		os.Exit(exitError)
	}
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"files_scanned": result.Stats.FilesScanned,
		"files_parsed":  result.Stats.FilesParsed,
		"records":       result.Stats.Records,
		"policy":        string(reductionPolicy),
	})

	if *verbose {
		logger.DebugContext(ctx, "Numeric key census", censusAttrs(result.Acc.KeyFrequency(), keyCensusLimit)...)
	}

	table := harvest.BuildTable(result.Acc, harvest.TableOptions{
		Policy:  reductionPolicy,
		Derived: cfg.Harvest.Derived,
	})
	infrastructure.AddSpanEvent(ctx, "table assembled", map[string]interface{}{
		"rows":    len(table.Rows),
		"columns": len(table.Header),
	})

	daily := exporter.NewDailyExporter(paths)
	if err := writeDailyCSV(daily, table, *csvPath); err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(logger, err).Error("Failed to write daily metrics CSV",
			slog.String("path", *csvPath))
		os.Exit(exitError)
	}

	logger.InfoContext(ctx, "Daily metrics written",
		slog.String("path", *csvPath),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Header)))
	fmt.Printf("Wrote %d rows to %s\n", len(table.Rows), *csvPath)
}

// loadConfig loads the layered configuration, honoring an explicit
// file override from the command line.
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		return config.LoadWithFile(configFile)
	}
	return config.Load()
}

// discoverInputs scans dir for spool files. The default glob takes the
// JSON discovery path, which matches case-insensitively and orders by
// modification time; an explicit glob is passed through untouched.
func discoverInputs(d *files.Discovery, dir, glob string) ([]files.FileInfo, error) {
	if glob == config.DefaultSpoolGlob {
		return d.FindJSONFiles(dir)
	}
	return d.FindFilesByPattern(dir, glob)
}

// writeDailyCSV lays the table on disk, switching to the streaming
// writer for tables past streamingRowThreshold.
func writeDailyCSV(d *exporter.DailyExporter, table *harvest.Table, outputPath string) error {
	if len(table.Rows) >= streamingRowThreshold {
		return d.ExportDailyTableStreaming(table, outputPath)
	}
	return d.ExportDailyTable(table, outputPath)
}

// visitedFlags reports which flags were actually passed on the
// command line.
func visitedFlags(fs *flag.FlagSet) map[string]bool {
	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	return visited
}

// applyHarvestFlags overlays passed flags onto the loaded harvest
// configuration. Unpassed flags leave the config value alone, so a
// config file can still turn options on.
func applyHarvestFlags(cfg *config.HarvestConfig, visited map[string]bool, flags harvestFlags) {
	if visited["policy"] {
		cfg.Policy = flags.policy
	}
	if visited["tz-offset-hours"] {
		cfg.TZOffsetHours = flags.tzOffsetHours
	}
	if visited["include-range-totals"] {
		cfg.IncludeRangeTotals = flags.includeRangeTotals
	}
	if visited["derived"] {
		cfg.Derived = flags.derived
	}
	if visited["keep-raw"] {
		cfg.KeepRaw = flags.keepRaw
	}
	if visited["workers"] {
		cfg.Workers = flags.workers
	}
	if visited["glob"] {
		cfg.Glob = flags.glob
	}
}

// censusAttrs renders the top of the key-frequency census as slog
// attributes, one per key.
func censusAttrs(counts []harvest.KeyCount, limit int) []any {
	if len(counts) > limit {
		counts = counts[:limit]
	}
	attrs := make([]any, 0, len(counts))
	for _, kc := range counts {
		attrs = append(attrs, slog.Int(kc.Key, kc.Count))
	}
	return attrs
}
