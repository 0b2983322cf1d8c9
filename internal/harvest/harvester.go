package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "adspulse/internal/errors"
)

// defaultMaxDepth caps document nesting when the caller leaves it
// unset. Real payloads stay far below this; only a pathological or
// adversarial document gets anywhere near it.
const defaultMaxDepth = 200

// Config carries the tunables for one harvest run.
type Config struct {
	Policy             Policy
	TZOffsetHours      int
	IncludeRangeTotals bool
	KeepRaw            bool
	Derived            bool
	Workers            int
	MaxDepth           int
}

// Stats counts what a run saw on its way into the accumulator.
type Stats struct {
	FilesScanned       int
	FilesParsed        int
	FilesSkipped       int
	FilesTooDeep       int
	Records            int
	RangeTotalsSkipped int
}

func (s *Stats) add(o Stats) {
	s.FilesParsed += o.FilesParsed
	s.FilesSkipped += o.FilesSkipped
	s.FilesTooDeep += o.FilesTooDeep
	s.Records += o.Records
	s.RangeTotalsSkipped += o.RangeTotalsSkipped
}

// Result is a finished harvest: the merged accumulator plus counters.
type Result struct {
	Acc   *Accumulator
	Stats Stats
}

// Harvester drives the walk, classify, canonicalize and accumulate
// pipeline over captured payload files.
type Harvester struct {
	cfg    Config
	rules  *Rules
	canon  *Canonicalizer
	class  *Classifier
	logger *slog.Logger
}

// New builds a Harvester over DefaultRules. A nil logger falls back to
// slog.Default; zero Workers and MaxDepth get safe defaults.
func New(cfg Config, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicySum
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxDepth < 1 {
		cfg.MaxDepth = defaultMaxDepth
	}
	rules := DefaultRules()
	return &Harvester{
		cfg:    cfg,
		rules:  rules,
		canon:  NewCanonicalizer(rules),
		class:  NewClassifier(rules),
		logger: logger,
	}
}

// Config returns the effective configuration after defaulting.
func (h *Harvester) Config() Config {
	return h.cfg
}

// HarvestFiles runs the pipeline over every path, fanning file work out
// across cfg.Workers goroutines. Each worker accumulates into its own
// partial; partials merge in the paths' sorted order, so the result is
// identical no matter how the scheduler interleaves the workers.
//
// Per-file problems are skips, never fatal. Returns ErrNoData when no
// file yielded a dated numeric observation.
func (h *Harvester) HarvestFiles(ctx context.Context, paths []string) (*Result, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	results := make([]*fileResult, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.Workers)
	for i, path := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = h.harvestFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &Result{Acc: NewAccumulator()}
	total.Stats.FilesScanned = len(sorted)
	for _, fr := range results {
		if fr == nil {
			continue
		}
		total.Acc.Merge(fr.acc)
		total.Stats.add(fr.stats)
	}

	h.logger.InfoContext(ctx, "harvest complete",
		slog.Int("files_scanned", total.Stats.FilesScanned),
		slog.Int("files_parsed", total.Stats.FilesParsed),
		slog.Int("files_skipped", total.Stats.FilesSkipped),
		slog.Int("records", total.Stats.Records),
		slog.Int("range_totals_skipped", total.Stats.RangeTotalsSkipped),
		slog.Int("dates", len(total.Acc.Dates())),
		slog.Int("metrics", len(total.Acc.Metrics())),
		slog.String("policy", string(h.cfg.Policy)))

	if total.Acc.Empty() {
		return total, fmt.Errorf("parsed %d files, none yielded dated numeric rows: %w",
			total.Stats.FilesParsed, apperrors.ErrNoData)
	}
	return total, nil
}

type fileResult struct {
	acc   *Accumulator
	stats Stats
}

// harvestFile processes one spool file into its own accumulator.
// Unreadable, empty and non-JSON files are skipped. A document that
// trips the nesting limit is dropped whole, partial observations
// included.
func (h *Harvester) harvestFile(ctx context.Context, path string) *fileResult {
	fr := &fileResult{acc: NewAccumulator()}

	raw, err := os.ReadFile(path)
	if err != nil {
		h.logger.WarnContext(ctx, "skipping unreadable file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		fr.stats.FilesSkipped++
		return fr
	}
	txt := strings.TrimSpace(string(raw))
	if txt == "" || (txt[0] != '{' && txt[0] != '[') {
		h.logger.DebugContext(ctx, "skipping non-JSON file", slog.String("path", path))
		fr.stats.FilesSkipped++
		return fr
	}
	var data interface{}
	if err := json.Unmarshal([]byte(txt), &data); err != nil {
		h.logger.DebugContext(ctx, "skipping malformed JSON",
			slog.String("path", path),
			slog.String("error", err.Error()))
		fr.stats.FilesSkipped++
		return fr
	}
	fr.stats.FilesParsed++

	if err := h.harvestDocument(data, fr.acc, &fr.stats); err != nil {
		h.logger.WarnContext(ctx, "dropping document over nesting limit",
			slog.String("path", path),
			slog.Int("max_depth", h.cfg.MaxDepth))
		fr.acc = NewAccumulator()
		fr.stats.FilesTooDeep++
	}
	return fr
}

// harvestDocument walks one decoded document, feeding every object
// record through classification and canonicalization into acc.
func (h *Harvester) harvestDocument(root interface{}, acc *Accumulator, stats *Stats) error {
	return WalkObjects(root, h.cfg.MaxDepth, func(rec map[string]interface{}) {
		h.harvestRecord(rec, acc, stats)
	})
}

func (h *Harvester) harvestRecord(rec map[string]interface{}, acc *Accumulator, stats *Stats) {
	stats.Records++
	if !h.cfg.IncludeRangeTotals && h.class.IsRangeTotal(rec) {
		stats.RangeTotalsSkipped++
		return
	}
	date := h.recordDate(rec)
	if date == "" {
		return
	}
	keys := recordKeySet(rec)
	for _, k := range sortedKeys(rec) {
		if h.canon.IsDateKey(k) || h.canon.IsSkipKey(k) {
			continue
		}
		num, ok := CoerceNumber(rec[k])
		if !ok {
			continue
		}
		acc.CountKey(strings.ToLower(k))
		field, ok := h.canon.Canonicalize(k, num, keys)
		if !ok {
			continue
		}
		acc.Observe(date, field.Canonical, field.Value)
		if h.cfg.KeepRaw && field.Base != field.Canonical {
			acc.Observe(date, field.Base, field.Value)
		}
	}
}

// recordDate resolves the record's date from its first date-bearing
// key in sorted order. Only that one key is consulted: a record whose
// preferred date key fails to normalize contributes nothing, rather
// than silently sliding to a different field.
func (h *Harvester) recordDate(rec map[string]interface{}) string {
	for _, k := range sortedKeys(rec) {
		if !h.canon.IsDateKey(k) {
			continue
		}
		if date, ok := NormalizeDate(rec[k], h.cfg.TZOffsetHours); ok {
			return date
		}
		return ""
	}
	return ""
}
