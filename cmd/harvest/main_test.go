package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adspulse/internal/config"
	"adspulse/internal/exporter"
	"adspulse/internal/files"
	"adspulse/internal/harvest"
)

func TestApplyHarvestFlags(t *testing.T) {
	base := config.HarvestConfig{
		Policy:             "sum",
		TZOffsetHours:      0,
		IncludeRangeTotals: true, // turned on by config file
		Workers:            4,
		Glob:               "*.json",
	}

	t.Run("unpassed flags leave config alone", func(t *testing.T) {
		cfg := base
		applyHarvestFlags(&cfg, map[string]bool{}, harvestFlags{
			policy:  "max",
			workers: 16,
		})
		assert.Equal(t, base, cfg)
	})

	t.Run("passed flags override", func(t *testing.T) {
		cfg := base
		applyHarvestFlags(&cfg, map[string]bool{
			"policy":               true,
			"tz-offset-hours":      true,
			"include-range-totals": true,
			"workers":              true,
			"glob":                 true,
		}, harvestFlags{
			policy:             "median",
			tzOffsetHours:      -5,
			includeRangeTotals: false,
			workers:            8,
			glob:               "*.body.json",
		})

		assert.Equal(t, "median", cfg.Policy)
		assert.Equal(t, -5, cfg.TZOffsetHours)
		assert.False(t, cfg.IncludeRangeTotals, "an explicit flag can turn a config option off")
		assert.Equal(t, 8, cfg.Workers)
		assert.Equal(t, "*.body.json", cfg.Glob)
	})
}

func TestVisitedFlags(t *testing.T) {
	fs := flag.NewFlagSet("harvest", flag.ContinueOnError)
	fs.String("policy", "", "")
	fs.Int("workers", 0, "")
	fs.Bool("derived", false, "")

	require.NoError(t, fs.Parse([]string{"-policy", "min", "-derived"}))

	visited := visitedFlags(fs)
	assert.True(t, visited["policy"])
	assert.True(t, visited["derived"])
	assert.False(t, visited["workers"])
}

func TestCensusAttrs(t *testing.T) {
	counts := []harvest.KeyCount{
		{Key: "clicks", Count: 30},
		{Key: "impressions", Count: 12},
		{Key: "spend_cents", Count: 3},
	}

	t.Run("all within limit", func(t *testing.T) {
		attrs := censusAttrs(counts, 40)
		assert.Len(t, attrs, 3)
	})

	t.Run("caps at limit", func(t *testing.T) {
		attrs := censusAttrs(counts, 2)
		assert.Len(t, attrs, 2)
	})

	t.Run("empty census", func(t *testing.T) {
		assert.Empty(t, censusAttrs(nil, 40))
	})
}

func TestDiscoverInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "body.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EXPORT.JSON"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	d := files.NewDiscovery(dir)

	t.Run("default glob matches case-insensitively", func(t *testing.T) {
		found, err := discoverInputs(d, dir, config.DefaultSpoolGlob)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("explicit glob passes through", func(t *testing.T) {
		found, err := discoverInputs(d, dir, "body.*")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "body.json", found[0].Name)
	})
}

func TestWriteDailyCSV(t *testing.T) {
	makeTable := func(rows int) *harvest.Table {
		table := &harvest.Table{Header: []string{"date", "views"}}
		for i := 0; i < rows; i++ {
			table.Rows = append(table.Rows, []string{fmt.Sprintf("2024-01-%03d", i), "1"})
		}
		return table
	}

	t.Run("small table writes buffered", func(t *testing.T) {
		paths := config.GetPathsFrom(t.TempDir())
		out := filepath.Join(t.TempDir(), "daily.csv")
		require.NoError(t, writeDailyCSV(exporter.NewDailyExporter(paths), makeTable(3), out))

		raw, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, 4, len(strings.Split(strings.TrimSpace(string(raw)), "\n")))
	})

	t.Run("large table streams", func(t *testing.T) {
		paths := config.GetPathsFrom(t.TempDir())
		out := filepath.Join(t.TempDir(), "daily.csv")
		require.NoError(t, writeDailyCSV(exporter.NewDailyExporter(paths), makeTable(streamingRowThreshold), out))

		raw, err := os.ReadFile(out)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		assert.Equal(t, streamingRowThreshold+1, len(lines))
		assert.Equal(t, "date,views", lines[0])
	})
}
