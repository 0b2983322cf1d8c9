package harvest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "adspulse/internal/errors"
	"adspulse/internal/shared/testutil"
)

func newTestHarvester(t *testing.T, cfg Config) *Harvester {
	t.Helper()
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeSpoolFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHarvester_New_Defaults(t *testing.T) {
	h := New(Config{}, nil)

	cfg := h.Config()
	assert.Equal(t, PolicySum, cfg.Policy)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, defaultMaxDepth, cfg.MaxDepth)
}

func TestHarvester_HarvestFiles_MergesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "a.json", `{"date": "2024-03-05", "impressions": 60, "clicks": 6}`),
		writeSpoolFile(t, dir, "b.json", `[{"day": "2024-03-05", "views": 40, "clicks": 4}]`),
	}

	h := newTestHarvester(t, Config{Policy: PolicySum, Workers: 4})
	result, err := h.HarvestFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.FilesScanned)
	assert.Equal(t, 2, result.Stats.FilesParsed)

	table := BuildTable(result.Acc, TableOptions{Policy: PolicySum})
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "2024-03-05", table.Rows[0][0])
	assert.Equal(t, "100", table.Rows[0][1], "views from both aliases combine")
	assert.Equal(t, "10", table.Rows[0][2])
}

func TestHarvester_HarvestFiles_SkipsJunk(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "good.json", `{"date": "2024-03-05", "clicks": 6}`),
		writeSpoolFile(t, dir, "html.json", `<html>rate limited</html>`),
		writeSpoolFile(t, dir, "broken.json", `{"date": "2024-03-05", "clicks":`),
		writeSpoolFile(t, dir, "empty.json", ``),
	}

	h := newTestHarvester(t, Config{})
	result, err := h.HarvestFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Stats.FilesScanned)
	assert.Equal(t, 1, result.Stats.FilesParsed)
	assert.Equal(t, 3, result.Stats.FilesSkipped)
	assert.Equal(t, []float64{6}, result.Acc.Values("2024-03-05", "clicks"))
}

func TestHarvester_HarvestFiles_UnreadablePathSkipped(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		dir, // a directory cannot be read as a file
		writeSpoolFile(t, dir, "good.json", `{"date": "2024-03-05", "clicks": 6}`),
	}

	h := newTestHarvester(t, Config{})
	result, err := h.HarvestFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.FilesSkipped)
	assert.Equal(t, 1, result.Stats.FilesParsed)
}

func TestHarvester_HarvestFiles_NoData(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "undated.json", `{"clicks": 5, "views": 100}`),
	}

	h := newTestHarvester(t, Config{})
	result, err := h.HarvestFiles(context.Background(), paths)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoData)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Stats.FilesParsed)
	assert.True(t, result.Acc.Empty())
}

func TestHarvester_HarvestFiles_FirstDateKeyDecides(t *testing.T) {
	dir := t.TempDir()

	t.Run("sorted order picks date over day", func(t *testing.T) {
		paths := []string{
			writeSpoolFile(t, dir, "two_keys.json",
				`{"date": "2024-03-05", "day": "2024-03-06", "views": 1}`),
		}
		h := newTestHarvester(t, Config{})
		result, err := h.HarvestFiles(context.Background(), paths)
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-03-05"}, result.Acc.Dates())
	})

	t.Run("record with unusable first date key contributes nothing", func(t *testing.T) {
		paths := []string{
			writeSpoolFile(t, dir, "bad_first.json",
				`{"day": "last_week", "timestamp": 1709600000, "views": 1}`),
		}
		h := newTestHarvester(t, Config{})
		_, err := h.HarvestFiles(context.Background(), paths)
		assert.ErrorIs(t, err, apperrors.ErrNoData)
	})
}

func TestHarvester_HarvestFiles_EpochTimestampWithOffset(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "epoch.json", `{"timestamp": 1709600000123, "clicks": 3}`),
	}

	h := newTestHarvester(t, Config{TZOffsetHours: -1})
	result, err := h.HarvestFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-03-04"}, result.Acc.Dates())
}

func TestHarvester_RangeTotals(t *testing.T) {
	dir := t.TempDir()
	nested := `{
		"start_date": "2024-03-01",
		"end_date": "2024-03-07",
		"days": [
			{"date": "2024-03-02", "spend": 4},
			{"date": "2024-03-03", "spend": 6}
		]
	}`
	flat := `{"date": "2024-03-02", "spend": 120, "period": "last_7_days"}`
	paths := []string{
		writeSpoolFile(t, dir, "nested.json", nested),
		writeSpoolFile(t, dir, "flat.json", flat),
	}

	t.Run("suppressed by default", func(t *testing.T) {
		h := newTestHarvester(t, Config{Policy: PolicySum})
		result, err := h.HarvestFiles(context.Background(), paths)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Stats.RangeTotalsSkipped, "only the flat record is a range total")
		assert.Equal(t, []float64{4}, result.Acc.Values("2024-03-02", "spend"))
		assert.Equal(t, []float64{6}, result.Acc.Values("2024-03-03", "spend"))
	})

	t.Run("included on demand", func(t *testing.T) {
		h := newTestHarvester(t, Config{Policy: PolicySum, IncludeRangeTotals: true})
		result, err := h.HarvestFiles(context.Background(), paths)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Stats.RangeTotalsSkipped)
		assert.Equal(t, []float64{120, 4}, result.Acc.Values("2024-03-02", "spend"))
	})

	t.Run("min-nonzero recovers the daily value", func(t *testing.T) {
		h := newTestHarvester(t, Config{Policy: PolicyMinNonzero, IncludeRangeTotals: true})
		result, err := h.HarvestFiles(context.Background(), paths)
		require.NoError(t, err)

		table := BuildTable(result.Acc, TableOptions{Policy: PolicyMinNonzero})
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "4", table.Rows[0][3], "the slipped range total loses to the daily spend")
	})
}

func TestHarvester_SiblingSuppression(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "siblings.json", `{"date": "2024-03-05", "spend_cents": 500, "spend": 999}`),
	}

	h := newTestHarvester(t, Config{})
	result, err := h.HarvestFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, []float64{5}, result.Acc.Values("2024-03-05", "spend"))

	freq := result.Acc.KeyFrequency()
	assert.Equal(t, []KeyCount{
		{Key: "spend", Count: 1},
		{Key: "spend_cents", Count: 1},
	}, freq, "the census counts suppressed fields too")
}

func TestHarvester_KeepRaw(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "sales.json", `{"date": "2024-03-05", "sales_cents": 1000}`),
	}

	t.Run("off", func(t *testing.T) {
		h := newTestHarvester(t, Config{})
		result, err := h.HarvestFiles(context.Background(), paths)
		require.NoError(t, err)

		assert.Equal(t, []string{"revenue"}, result.Acc.Metrics())
	})

	t.Run("on keeps the scaled pre-remap name", func(t *testing.T) {
		h := newTestHarvester(t, Config{KeepRaw: true})
		result, err := h.HarvestFiles(context.Background(), paths)
		require.NoError(t, err)

		assert.Equal(t, []string{"revenue", "sales"}, result.Acc.Metrics())
		assert.Equal(t, []float64{10}, result.Acc.Values("2024-03-05", "revenue"))
		assert.Equal(t, []float64{10}, result.Acc.Values("2024-03-05", "sales"))
	})
}

func TestHarvester_DepthLimitDropsWholeDocument(t *testing.T) {
	dir := t.TempDir()
	deep := `{"date": "2024-03-05", "clicks": 5, "deep": {"a": {"b": {"c": {"d": 1}}}}}`
	paths := []string{
		writeSpoolFile(t, dir, "deep.json", deep),
		writeSpoolFile(t, dir, "good.json", `{"date": "2024-03-05", "clicks": 7}`),
	}

	h := newTestHarvester(t, Config{MaxDepth: 3})
	result, err := h.HarvestFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.FilesTooDeep)
	assert.Equal(t, []float64{7}, result.Acc.Values("2024-03-05", "clicks"),
		"observations taken before the limit tripped are discarded with the document")
}

func TestHarvester_SkipKeysAndStringValues(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "rec.json",
			`{"date": "2024-03-05", "campaign_id": 123, "shop_id": "77", "currency": "USD", "revenue": "1,234.50", "note": "ok"}`),
	}

	h := newTestHarvester(t, Config{})
	result, err := h.HarvestFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, []string{"revenue"}, result.Acc.Metrics())
	assert.Equal(t, []float64{1234.5}, result.Acc.Values("2024-03-05", "revenue"))
}

func TestHarvester_DeterministicAcrossWorkerCounts(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 12; i++ {
		day := 1 + i%4
		content := fmt.Sprintf(`{"date": "2024-03-0%d", "impressions": %d, "clicks": %d, "spend_cents": %d}`,
			day, (i+1)*10, i+1, (i+1)*25)
		paths = append(paths, writeSpoolFile(t, dir, fmt.Sprintf("f%02d.json", i), content))
	}

	run := func(workers int) *Table {
		h := newTestHarvester(t, Config{Policy: PolicySum, Workers: workers})
		result, err := h.HarvestFiles(context.Background(), paths)
		require.NoError(t, err)
		return BuildTable(result.Acc, TableOptions{Policy: PolicySum, Derived: true})
	}

	serial := run(1)
	parallel := run(8)
	assert.Equal(t, serial, parallel)
}

func TestHarvester_LogsRunSummary(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "a.json", `{"date": "2024-03-05", "clicks": 2}`),
		writeSpoolFile(t, dir, "junk.json", `not json`),
	}

	logger, handler := testutil.NewTestLogger(t)
	h := New(Config{}, logger)
	_, err := h.HarvestFiles(context.Background(), paths)
	require.NoError(t, err)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "harvest complete")
	assert.True(t, handler.ContainsAttr("files_parsed", int64(1)))
	assert.True(t, handler.ContainsAttr("files_skipped", int64(1)))
	assert.True(t, handler.ContainsAttr("policy", "sum"))
}

func TestHarvester_HarvestFiles_ContextCancelled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSpoolFile(t, dir, "a.json", `{"date": "2024-03-05", "clicks": 1}`),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newTestHarvester(t, Config{})
	_, err := h.HarvestFiles(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
}
