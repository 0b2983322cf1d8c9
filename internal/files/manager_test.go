package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adspulse/internal/config"
)

func newTestManager(t *testing.T) (*Manager, *config.Paths) {
	t.Helper()
	paths := config.GetPathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	return NewManager(paths), paths
}

func TestManager_FileExists(t *testing.T) {
	m, paths := newTestManager(t)

	assert.False(t, m.FileExists("reports/ads_daily_metrics.csv"))

	require.NoError(t, os.WriteFile(paths.GetReportPath("ads_daily_metrics.csv"), []byte("date\n"), 0644))
	assert.True(t, m.FileExists("reports/ads_daily_metrics.csv"))
	assert.True(t, m.FileExists(paths.GetReportPath("ads_daily_metrics.csv")), "absolute paths pass through")
}

func TestManager_WriteFile(t *testing.T) {
	m, paths := newTestManager(t)

	require.NoError(t, m.WriteFile("spool/capture.json", []byte(`{"clicks":1}`)))

	data, err := os.ReadFile(paths.GetSpoolPath("capture.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"clicks":1}`, string(data))
}

func TestManager_WriteFileCreatesParents(t *testing.T) {
	m, paths := newTestManager(t)

	require.NoError(t, m.WriteFile("archive/2024/old.json", []byte("{}")))
	assert.FileExists(t, filepath.Join(paths.DataDir, "archive", "2024", "old.json"))
}

func TestManager_EnsureDirectory(t *testing.T) {
	m, paths := newTestManager(t)

	require.NoError(t, m.EnsureDirectory("archive"))
	info, err := os.Stat(filepath.Join(paths.DataDir, "archive"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, m.EnsureDirectory("archive"), "idempotent on existing directories")
}

func TestManager_ResolvePathPrefixes(t *testing.T) {
	m, paths := newTestManager(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spool prefix", in: "spool/a.json", want: paths.GetSpoolPath("a.json")},
		{name: "reports prefix", in: "reports/daily.csv", want: paths.GetReportPath("daily.csv")},
		{name: "logs prefix", in: "logs/adspulse.log", want: paths.GetLogPath("adspulse.log")},
		{name: "bare name lands in data", in: "misc.json", want: filepath.Join(paths.DataDir, "misc.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.resolvePath(tt.in))
		})
	}
}
