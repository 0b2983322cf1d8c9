package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDiscovery_FindJSONFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "older.json", `{"a":1}`)
	writeTestFile(t, dir, "report.csv", "date\n")
	writeTestFile(t, dir, "UPPER.JSON", `{}`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	// Force a modtime gap so the sort order is observable.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "older.json"), past, past))

	d := NewDiscovery(dir)
	found, err := d.FindJSONFiles(dir)
	require.NoError(t, err)

	require.Len(t, found, 2)
	assert.Equal(t, "older.json", found[0].Name, "oldest first")
	assert.Equal(t, "UPPER.JSON", found[1].Name, "suffix match is case-insensitive")
	assert.Equal(t, filepath.Join(dir, "older.json"), found[0].Path)
}

func TestDiscovery_FindJSONFiles_MissingDirectory(t *testing.T) {
	d := NewDiscovery(t.TempDir())
	_, err := d.FindJSONFiles("does-not-exist")
	assert.Error(t, err)
}

func TestDiscovery_FindFilesByPattern(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "api_shops_20240305_101500.json", `{}`)
	writeTestFile(t, dir, "api_shops_20240306_101500.json", `{}`)
	writeTestFile(t, dir, "notes.txt", "x")

	d := NewDiscovery(dir)

	tests := []struct {
		name    string
		pattern string
		want    int
	}{
		{name: "json glob", pattern: "*.json", want: 2},
		{name: "narrower glob", pattern: "*20240305*.json", want: 1},
		{name: "no matches", pattern: "*.xml", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := d.FindFilesByPattern(dir, tt.pattern)
			require.NoError(t, err)
			assert.Len(t, found, tt.want)
		})
	}
}

func TestDiscovery_RelativeDirResolvesAgainstBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "data", "spool"), 0755))
	writeTestFile(t, filepath.Join(base, "data", "spool"), "a.json", `{}`)

	d := NewDiscovery(base)
	found, err := d.FindJSONFiles(filepath.Join("data", "spool"))
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestPaths(t *testing.T) {
	files := []FileInfo{
		{Path: "/spool/a.json"},
		{Path: "/spool/b.json"},
	}
	assert.Equal(t, []string{"/spool/a.json", "/spool/b.json"}, Paths(files))
	assert.Empty(t, Paths(nil))
}
