package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func copyFixture(t *testing.T, fixture, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)
	return writeFile(t, dir, name, string(data))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "checking.csv", "a\n")
	writeFile(t, dir, "CARD.CSV", "a\n")
	writeFile(t, dir, "notes.txt", "a\n")
	writeFile(t, dir, "statement.xlsx", "a\n")
	writeFile(t, dir, "joint/2025-01.csv", "a\n")
	writeFile(t, dir, "joint/readme.md", "a\n")
	writeFile(t, dir, "joint/older/2024-12.csv", "a\n")

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	byName := map[string]FileInfo{}
	for _, f := range files {
		byName[f.Name] = f
	}
	assert.Equal(t, "", byName["checking.csv"].Account)
	assert.Equal(t, "", byName["CARD.CSV"].Account)
	assert.Equal(t, "joint", byName["2025-01.csv"].Account)
	assert.Equal(t, int64(2), byName["checking.csv"].Size)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestAccountName(t *testing.T) {
	assert.Equal(t, "checking", AccountName("/x/y/checking.csv"))
	assert.Equal(t, "chase", AccountName("chase.2025.csv"))
	assert.Equal(t, "noext", AccountName("noext"))
}

func TestIsCSV(t *testing.T) {
	assert.True(t, IsCSV("a.csv"))
	assert.True(t, IsCSV("a.CSV"))
	assert.False(t, IsCSV("a.csv.bak"))
	assert.False(t, IsCSV("a"))
}
