package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/mymoney/internal/ingestlog"
)

// newDataDir initializes a data folder and an inbox holding the chase
// checking fixture under the account folder "checking".
func newDataDir(t *testing.T, initArgs ...string) (dataDir, inbox string) {
	t.Helper()
	dataDir = t.TempDir()
	_, err := runMymoney(t, append([]string{"init", dataDir}, initArgs...)...)
	require.NoError(t, err)

	inbox = t.TempDir()
	copyTestdata(t, "chase_checking.csv", filepath.Join(inbox, "checking", "jan.csv"))
	return dataDir, inbox
}

func copyTestdata(t *testing.T, name, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestIngest_Folder(t *testing.T) {
	dataDir, inbox := newDataDir(t, "--no-git")
	copyTestdata(t, "uphold.csv", filepath.Join(inbox, "uphold.csv"))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.csv"), []byte("a,b\n1,2\n"), 0o644))

	out, err := runMymoney(t, "ingest", inbox, "--data-dir", dataDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "2 file(s): 6 expense(s), 3 trade(s)")

	assert.Len(t, lines(t, filepath.Join(dataDir, "data", "core", "expense.csv")), 7, "header + 6 rows")
	assert.Len(t, lines(t, filepath.Join(dataDir, "data", "core", "trade.csv")), 4, "header + 3 rows")

	raw, err := filepath.Glob(filepath.Join(dataDir, "data", "raw", "*", "*.csv"))
	require.NoError(t, err)
	assert.Len(t, raw, 2)
	sanity, err := filepath.Glob(filepath.Join(dataDir, "data", "sanity", "*", "chase - debit - checking (2025-01-22).csv"))
	require.NoError(t, err)
	assert.Len(t, sanity, 1)

	_, err = os.Stat(filepath.Join(inbox, "checking", "jan.csv"))
	assert.True(t, os.IsNotExist(err), "source moved into the archive")
	_, err = os.Stat(filepath.Join(inbox, "notes.csv"))
	assert.NoError(t, err, "unmatched files stay")

	entries, err := ingestlog.Read(dataDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].RunID, entries[1].RunID)
}

func TestIngest_SameAccountSameDayKeepsEveryExport(t *testing.T) {
	dataDir, inbox := newDataDir(t, "--no-git")
	copyTestdata(t, "chase_checking.csv", filepath.Join(inbox, "checking", "jan-copy.csv"))

	out, err := runMymoney(t, "ingest", inbox, "--data-dir", dataDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 file(s): 12 expense(s)")

	raw, err := filepath.Glob(filepath.Join(dataDir, "data", "raw", "*", "*.csv"))
	require.NoError(t, err)
	assert.Len(t, raw, 2)
	sanity, err := filepath.Glob(filepath.Join(dataDir, "data", "sanity", "*", "*.csv"))
	require.NoError(t, err)
	assert.Len(t, sanity, 2)

	want, err := os.ReadFile(filepath.Join("testdata", "chase_checking.csv"))
	require.NoError(t, err)
	for _, p := range raw {
		got, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}
}

func TestIngest_DryRun(t *testing.T) {
	dataDir, inbox := newDataDir(t, "--no-git")

	out, err := runMymoney(t, "ingest", inbox, "--data-dir", dataDir, "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 file(s): 6 expense(s)")

	_, err = os.Stat(filepath.Join(dataDir, "data", "core", "expense.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(inbox, "checking", "jan.csv"))
	assert.NoError(t, err)
}

func TestIngest_SQLite(t *testing.T) {
	dataDir, inbox := newDataDir(t, "--no-git", "--storage", "sqlite")

	out, err := runMymoney(t, "ingest", inbox, "--data-dir", dataDir)
	require.NoError(t, err, out)
	_, err = os.Stat(filepath.Join(dataDir, "data", "core", "mymoney.db"))
	require.NoError(t, err)

	out, err = runMymoney(t, "report", "--data-dir", dataDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Chase")
	assert.Contains(t, out, "3376.00")
}

func TestIngest_AutoCommit(t *testing.T) {
	dataDir, inbox := newDataDir(t)

	out, err := runMymoney(t, "ingest", inbox, "--data-dir", dataDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "committed")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dataDir
	subject, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(subject), "ingest: 1 file(s), 6 expense(s), 0 trade(s)")
}

func TestIngest_As(t *testing.T) {
	dataDir := t.TempDir()
	_, err := runMymoney(t, "init", dataDir, "--no-git")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "card.csv")
	require.NoError(t, os.WriteFile(file, []byte(
		"\"01/05/2025\",\"-12.50\",\"*\",\"\",\"COFFEE SHOP\"\n"+
			"\"01/09/2025\",\"200.00\",\"*\",\"\",\"AUTOMATIC PAYMENT - THANK YOU\"\n"), 0o644))

	out, err := runMymoney(t, "ingest", file, "--data-dir", dataDir, "--as", "wellsfargo/credit", "--account", "visa")
	require.NoError(t, err, out)
	assert.Contains(t, out, "wellsfargo/credit account=visa")

	rows := lines(t, filepath.Join(dataDir, "data", "core", "expense.csv"))
	require.Len(t, rows, 3)
	assert.Contains(t, rows[2], "transfer")

	_, err = runMymoney(t, "ingest", file, "--data-dir", dataDir, "--as", "wellsfargo")
	require.Error(t, err)
}

func TestDetect(t *testing.T) {
	_, inbox := newDataDir(t, "--no-git")

	out, err := runMymoney(t, "detect", filepath.Join(inbox, "checking", "jan.csv"), "--account", "checking")
	require.NoError(t, err, out)
	assert.Contains(t, out, "chase/debit account=checking rows=6")

	other := filepath.Join(t.TempDir(), "notes.csv")
	require.NoError(t, os.WriteFile(other, []byte("a,b\n1,2\n"), 0o644))
	out, err = runMymoney(t, "detect", other)
	require.NoError(t, err, out)
	assert.Contains(t, out, "no matching signature")

	_, err = runMymoney(t, "detect", filepath.Join(t.TempDir(), "statement.pdf"))
	require.Error(t, err)
}

func TestReport(t *testing.T) {
	dataDir, inbox := newDataDir(t, "--no-git")
	_, err := runMymoney(t, "ingest", inbox, "--data-dir", dataDir)
	require.NoError(t, err)

	out, err := runMymoney(t, "report", "--data-dir", dataDir, "--timeline", "--freq", "M")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2025-01-31")

	out, err = runMymoney(t, "report", "--data-dir", dataDir, "--last-dates")
	require.NoError(t, err, out)
	assert.Contains(t, out, "checking")
	assert.Contains(t, out, "2025-01-22")

	_, err = runMymoney(t, "report", "--data-dir", dataDir, "--by", "merchant")
	require.Error(t, err)
}

func TestReport_Empty(t *testing.T) {
	dataDir := t.TempDir()
	_, err := runMymoney(t, "init", dataDir, "--no-git")
	require.NoError(t, err)

	out, err := runMymoney(t, "report", "--data-dir", dataDir)
	require.Error(t, err)
	assert.Contains(t, out, "no expense records")
}
