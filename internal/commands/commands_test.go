package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersync-dev/ledgersync/internal/config"
	"github.com/ledgersync-dev/ledgersync/internal/runlog"
)

func TestResolveMonth(t *testing.T) {
	// Any date in the month selects that month.
	month, err := resolveMonth("2025-07-15")
	require.NoError(t, err)
	assert.Equal(t, 2025, month.Year())
	assert.Equal(t, time.July, month.Month())
	assert.Equal(t, 1, month.Day())

	_, err = resolveMonth("2025-07")
	assert.Error(t, err)

	// Default is the month before now, first of the month.
	month, err = resolveMonth("")
	require.NoError(t, err)
	assert.Equal(t, 1, month.Day())
	assert.True(t, month.Before(time.Now()))
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	for _, d := range []string{"ledger", "statements", "rules", "output", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir(), d)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Ledger.Workbook)

	data, err := os.ReadFile(filepath.Join(dir, "rules", "classification-rules.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "rules: []\n", string(data))
}

func TestResolvePaths(t *testing.T) {
	cfg := &config.Config{
		Ledger:     config.LedgerConfig{Workbook: "ledger/accounts.xlsx", OutputDir: "/abs/output"},
		Statements: config.StatementsConfig{Dir: "statements"},
	}
	resolvePaths(cfg, "/project")

	assert.Equal(t, filepath.Join("/project", "ledger", "accounts.xlsx"), cfg.Ledger.Workbook)
	assert.Equal(t, "/abs/output", cfg.Ledger.OutputDir)
	assert.Equal(t, filepath.Join("/project", "statements"), cfg.Statements.Dir)
	assert.Empty(t, cfg.Rules.File) // empty stays empty, meaning built-in rules
}

func TestRunLog(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, runlog.Append(dir, []runlog.Entry{
		{Timestamp: now, Month: "2025-07", Account: "BMO0798", Sheet: "BMO operating", Added: 5, Duplicates: 1},
		{Timestamp: now, Month: "2025-07", Account: "RBC4402", Sheet: "RBC chequing", Added: 3},
	}))

	var buf bytes.Buffer
	require.NoError(t, runLog(&buf, dir, ""))
	assert.Contains(t, buf.String(), "BMO operating")
	assert.Contains(t, buf.String(), "RBC chequing")

	// A row id filters down to its account.
	buf.Reset()
	require.NoError(t, runLog(&buf, dir, "BMO0798_12"))
	assert.Contains(t, buf.String(), "BMO operating")
	assert.NotContains(t, buf.String(), "RBC chequing")

	// A bare account id works the same way.
	buf.Reset()
	require.NoError(t, runLog(&buf, dir, "RBC4402"))
	assert.NotContains(t, buf.String(), "BMO operating")
	assert.Contains(t, buf.String(), "RBC chequing")
}

func TestRunLog_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runLog(&buf, t.TempDir(), ""))
	assert.Contains(t, buf.String(), "No runs recorded")
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["process"])
	assert.True(t, names["rules"])
	assert.True(t, names["log"])
}
