package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainbowcity/stepflow/internal/config"
	"github.com/rainbowcity/stepflow/internal/store"
)

func writeTestScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	data := "name: test\nprompts:\n  - hello\n  - what is my name\ninstructions:\n  0: reply in English\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "STEPFLOW_MODEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("STEPFLOW_DB", filepath.Join(dir, "turns.db"))
	t.Setenv("STEPFLOW_LOG_DIR", filepath.Join(dir, "sessions"))
	return config.Load()
}

func TestSetupDialogueDefaults(t *testing.T) {
	cfg := testConfig(t)

	d, err := setupDialogue(cfg, "", "", true)
	require.NoError(t, err)
	defer d.close()

	assert.Equal(t, 7, d.script.Len(), "built-in script has seven steps")
	assert.NotEmpty(t, d.session.ID())
	assert.IsType(t, &store.SQLiteStore{}, d.store)
}

func TestSetupDialogueCustomScriptAndSession(t *testing.T) {
	cfg := testConfig(t)

	d, err := setupDialogue(cfg, writeTestScript(t), "my-session", true)
	require.NoError(t, err)
	defer d.close()

	assert.Equal(t, 2, d.script.Len())
	assert.Equal(t, "my-session", d.session.ID())

	// Session start is logged to the per-session JSONL file.
	logPath := filepath.Join(cfg.LogDir, "my-session.jsonl")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session_start")
}

func TestSetupDialogueBadScript(t *testing.T) {
	cfg := testConfig(t)

	_, err := setupDialogue(cfg, filepath.Join(t.TempDir(), "missing.yaml"), "", true)
	require.Error(t, err)
}

func TestSetupDialogueWithoutPersistence(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBPath = ""

	d, err := setupDialogue(cfg, writeTestScript(t), "", true)
	require.NoError(t, err)
	defer d.close()

	assert.IsType(t, store.Disabled{}, d.store)
}

func TestRunCommandMockFullScript(t *testing.T) {
	testConfig(t)

	root := newRootCommand()
	root.SetArgs([]string{"run", writeTestScript(t), "--mock", "--yes", "--session", "run-test"})
	require.NoError(t, root.Execute())

	// Both steps persisted: two operator turns, two assistant turns.
	db, err := store.OpenSQLite(os.Getenv("STEPFLOW_DB"), nil)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	records, err := db.History(t.Context(), "run-test")
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestRunCommandRejectsExtraArgs(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"run", "a.yaml", "b.yaml"})
	assert.Error(t, root.Execute())
}

func TestHistoryCommandRequiresStore(t *testing.T) {
	testConfig(t)
	t.Setenv("STEPFLOW_DB", "")

	root := newRootCommand()
	root.SetArgs([]string{"history", "some-session"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STEPFLOW_DB")
}

func TestHistoryCommandPrintsTurns(t *testing.T) {
	testConfig(t)

	// Seed the store through a mock run.
	root := newRootCommand()
	root.SetArgs([]string{"run", writeTestScript(t), "--mock", "--yes", "--session", "hist-test"})
	require.NoError(t, root.Execute())

	root = newRootCommand()
	root.SetArgs([]string{"history", "hist-test"})
	require.NoError(t, root.Execute())
}
