package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mangaplus-notifier/internal/model"
	"github.com/nhle/mangaplus-notifier/internal/store"
	"github.com/nhle/mangaplus-notifier/tests/testutil"
)

// setupConfig writes a config file whose data directory is a fresh temp
// dir and returns both paths.
func setupConfig(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	c := model.DefaultAppConfig()
	c.DataDir = filepath.Join(dir, "data")
	c.Notify.Backend = model.BackendTerminal

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, model.SaveConfig(path, c))
	return path, c.DataDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag values survive between Execute calls on the shared tree.
	versionCmd.Flags().Set("short", "false")
	configInitCmd.Flags().Set("defaults", "false")
	configInitCmd.Flags().Set("force", "false")
	historyCmd.Flags().Set("limit", "20")
	cfgFile = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestVersionOutput_ContainsFields(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	for _, field := range []string{"mangaplus-notifier version", "go version:", "platform:"} {
		assert.Contains(t, out, field)
	}
}

func TestConfigInitDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "--config", path, "config", "init", "--defaults")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	c, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTitleID, c.Title.ID)

	_, err = execute(t, "--config", path, "config", "init", "--defaults")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "--config", path, "config", "init", "--defaults", "--force")
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	path, dataDir := setupConfig(t)

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, dataDir)
	assert.Contains(t, out, "terminal")
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title:\n  id: -1\n"), 0o644))

	_, err := execute(t, "--config", path, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title.id")
}

func TestStatus_Empty(t *testing.T) {
	path, _ := setupConfig(t)

	out, err := execute(t, "--config", path, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing cached yet")
}

func TestStatus_Cached(t *testing.T) {
	path, dataDir := setupConfig(t)
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	snap := model.Snapshot{
		Title:        model.Title{ID: 100056, Name: "SPYxFAMILY"},
		LastChapters: []model.Chapter{testutil.Chapter(11, "#011", "Mission 11", 1700600000)},
	}
	require.NoError(t, store.NewSnapshotStore(dataDir).Save(testutil.EncodeSnapshot(snap)))

	out, err := execute(t, "--config", path, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "#011 - Mission 11")
	assert.Contains(t, out, "unacknowledged")
}

func TestAck(t *testing.T) {
	path, dataDir := setupConfig(t)
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	snap := model.Snapshot{LastChapters: []model.Chapter{testutil.Chapter(11, "#011", "", 1700600000)}}
	require.NoError(t, store.NewSnapshotStore(dataDir).Save(testutil.EncodeSnapshot(snap)))

	out, err := execute(t, "--config", path, "ack")
	require.NoError(t, err)
	assert.Equal(t, "Acknowledged #011", strings.TrimSpace(out))

	rec, err := store.NewAckStore(dataDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "#011", rec.LastAcknowledgedChapter)
}

func TestAck_NothingCached(t *testing.T) {
	path, _ := setupConfig(t)

	_, err := execute(t, "--config", path, "ack")
	require.Error(t, err)
}

func TestHistory_Empty(t *testing.T) {
	path, _ := setupConfig(t)

	out, err := execute(t, "--config", path, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No notifications yet.")
}

func TestHistoryTable(t *testing.T) {
	recs := []model.NotificationRecord{
		{Kind: model.NotificationNewChapter, ChapterName: "#011", State: model.NotificationStateAcknowledged},
		{Kind: model.NotificationUnacknowledged, ChapterName: "#010", State: model.NotificationStateTimedOut},
	}

	out := historyTable(recs).Render()
	for _, want := range []string{"CHAPTER", "#011", "#010", "new_chapter", "timed_out"} {
		assert.Contains(t, out, want)
	}
}

func TestValidators(t *testing.T) {
	var n int
	assert.NoError(t, positiveInt("Timeout", &n)("45"))
	assert.Equal(t, 45, n)
	assert.Error(t, positiveInt("Timeout", &n)("0"))
	assert.Error(t, positiveInt("Timeout", &n)("abc"))

	assert.NoError(t, validateURL("https://jumpg-webapi.tokyo-cdn.com"))
	assert.Error(t, validateURL("not a url"))
	assert.Error(t, validateRequired("Name")("  "))
}
