package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, firstRun, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, firstRun)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, DefaultPollInterval, cfg.PollIntervalSeconds)
	assert.False(t, cfg.AutoSync)
	assert.True(t, cfg.NotifyNative)
	assert.True(t, cfg.MarkExportedInDB)
	assert.Equal(t, DefaultActiveStatuses, cfg.ActiveStatuses)

	// plik faktycznie powstał
	_, err = os.Stat(path)
	require.NoError(t, err)

	// drugi odczyt nie jest już pierwszym uruchomieniem
	_, firstRun, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, firstRun)
}

func TestLoadOrCreateParsesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"theme": "dark",
		"poll_interval_seconds": 30,
		"auto_sync": true,
		"push_feed_url": "wss://example/feed",
		"mark_exported_in_db": false
	}`), 0o644))

	cfg, firstRun, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, firstRun)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, 30, cfg.PollIntervalSeconds)
	assert.True(t, cfg.AutoSync)
	assert.Equal(t, "wss://example/feed", cfg.PushFeedURL)
	assert.False(t, cfg.MarkExportedInDB)
}

func TestNormalizeRejectsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"theme": "neon",
		"poll_interval_seconds": -3,
		"export_dir": "",
		"active_statuses": []
	}`), 0o644))

	cfg, _, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, cfg.Theme)
	assert.Equal(t, DefaultPollInterval, cfg.PollIntervalSeconds)
	assert.Equal(t, DefaultExportDir, cfg.ExportDir)
	assert.Equal(t, DefaultActiveStatuses, cfg.ActiveStatuses)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, _, err := LoadOrCreate(path)
	require.NoError(t, err)

	cfg.PollIntervalSeconds = 15
	cfg.AutoSync = true
	require.NoError(t, Save(path, cfg))

	got, _, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, 15, got.PollIntervalSeconds)
	assert.True(t, got.AutoSync)
}
