package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Empty(t, info.Path)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
	assert.Equal(t, 90, cfg.Report.DueWindowDays)
	assert.Equal(t, 200, cfg.Import.MaxSkippedRows)
}

func TestLoadFile_TomlAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000

[import]
max_duplicate_examples = 5

[report]
due_window_days = 60
`), 0644))

	t.Setenv(EnvDueWindowDays, "30")
	t.Setenv(EnvDatabaseURL, "postgres://u:p@localhost/studyleave?sslmode=disable")

	cfg, info, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, info.Path)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Import.MaxDuplicateExamples)
	assert.Equal(t, 40, cfg.Import.DataStartScanRows)
	assert.Equal(t, 30, cfg.Report.DueWindowDays)

	driver, dsn := DatabaseTarget(cfg)
	assert.Equal(t, "postgres", driver)
	assert.Contains(t, dsn, "localhost/studyleave")
}

func TestLoadFile_InvalidEnv(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)
}

func TestLoadFile_BadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = 1"), 0644))
	_, _, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("STUDYLEAVE_DATA_DIR=/from/local\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDYLEAVE_DATA_DIR=/from/env\nSTUDYLEAVE_DB_DRIVER=sqlite3\n"), 0644))
	t.Setenv(EnvDataDir, "")
	os.Unsetenv(EnvDataDir)
	t.Setenv(EnvDBDriver, "postgres")

	LoadDotEnv(dir)
	t.Cleanup(func() { os.Unsetenv(EnvDataDir) })

	assert.Equal(t, "/from/local", os.Getenv(EnvDataDir))
	assert.Equal(t, "postgres", os.Getenv(EnvDBDriver))
}

func TestEnsureDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg := DefaultConfig()
	cfg.Data.DataDir = dir

	got, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	for _, sub := range []string{"uploads", "exports", "backups"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	driver, dsn := DatabaseTarget(cfg)
	assert.Equal(t, "sqlite3", driver)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), dsn)
}
