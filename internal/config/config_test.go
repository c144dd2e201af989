package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir, "groceries")
	require.NoError(t, err)
	assert.Equal(t, "groceries", cfg.List.Name)
	assert.Equal(t, DefaultStoreFile, cfg.StoreFile)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "groceries", loaded.List.Name)
	assert.Equal(t, filepath.Join(dir, DefaultStoreFile), loaded.SnapshotPath())
}

func TestInitTwiceFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	_, err := Init(dir, "first")
	require.NoError(t, err)

	_, err = Init(dir, "second")
	assert.Error(t, err)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nothing-here"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadInvalidVersion(t *testing.T) {
	dir := t.TempDir()
	data := "version: 99\nlist:\n  name: x\nstore_file: state.json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(data), 0o600))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateStoreFile(t *testing.T) {
	cfg := NewDefault("x")
	cfg.StoreFile = "../escape.json"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg.StoreFile = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestFindDirWalksUp(t *testing.T) {
	root := t.TempDir()
	tidlogDir := filepath.Join(root, DefaultDir)
	_, err := Init(tidlogDir, "found")
	require.NoError(t, err)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	dir, err := FindDir(nested)
	require.NoError(t, err)
	assert.Equal(t, tidlogDir, dir)
}

func TestFindDirNotFound(t *testing.T) {
	_, err := FindDir(t.TempDir())
	assert.Error(t, err)
}

func TestTickIntervalDuration(t *testing.T) {
	cfg := NewDefault("x")
	assert.Equal(t, DefaultTickInterval, cfg.TickIntervalDuration())

	cfg.TUI.TickInterval = "250ms"
	assert.Equal(t, 250*time.Millisecond, cfg.TickIntervalDuration())

	cfg.TUI.TickInterval = "garbage"
	assert.Equal(t, DefaultTickInterval, cfg.TickIntervalDuration())
}
