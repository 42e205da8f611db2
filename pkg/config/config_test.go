package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the settings directory at a throwaway location so tests
// never touch the real user configuration.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("MANIFOLD_TOKEN", "")
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "microsoft", cfg.Forge.Owner)
	assert.Equal(t, "winget-pkgs", cfg.Forge.Repo)
	assert.Equal(t, "master", cfg.Forge.DefaultBranch)
	assert.True(t, cfg.Forge.SubmitViaFork)
	assert.Equal(t, "yaml", cfg.Manifest.Format)
	assert.Equal(t, "manifests", cfg.Manifest.Root)
	assert.Equal(t, 2048, cfg.Download.MaxSizeMB)
	assert.Equal(t, 300, cfg.Download.TimeoutSeconds)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("MANIFOLD_FORGE_OWNER", "contoso")
	t.Setenv("MANIFOLD_MANIFEST_FORMAT", "json")
	t.Setenv("MANIFOLD_DOWNLOAD_MAX_SIZE_MB", "64")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "contoso", cfg.Forge.Owner)
	assert.Equal(t, "winget-pkgs", cfg.Forge.Repo)
	assert.Equal(t, "json", cfg.Manifest.Format)
	assert.Equal(t, 64, cfg.Download.MaxSizeMB)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Forge.Owner = "contoso"
	cfg.Forge.SubmitViaFork = false
	cfg.Download.TimeoutSeconds = 60

	path, err := Save(cfg)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "contoso", loaded.Forge.Owner)
	assert.False(t, loaded.Forge.SubmitViaFork)
	assert.Equal(t, 60, loaded.Download.TimeoutSeconds)
	// Untouched fields keep their defaults.
	assert.Equal(t, "manifests", loaded.Manifest.Root)
}

func TestLoad_RejectsMalformedFile(t *testing.T) {
	base := isolate(t)
	dir := filepath.Join(base, "manifold")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("forge = {{{\n"), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	isolate(t)

	token, err := LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, SaveToken("gho_testtoken"))

	dir, err := Dir()
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "gho_testtoken", token)

	require.NoError(t, ClearToken())
	token, err = LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing twice is not an error.
	require.NoError(t, ClearToken())
}

func TestLoadToken_EnvWins(t *testing.T) {
	isolate(t)
	require.NoError(t, SaveToken("gho_filetoken"))
	t.Setenv("MANIFOLD_TOKEN", "gho_envtoken")

	token, err := LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "gho_envtoken", token)
}
