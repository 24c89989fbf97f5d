package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nest-egg/internal/common"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", `
database:
  path: /tmp/nestegg-test.db
owner:
  id: alice
logging:
  level: debug
  format: json
`)

	settings, err := Load(viper.New(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/nestegg-test.db", settings.DatabasePath)
	assert.Equal(t, "alice", settings.OwnerID)
	assert.Equal(t, DefaultServerAddr, settings.ServerAddr)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, "json", settings.LogFormat)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "owner:\n  id: alice\n")
	t.Setenv("NESTEGG_OWNER_ID", "bob")

	settings, err := Load(viper.New(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "bob", settings.OwnerID)
}

func TestLoadRejectsBadLevel(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "logging:\n  level: chatty\n")

	_, err := Load(viper.New(), cfg)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestValidateMissingOwner(t *testing.T) {
	s := &Settings{DatabasePath: "x.db", LogLevel: "info"}
	assert.ErrorIs(t, s.Validate(), common.ErrMissingConfig)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "NESTEGG_TEST_DOTENV=loaded\n")
	t.Cleanup(func() { _ = os.Unsetenv("NESTEGG_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "loaded", os.Getenv("NESTEGG_TEST_DOTENV"))

	assert.Error(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("NESTEGG_DIR", "/data")

	assert.Equal(t, filepath.Join(home, "db.sqlite"), ExpandPath("~/db.sqlite"))
	assert.Equal(t, "/data/db.sqlite", ExpandPath("$NESTEGG_DIR/db.sqlite"))
	assert.Equal(t, "", ExpandPath(""))
}
