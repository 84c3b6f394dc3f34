package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsYAML = `
prod:
  db:
    host: db.internal
    pool: 20
  features:
    - search
dev:
  db:
    host: localhost
`

func TestParseSettings(t *testing.T) {
	t.Run("decodes environments", func(t *testing.T) {
		settings, err := ParseSettings([]byte(settingsYAML))
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"host": "db.internal", "pool": 20}, settings[EnvProd]["db"])
		assert.Equal(t, []any{"search"}, settings[EnvProd]["features"])
	})

	t.Run("empty input", func(t *testing.T) {
		settings, err := ParseSettings(nil)
		require.NoError(t, err)
		assert.NotNil(t, settings)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseSettings([]byte("prod: [unclosed"))
		assert.Error(t, err)
	})
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(settingsYAML), 0o600))

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Contains(t, settings, EnvDev)

	_, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSettings_ForEnvironment(t *testing.T) {
	settings, err := ParseSettings([]byte(settingsYAML))
	require.NoError(t, err)

	t.Run("prod is the base", func(t *testing.T) {
		assert.Equal(t, settings[EnvProd], settings.ForEnvironment(EnvProd))
	})

	t.Run("other environments merge over prod", func(t *testing.T) {
		dev := settings.ForEnvironment(EnvDev)

		assert.Equal(t, map[string]any{"host": "localhost", "pool": 20}, dev["db"])
		assert.Equal(t, []any{"search"}, dev["features"])
	})

	t.Run("unknown environments fall back to prod", func(t *testing.T) {
		assert.Equal(t, settings[EnvProd], settings.ForEnvironment(EnvTest))
	})

	t.Run("sources are not modified", func(t *testing.T) {
		dev := settings.ForEnvironment(EnvDev)
		dev["db"].(map[string]any)["host"] = "changed"

		assert.Equal(t, "db.internal", settings[EnvProd]["db"].(map[string]any)["host"])
		assert.Equal(t, "localhost", settings[EnvDev]["db"].(map[string]any)["host"])
	})

	t.Run("nil settings", func(t *testing.T) {
		var empty Settings
		assert.Equal(t, map[string]any{}, empty.ForEnvironment(EnvDev))
	})
}

func TestEnvironmentFromDotenv(t *testing.T) {
	t.Run("reads the variable from a file", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		os.Unsetenv(EnvVar)

		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte(EnvVar+"=dev\n"), 0o600))

		assert.Equal(t, EnvDev, EnvironmentFromDotenv(path))
	})

	t.Run("process environment wins", func(t *testing.T) {
		t.Setenv(EnvVar, EnvTest)

		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte(EnvVar+"=dev\n"), 0o600))

		assert.Equal(t, EnvTest, EnvironmentFromDotenv(path))
	})

	t.Run("defaults to prod", func(t *testing.T) {
		t.Setenv(EnvVar, "")

		assert.Equal(t, EnvProd, EnvironmentFromDotenv(filepath.Join(t.TempDir(), "missing.env")))
	})
}
