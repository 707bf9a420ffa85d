package platform_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/personakit/personakit/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, platform.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
document: data/profiles.yaml
adapter: fs
versioning: false
read_only: true
context_file: out/context.txt
locale: es
log_level: debug
`)

	cfg, err := platform.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data/profiles.yaml", cfg.Document)
	assert.Equal(t, platform.AdapterFS, cfg.Adapter)
	require.NotNil(t, cfg.Versioning)
	assert.False(t, *cfg.Versioning)
	assert.True(t, cfg.ReadOnly)
	assert.Equal(t, "es", cfg.Locale)
	assert.Len(t, cfg.Options(), 5)

	t.Setenv(platform.EnvDocument, "")
	assert.Equal(t, filepath.Join(dir, "data", "profiles.yaml"), platform.ResolveDocument("", cfg))
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"Unknown Adapter":   "adapter: mongo\n",
		"Unknown Log Level": "log_level: loud\n",
		"Unknown Locale":    "locale: tlh\n",
		"Malformed YAML":    "document: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := platform.LoadConfig(writeConfig(t, t.TempDir(), body))
			assert.Error(t, err)
		})
	}

	_, err := platform.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolveDocument(t *testing.T) {
	cfg := &platform.FileConfig{Document: "/etc/bot/profiles.json"}

	t.Run("Flag Wins", func(t *testing.T) {
		t.Setenv(platform.EnvDocument, "env.json")
		assert.Equal(t, "flag.json", platform.ResolveDocument("flag.json", cfg))
	})

	t.Run("Env Before Config", func(t *testing.T) {
		t.Setenv(platform.EnvDocument, "env.json")
		assert.Equal(t, "env.json", platform.ResolveDocument("", cfg))
	})

	t.Run("Config Before Default", func(t *testing.T) {
		t.Setenv(platform.EnvDocument, "")
		assert.Equal(t, "/etc/bot/profiles.json", platform.ResolveDocument("", cfg))
	})

	t.Run("Default", func(t *testing.T) {
		t.Setenv(platform.EnvDocument, "")
		assert.Equal(t, platform.DefaultDocument, platform.ResolveDocument("", nil))
	})
}

func TestDiscoverConfig(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := platform.DiscoverConfig(nested)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	writeConfig(t, dir, "document: profiles.json\n")
	cfg, err = platform.DiscoverConfig(nested)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "profiles.json", cfg.Document)
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := platform.ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := platform.ParseLogLevel("verbose")
	assert.Error(t, err)
}
