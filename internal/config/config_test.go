package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  port: "9090"
upstream:
  api_key: test-key
generation:
  model: gemini-2.0-flash-exp
  slide_target: 4
storage:
  backend: redis
  redis_addr: localhost:6379
`)
	m, err := NewManager(path)
	require.NoError(t, err)
	cfg := m.Config()
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "test-key", cfg.Upstream.APIKey)
	require.Equal(t, 4, cfg.Generation.SlideTarget)
	require.Equal(t, "redis", cfg.Storage.Backend)
	// defaults survive partial files
	require.Equal(t, "https://generativelanguage.googleapis.com", cfg.Upstream.Endpoint)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"server":{"port":"7000"},"storage":{"backend":"file"}}`)
	m, err := NewManager(path)
	require.NoError(t, err)
	require.Equal(t, "7000", m.Config().Server.Port)
}

func TestMissingFileUsesDefaults(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "8318", m.Config().Server.Port)
	require.Equal(t, "file", m.Config().Storage.Backend)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SLIDECAST_PORT", "6001")
	t.Setenv("SLIDECAST_API_KEYS", "k1, k2,")
	t.Setenv("SLIDECAST_DEBUG", "true")
	t.Setenv("SLIDECAST_SLIDE_TARGET", "3")

	m, err := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	cfg := m.Config()
	require.Equal(t, "6001", cfg.Server.Port)
	require.Equal(t, []string{"k1", "k2"}, cfg.Security.APIKeys)
	require.True(t, cfg.Security.Debug)
	require.Equal(t, 3, cfg.Generation.SlideTarget)
}

func TestGeminiAPIKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	m, err := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "from-env", m.Config().Upstream.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := Default()
	bad.Server.Port = "not-a-port"
	require.Error(t, bad.Validate())

	bad = Default()
	bad.Upstream.Endpoint = "://broken"
	require.Error(t, bad.Validate())

	bad = Default()
	bad.Storage.Backend = "cassandra"
	require.Error(t, bad.Validate())

	bad = Default()
	bad.Server.BasePath = "noslash"
	require.Error(t, bad.Validate())
}

func TestValidateExpandsPaths(t *testing.T) {
	cfg := Default()
	cfg.Storage.BaseDir = "./relative-data"
	require.NoError(t, cfg.Validate())
	require.True(t, filepath.IsAbs(cfg.Storage.BaseDir))
}

func TestReloadCallback(t *testing.T) {
	path := writeConfig(t, "config.yaml", "server:\n  port: \"9000\"\n")
	m, err := NewManager(path)
	require.NoError(t, err)

	var seen string
	m.OnReload(func(c *Config) { seen = c.Server.Port })

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9001\"\n"), 0o644))
	require.NoError(t, m.Reload())
	require.Equal(t, "9001", seen)
	require.Equal(t, "9001", m.Config().Server.Port)
}

func TestReloadPublishesPreparedSnapshot(t *testing.T) {
	t.Setenv("SLIDECAST_PORT", "6100")
	path := writeConfig(t, "config.yaml", "server:\n  port: \"9000\"\ngeneration:\n  slide_target: 5\n")
	m, err := NewManager(path)
	require.NoError(t, err)
	before := m.Config()
	require.Equal(t, "6100", before.Server.Port)

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9000\"\ngeneration:\n  slide_target: 7\n"), 0o644))
	require.NoError(t, m.Reload())

	// Reload swaps in a fresh snapshot; the env override is already
	// applied on it and the old pointer is left untouched.
	after := m.Config()
	require.NotSame(t, before, after)
	require.Equal(t, "6100", after.Server.Port)
	require.Equal(t, 7, after.Generation.SlideTarget)
	require.Equal(t, 5, before.Generation.SlideTarget)
}

func TestReloadInvalidFileKeepsCurrent(t *testing.T) {
	path := writeConfig(t, "config.yaml", "server:\n  port: \"9000\"\n")
	m, err := NewManager(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"not-a-port\"\n"), 0o644))
	require.Error(t, m.Reload())
	require.Equal(t, "9000", m.Config().Server.Port)
}
