package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points UserHomeDir at an empty temp dir so a developer's
// real ~/.pulsedeck/config.yaml can't leak into tests.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home) // windows
	return home
}

func TestDefaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultService, cfg.Service)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.Token)
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".pulsedeck")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("listen: 127.0.0.1:9000\nservice: filesvc\n"), 0o600))

	t.Setenv("PULSEDECK_SERVICE", "envsvc")

	cfg, err := Load("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen, "file value survives when env is unset")
	assert.Equal(t, "envsvc", cfg.Service, "env beats file")
}

func TestFlagsOverrideEnv(t *testing.T) {
	isolateHome(t)
	t.Setenv("PULSEDECK_LISTEN", "127.0.0.1:9000")
	t.Setenv("PULSEDECK_TOKEN", "envtoken")

	cfg, err := Load("127.0.0.1:9100", "flagtoken", "", "debug")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.Listen)
	assert.Equal(t, "flagtoken", cfg.Token)
	assert.Equal(t, "debug", cfg.LogLevel)
}
