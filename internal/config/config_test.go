package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "host:track-devices-l", cfg.TrackRequest())
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := DefaultConfig()
	cfg.ServerAddr = "10.0.0.2:5037"
	cfg.TrackLong = false
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.Devices["1WMHH815K40123"] = DeviceConfig{Nickname: "living room", WiFiIP: "192.168.1.20"}
	require.NoError(t, Save(cfg))

	assert.FileExists(t, filepath.Join(dir, "questwatch", "config.yaml"))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, "living room", loaded.Nickname("1WMHH815K40123"))
	assert.Empty(t, loaded.Nickname("unknown"))
	assert.Equal(t, "host:track-devices", loaded.TrackRequest())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "questwatch"), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("server_addr: 127.0.0.1:5038\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5038", cfg.ServerAddr)
	assert.Equal(t, "adb", cfg.ADBPath)
	assert.True(t, cfg.History)
	assert.NotNil(t, cfg.Devices)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "questwatch"), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("devices: [oops"), 0o644))

	_, err := Load()
	require.ErrorContains(t, err, "parse config")
}
