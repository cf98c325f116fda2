package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Levels(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want zerolog.Level
	}{
		{"default", Config{}, zerolog.InfoLevel},
		{"debug flag wins", Config{Level: "error", Debug: true}, zerolog.DebugLevel},
		{"explicit level", Config{Level: "warn"}, zerolog.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closer, err := Init(tt.cfg)
			require.NoError(t, err)
			defer closer.Close()
			assert.Equal(t, tt.want, GetLogger().GetLevel())
		})
	}
}

func TestInit_BadLevel(t *testing.T) {
	_, err := Init(Config{Level: "loud"})
	require.Error(t, err)
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questwatch.log")
	closer, err := Init(Config{Output: path})
	require.NoError(t, err)

	log := WithComponent("monitor")
	log.Info().Str("serial", "A").Msg("device connected")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"monitor"`)
	assert.Contains(t, string(data), `"serial":"A"`)

	_, err = Init(Config{})
	require.NoError(t, err)
}
