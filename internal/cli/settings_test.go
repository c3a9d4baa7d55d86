package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, Settings{LogLevel: "info", LogFormat: "text", MaxMicrosteps: 10000}, s)
}

func TestLoadSettings_DotenvAndEnvironment(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("STATECHART_LOG_FORMAT=json\nSTATECHART_MAX_MICROSTEPS=50\n"), 0o644))
	t.Setenv("STATECHART_LOG_LEVEL", "debug")
	// Already set variables win over the dotenv file.
	t.Setenv("STATECHART_MAX_MICROSTEPS", "25")
	// Registered so the value loaded from the file is cleaned up.
	t.Setenv("STATECHART_LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("STATECHART_LOG_FORMAT"))

	s, err := LoadSettings(file)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, 25, s.MaxMicrosteps)
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Setenv("STATECHART_MAX_MICROSTEPS", "many")
	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)

	t.Setenv("STATECHART_MAX_MICROSTEPS", "0")
	_, err = LoadSettings(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, Settings{LogLevel: "warn", LogFormat: "json"}, false)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger, err = NewLogger(&buf, Settings{LogLevel: "error", LogFormat: "text"}, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	_, err = NewLogger(&buf, Settings{LogLevel: "loud"}, false)
	assert.Error(t, err)
	_, err = NewLogger(&buf, Settings{LogLevel: "info", LogFormat: "xml"}, false)
	assert.Error(t, err)
}
