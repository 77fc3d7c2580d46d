package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmcdole/marquee/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		" info ":  slog.LevelInfo,
		"INFO+2":  slog.LevelInfo + 2,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestSetupLogger_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "marquee.log")

	logger, closer, err := SetupLogger(config.LoggingConfig{File: path, Level: "warn"})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "titleID", "7")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "7", rec["titleID"])
}

func TestSetupLogger_NoFile(t *testing.T) {
	logger, closer, err := SetupLogger(config.LoggingConfig{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LoggingConfig{Level: "debug", Format: "TEXT"})
	logger.Debug("fetch complete", "cache", "catalog")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=\"fetch complete\"")
	assert.Contains(t, out, "cache=catalog")
}

func TestNew_DefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, config.LoggingConfig{}).Info("started", "titles", 4)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "started", rec["msg"])
	assert.EqualValues(t, 4, rec["titles"])
}

func TestSetupLogger_Stderr(t *testing.T) {
	logger, closer, err := SetupLogger(config.LoggingConfig{File: Stderr})
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.NoError(t, closer.Close())
}

func TestSetupLogger_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, closer, err := SetupLogger(config.LoggingConfig{File: "~/logs/marquee.log"})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	assert.FileExists(t, filepath.Join(home, "logs", "marquee.log"))
}

func TestExpandHome_LeavesOtherPathsAlone(t *testing.T) {
	got, err := expandHome("~weird/marquee.log")
	require.NoError(t, err)
	assert.Equal(t, "~weird/marquee.log", got)
}
