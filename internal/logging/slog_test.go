package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/grouper/types"
)

func newBufferLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})

	return NewSlog(slog.New(handler)), buf
}

func TestSlogLogger_ImplementsInterface(t *testing.T) {
	t.Helper()
	var _ types.Logger = (*SlogLogger)(nil)
}

func TestNewSlog(t *testing.T) {
	logger, _ := newBufferLogger(slog.LevelDebug)

	require.NotNil(t, logger)
	require.NotNil(t, logger.Slog())
}

func TestSlogLogger_Levels(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)

	logger.Debug("debug message", "key", "value")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "level=WARN")
	assert.Contains(t, output, "level=ERROR")
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)

	// Debug and Info should be filtered out
	logger.Debug("debug message")
	logger.Info("info message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")

	// Warn and Error should appear
	logger.Warn("warn message")
	logger.Error("error message")

	output = buf.String()
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestSlogLogger_MultipleKeyValues(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.Info("roster loaded",
		"source", "static",
		"people", 12,
		"state", "loaded")

	output := buf.String()
	assert.Contains(t, output, "roster loaded")
	assert.Contains(t, output, "source=static")
	assert.Contains(t, output, "people=12")
	assert.Contains(t, output, "state=loaded")
}

func TestSlogLogger_Fatal(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal("cannot continue", "reason", "test")

	require.Equal(t, 1, code)
	require.Contains(t, buf.String(), "cannot continue")
}

func TestNew(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, err := New("debug", FormatJSON, buf)
		require.NoError(t, err)

		logger.Debug("hello", "k", 1)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "hello", entry["msg"])
		require.Equal(t, "DEBUG", entry["level"])
	})

	t.Run("text format is the default", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, err := New("", "", buf)
		require.NoError(t, err)

		logger.Debug("hidden")
		logger.Info("shown")

		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), "msg=shown")
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := New("verbose", "", nil)
		require.Error(t, err)

		_, err = New("info", "xml", nil)
		require.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
