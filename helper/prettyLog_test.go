package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		require.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})

	t.Run("Level option filters records", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn},
		})

		assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug), "Expected debug to be disabled at warn level")
		assert.True(t, handler.Enabled(context.Background(), slog.LevelError), "Expected error to be enabled at warn level")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	levels := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelDebug, "DEBUG:"},
		{slog.LevelInfo, "INFO:"},
		{slog.LevelWarn, "WARN:"},
		{slog.LevelError, "ERROR:"},
	}
	for _, tc := range levels {
		t.Run("Handle "+tc.expected+" record", func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

			record := slog.NewRecord(time.Now(), tc.level, "graph message", 0)
			record.AddAttrs(slog.Int("node_count", 42))

			err := handler.Handle(ctx, record)

			assert.NoError(t, err, "Expected Handle to not return an error")
			output := buf.String()
			assert.Contains(t, output, tc.expected, "Expected output to contain the level")
			assert.Contains(t, output, "graph message", "Expected output to contain the message")
			assert.Contains(t, output, "node_count", "Expected output to contain attribute key")
			assert.Contains(t, output, "42", "Expected output to contain attribute value")
		})
	}

	t.Run("Handle record with no attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "simple message", 0)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "{}", "Expected output to contain empty JSON object for attributes")
	})

	t.Run("Handle formats timestamp", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "time test", 0)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err)
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String(), "Expected output to contain properly formatted timestamp")
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Logger writes through PrettyHandler", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelDebug)

		logger.Debug("Created entity graph", slog.Int("edge_count", 3))

		assert.Contains(t, buf.String(), "Created entity graph")
		assert.Contains(t, buf.String(), "edge_count")
	})

	t.Run("Discard logger accepts records", func(t *testing.T) {
		logger := DiscardLogger()
		require.NotNil(t, logger)
		logger.Info("dropped")
	})
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel(""), "Expected empty level to fall back to info")
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"), "Expected unknown level to fall back to info")
}
