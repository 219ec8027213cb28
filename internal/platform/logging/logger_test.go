package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesKeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("component", "ingestion")

	logger.WarnContext(context.Background(), "odds snapshot skipped", "game_id", int64(42), "error", errors.New("live"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "odds snapshot skipped", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ingestion", fields["component"])
	assert.Equal(t, int64(42), fields["game_id"])
	assert.Equal(t, "live", fields["error"])
}

func TestLoggerDanglingKey(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Info("dangling", "only_key")

	require.Len(t, logs.All(), 1)
	_, ok := logs.All()[0].ContextMap()["only_key"]
	assert.True(t, ok)
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Default()
	SetDefault(FromZap(zap.New(core)))
	t.Cleanup(func() { SetDefault(prev) })

	var logger *Logger
	logger.Info("from nil")

	require.Len(t, logs.All(), 1)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestMirrorReceivesWrittenRecords(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.Debug("below level")
	logger.Warn("sweep forced final", "game_id", int64(7))

	assert.Equal(t, []string{"warn:sweep forced final"}, got)
}
