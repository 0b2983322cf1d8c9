package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler_CapturesRecords(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("spool written", slog.String("path", "a.json"))
	logger.Error("spool failed", slog.Int("attempt", 2))

	records := handler.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "spool written", records[0].Message)
	assert.True(t, handler.ContainsMessage("spool failed"))
	assert.True(t, handler.ContainsAttr("path", "a.json"))
	assert.True(t, handler.ContainsAttr("attempt", int64(2)))
	assert.False(t, handler.ContainsAttr("attempt", int64(3)))
}

func TestBufferedSlogHandler_FiltersByLevel(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line")

	assert.Len(t, handler.RecordsByLevel(slog.LevelInfo), 1)
	assert.Len(t, handler.RecordsByLevel(slog.LevelError), 1)
	assert.Equal(t, 4, handler.Count())
}

func TestBufferedSlogHandler_DerivedLoggerSharesBuffer(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.With(slog.String("component", "store")).Info("write ok")

	require.Equal(t, 1, handler.Count())
	assert.True(t, handler.ContainsAttr("component", "store"))
	AssertLogContains(t, handler, slog.LevelInfo, "write ok")
}

func TestBufferedSlogHandler_Reset(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("one")
	logger.Info("two")
	require.Equal(t, 2, handler.Count())

	handler.Reset()
	assert.Zero(t, handler.Count())
	assert.Empty(t, handler.Records())
}

func TestBufferedSlogHandler_ConcurrentWrites(t *testing.T) {
	logger, handler := NewTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Info("worker done", slog.Int("worker", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, handler.Count())
}

func TestAssertHelpers(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("harvest complete", slog.Int("records", 12))
	AssertLogContains(t, handler, slog.LevelInfo, "harvest complete")
	AssertNoErrors(t, handler)
}
