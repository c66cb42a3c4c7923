package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordModelUsage_RunningAverage(t *testing.T) {
	ds := setupTestDB(t)

	require.NoError(t, ds.RecordModelUsage("gemini-2.5-flash-lite", 100, 50, 100*time.Millisecond))
	require.NoError(t, ds.RecordModelUsage("gemini-2.5-flash-lite", 200, 80, 300*time.Millisecond))

	usage, err := ds.GetModelUsage()
	require.NoError(t, err)
	require.Len(t, usage, 1)

	stats := usage[0]
	assert.Equal(t, "gemini-2.5-flash-lite", stats.ModelID)
	assert.Equal(t, int64(2), stats.Calls)
	assert.Equal(t, int64(300), stats.InputTokens)
	assert.Equal(t, int64(130), stats.OutputTokens)
	assert.Equal(t, int64(430), stats.TotalTokens)
	assert.InDelta(t, 200.0, stats.AvgLatencyMs, 0.0001,
		"running average of 100ms and 300ms must be exactly 200ms")
	assert.False(t, stats.LastUsedAt.IsZero())
}

func TestRecordModelUsage_SeparateModels(t *testing.T) {
	ds := setupTestDB(t)

	require.NoError(t, ds.RecordModelUsage("gemini-2.5-flash", 10, 5, 50*time.Millisecond))
	require.NoError(t, ds.RecordModelUsage("gemini-2.5-pro", 20, 8, 80*time.Millisecond))

	usage, err := ds.GetModelUsage()
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "gemini-2.5-flash", usage[0].ModelID)
	assert.Equal(t, "gemini-2.5-pro", usage[1].ModelID)
}

func TestResetModelUsage(t *testing.T) {
	ds := setupTestDB(t)

	require.NoError(t, ds.RecordModelUsage("gemini-2.5-flash", 10, 5, 50*time.Millisecond))
	require.NoError(t, ds.ResetModelUsage())

	usage, err := ds.GetModelUsage()
	require.NoError(t, err)
	assert.Empty(t, usage)
}
