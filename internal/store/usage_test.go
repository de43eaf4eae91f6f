package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
var day2 = time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

func TestUsageStartsAtZero(t *testing.T) {
	usage, err := NewUsageStore(t.TempDir())
	require.NoError(t, err)

	record := usage.Today(1, day1)
	assert.Equal(t, 0, record.Count)
	assert.Equal(t, "2025-03-10", record.Date)
}

func TestChargeIncrementsAndPersists(t *testing.T) {
	dir := t.TempDir()

	usage, err := NewUsageStore(dir)
	require.NoError(t, err)

	require.NoError(t, usage.Charge(1, day1))
	require.NoError(t, usage.Charge(1, day1))
	assert.Equal(t, 2, usage.Today(1, day1).Count)

	// a fresh store sees the persisted count
	reloaded, err := NewUsageStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Today(1, day1).Count)
}

func TestCountResetsOnNewDay(t *testing.T) {
	usage, err := NewUsageStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, usage.Charge(1, day1))
	require.NoError(t, usage.Charge(1, day1))

	record := usage.Today(1, day2)
	assert.Equal(t, 0, record.Count)
	assert.Equal(t, "2025-03-11", record.Date)

	require.NoError(t, usage.Charge(1, day2))
	assert.Equal(t, 1, usage.Today(1, day2).Count)
}

func TestUsageIsScopedPerRequester(t *testing.T) {
	usage, err := NewUsageStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, usage.Charge(1, day1))
	assert.Equal(t, 1, usage.Today(1, day1).Count)
	assert.Equal(t, 0, usage.Today(2, day1).Count)
}

func TestSettingsRoundTrip(t *testing.T) {
	settings := NewSettingsStore(t.TempDir())

	require.NoError(t, settings.SaveBlocked([]int64{5, 6}))
	blocked, err := settings.LoadBlocked()
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, blocked)

	require.NoError(t, settings.SaveMaxPerDay(50))
	assert.Equal(t, 50, settings.LoadMaxPerDay(100))

	require.NoError(t, settings.SaveWelcome("hello"))
	assert.Equal(t, "hello", settings.LoadWelcome("default"))

	assert.Equal(t, "fallback", NewSettingsStore(t.TempDir()).LoadWelcome("fallback"))
	assert.Equal(t, 100, NewSettingsStore(t.TempDir()).LoadMaxPerDay(100))
}
