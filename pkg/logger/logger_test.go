package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_KeyValueFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	log := NewWithLogger(base)

	log.Info("Cache hit", "pair", "USD-EUR", "count", 3)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Cache hit", entry.Message)
	assert.Equal(t, "USD-EUR", entry.Data["pair"])
	assert.Equal(t, 3, entry.Data["count"])
}

func TestLogger_OddArgs(t *testing.T) {
	base, hook := test.NewNullLogger()
	log := NewWithLogger(base)

	log.Error("Fetch failed", "error")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "(MISSING)", hook.LastEntry().Data["error"])
}

func TestLogger_With(t *testing.T) {
	base, hook := test.NewNullLogger()
	log := NewWithLogger(base).With("component", "cache")

	log.Warn("Store cleared", "entries", 2)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "cache", entry.Data["component"])
	assert.Equal(t, 2, entry.Data["entries"])
}

func TestNewLogger_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("DEBUG").entry.Logger.GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("nonsense").entry.Logger.GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("").entry.Logger.GetLevel())
}
