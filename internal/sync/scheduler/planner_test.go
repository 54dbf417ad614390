package scheduler

import (
	"testing"
	"time"

	"mailpilot-backend/internal/account/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = NightWindow{StartHour: 22, EndHour: 6}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestNightWindowContains(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"midday outside", at(12, 0), false},
		{"just before window", at(21, 59), false},
		{"window start", at(22, 0), true},
		{"midnight inside", at(0, 30), true},
		{"just before end", at(5, 59), true},
		{"window end is outside", at(6, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testWindow.Contains(tt.t))
		})
	}
}

func TestNightWindowContainsNonWrapping(t *testing.T) {
	win := NightWindow{StartHour: 1, EndHour: 5}
	assert.True(t, win.Contains(at(3, 0)))
	assert.False(t, win.Contains(at(12, 0)))
	assert.False(t, win.Contains(at(23, 0)))
}

func TestEmptyNightWindow(t *testing.T) {
	win := NightWindow{StartHour: 6, EndHour: 6}
	assert.False(t, win.Contains(at(6, 0)))
	assert.False(t, win.Contains(at(23, 0)))
}

func TestNightWindowEndAfter(t *testing.T) {
	// late evening defers to tomorrow morning
	end := testWindow.EndAfter(at(23, 15))
	assert.Equal(t, time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC), end)

	// early morning defers to the same morning
	end = testWindow.EndAfter(at(2, 45))
	assert.Equal(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), end)
}

func TestNextRunPushExchangeNeverPolls(t *testing.T) {
	cfg := domain.SyncConfig{
		Type:                domain.AccountTypeExchange,
		Mode:                domain.SyncModePush,
		SyncIntervalMinutes: 15,
	}

	_, ok := NextRun(at(12, 0), cfg, testWindow)
	assert.False(t, ok)
}

func TestNextRunUsesInterval(t *testing.T) {
	cfg := domain.SyncConfig{
		Type:                domain.AccountTypeIMAP,
		Mode:                domain.SyncModeScheduled,
		SyncIntervalMinutes: 30,
	}

	next, ok := NextRun(at(12, 0), cfg, testWindow)
	require.True(t, ok)
	assert.Equal(t, at(12, 30), next)
}

func TestNextRunDefersIntoNightWindowEnd(t *testing.T) {
	cfg := domain.SyncConfig{
		Type:                domain.AccountTypeIMAP,
		Mode:                domain.SyncModeScheduled,
		SyncIntervalMinutes: 30,
		NightModeEnabled:    true,
	}

	// 21:45 + 30m lands at 22:15, inside the window: defer to 6:00 next day
	next, ok := NextRun(at(21, 45), cfg, testWindow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC), next)
}

func TestNextRunWithoutNightModeIgnoresWindow(t *testing.T) {
	cfg := domain.SyncConfig{
		Type:                domain.AccountTypeIMAP,
		Mode:                domain.SyncModeScheduled,
		SyncIntervalMinutes: 30,
	}

	next, ok := NextRun(at(21, 45), cfg, testWindow)
	require.True(t, ok)
	assert.Equal(t, at(22, 15), next)
}

func TestNextRunScheduledExchangePolls(t *testing.T) {
	cfg := domain.SyncConfig{
		Type:                domain.AccountTypeExchange,
		Mode:                domain.SyncModeScheduled,
		SyncIntervalMinutes: 5,
	}

	next, ok := NextRun(at(12, 0), cfg, testWindow)
	require.True(t, ok)
	assert.Equal(t, at(12, 5), next)
}
