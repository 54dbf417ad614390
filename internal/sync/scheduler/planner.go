package scheduler

import (
	"time"

	"mailpilot-backend/internal/account/domain"
)

// NightWindow is the overnight span during which night mode defers polling.
// Hours are local to the server clock; a window whose start equals its end
// is empty. The usual configuration wraps midnight (22 to 6).
type NightWindow struct {
	StartHour int
	EndHour   int
}

// Contains reports whether t falls inside the window
func (w NightWindow) Contains(t time.Time) bool {
	if w.StartHour == w.EndHour {
		return false
	}
	h := t.Hour()
	if w.StartHour < w.EndHour {
		return h >= w.StartHour && h < w.EndHour
	}
	// wraps midnight
	return h >= w.StartHour || h < w.EndHour
}

// EndAfter returns the first moment at or after t that is outside the
// window, which is the top of the EndHour following t.
func (w NightWindow) EndAfter(t time.Time) time.Time {
	end := time.Date(t.Year(), t.Month(), t.Day(), w.EndHour, 0, 0, 0, t.Location())
	if !end.After(t) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// NextRun computes when the account should poll next. Returns ok=false for
// configurations that never poll (Exchange accounts in push mode). With
// night mode enabled, a run that would land inside the night window is
// deferred to the window's end.
func NextRun(now time.Time, cfg domain.SyncConfig, win NightWindow) (time.Time, bool) {
	if !cfg.IntervalApplicable() {
		return time.Time{}, false
	}

	next := now.Add(time.Duration(cfg.SyncIntervalMinutes) * time.Minute)
	if cfg.NightModeEnabled && win.Contains(next) {
		next = win.EndAfter(next)
	}
	return next, true
}
