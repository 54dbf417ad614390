package domain

import "time"

// Account represents a mail account owned by a user, together with its
// per-account sync and cleanup settings. The account_type and sync_mode
// columns are stored as free-form strings: records written by older builds
// may carry tags the current build no longer knows, so readers always go
// through ParseAccountType / ParseSyncMode instead of trusting the column.
type Account struct {
	ID          string `json:"id" gorm:"primaryKey"`
	UserID      string `json:"user_id" gorm:"index;not null"`
	Email       string `json:"email" gorm:"index;not null"`
	DisplayName string `json:"display_name,omitempty"`

	AccountType string `json:"account_type" gorm:"not null"`
	SyncMode    string `json:"sync_mode" gorm:"default:push"`

	SyncIntervalMinutes int  `json:"sync_interval_minutes" gorm:"default:15"`
	NightModeEnabled    bool `json:"night_mode_enabled" gorm:"default:false"`
	IgnoreBatterySaver  bool `json:"ignore_battery_saver" gorm:"default:false"`

	// Groupware folder sync (Exchange accounts only), 0 = disabled
	ContactsSyncIntervalDays int `json:"contacts_sync_interval_days" gorm:"default:0"`
	NotesSyncIntervalDays    int `json:"notes_sync_interval_days" gorm:"default:0"`
	CalendarSyncIntervalDays int `json:"calendar_sync_interval_days" gorm:"default:0"`
	TasksSyncIntervalDays    int `json:"tasks_sync_interval_days" gorm:"default:0"`

	// Auto-cleanup retention, 0 = disabled
	CleanupTrashDays  int `json:"cleanup_trash_days" gorm:"default:0"`
	CleanupDraftsDays int `json:"cleanup_drafts_days" gorm:"default:0"`
	CleanupSpamDays   int `json:"cleanup_spam_days" gorm:"default:0"`

	// IMAP credentials (IMAP/POP3 accounts)
	IMAPHost     string `json:"imap_host,omitempty"`
	IMAPPort     int    `json:"imap_port,omitempty" gorm:"default:993"`
	IMAPUsername string `json:"imap_username,omitempty"`
	IMAPPassword string `json:"-"`

	// OAuth credentials (push-capable accounts)
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`

	NextSyncAt    *time.Time `json:"next_sync_at,omitempty" gorm:"index"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	LastSyncError string     `json:"last_sync_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncConfig builds the validated configuration snapshot for this account.
// Unrecognized stored values degrade to their documented defaults; this
// never fails.
func (a *Account) SyncConfig() SyncConfig {
	interval := a.SyncIntervalMinutes
	if !IsAllowedSyncInterval(interval) {
		interval = DefaultSyncIntervalMinutes
	}
	return SyncConfig{
		AccountID:                a.ID,
		Type:                     ParseAccountType(a.AccountType),
		Mode:                     ParseSyncMode(a.SyncMode),
		SyncIntervalMinutes:      interval,
		NightModeEnabled:         a.NightModeEnabled,
		IgnoreBatterySaver:       a.IgnoreBatterySaver,
		ContactsSyncIntervalDays: a.ContactsSyncIntervalDays,
		NotesSyncIntervalDays:    a.NotesSyncIntervalDays,
		CalendarSyncIntervalDays: a.CalendarSyncIntervalDays,
		TasksSyncIntervalDays:    a.TasksSyncIntervalDays,
		CleanupTrashDays:         a.CleanupTrashDays,
		CleanupDraftsDays:        a.CleanupDraftsDays,
		CleanupSpamDays:          a.CleanupSpamDays,
	}
}
