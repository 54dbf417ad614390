package domain

// AccountType identifies the kind of mail account
type AccountType string

const (
	AccountTypeExchange AccountType = "exchange"
	AccountTypeIMAP     AccountType = "imap"
	AccountTypePOP3     AccountType = "pop3"
)

// SyncMode identifies how new mail reaches the client
type SyncMode string

const (
	// SyncModePush: the server notifies us of new mail over a persistent channel
	SyncModePush SyncMode = "push"
	// SyncModeScheduled: we poll the mailbox at a fixed interval
	SyncModeScheduled SyncMode = "scheduled"
)

// DefaultSyncIntervalMinutes is used when a stored interval is outside the
// allowed set.
const DefaultSyncIntervalMinutes = 15

// AllowedSyncIntervals are the selectable polling intervals, in minutes.
var AllowedSyncIntervals = []int{1, 2, 3, 5, 10, 15, 30}

// ParseAccountType maps a stored account type tag to its enum value.
// Unknown tags resolve to AccountTypeExchange; this function never fails,
// so a corrupted or pre-schema-change record stays readable.
func ParseAccountType(raw string) AccountType {
	switch AccountType(raw) {
	case AccountTypeExchange, AccountTypeIMAP, AccountTypePOP3:
		return AccountType(raw)
	default:
		return AccountTypeExchange
	}
}

// ParseSyncMode maps a stored sync mode tag to its enum value.
// Unknown tags resolve to SyncModePush; this function never fails.
func ParseSyncMode(raw string) SyncMode {
	switch SyncMode(raw) {
	case SyncModePush, SyncModeScheduled:
		return SyncMode(raw)
	default:
		return SyncModePush
	}
}

// IsValidSyncMode reports whether mode is a member of the SyncMode enum.
// Unlike ParseSyncMode this is used to reject proposed values, not to read
// stored ones.
func IsValidSyncMode(mode SyncMode) bool {
	return mode == SyncModePush || mode == SyncModeScheduled
}

// IsAllowedSyncInterval reports whether minutes is a selectable interval.
func IsAllowedSyncInterval(minutes int) bool {
	for _, m := range AllowedSyncIntervals {
		if m == minutes {
			return true
		}
	}
	return false
}

// IntervalApplicable reports whether the polling interval setting is
// meaningful for the given type/mode combination: Exchange accounts in push
// mode have no polling interval, everything else does.
func IntervalApplicable(accountType AccountType, mode SyncMode) bool {
	return accountType != AccountTypeExchange || mode == SyncModeScheduled
}

// SyncConfig is one account's validated sync/cleanup configuration.
// Values are immutable snapshots: each Apply operation returns a new
// snapshot plus the ordered side-effect intents the change requires.
type SyncConfig struct {
	AccountID string      `json:"account_id"`
	Type      AccountType `json:"account_type"`
	Mode      SyncMode    `json:"sync_mode"`

	SyncIntervalMinutes int  `json:"sync_interval_minutes"`
	NightModeEnabled    bool `json:"night_mode_enabled"`
	IgnoreBatterySaver  bool `json:"ignore_battery_saver"`

	ContactsSyncIntervalDays int `json:"contacts_sync_interval_days"`
	NotesSyncIntervalDays    int `json:"notes_sync_interval_days"`
	CalendarSyncIntervalDays int `json:"calendar_sync_interval_days"`
	TasksSyncIntervalDays    int `json:"tasks_sync_interval_days"`

	CleanupTrashDays  int `json:"cleanup_trash_days"`
	CleanupDraftsDays int `json:"cleanup_drafts_days"`
	CleanupSpamDays   int `json:"cleanup_spam_days"`
}

// IntervalApplicable reports whether the polling interval applies to this
// configuration. Exposed so callers never re-derive the rule.
func (c SyncConfig) IntervalApplicable() bool {
	return IntervalApplicable(c.Type, c.Mode)
}

// Label returns the display label for an account type. Localization lives
// in the presentation layer; these are stable identifiers, not copy.
func (t AccountType) Label() string {
	switch t {
	case AccountTypeExchange:
		return "Exchange"
	case AccountTypeIMAP:
		return "IMAP"
	case AccountTypePOP3:
		return "POP3"
	default:
		return string(t)
	}
}

// Label returns the display label for a sync mode.
func (m SyncMode) Label() string {
	switch m {
	case SyncModePush:
		return "Push"
	case SyncModeScheduled:
		return "Scheduled"
	default:
		return string(m)
	}
}
