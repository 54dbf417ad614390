package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEnumValue rejects a proposed sync mode or interval outside
	// the allowed set. No intents are produced when this is returned.
	ErrInvalidEnumValue = errors.New("invalid enum value")
	// ErrInvalidRange rejects a negative day count.
	ErrInvalidRange = errors.New("value out of range")
)

// IntentKind is the type of side effect an Apply operation requires.
type IntentKind string

const (
	// IntentPersist: write the changed field to the account store. Must
	// complete before any following intent in the same list is executed.
	IntentPersist IntentKind = "persist"
	// IntentPushStart / IntentPushStop: bring the push channel up or down.
	// Idempotent; exactly one of the two is emitted per mode change.
	IntentPushStart IntentKind = "push_start"
	IntentPushStop  IntentKind = "push_stop"
	// IntentReschedule: have the scheduler recompute the next sync run.
	// Idempotent re-derivation from persisted state, safe to repeat.
	IntentReschedule IntentKind = "reschedule"
)

// Intent is a declarative side effect returned by an Apply operation.
// The model never performs I/O itself; the orchestrator executes intents
// in list order.
type Intent struct {
	Kind IntentKind
	// Column and Value are set for persist intents only.
	Column string
	Value  interface{}
}

func persistIntent(column string, value interface{}) Intent {
	return Intent{Kind: IntentPersist, Column: column, Value: value}
}

// Account store column names for persist intents.
const (
	ColumnSyncMode            = "sync_mode"
	ColumnSyncIntervalMinutes = "sync_interval_minutes"
	ColumnNightModeEnabled    = "night_mode_enabled"
	ColumnIgnoreBatterySaver  = "ignore_battery_saver"
)

// IntervalDaysField names a day-count setting editable through
// ApplyIntervalDays.
type IntervalDaysField string

const (
	FieldContactsDays      IntervalDaysField = "contacts"
	FieldNotesDays         IntervalDaysField = "notes"
	FieldCalendarDays      IntervalDaysField = "calendar"
	FieldTasksDays         IntervalDaysField = "tasks"
	FieldCleanupTrashDays  IntervalDaysField = "cleanup_trash"
	FieldCleanupDraftsDays IntervalDaysField = "cleanup_drafts"
	FieldCleanupSpamDays   IntervalDaysField = "cleanup_spam"
)

// ParseIntervalDaysField maps an API field name to its enum value.
func ParseIntervalDaysField(raw string) (IntervalDaysField, error) {
	switch IntervalDaysField(raw) {
	case FieldContactsDays, FieldNotesDays, FieldCalendarDays, FieldTasksDays,
		FieldCleanupTrashDays, FieldCleanupDraftsDays, FieldCleanupSpamDays:
		return IntervalDaysField(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown interval field %q", ErrInvalidEnumValue, raw)
	}
}

// column returns the account store column backing the field.
func (f IntervalDaysField) column() string {
	switch f {
	case FieldContactsDays:
		return "contacts_sync_interval_days"
	case FieldNotesDays:
		return "notes_sync_interval_days"
	case FieldCalendarDays:
		return "calendar_sync_interval_days"
	case FieldTasksDays:
		return "tasks_sync_interval_days"
	case FieldCleanupTrashDays:
		return "cleanup_trash_days"
	case FieldCleanupDraftsDays:
		return "cleanup_drafts_days"
	default:
		return "cleanup_spam_days"
	}
}

// ApplySyncMode switches the account's sync mode. Exactly one push-channel
// intent is emitted: start when the new mode is push, stop otherwise. The
// persist intent must be observed as completed before the push-channel and
// reschedule intents are issued.
func (c SyncConfig) ApplySyncMode(mode SyncMode) (SyncConfig, []Intent, error) {
	if !IsValidSyncMode(mode) {
		return c, nil, fmt.Errorf("%w: sync mode %q", ErrInvalidEnumValue, mode)
	}

	updated := c
	updated.Mode = mode

	pushIntent := Intent{Kind: IntentPushStop}
	if mode == SyncModePush {
		pushIntent = Intent{Kind: IntentPushStart}
	}

	intents := []Intent{
		persistIntent(ColumnSyncMode, string(mode)),
		pushIntent,
		{Kind: IntentReschedule},
	}
	return updated, intents, nil
}

// ApplySyncInterval changes the polling interval. The new value must be one
// of AllowedSyncIntervals.
func (c SyncConfig) ApplySyncInterval(minutes int) (SyncConfig, []Intent, error) {
	if !IsAllowedSyncInterval(minutes) {
		return c, nil, fmt.Errorf("%w: sync interval %d minutes", ErrInvalidEnumValue, minutes)
	}

	updated := c
	updated.SyncIntervalMinutes = minutes

	intents := []Intent{
		persistIntent(ColumnSyncIntervalMinutes, minutes),
		{Kind: IntentReschedule},
	}
	return updated, intents, nil
}

// ApplyNightMode toggles the night mode policy. The flag only affects when
// the next run lands, but the scheduler re-plan is cheap and idempotent, so
// a reschedule is always emitted.
func (c SyncConfig) ApplyNightMode(enabled bool) (SyncConfig, []Intent) {
	updated := c
	updated.NightModeEnabled = enabled

	intents := []Intent{
		persistIntent(ColumnNightModeEnabled, enabled),
		{Kind: IntentReschedule},
	}
	return updated, intents
}

// ApplyBatterySaver toggles the low-power override.
func (c SyncConfig) ApplyBatterySaver(ignore bool) (SyncConfig, []Intent) {
	updated := c
	updated.IgnoreBatterySaver = ignore

	intents := []Intent{
		persistIntent(ColumnIgnoreBatterySaver, ignore),
		{Kind: IntentReschedule},
	}
	return updated, intents
}

// ApplyIntervalDays changes a groupware-sync or cleanup retention setting.
// Day counts are orthogonal to the sync scheduler, so no reschedule is
// emitted. 0 disables the setting.
func (c SyncConfig) ApplyIntervalDays(field IntervalDaysField, days int) (SyncConfig, []Intent, error) {
	if days < 0 {
		return c, nil, fmt.Errorf("%w: %s days must be >= 0, got %d", ErrInvalidRange, field, days)
	}

	updated := c
	switch field {
	case FieldContactsDays:
		updated.ContactsSyncIntervalDays = days
	case FieldNotesDays:
		updated.NotesSyncIntervalDays = days
	case FieldCalendarDays:
		updated.CalendarSyncIntervalDays = days
	case FieldTasksDays:
		updated.TasksSyncIntervalDays = days
	case FieldCleanupTrashDays:
		updated.CleanupTrashDays = days
	case FieldCleanupDraftsDays:
		updated.CleanupDraftsDays = days
	case FieldCleanupSpamDays:
		updated.CleanupSpamDays = days
	default:
		return c, nil, fmt.Errorf("%w: unknown interval field %q", ErrInvalidEnumValue, field)
	}

	intents := []Intent{
		persistIntent(field.column(), days),
	}
	return updated, intents, nil
}
