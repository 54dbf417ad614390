package usecase

import (
	"context"

	"mailpilot-backend/internal/account/domain"
)

// SyncSettingsUsecase defines the business logic for reading and editing an
// account's sync/cleanup settings. Every update runs the same pipeline: the
// changed field is persisted first, and only after the store confirms the
// write are the push-channel and scheduler collaborators told to catch up.
type SyncSettingsUsecase interface {
	// GetSettings returns the validated settings view for an account
	GetSettings(userID, accountID string) (*SettingsView, error)

	// UpdateSyncMode switches between push and scheduled delivery
	UpdateSyncMode(ctx context.Context, userID, accountID string, mode string) (*SettingsView, error)

	// UpdateSyncInterval changes the polling interval in minutes
	UpdateSyncInterval(ctx context.Context, userID, accountID string, minutes int) (*SettingsView, error)

	// UpdateNightMode toggles the overnight scheduling policy
	UpdateNightMode(ctx context.Context, userID, accountID string, enabled bool) (*SettingsView, error)

	// UpdateBatterySaver toggles the low-power override
	UpdateBatterySaver(ctx context.Context, userID, accountID string, ignore bool) (*SettingsView, error)

	// UpdateIntervalDays changes a groupware-sync or cleanup retention day count
	UpdateIntervalDays(ctx context.Context, userID, accountID, field string, days int) (*SettingsView, error)
}

// PushChannel brings the persistent new-mail channel up or down for an
// account. Both operations are idempotent; the usecase fires them after the
// settings write lands and tolerates their failure.
type PushChannel interface {
	Start(ctx context.Context, account *domain.Account) error
	Stop(ctx context.Context, account *domain.Account) error
}

// SyncScheduler re-plans the next sync run for an account from its current
// persisted settings. Idempotent and safe to call redundantly.
type SyncScheduler interface {
	ScheduleWithNightMode(ctx context.Context, account *domain.Account) error
}

// SettingsView is what the presentation layer consumes: the validated
// configuration plus the applicability flag and display labels. All copy
// and localization lives with the caller.
type SettingsView struct {
	Config             domain.SyncConfig `json:"config"`
	IntervalApplicable bool              `json:"interval_applicable"`
	AccountTypeLabel   string            `json:"account_type_label"`
	SyncModeLabel      string            `json:"sync_mode_label"`
}

// AccountManagementUsecase covers account lifecycle around the settings core
type AccountManagementUsecase interface {
	CreateAccount(ctx context.Context, userID string, req CreateAccountRequest) (*domain.Account, error)
	ListAccounts(userID string) ([]*domain.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID string) error
}

// CreateAccountRequest carries the fields needed to register a mail account
type CreateAccountRequest struct {
	Email        string `json:"email" binding:"required,email"`
	DisplayName  string `json:"display_name"`
	AccountType  string `json:"account_type" binding:"required"`
	IMAPHost     string `json:"imap_host"`
	IMAPPort     int    `json:"imap_port"`
	IMAPUsername string `json:"imap_username"`
	IMAPPassword string `json:"imap_password"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
