package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"mailpilot-backend/internal/account/domain"
	"mailpilot-backend/internal/account/repository"
)

var (
	// ErrAccountNotFound is returned when the account does not exist
	ErrAccountNotFound = errors.New("account not found")
	// ErrNotOwner is returned when the account belongs to another user
	ErrNotOwner = errors.New("unauthorized")
)

// syncSettingsUsecase implements SyncSettingsUsecase. It serializes the
// intent pipeline per account: a second edit to the same account waits for
// the first one's persist and side effects to finish, edits to different
// accounts run independently.
type syncSettingsUsecase struct {
	accountRepo repository.AccountRepository
	push        PushChannel
	scheduler   SyncScheduler
	locks       *AccountLocks
}

// NewSyncSettingsUsecase creates a new instance of syncSettingsUsecase.
// locks is shared with the lifecycle usecase so account deletion can drop
// the entry.
func NewSyncSettingsUsecase(accountRepo repository.AccountRepository, push PushChannel, scheduler SyncScheduler, locks *AccountLocks) SyncSettingsUsecase {
	return &syncSettingsUsecase{
		accountRepo: accountRepo,
		push:        push,
		scheduler:   scheduler,
		locks:       locks,
	}
}

// loadOwned fetches the account and checks ownership
func (u *syncSettingsUsecase) loadOwned(userID, accountID string) (*domain.Account, error) {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.UserID != userID {
		return nil, ErrNotOwner
	}
	return account, nil
}

func viewOf(cfg domain.SyncConfig) *SettingsView {
	return &SettingsView{
		Config:             cfg,
		IntervalApplicable: cfg.IntervalApplicable(),
		AccountTypeLabel:   cfg.Type.Label(),
		SyncModeLabel:      cfg.Mode.Label(),
	}
}

func (u *syncSettingsUsecase) GetSettings(userID, accountID string) (*SettingsView, error) {
	account, err := u.loadOwned(userID, accountID)
	if err != nil {
		return nil, err
	}
	return viewOf(account.SyncConfig()), nil
}

// executeIntents runs an intent list in order. The persist intent is the
// commit point: if it fails nothing else runs and the stored configuration
// is unchanged. Push and reschedule failures are logged only; both are
// idempotent re-derivations from persisted state and the next edit or
// scheduler pass repairs them.
func (u *syncSettingsUsecase) executeIntents(ctx context.Context, account *domain.Account, intents []domain.Intent) error {
	for _, intent := range intents {
		switch intent.Kind {
		case domain.IntentPersist:
			if err := u.accountRepo.UpdateField(account.ID, intent.Column, intent.Value); err != nil {
				return fmt.Errorf("failed to persist %s: %w", intent.Column, err)
			}
		case domain.IntentPushStart:
			if err := u.push.Start(ctx, account); err != nil {
				log.Printf("[SyncSettings] Push channel start failed for account %s: %v", account.ID, err)
			}
		case domain.IntentPushStop:
			if err := u.push.Stop(ctx, account); err != nil {
				log.Printf("[SyncSettings] Push channel stop failed for account %s: %v", account.ID, err)
			}
		case domain.IntentReschedule:
			if err := u.scheduler.ScheduleWithNightMode(ctx, account); err != nil {
				log.Printf("[SyncSettings] Reschedule failed for account %s: %v", account.ID, err)
			}
		}
	}
	return nil
}

// apply runs one settings change end to end under the account's lock.
// change receives the current snapshot and returns the updated one plus
// its intents; the updated snapshot is copied back onto the account record
// before side effects run so the collaborators see the new values.
func (u *syncSettingsUsecase) apply(ctx context.Context, userID, accountID string,
	change func(domain.SyncConfig) (domain.SyncConfig, []domain.Intent, error)) (*SettingsView, error) {

	mu := u.locks.For(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := u.loadOwned(userID, accountID)
	if err != nil {
		return nil, err
	}

	updated, intents, err := change(account.SyncConfig())
	if err != nil {
		return nil, err
	}

	applyToAccount(account, updated)

	if err := u.executeIntents(ctx, account, intents); err != nil {
		return nil, err
	}
	return viewOf(updated), nil
}

// applyToAccount copies a validated snapshot back onto the account record
func applyToAccount(account *domain.Account, cfg domain.SyncConfig) {
	account.SyncMode = string(cfg.Mode)
	account.SyncIntervalMinutes = cfg.SyncIntervalMinutes
	account.NightModeEnabled = cfg.NightModeEnabled
	account.IgnoreBatterySaver = cfg.IgnoreBatterySaver
	account.ContactsSyncIntervalDays = cfg.ContactsSyncIntervalDays
	account.NotesSyncIntervalDays = cfg.NotesSyncIntervalDays
	account.CalendarSyncIntervalDays = cfg.CalendarSyncIntervalDays
	account.TasksSyncIntervalDays = cfg.TasksSyncIntervalDays
	account.CleanupTrashDays = cfg.CleanupTrashDays
	account.CleanupDraftsDays = cfg.CleanupDraftsDays
	account.CleanupSpamDays = cfg.CleanupSpamDays
}

func (u *syncSettingsUsecase) UpdateSyncMode(ctx context.Context, userID, accountID string, mode string) (*SettingsView, error) {
	return u.apply(ctx, userID, accountID, func(cfg domain.SyncConfig) (domain.SyncConfig, []domain.Intent, error) {
		return cfg.ApplySyncMode(domain.SyncMode(mode))
	})
}

func (u *syncSettingsUsecase) UpdateSyncInterval(ctx context.Context, userID, accountID string, minutes int) (*SettingsView, error) {
	return u.apply(ctx, userID, accountID, func(cfg domain.SyncConfig) (domain.SyncConfig, []domain.Intent, error) {
		return cfg.ApplySyncInterval(minutes)
	})
}

func (u *syncSettingsUsecase) UpdateNightMode(ctx context.Context, userID, accountID string, enabled bool) (*SettingsView, error) {
	return u.apply(ctx, userID, accountID, func(cfg domain.SyncConfig) (domain.SyncConfig, []domain.Intent, error) {
		updated, intents := cfg.ApplyNightMode(enabled)
		return updated, intents, nil
	})
}

func (u *syncSettingsUsecase) UpdateBatterySaver(ctx context.Context, userID, accountID string, ignore bool) (*SettingsView, error) {
	return u.apply(ctx, userID, accountID, func(cfg domain.SyncConfig) (domain.SyncConfig, []domain.Intent, error) {
		updated, intents := cfg.ApplyBatterySaver(ignore)
		return updated, intents, nil
	})
}

func (u *syncSettingsUsecase) UpdateIntervalDays(ctx context.Context, userID, accountID, field string, days int) (*SettingsView, error) {
	parsed, err := domain.ParseIntervalDaysField(field)
	if err != nil {
		return nil, err
	}
	return u.apply(ctx, userID, accountID, func(cfg domain.SyncConfig) (domain.SyncConfig, []domain.Intent, error) {
		return cfg.ApplyIntervalDays(parsed, days)
	})
}
