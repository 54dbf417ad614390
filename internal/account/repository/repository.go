package repository

import (
	"time"

	"mailpilot-backend/internal/account/domain"
)

// AccountRepository defines the interface for mail account data access
type AccountRepository interface {
	// Create creates a new mail account
	Create(account *domain.Account) error

	// FindByID finds an account by its ID, nil when not found
	FindByID(id string) (*domain.Account, error)

	// FindByEmail finds an account by its mail address, nil when not found
	FindByEmail(email string) (*domain.Account, error)

	// FindByUserID finds all accounts owned by a user
	FindByUserID(userID string) ([]*domain.Account, error)

	// FindDue finds accounts whose next_sync_at is at or before now
	FindDue(now time.Time) ([]*domain.Account, error)

	// FindWithCleanup finds accounts with at least one cleanup retention enabled
	FindWithCleanup() ([]*domain.Account, error)

	// UpdateField writes a single settings column for an account.
	// This is the persist intent executor: each settings change touches
	// exactly one column, so concurrent edits to different settings of the
	// same account cannot clobber each other.
	UpdateField(accountID, column string, value interface{}) error

	// UpdateSyncState records the outcome of a sync attempt
	UpdateSyncState(accountID string, lastSyncAt time.Time, syncErr string) error

	// Delete removes an account and its configuration
	Delete(id string) error
}
