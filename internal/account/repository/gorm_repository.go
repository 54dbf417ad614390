package repository

import (
	"errors"
	"time"

	"mailpilot-backend/internal/account/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormAccountRepository implements AccountRepository using GORM
type gormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GORM-based AccountRepository
func NewGormAccountRepository(db *gorm.DB) AccountRepository {
	return &gormAccountRepository{db: db}
}

func (r *gormAccountRepository) Create(account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	return r.db.Create(account).Error
}

func (r *gormAccountRepository) FindByID(id string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormAccountRepository) FindByEmail(email string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormAccountRepository) FindByUserID(userID string) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *gormAccountRepository) FindDue(now time.Time) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.db.Where("next_sync_at IS NOT NULL AND next_sync_at <= ?", now).Find(&accounts).Error
	return accounts, err
}

func (r *gormAccountRepository) FindWithCleanup() ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.db.Where("cleanup_trash_days > 0 OR cleanup_drafts_days > 0 OR cleanup_spam_days > 0").
		Find(&accounts).Error
	return accounts, err
}

func (r *gormAccountRepository) UpdateField(accountID, column string, value interface{}) error {
	result := r.db.Model(&domain.Account{}).Where("id = ?", accountID).
		Updates(map[string]interface{}{
			column:       value,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormAccountRepository) UpdateSyncState(accountID string, lastSyncAt time.Time, syncErr string) error {
	return r.db.Model(&domain.Account{}).Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"last_sync_at":    lastSyncAt,
			"last_sync_error": syncErr,
			"updated_at":      time.Now(),
		}).Error
}

func (r *gormAccountRepository) Delete(id string) error {
	return r.db.Delete(&domain.Account{}, "id = ?", id).Error
}
