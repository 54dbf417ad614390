package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"mailpilot-backend/internal/account/domain"
	"mailpilot-backend/internal/account/repository"
)

// accountUsecase implements AccountManagementUsecase
type accountUsecase struct {
	accountRepo repository.AccountRepository
	push        PushChannel
	scheduler   SyncScheduler
	locks       *AccountLocks
}

// NewAccountUsecase creates a new instance of accountUsecase
func NewAccountUsecase(accountRepo repository.AccountRepository, push PushChannel, scheduler SyncScheduler, locks *AccountLocks) AccountManagementUsecase {
	return &accountUsecase{
		accountRepo: accountRepo,
		push:        push,
		scheduler:   scheduler,
		locks:       locks,
	}
}

func (u *accountUsecase) CreateAccount(ctx context.Context, userID string, req CreateAccountRequest) (*domain.Account, error) {
	existing, err := u.accountRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("account already registered")
	}

	accountType := domain.ParseAccountType(req.AccountType)

	port := req.IMAPPort
	if port == 0 {
		port = 993
	}

	account := &domain.Account{
		UserID:              userID,
		Email:               req.Email,
		DisplayName:         req.DisplayName,
		AccountType:         string(accountType),
		SyncMode:            string(domain.SyncModePush),
		SyncIntervalMinutes: domain.DefaultSyncIntervalMinutes,
		IMAPHost:            req.IMAPHost,
		IMAPPort:            port,
		IMAPUsername:        req.IMAPUsername,
		IMAPPassword:        req.IMAPPassword,
		AccessToken:         req.AccessToken,
		RefreshToken:        req.RefreshToken,
	}

	// Non-Exchange accounts have no push channel; they poll from day one
	if accountType != domain.AccountTypeExchange {
		account.SyncMode = string(domain.SyncModeScheduled)
		next := time.Now().Add(time.Duration(account.SyncIntervalMinutes) * time.Minute)
		account.NextSyncAt = &next
	}

	if err := u.accountRepo.Create(account); err != nil {
		return nil, err
	}

	cfg := account.SyncConfig()
	if cfg.Mode == domain.SyncModePush {
		if err := u.push.Start(ctx, account); err != nil {
			log.Printf("[Account] Push channel start failed for new account %s: %v", account.ID, err)
		}
	}
	if err := u.scheduler.ScheduleWithNightMode(ctx, account); err != nil {
		log.Printf("[Account] Initial schedule failed for account %s: %v", account.ID, err)
	}

	return account, nil
}

func (u *accountUsecase) ListAccounts(userID string) ([]*domain.Account, error) {
	return u.accountRepo.FindByUserID(userID)
}

func (u *accountUsecase) DeleteAccount(ctx context.Context, userID, accountID string) error {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if account.UserID != userID {
		return ErrNotOwner
	}

	// The configuration dies with the account; stop the push channel first
	// so the topic does not keep receiving events for a deleted record.
	if err := u.push.Stop(ctx, account); err != nil {
		log.Printf("[Account] Push channel stop failed while deleting account %s: %v", account.ID, err)
	}

	if err := u.accountRepo.Delete(accountID); err != nil {
		return err
	}

	u.locks.Forget(accountID)
	return nil
}
