package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mailpilot-backend/internal/account/domain"
	accountrepo "mailpilot-backend/internal/account/repository"
	authrepo "mailpilot-backend/internal/auth/repository"
	"mailpilot-backend/pkg/fcm"
	"mailpilot-backend/pkg/imap"
)

// Worker performs polling syncs over IMAP. It implements the scheduler's
// Syncer interface: one call checks a single account's inbox for mail that
// arrived since the last successful sync and notifies the owner's devices.
type Worker struct {
	accountRepo accountrepo.AccountRepository
	fcmRepo     authrepo.FCMTokenRepository
	fcmClient   *fcm.Client
}

// New creates a new sync worker. fcmClient may be nil; syncs still run and
// record their outcome, devices just aren't notified.
func New(accountRepo accountrepo.AccountRepository, fcmRepo authrepo.FCMTokenRepository, fcmClient *fcm.Client) *Worker {
	return &Worker{
		accountRepo: accountRepo,
		fcmRepo:     fcmRepo,
		fcmClient:   fcmClient,
	}
}

// SyncAccount polls the account's inbox once
func (w *Worker) SyncAccount(ctx context.Context, account *domain.Account) error {
	if account.IMAPHost == "" {
		err := errors.New("no polling transport configured")
		w.recordOutcome(account, err)
		return fmt.Errorf("account %s: %w", account.ID, err)
	}

	client, err := imap.NewClient(account.IMAPHost, account.IMAPPort, account.IMAPUsername, account.IMAPPassword)
	if err != nil {
		w.recordOutcome(account, err)
		return fmt.Errorf("account %s: %w", account.ID, err)
	}
	defer client.Close()

	var since time.Time
	if account.LastSyncAt != nil {
		since = *account.LastSyncAt
	}

	count, summary, err := client.UnseenSince("INBOX", since)
	if err != nil {
		w.recordOutcome(account, err)
		return fmt.Errorf("account %s: %w", account.ID, err)
	}

	w.recordOutcome(account, nil)

	if count > 0 {
		log.Printf("[SyncWorker] Account %s: %d new messages", account.ID, count)
		w.notify(ctx, account, count, summary)
	}
	return nil
}

// recordOutcome writes the sync attempt's result onto the account
func (w *Worker) recordOutcome(account *domain.Account, syncErr error) {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	if err := w.accountRepo.UpdateSyncState(account.ID, time.Now(), msg); err != nil {
		log.Printf("[SyncWorker] Failed to record sync state for account %s: %v", account.ID, err)
	}
}

func (w *Worker) notify(ctx context.Context, account *domain.Account, count int, summary *imap.MessageSummary) {
	if w.fcmClient == nil {
		return
	}

	tokens, err := w.fcmRepo.GetTokensByUserID(account.UserID)
	if err != nil {
		log.Printf("[SyncWorker] Error getting FCM tokens for user %s: %v", account.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := fmt.Sprintf("%d new messages", count)
	body := fmt.Sprintf("New mail in %s", account.Email)
	if count == 1 {
		title = "New message"
	}
	if summary != nil && summary.From != "" {
		body = summary.From
		if summary.Subject != "" {
			body = fmt.Sprintf("%s: %s", summary.From, summary.Subject)
		}
	}

	var tokenStrings []string
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	failedTokens, err := w.fcmClient.SendToDevices(ctx, tokenStrings, fcm.NotificationData{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":       "mailbox_update",
			"account_id": account.ID,
			"email":      account.Email,
		},
	})
	if err != nil {
		log.Printf("[SyncWorker] Error sending notifications: %v", err)
		return
	}

	for _, token := range failedTokens {
		if err := w.fcmRepo.DeleteToken(token); err != nil {
			log.Printf("[SyncWorker] Failed to delete dead token: %v", err)
		}
	}
}
