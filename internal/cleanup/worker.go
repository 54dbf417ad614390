package cleanup

import (
	"log"
	"time"

	"mailpilot-backend/internal/account/domain"
	"mailpilot-backend/internal/account/repository"
	"mailpilot-backend/pkg/imap"
)

// Worker enforces the per-account auto-cleanup retention settings: on each
// pass it removes messages older than the configured day counts from the
// trash, drafts and spam folders. A retention of 0 disables the folder.
type Worker struct {
	accountRepo repository.AccountRepository
	interval    time.Duration
	stopChan    chan struct{}
}

// New creates a new cleanup worker
func New(accountRepo repository.AccountRepository, interval time.Duration) *Worker {
	return &Worker{
		accountRepo: accountRepo,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the cleanup loop
func (w *Worker) Start() {
	log.Printf("[Cleanup] Starting auto-cleanup worker (interval: %s)", w.interval)

	go func() {
		// Run immediately on start
		w.sweep()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.sweep()
			case <-w.stopChan:
				log.Println("[Cleanup] Worker stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
}

// folderRetention pairs a mailbox folder with its retention setting
type folderRetention struct {
	folder string
	days   int
}

func (w *Worker) sweep() {
	accounts, err := w.accountRepo.FindWithCleanup()
	if err != nil {
		log.Printf("[Cleanup] Error finding accounts with cleanup enabled: %v", err)
		return
	}

	for _, account := range accounts {
		if account.IMAPHost == "" {
			continue
		}
		w.cleanAccount(account)
	}
}

func (w *Worker) cleanAccount(account *domain.Account) {
	client, err := imap.NewClient(account.IMAPHost, account.IMAPPort, account.IMAPUsername, account.IMAPPassword)
	if err != nil {
		log.Printf("[Cleanup] Account %s: connection failed: %v", account.ID, err)
		return
	}
	defer client.Close()

	now := time.Now()
	retentions := []folderRetention{
		{"Trash", account.CleanupTrashDays},
		{"Drafts", account.CleanupDraftsDays},
		{"Junk", account.CleanupSpamDays},
	}

	for _, r := range retentions {
		if r.days <= 0 {
			continue
		}

		deleted, err := client.DeleteOlderThan(r.folder, now.AddDate(0, 0, -r.days))
		if err != nil {
			log.Printf("[Cleanup] Account %s: %s sweep failed: %v", account.ID, r.folder, err)
			continue
		}
		if deleted > 0 {
			log.Printf("[Cleanup] Account %s: removed %d messages from %s older than %d days", account.ID, deleted, r.folder, r.days)
		}
	}
}
