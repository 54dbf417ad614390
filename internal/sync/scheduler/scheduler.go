package scheduler

import (
	"context"
	"log"
	"time"

	"mailpilot-backend/internal/account/domain"
	"mailpilot-backend/internal/account/repository"
)

// Syncer performs one polling sync of an account's mailbox
type Syncer interface {
	SyncAccount(ctx context.Context, account *domain.Account) error
}

// Scheduler drives periodic mailbox polling for scheduled-mode accounts.
// Each tick it picks up accounts whose next_sync_at has passed, runs the
// syncer, and re-plans the next run from the account's current settings.
type Scheduler struct {
	accountRepo repository.AccountRepository
	syncer      Syncer
	tick        time.Duration

	nightWindow func() NightWindow
	lowPower    func() bool

	stopChan chan struct{}
}

// New creates a new scheduler. nightWindow and lowPower are read on every
// decision so runtime settings changes take effect without a restart.
func New(accountRepo repository.AccountRepository, syncer Syncer, tick time.Duration, nightWindow func() NightWindow, lowPower func() bool) *Scheduler {
	return &Scheduler{
		accountRepo: accountRepo,
		syncer:      syncer,
		tick:        tick,
		nightWindow: nightWindow,
		lowPower:    lowPower,
		stopChan:    make(chan struct{}),
	}
}

// ScheduleWithNightMode re-plans the account's next run from its persisted
// settings. Idempotent: calling it twice in a row lands on (practically)
// the same plan, so the settings orchestrator may re-issue it after a
// partial failure. Push-mode Exchange accounts get their polling slot
// cleared instead.
func (s *Scheduler) ScheduleWithNightMode(ctx context.Context, account *domain.Account) error {
	cfg := account.SyncConfig()

	next, ok := NextRun(time.Now(), cfg, s.nightWindow())
	if !ok {
		return s.accountRepo.UpdateField(account.ID, "next_sync_at", nil)
	}

	log.Printf("[Scheduler] Account %s next sync at %s", account.ID, next.Format(time.RFC3339))
	return s.accountRepo.UpdateField(account.ID, "next_sync_at", next)
}

// Start begins the scheduler loop
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("[Scheduler] Starting sync scheduler (tick: %s)", s.tick)

	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runDue(ctx)
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) runDue(ctx context.Context) {
	now := time.Now()

	accounts, err := s.accountRepo.FindDue(now)
	if err != nil {
		log.Printf("[Scheduler] Error finding due accounts: %v", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	lowPower := s.lowPower()
	win := s.nightWindow()

	for _, account := range accounts {
		cfg := account.SyncConfig()

		// Low-power mode pauses polling except for accounts that opted
		// out; the slot stays due and is picked up again on a later tick.
		if lowPower && !cfg.IgnoreBatterySaver {
			continue
		}

		// Night mode pushes the run to the end of the window
		if cfg.NightModeEnabled && win.Contains(now) {
			deferred := win.EndAfter(now)
			if err := s.accountRepo.UpdateField(account.ID, "next_sync_at", deferred); err != nil {
				log.Printf("[Scheduler] Error deferring account %s: %v", account.ID, err)
			}
			continue
		}

		// Plan the next slot before syncing so a slow sync cannot make
		// the same account due again on the next tick.
		if err := s.ScheduleWithNightMode(ctx, account); err != nil {
			log.Printf("[Scheduler] Error re-planning account %s: %v", account.ID, err)
		}

		if err := s.syncer.SyncAccount(ctx, account); err != nil {
			log.Printf("[Scheduler] Sync failed for account %s: %v", account.ID, err)
		}
	}
}
