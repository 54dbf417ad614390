package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mailpilot-backend/internal/account/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAccountRepo is an in-memory AccountRepository that records every
// persisted field write in call order.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	writes   []string // "column=value" in order
	failNext error
}

func newFakeAccountRepo(accounts ...*domain.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, a := range accounts {
		repo.accounts[a.ID] = a
	}
	return repo
}

func (r *fakeAccountRepo) Create(account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) FindByID(id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) FindByEmail(email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByUserID(userID string) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Account
	for _, a := range r.accounts {
		if a.UserID == userID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) FindDue(time.Time) ([]*domain.Account, error)    { return nil, nil }
func (r *fakeAccountRepo) FindWithCleanup() ([]*domain.Account, error)     { return nil, nil }
func (r *fakeAccountRepo) UpdateSyncState(string, time.Time, string) error { return nil }

func (r *fakeAccountRepo) Delete(id string) error {
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) UpdateField(accountID, column string, value interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	if _, ok := r.accounts[accountID]; !ok {
		return errors.New("no such account")
	}
	r.writes = append(r.writes, column)
	return nil
}

// recordingCollaborators implements PushChannel and SyncScheduler and keeps
// a shared ordered log so tests can assert persist-before-side-effects.
type recordingCollaborators struct {
	mu  sync.Mutex
	log []string
}

func (c *recordingCollaborators) record(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, event)
}

func (c *recordingCollaborators) Start(_ context.Context, account *domain.Account) error {
	c.record("push_start:" + account.ID)
	return nil
}

func (c *recordingCollaborators) Stop(_ context.Context, account *domain.Account) error {
	c.record("push_stop:" + account.ID)
	return nil
}

func (c *recordingCollaborators) ScheduleWithNightMode(_ context.Context, account *domain.Account) error {
	c.record("reschedule:" + account.ID)
	return nil
}

func exchangeAccount() *domain.Account {
	return &domain.Account{
		ID:                  "acct-1",
		UserID:              "user-1",
		Email:               "box@example.com",
		AccountType:         "exchange",
		SyncMode:            "push",
		SyncIntervalMinutes: 15,
	}
}

func newTestUsecase(repo *fakeAccountRepo, collab *recordingCollaborators) SyncSettingsUsecase {
	return NewSyncSettingsUsecase(repo, collab, collab, NewAccountLocks())
}

func lockCount(l *AccountLocks) int {
	n := 0
	l.locks.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func TestGetSettingsNormalizesStoredValues(t *testing.T) {
	acct := exchangeAccount()
	acct.SyncMode = "invalid_tag"
	acct.SyncIntervalMinutes = 7
	repo := newFakeAccountRepo(acct)
	uc := newTestUsecase(repo, &recordingCollaborators{})

	view, err := uc.GetSettings("user-1", "acct-1")
	require.NoError(t, err)

	assert.Equal(t, domain.SyncModePush, view.Config.Mode)
	assert.Equal(t, domain.DefaultSyncIntervalMinutes, view.Config.SyncIntervalMinutes)
	assert.False(t, view.IntervalApplicable)
	assert.Equal(t, "Exchange", view.AccountTypeLabel)
	assert.Equal(t, "Push", view.SyncModeLabel)
}

func TestGetSettingsOwnership(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	uc := newTestUsecase(repo, &recordingCollaborators{})

	_, err := uc.GetSettings("someone-else", "acct-1")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = uc.GetSettings("user-1", "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUpdateSyncModePersistsBeforeSideEffects(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	view, err := uc.UpdateSyncMode(context.Background(), "user-1", "acct-1", "scheduled")
	require.NoError(t, err)

	assert.Equal(t, domain.SyncModeScheduled, view.Config.Mode)
	assert.True(t, view.IntervalApplicable)

	assert.Equal(t, []string{"sync_mode"}, repo.writes)
	assert.Equal(t, []string{"push_stop:acct-1", "reschedule:acct-1"}, collab.log)
}

func TestUpdateSyncModeToPushStartsChannel(t *testing.T) {
	acct := exchangeAccount()
	acct.SyncMode = "scheduled"
	repo := newFakeAccountRepo(acct)
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	_, err := uc.UpdateSyncMode(context.Background(), "user-1", "acct-1", "push")
	require.NoError(t, err)

	assert.Equal(t, []string{"push_start:acct-1", "reschedule:acct-1"}, collab.log)
}

func TestUpdateSyncModeRejectsUnknownValue(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	_, err := uc.UpdateSyncMode(context.Background(), "user-1", "acct-1", "smoke_signals")

	assert.ErrorIs(t, err, domain.ErrInvalidEnumValue)
	assert.Empty(t, repo.writes, "rejected update must not touch the store")
	assert.Empty(t, collab.log, "rejected update must not reach collaborators")
}

func TestUpdateSyncIntervalValidation(t *testing.T) {
	acct := exchangeAccount()
	acct.SyncMode = "scheduled"
	repo := newFakeAccountRepo(acct)
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	_, err := uc.UpdateSyncInterval(context.Background(), "user-1", "acct-1", 7)
	assert.ErrorIs(t, err, domain.ErrInvalidEnumValue)
	assert.Empty(t, repo.writes)

	view, err := uc.UpdateSyncInterval(context.Background(), "user-1", "acct-1", 15)
	require.NoError(t, err)
	assert.Equal(t, 15, view.Config.SyncIntervalMinutes)
	assert.Equal(t, []string{"sync_interval_minutes"}, repo.writes)
	assert.Equal(t, []string{"reschedule:acct-1"}, collab.log, "interval change must not touch the push channel")
}

func TestUpdateNightModeAlwaysReschedules(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	view, err := uc.UpdateNightMode(context.Background(), "user-1", "acct-1", true)
	require.NoError(t, err)

	assert.True(t, view.Config.NightModeEnabled)
	assert.Equal(t, []string{"night_mode_enabled"}, repo.writes)
	assert.Equal(t, []string{"reschedule:acct-1"}, collab.log)
}

func TestUpdateBatterySaverAlwaysReschedules(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	view, err := uc.UpdateBatterySaver(context.Background(), "user-1", "acct-1", true)
	require.NoError(t, err)

	assert.True(t, view.Config.IgnoreBatterySaver)
	assert.Equal(t, []string{"reschedule:acct-1"}, collab.log)
}

func TestUpdateIntervalDaysSkipsScheduler(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	view, err := uc.UpdateIntervalDays(context.Background(), "user-1", "acct-1", "cleanup_trash", 30)
	require.NoError(t, err)

	assert.Equal(t, 30, view.Config.CleanupTrashDays)
	assert.Equal(t, []string{"cleanup_trash_days"}, repo.writes)
	assert.Empty(t, collab.log, "day-count settings are orthogonal to the scheduler")
}

func TestUpdateIntervalDaysValidation(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	_, err := uc.UpdateIntervalDays(context.Background(), "user-1", "acct-1", "contacts", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = uc.UpdateIntervalDays(context.Background(), "user-1", "acct-1", "frequency", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidEnumValue)

	assert.Empty(t, repo.writes)
	assert.Empty(t, collab.log)
}

func TestPersistFailureBlocksSideEffects(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	repo.failNext = errors.New("connection reset")
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	_, err := uc.UpdateSyncMode(context.Background(), "user-1", "acct-1", "scheduled")

	require.Error(t, err)
	assert.Empty(t, collab.log, "side effects must not run when persist fails")

	// stored state unchanged, next read still shows push mode
	view, err := uc.GetSettings("user-1", "acct-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncModePush, view.Config.Mode)
}

func TestConcurrentEditsToSameAccountSerialize(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	collab := &recordingCollaborators{}
	uc := newTestUsecase(repo, collab)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = uc.UpdateNightMode(context.Background(), "user-1", "acct-1", true)
			} else {
				_, _ = uc.UpdateBatterySaver(context.Background(), "user-1", "acct-1", true)
			}
		}(i)
	}
	wg.Wait()

	// every edit persisted exactly one column and triggered one re-plan
	assert.Len(t, repo.writes, 20)
	assert.Len(t, collab.log, 20)
}

func TestDeleteAccountReleasesLock(t *testing.T) {
	repo := newFakeAccountRepo(exchangeAccount())
	collab := &recordingCollaborators{}
	locks := NewAccountLocks()
	settings := NewSyncSettingsUsecase(repo, collab, collab, locks)
	accounts := NewAccountUsecase(repo, collab, collab, locks)

	_, err := settings.UpdateNightMode(context.Background(), "user-1", "acct-1", true)
	require.NoError(t, err)
	assert.Equal(t, 1, lockCount(locks))

	require.NoError(t, accounts.DeleteAccount(context.Background(), "user-1", "acct-1"))
	assert.Equal(t, 0, lockCount(locks))
}
