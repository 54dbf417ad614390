package usecase

import "sync"

// AccountLocks hands out one mutex per account so concurrent settings edits
// to the same account serialize while edits to different accounts proceed
// independently. The registry is shared between the settings and lifecycle
// usecases: deleting an account drops its entry.
type AccountLocks struct {
	locks sync.Map // accountID -> *sync.Mutex
}

// NewAccountLocks creates an empty lock registry
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{}
}

// For returns the mutex guarding the given account
func (l *AccountLocks) For(accountID string) *sync.Mutex {
	mu, _ := l.locks.LoadOrStore(accountID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Forget drops the entry for an account that no longer exists
func (l *AccountLocks) Forget(accountID string) {
	l.locks.Delete(accountID)
}
