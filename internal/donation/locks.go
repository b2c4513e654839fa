package donation

import (
	"sync"

	"givechain/pkg/domain"
)

// donorLocks serializes mutating calls per donor. The lock is held across the
// external rail/verifier call and the local mutations, so a second call for
// the same donor can never observe stale intermediate state while an external
// call is outstanding. Different donors proceed in parallel; the token-ID
// sequence stays safe because the registry store increments it atomically.
type donorLocks struct {
	mu    sync.Mutex
	locks map[domain.Address]*sync.Mutex
}

func newDonorLocks() *donorLocks {
	return &donorLocks{locks: make(map[domain.Address]*sync.Mutex)}
}

// Lock acquires the donor's mutex and returns the release func.
func (l *donorLocks) Lock(donor domain.Address) func() {
	l.mu.Lock()
	m, ok := l.locks[donor]
	if !ok {
		m = &sync.Mutex{}
		l.locks[donor] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
