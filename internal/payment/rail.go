// Package payment provides the in-memory payment rail used by tests and local
// runs. The real rail is an external collaborator; this implementation only
// honors the same contract: a transfer either moves the full amount after
// prior authorization, or it is declined.
package payment

import (
	"context"
	"math/big"
	"sync"

	"givechain/pkg/domain"
)

// MemoryRail tracks balances and per-payer authorizations in process.
// TransferFrom declines (returns false, not an error) when the payer has not
// authorized this rail or lacks funds, mirroring how an on-rail decline
// surfaces to the orchestrator.
type MemoryRail struct {
	mu         sync.Mutex
	balances   map[domain.Address]*big.Int
	authorized map[domain.Address]bool
}

func NewMemoryRail() *MemoryRail {
	return &MemoryRail{
		balances:   make(map[domain.Address]*big.Int),
		authorized: make(map[domain.Address]bool),
	}
}

// Credit funds an account. Test setup only.
func (r *MemoryRail) Credit(account domain.Address, amount *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance, ok := r.balances[account]
	if !ok {
		balance = new(big.Int)
		r.balances[account] = balance
	}
	balance.Add(balance, amount)
}

// Authorize records the payer's out-of-band authorization.
func (r *MemoryRail) Authorize(payer domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorized[payer] = true
}

// BalanceOf returns the account's current balance.
func (r *MemoryRail) BalanceOf(account domain.Address) *big.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance, ok := r.balances[account]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(balance)
}

// TransferFrom moves amount from payer to payee. The boolean result is the
// rail's accept/decline signal; errors are reserved for rail unavailability.
func (r *MemoryRail) TransferFrom(_ context.Context, payer, payee domain.Address, amount *big.Int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.authorized[payer] {
		return false, nil
	}
	balance, ok := r.balances[payer]
	if !ok || balance.Cmp(amount) < 0 {
		return false, nil
	}

	balance.Sub(balance, amount)
	dest, ok := r.balances[payee]
	if !ok {
		dest = new(big.Int)
		r.balances[payee] = dest
	}
	dest.Add(dest, amount)
	return true, nil
}
