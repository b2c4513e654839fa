package store

import (
	"context"
	"math/big"
	"sync"
	"time"

	"givechain/internal/registry/models"
	"givechain/pkg/domain"
	"givechain/pkg/platform/sentinel"
)

// MemoryStore keeps the full registry state in process: the token sequence,
// per-donor cumulative totals, the invoice-token index, and the mutable base
// locator. It is the authoritative implementation for unit tests and the
// default when no DATABASE_URL is configured.
type MemoryStore struct {
	mu           sync.RWMutex
	tokens       []models.Token
	totals       map[domain.Address]*big.Int
	invoiceIndex map[domain.Address]models.TokenID
	baseLocator  string
}

func NewMemoryStore(baseLocator string) *MemoryStore {
	return &MemoryStore{
		totals:       make(map[domain.Address]*big.Int),
		invoiceIndex: make(map[domain.Address]models.TokenID),
		baseLocator:  baseLocator,
	}
}

// MintToken appends the next token in the sequence. The slice index is the
// token ID, which keeps the dense zero-based invariant structural.
func (s *MemoryStore) MintToken(ctx context.Context, owner domain.Address, suffix string, mintedAt time.Time) (models.TokenID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := models.TokenID(len(s.tokens))
	s.tokens = append(s.tokens, models.Token{
		ID:       id,
		Owner:    owner,
		Suffix:   suffix,
		MintedAt: mintedAt,
	})
	return id, nil
}

func (s *MemoryStore) GetToken(ctx context.Context, id models.TokenID) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id >= models.TokenID(len(s.tokens)) {
		return nil, sentinel.ErrNotFound
	}
	token := s.tokens[id]
	return &token, nil
}

func (s *MemoryStore) AddDonation(ctx context.Context, donor domain.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, ok := s.totals[donor]
	if !ok {
		total = new(big.Int)
		s.totals[donor] = total
	}
	total.Add(total, amount)
	return nil
}

func (s *MemoryStore) DonationsOf(ctx context.Context, donor domain.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total, ok := s.totals[donor]
	if !ok {
		return new(big.Int), nil
	}
	return new(big.Int).Set(total), nil
}

func (s *MemoryStore) SetInvoiceToken(ctx context.Context, donor domain.Address, id models.TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoiceIndex[donor] = id
	return nil
}

func (s *MemoryStore) InvoiceTokenOf(ctx context.Context, donor domain.Address) (models.TokenID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.invoiceIndex[donor]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return id, nil
}

func (s *MemoryStore) BaseLocator(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseLocator, nil
}

func (s *MemoryStore) SetBaseLocator(ctx context.Context, base string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseLocator = base
	return nil
}
