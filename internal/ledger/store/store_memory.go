package store

import (
	"context"
	"math/big"
	"sync"

	"givechain/internal/ledger/models"
	"givechain/pkg/domain"
	"givechain/pkg/platform/sentinel"
)

// MemoryStore keeps the per-donor records and the roster in process. Roster
// membership is tracked in a set so enumeration order stays insertion order
// without a linear scan per donation.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[domain.Address]*models.DonationRecord
	roster   []domain.Address
	inRoster map[domain.Address]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[domain.Address]*models.DonationRecord),
		inRoster: make(map[domain.Address]bool),
	}
}

// Record overwrites the donor's record and appends the donor to the roster on
// first donation. The membership check and the write happen under one lock.
func (s *MemoryStore) Record(ctx context.Context, donor domain.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[donor] = &models.DonationRecord{
		Donor:  donor,
		Amount: new(big.Int).Set(amount),
	}
	if !s.inRoster[donor] {
		s.inRoster[donor] = true
		s.roster = append(s.roster, donor)
	}
	return nil
}

// MarkVerified sets the verification fields. A donor with no prior record gets
// a zero-valued one; they do not enter the roster until they actually donate.
func (s *MemoryStore) MarkVerified(ctx context.Context, donor domain.Address, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[donor]
	if !ok {
		record = &models.DonationRecord{Donor: donor, Amount: new(big.Int)}
		s.records[donor] = record
	}
	record.Verified = true
	record.InvoiceID = invoiceID
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, donor domain.Address) (*models.DonationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[donor]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *record
	copied.Amount = new(big.Int).Set(record.Amount)
	return &copied, nil
}

// All returns every rostered donor's record in insertion order.
func (s *MemoryStore) All(ctx context.Context) ([]models.DonationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DonationRecord, 0, len(s.roster))
	for _, donor := range s.roster {
		record := s.records[donor]
		copied := *record
		copied.Amount = new(big.Int).Set(record.Amount)
		out = append(out, copied)
	}
	return out, nil
}
