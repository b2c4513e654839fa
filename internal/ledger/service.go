// Package ledger tracks per-donor donation state and the append-only donor
// roster. The ledger records only the latest donation per donor; cumulative
// totals live registry-side and accumulate independently.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"givechain/internal/ledger/models"
	"givechain/pkg/domain"
	dErrors "givechain/pkg/domain-errors"
)

// Store is the persistence seam for donation records.
type Store interface {
	Record(ctx context.Context, donor domain.Address, amount *big.Int) error
	MarkVerified(ctx context.Context, donor domain.Address, invoiceID string) error
	Get(ctx context.Context, donor domain.Address) (*models.DonationRecord, error)
	All(ctx context.Context) ([]models.DonationRecord, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	svc := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Record overwrites the donor's record with a fresh, unverified one and adds
// the donor to the roster if absent. Amount must be positive.
func (s *Service) Record(ctx context.Context, donor domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "donation amount must be positive")
	}
	if err := s.store.Record(ctx, donor, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record donation")
	}
	return nil
}

// MarkVerified sets the verification flag and invoice reference. Deliberately
// permissive: a donor with no prior donation gets a zero-valued record rather
// than an error, and stays off the roster until they donate.
func (s *Service) MarkVerified(ctx context.Context, donor domain.Address, invoiceID string) error {
	if err := s.store.MarkVerified(ctx, donor, invoiceID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark donation verified")
	}
	return nil
}

// Get returns the donor's latest record.
func (s *Service) Get(ctx context.Context, donor domain.Address) (*models.DonationRecord, error) {
	record, err := s.store.Get(ctx, donor)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// AllDonations returns parallel slices in roster insertion order.
func (s *Service) AllDonations(ctx context.Context) ([]domain.Address, []*big.Int, []bool, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return nil, nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}

	donors := make([]domain.Address, len(records))
	amounts := make([]*big.Int, len(records))
	verified := make([]bool, len(records))
	for i, record := range records {
		donors[i] = record.Donor
		amounts[i] = record.Amount
		verified[i] = record.Verified
	}
	return donors, amounts, verified, nil
}
