// Package registry allocates token IDs and binds each token to an owner and a
// metadata locator. IDs are dense, zero-based, and strictly increasing; the
// locator base is mutable registry-wide while each token's suffix is fixed at
// mint time, so locators are derived at query time rather than frozen.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"givechain/internal/registry/metrics"
	"givechain/internal/registry/models"
	"givechain/pkg/domain"
	dErrors "givechain/pkg/domain-errors"
	"givechain/pkg/platform/sentinel"
)

// Store is the persistence seam for registry state.
type Store interface {
	MintToken(ctx context.Context, owner domain.Address, suffix string, mintedAt time.Time) (models.TokenID, error)
	GetToken(ctx context.Context, id models.TokenID) (*models.Token, error)
	AddDonation(ctx context.Context, donor domain.Address, amount *big.Int) error
	DonationsOf(ctx context.Context, donor domain.Address) (*big.Int, error)
	SetInvoiceToken(ctx context.Context, donor domain.Address, id models.TokenID) error
	InvoiceTokenOf(ctx context.Context, donor domain.Address) (models.TokenID, error)
	BaseLocator(ctx context.Context) (string, error)
	SetBaseLocator(ctx context.Context, base string) error
}

// Cache fronts the hot per-donor reads. Optional; a nil cache means every read
// goes to the store.
type Cache interface {
	GetTotal(ctx context.Context, donor domain.Address) (*big.Int, error)
	SetTotal(ctx context.Context, donor domain.Address, total *big.Int) error
	InvalidateTotal(ctx context.Context, donor domain.Address) error
	GetInvoiceToken(ctx context.Context, donor domain.Address) (models.TokenID, error)
	SetInvoiceToken(ctx context.Context, donor domain.Address, id models.TokenID) error
	InvalidateInvoiceToken(ctx context.Context, donor domain.Address) error
}

// Service owns the token sequence and the registry-side donor state. The mint
// entry point is only reachable through the orchestrator's Minter capability;
// nothing in the transport layer mints directly.
type Service struct {
	store   Store
	admin   domain.Address
	cache   Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func New(store Store, admin domain.Address, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("registry store is required")
	}
	if admin.IsZero() {
		return nil, fmt.Errorf("registry administrator address is required")
	}

	svc := &Service{
		store:  store,
		admin:  admin,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Mint allocates the next sequential ID and binds owner and suffix to it.
// Never fails for a valid (non-zero) owner.
func (s *Service) Mint(ctx context.Context, owner domain.Address, suffix string) (models.TokenID, error) {
	if owner.IsZero() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "token owner must not be the zero address")
	}

	id, err := s.store.MintToken(ctx, owner, suffix, time.Now().UTC())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint token")
	}

	s.metrics.RecordMint(mintKind(suffix))
	s.logger.InfoContext(ctx, "token minted",
		"token_id", id,
		"owner", owner.String(),
	)
	return id, nil
}

// SetBaseLocator moves the metadata base for every token queried afterwards.
// Restricted to the registry administrator.
func (s *Service) SetBaseLocator(ctx context.Context, caller domain.Address, newBase string) error {
	if !caller.Equal(s.admin) {
		return dErrors.New(dErrors.CodeUnauthorized, "only the registry administrator may set the base locator")
	}
	if newBase == "" {
		return dErrors.New(dErrors.CodeBadRequest, "base locator must not be empty")
	}

	if err := s.store.SetBaseLocator(ctx, newBase); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set base locator")
	}

	s.metrics.RecordBaseLocatorMove()
	s.logger.InfoContext(ctx, "base locator moved", "base", newBase)
	return nil
}

// LocatorOf derives the metadata locator for id from the current base.
func (s *Service) LocatorOf(ctx context.Context, id models.TokenID) (string, error) {
	token, err := s.store.GetToken(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeTokenNotFound, fmt.Sprintf("token %d does not exist", id))
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token")
	}

	base, err := s.store.BaseLocator(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load base locator")
	}
	return base + strconv.FormatUint(token.ID, 10) + token.Suffix, nil
}

// OwnerOf returns the owner bound at mint time.
func (s *Service) OwnerOf(ctx context.Context, id models.TokenID) (domain.Address, error) {
	token, err := s.store.GetToken(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.ZeroAddress, dErrors.New(dErrors.CodeTokenNotFound, fmt.Sprintf("token %d does not exist", id))
		}
		return domain.ZeroAddress, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token")
	}
	return token.Owner, nil
}

// RecordDonation accumulates the donor's cumulative total. Distinct from the
// ledger's latest-donation record: this sum only grows.
func (s *Service) RecordDonation(ctx context.Context, donor domain.Address, amount *big.Int) error {
	if err := s.store.AddDonation(ctx, donor, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record donation total")
	}
	if s.cache != nil {
		if err := s.cache.InvalidateTotal(ctx, donor); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate totals cache",
				"donor", donor.String(),
				"error", err,
			)
		}
	}
	return nil
}

// DonationsOf returns the donor's cumulative total, zero for unknown donors.
func (s *Service) DonationsOf(ctx context.Context, donor domain.Address) (*big.Int, error) {
	if s.cache != nil {
		if total, err := s.cache.GetTotal(ctx, donor); err == nil {
			s.metrics.RecordCacheHit()
			return total, nil
		}
		s.metrics.RecordCacheMiss()
	}

	total, err := s.store.DonationsOf(ctx, donor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation total")
	}

	if s.cache != nil {
		if err := s.cache.SetTotal(ctx, donor, total); err != nil {
			s.logger.WarnContext(ctx, "failed to populate totals cache",
				"donor", donor.String(),
				"error", err,
			)
		}
	}
	return total, nil
}

// SetInvoiceToken points the donor's single invoice slot at id. A later
// invoice overwrites the reference; the earlier token itself survives.
func (s *Service) SetInvoiceToken(ctx context.Context, donor domain.Address, id models.TokenID) error {
	if err := s.store.SetInvoiceToken(ctx, donor, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to index invoice token")
	}
	if s.cache != nil {
		if err := s.cache.InvalidateInvoiceToken(ctx, donor); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate invoice cache",
				"donor", donor.String(),
				"error", err,
			)
		}
	}
	return nil
}

// InvoiceTokenOf returns the donor's most recent invoice token.
func (s *Service) InvoiceTokenOf(ctx context.Context, donor domain.Address) (models.TokenID, error) {
	if s.cache != nil {
		if id, err := s.cache.GetInvoiceToken(ctx, donor); err == nil {
			return id, nil
		}
	}

	id, err := s.store.InvoiceTokenOf(ctx, donor)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no invoice token for donor %s", donor))
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load invoice token")
	}

	if s.cache != nil {
		if err := s.cache.SetInvoiceToken(ctx, donor, id); err != nil {
			s.logger.WarnContext(ctx, "failed to populate invoice cache",
				"donor", donor.String(),
				"error", err,
			)
		}
	}
	return id, nil
}

func mintKind(suffix string) string {
	if strings.Contains(suffix, "invoiceId=") {
		return "invoice"
	}
	return "donation"
}
