// Package donation is the use-case layer: it accepts donation events, drives
// the payment rail, and coordinates the ledger, the token registry, and the
// proof verifier. Per donor the state machine is NoDonation → Donated →
// Verified, with a later donation resetting Verified back to Donated.
package donation

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"givechain/internal/charity"
	"givechain/internal/donation/metrics"
	"givechain/internal/donation/ports"
	registrymodels "givechain/internal/registry/models"
	"givechain/pkg/domain"
	dErrors "givechain/pkg/domain-errors"
	"givechain/pkg/platform/events"
	"givechain/pkg/platform/tx"
)

const tracerName = "givechain/internal/donation"

// Service orchestrates the donate and verify flows. Each mutating call is a
// unit of work: the external call happens first under the donor's lock, and
// the ledger + registry mutations commit together or not at all.
type Service struct {
	minter     ports.Minter
	donorState ports.DonorState
	ledger     ports.Ledger
	rail       ports.Rail
	verifier   ports.ProofVerifier
	runner     tx.Runner
	payout     domain.Address
	descriptor charity.Descriptor

	emitter ports.EventEmitter
	locks   *donorLocks
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
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

func WithEventEmitter(emitter ports.EventEmitter) Option {
	return func(s *Service) {
		s.emitter = emitter
	}
}

func New(
	minter ports.Minter,
	donorState ports.DonorState,
	ledger ports.Ledger,
	rail ports.Rail,
	verifier ports.ProofVerifier,
	runner tx.Runner,
	payout domain.Address,
	descriptor charity.Descriptor,
	opts ...Option,
) (*Service, error) {
	if minter == nil || donorState == nil || ledger == nil {
		return nil, fmt.Errorf("minter, donor state, and ledger are required")
	}
	if rail == nil {
		return nil, fmt.Errorf("payment rail is required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("proof verifier is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if payout.IsZero() {
		return nil, fmt.Errorf("charity payout address is required")
	}

	svc := &Service{
		minter:     minter,
		donorState: donorState,
		ledger:     ledger,
		rail:       rail,
		verifier:   verifier,
		runner:     runner,
		payout:     payout,
		descriptor: descriptor,
		locks:      newDonorLocks(),
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Donate accepts a donation: rail transfer first, then ledger record,
// cumulative total, and donation-token mint as one unit. A declined or failed
// transfer aborts with no mutation anywhere.
func (s *Service) Donate(ctx context.Context, donor domain.Address, amount *big.Int) (registrymodels.TokenID, error) {
	ctx, span := s.tracer.Start(ctx, "donation.Donate",
		trace.WithAttributes(attribute.String("donor", donor.String())))
	defer span.End()

	if donor.IsZero() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "donor address must not be empty")
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidAmount, "donation amount must be positive")
	}

	unlock := s.locks.Lock(donor)
	defer unlock()

	ok, err := s.rail.TransferFrom(ctx, donor, s.payout, amount)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeTransferFailed, "payment rail unavailable")
	}
	if !ok {
		s.metrics.RecordTransferFailure()
		return 0, dErrors.New(dErrors.CodeTransferFailed, "payment rail declined the transfer")
	}

	var tokenID registrymodels.TokenID
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.Record(ctx, donor, amount); err != nil {
			return err
		}
		if err := s.donorState.RecordDonation(ctx, donor, amount); err != nil {
			return err
		}
		tokenID, err = s.minter.Mint(ctx, donor, donationSuffix(amount))
		return err
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordDonation()
	s.logger.InfoContext(ctx, "donation accepted",
		"donor", donor.String(),
		"amount", amount.String(),
		"token_id", tokenID,
	)
	s.emit(ctx, events.KindDonationAccepted, DonationAcceptedEvent{
		Donor:   donor.String(),
		Amount:  amount.String(),
		TokenID: tokenID,
	})
	return tokenID, nil
}

// VerifyDonation runs the proof gate and, on success, marks the donor's
// record verified and mints the invoice token as one unit. A failed proof
// mutates nothing.
func (s *Service) VerifyDonation(ctx context.Context, donor domain.Address, proof []byte, invoiceID string) (registrymodels.TokenID, error) {
	ctx, span := s.tracer.Start(ctx, "donation.VerifyDonation",
		trace.WithAttributes(attribute.String("donor", donor.String())))
	defer span.End()

	if donor.IsZero() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "donor address must not be empty")
	}

	unlock := s.locks.Lock(donor)
	defer unlock()

	if !s.verifier.Verify(ctx, proof, donor) {
		s.metrics.RecordVerification("rejected")
		return 0, dErrors.New(dErrors.CodeProofVerificationFailed, "proof verification failed")
	}

	var tokenID registrymodels.TokenID
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.MarkVerified(ctx, donor, invoiceID); err != nil {
			return err
		}
		var err error
		tokenID, err = s.minter.Mint(ctx, donor, invoiceSuffix(invoiceID))
		if err != nil {
			return err
		}
		return s.donorState.SetInvoiceToken(ctx, donor, tokenID)
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordVerification("accepted")
	s.logger.InfoContext(ctx, "donation verified",
		"donor", donor.String(),
		"invoice_id", invoiceID,
		"token_id", tokenID,
	)
	s.emit(ctx, events.KindDonationVerified, DonationVerifiedEvent{
		Donor:     donor.String(),
		InvoiceID: invoiceID,
		TokenID:   tokenID,
	})
	return tokenID, nil
}

// AllDonations returns the roster-ordered parallel views of the ledger.
func (s *Service) AllDonations(ctx context.Context) ([]domain.Address, []*big.Int, []bool, error) {
	return s.ledger.AllDonations(ctx)
}

// CharityInfo returns the static descriptor.
func (s *Service) CharityInfo() charity.Descriptor {
	return s.descriptor
}

// DonationsOf returns the donor's cumulative total.
func (s *Service) DonationsOf(ctx context.Context, donor domain.Address) (*big.Int, error) {
	return s.donorState.DonationsOf(ctx, donor)
}

// InvoiceTokenOf returns the donor's most recent invoice token.
func (s *Service) InvoiceTokenOf(ctx context.Context, donor domain.Address) (registrymodels.TokenID, error) {
	return s.donorState.InvoiceTokenOf(ctx, donor)
}

func (s *Service) emit(ctx context.Context, kind events.Kind, payload any) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, kind, payload); err != nil {
		s.logger.WarnContext(ctx, "event dropped",
			"kind", string(kind),
			"error", err,
		)
	}
}
