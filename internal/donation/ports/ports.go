// Package ports defines the collaborator seams the donation orchestrator
// depends on. The orchestrator only ever sees these interfaces; the concrete
// registry, ledger, rail, and verifier are wired in at startup.
package ports

import (
	"context"
	"math/big"

	registrymodels "givechain/internal/registry/models"
	"givechain/internal/verifier"
	"givechain/pkg/domain"
	"givechain/pkg/platform/events"
)

// Minter is the capability to create tokens. The registry implements it and
// the orchestrator is its only holder; there is no public mint entry point.
type Minter interface {
	Mint(ctx context.Context, owner domain.Address, suffix string) (registrymodels.TokenID, error)
}

// DonorState is the registry-side per-donor bookkeeping: the cumulative
// donation total and the invoice-token index.
type DonorState interface {
	RecordDonation(ctx context.Context, donor domain.Address, amount *big.Int) error
	DonationsOf(ctx context.Context, donor domain.Address) (*big.Int, error)
	SetInvoiceToken(ctx context.Context, donor domain.Address, id registrymodels.TokenID) error
	InvoiceTokenOf(ctx context.Context, donor domain.Address) (registrymodels.TokenID, error)
}

// Ledger is the donation ledger seam.
type Ledger interface {
	Record(ctx context.Context, donor domain.Address, amount *big.Int) error
	MarkVerified(ctx context.Context, donor domain.Address, invoiceID string) error
	AllDonations(ctx context.Context) ([]domain.Address, []*big.Int, []bool, error)
}

// Rail is the external payment rail. The boolean result is the rail's
// accept/decline signal; an error means the rail itself was unreachable.
// Transfers require prior out-of-band authorization by the payer.
type Rail interface {
	TransferFrom(ctx context.Context, payer, payee domain.Address, amount *big.Int) (bool, error)
}

// ProofVerifier gates the invoice-token path. Verification failure is a false
// result, never an error.
type ProofVerifier interface {
	Verify(ctx context.Context, proof verifier.ProofData, claimant domain.Address) bool
}

// EventEmitter publishes lifecycle events. Emission is best-effort; a full
// outbox never fails the donation.
type EventEmitter interface {
	Emit(ctx context.Context, kind events.Kind, payload any) error
}
