// Package verifier is the proof-of-payment gate in front of the invoice-token
// path. The interface is the single seam designed for a real succinct-proof
// implementation later; today's implementation only checks well-formedness.
package verifier

import (
	"context"

	"givechain/pkg/domain"
)

// ProofData is an opaque proof payload. The mock never inspects it beyond
// emptiness; a real verifier would parse and check it cryptographically.
type ProofData []byte

// Verifier decides whether a proof substantiates a claimant's payment.
//
// Contract: Verify never panics and never errors on malformed input; a
// malformed proof or zero claimant simply verifies as false. Callers can then
// treat every verification failure uniformly.
type Verifier interface {
	Verify(ctx context.Context, proof ProofData, claimant domain.Address) bool
}

// AcceptNonEmpty is the mock verifier: any well-formed, non-empty proof from a
// non-zero claimant passes.
type AcceptNonEmpty struct{}

func NewAcceptNonEmpty() AcceptNonEmpty {
	return AcceptNonEmpty{}
}

func (AcceptNonEmpty) Verify(_ context.Context, proof ProofData, claimant domain.Address) bool {
	if len(proof) == 0 {
		return false
	}
	if claimant.IsZero() {
		return false
	}
	return true
}
