package verifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"givechain/pkg/domain"
)

func TestAcceptNonEmpty(t *testing.T) {
	v := NewAcceptNonEmpty()
	ctx := context.Background()

	tests := []struct {
		name     string
		proof    ProofData
		claimant string
		want     bool
	}{
		{"empty proof", nil, "alice", false},
		{"zero-length proof", ProofData{}, "alice", false},
		{"zero claimant", ProofData("proof"), "", false},
		{"blank claimant", ProofData("proof"), "   ", false},
		{"well-formed", ProofData("proof"), "alice", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Verify(ctx, tt.proof, domain.Address(tt.claimant))
			assert.Equal(t, tt.want, got)
		})
	}
}
