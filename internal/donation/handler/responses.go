package handler

import (
	"math/big"

	"givechain/pkg/domain"
)

// TokenResponse is returned by the donate and verify endpoints.
type TokenResponse struct {
	TokenID uint64 `json:"token_id"`
}

// DonationsResponse is the HTTP response for GET /donations: parallel views of
// the roster, its latest amounts, and the verification flags.
type DonationsResponse struct {
	Donors   []string `json:"donors"`
	Amounts  []string `json:"amounts"`
	Verified []bool   `json:"verified"`
}

// FromDonations converts the ledger's parallel slices to an HTTP response.
func FromDonations(donors []domain.Address, amounts []*big.Int, verified []bool) *DonationsResponse {
	resp := &DonationsResponse{
		Donors:   make([]string, len(donors)),
		Amounts:  make([]string, len(amounts)),
		Verified: verified,
	}
	if resp.Verified == nil {
		resp.Verified = []bool{}
	}
	for i, donor := range donors {
		resp.Donors[i] = donor.String()
	}
	for i, amount := range amounts {
		resp.Amounts[i] = amount.String()
	}
	return resp
}

// TotalResponse is the HTTP response for GET /donations/{donor}/total.
type TotalResponse struct {
	Donor string `json:"donor"`
	Total string `json:"total"`
}
