package models

import (
	"math/big"

	"givechain/pkg/domain"
)

// DonationRecord is the ledger's per-donor state. One record per donor: a
// later donation overwrites Amount and resets the verification fields, while
// the registry keeps the independently accumulating cumulative total.
type DonationRecord struct {
	Donor     domain.Address
	Amount    *big.Int
	Verified  bool
	InvoiceID string
}

// Roster is the ordered, duplicate-free sequence of donors. Append-only:
// a donor enters at most once, at the position of their first donation.
type Roster []domain.Address
