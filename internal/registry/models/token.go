package models

import (
	"time"

	"givechain/pkg/domain"
)

// TokenID is the dense, zero-based position of a token in the mint sequence.
// IDs are allocated by a single authority and never reused, so identity is
// positional and needs no collision handling.
type TokenID = uint64

// Token is one issued collectible. Owner and Suffix are fixed at mint time;
// the full metadata locator is derived lazily from the registry's current base
// locator, so callers must not cache locators across a base change.
type Token struct {
	ID       TokenID
	Owner    domain.Address
	Suffix   string
	MintedAt time.Time
}
