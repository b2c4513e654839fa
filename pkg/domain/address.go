// Package domain holds the small value types shared across the service.
package domain

import "strings"

// Address identifies a participant on the payment rail (a donor, the charity
// payout account, or the registry administrator). Addresses are opaque to this
// service; they are compared case-insensitively and never parsed.
type Address string

// ZeroAddress is the sentinel for "no participant". Verifier and registry
// code treat it as invalid input, never as a real owner.
const ZeroAddress Address = ""

// ParseAddress normalizes raw caller input into an Address.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ZeroAddress, ErrEmptyAddress
	}
	return Address(strings.ToLower(trimmed)), nil
}

// IsZero reports whether the address is the zero sentinel.
func (a Address) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

func (a Address) String() string {
	return string(a)
}

// Equal compares two addresses ignoring case.
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(string(a), string(other))
}
