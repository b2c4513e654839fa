package handler

import (
	"math/big"
	"strings"

	"givechain/pkg/domain"
	dErrors "givechain/pkg/domain-errors"
)

const maxInvoiceIDLen = 128

// DonateRequest is the HTTP request body for POST /donations.
type DonateRequest struct {
	Donor  string `json:"donor"`
	Amount string `json:"amount"`

	// Parsed values (populated by Validate)
	parsedDonor  domain.Address
	parsedAmount *big.Int
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *DonateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	donor, err := domain.ParseAddress(r.Donor)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "donor is required")
	}
	r.parsedDonor = donor

	amount, ok := new(big.Int).SetString(strings.TrimSpace(r.Amount), 10)
	if !ok {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount must be a decimal integer")
	}
	if amount.Sign() <= 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount must be positive")
	}
	r.parsedAmount = amount

	return nil
}

// ParsedDonor returns the validated donor address.
func (r *DonateRequest) ParsedDonor() domain.Address {
	return r.parsedDonor
}

// ParsedAmount returns the validated amount.
func (r *DonateRequest) ParsedAmount() *big.Int {
	return r.parsedAmount
}

// VerifyRequest is the HTTP request body for POST /donations/verify.
type VerifyRequest struct {
	Donor     string `json:"donor"`
	Proof     string `json:"proof"`
	InvoiceID string `json:"invoice_id"`

	parsedDonor domain.Address
}

// Validate validates and parses the request. The proof itself is opaque here;
// only the verifier judges it.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	donor, err := domain.ParseAddress(r.Donor)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "donor is required")
	}
	r.parsedDonor = donor

	r.InvoiceID = strings.TrimSpace(r.InvoiceID)
	if r.InvoiceID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "invoice_id is required")
	}
	if len(r.InvoiceID) > maxInvoiceIDLen {
		return dErrors.New(dErrors.CodeBadRequest, "invoice_id is too long")
	}

	return nil
}

// ParsedDonor returns the validated donor address.
func (r *VerifyRequest) ParsedDonor() domain.Address {
	return r.parsedDonor
}
