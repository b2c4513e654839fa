package donation

// DonationAcceptedEvent is published after a donation commits. Amount is the
// decimal string of the smallest indivisible unit.
type DonationAcceptedEvent struct {
	Donor   string `json:"donor"`
	Amount  string `json:"amount"`
	TokenID uint64 `json:"token_id"`
}

// DonationVerifiedEvent is published after a proof verification commits.
type DonationVerifiedEvent struct {
	Donor     string `json:"donor"`
	InvoiceID string `json:"invoice_id"`
	TokenID   uint64 `json:"token_id"`
}
