package donation

import "math/big"

// Locator suffixes are fixed at mint time and appended to the registry's
// mutable base plus the token ID. The formats are a compatibility contract
// with the metadata content service and must stay bit-exact.

func donationSuffix(amount *big.Int) string {
	return ".json?donation=" + amount.String()
}

func invoiceSuffix(invoiceID string) string {
	return ".json?invoiceId=" + invoiceID
}
