// Package billing declares the fee-gate contract the aggregation pipeline
// honors before doing any extraction work. The actual wallet/ledger lives in
// an external service; this package only fixes the interface and its
// failure mode.
package billing

import "errors"

// ErrInsufficientFunds is returned when the acting user cannot cover a fee.
var ErrInsufficientFunds = errors.New("insufficient funds")

// FeeCharger charges a flat feature fee against a user's wallet.
type FeeCharger interface {
	ChargeFeatureFee(userID string, amount int) error
}

// NopCharger charges nothing; used when no billing backend is wired.
type NopCharger struct{}

// ChargeFeatureFee implements FeeCharger.
func (NopCharger) ChargeFeatureFee(string, int) error { return nil }
