package models

import "github.com/shopspring/decimal"

// Settlement represents a recorded real-world payment between two members.
// It reduces the payer's debt and the payee's credit when balances are next
// computed.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromID is the member who paid (debtor settling up).
	FromID string

	// ToID is the member who received payment (creditor being paid).
	ToID string

	// Amount is the payment amount in the group's display currency.
	Amount decimal.Decimal

	// Date is the Unix timestamp of the payment.
	Date int64

	// Paid marks the settlement as completed rather than merely planned.
	Paid bool

	// Note is an optional description.
	Note string

	// ReceiptPath optionally points at an attached receipt blob. Opaque to
	// all calculations.
	ReceiptPath string
}
