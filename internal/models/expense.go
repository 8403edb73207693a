package models

import "github.com/shopspring/decimal"

// Allocation selects how an itemized expense's surcharge (tax + tip) is
// distributed across participants.
type Allocation string

const (
	// AllocationProportional splits the surcharge in proportion to each
	// member's pre-tax subtotal.
	AllocationProportional Allocation = "proportional"

	// AllocationEven splits the surcharge evenly among all distinct item
	// participants.
	AllocationEven Allocation = "even"
)

// Expense represents a recorded cost within a group.
//
// The splitting rule is derived from the populated fields, most specific wins:
// itemized Items if present, else weighted Shares if present, else an even
// split over Participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Title is the human-readable name for the expense.
	Title string

	// Amount is the expense amount in CurrencyCode. For itemized expenses the
	// effective amount is derived from the items instead (sum of item amounts
	// plus tax and tip).
	Amount decimal.Decimal

	// CurrencyCode is the ISO 4217 code the amount was recorded in. It may
	// differ from the group's display currency.
	CurrencyCode string

	// FxRate converts Amount into the group's display currency
	// (amount-in-group-currency = Amount * FxRate). Nil when the expense is
	// already in the group currency; when nil and the currencies differ, the
	// amount passes through unconverted.
	FxRate *decimal.Decimal

	// PayerID is the member who paid, or empty when unassigned. Unassigned
	// expenses debit participants without crediting anyone.
	PayerID string

	// Participants is the ordered list of member IDs splitting this expense.
	// Informational when Shares or Items are present.
	Participants []string

	// Shares, when non-empty, overrides the even split with an integer
	// weighted split.
	Shares []Share

	// Items, when non-empty, makes this an itemized expense: each item is
	// split evenly among its own participant subset.
	Items []Item

	// Tax and Tip apply to itemized expenses only.
	Tax decimal.Decimal
	Tip decimal.Decimal

	// SurchargeMode selects how Tax+Tip are allocated across item
	// participants. Defaults to AllocationProportional when empty.
	SurchargeMode Allocation

	// Date is the Unix timestamp of the expense.
	Date int64

	// Category is an optional free-form label (e.g., "Food", "Transport").
	Category string

	// Note is an optional description.
	Note string
}

// Share is a weighted split entry: the member owes weight/totalWeight of the
// expense amount.
type Share struct {
	MemberID string
	Weight   int64
}

// Item is a single line item on an itemized expense, split evenly among its
// own participants.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Title is the name of the item (e.g., "Pizza", "Beer").
	Title string

	// Amount is the pre-tax price of this item, in the expense currency.
	Amount decimal.Decimal

	// Participants is the ordered list of member IDs splitting this item.
	Participants []string
}

// Itemized reports whether the expense is split by line items.
func (e *Expense) Itemized() bool {
	return len(e.Items) > 0
}

// Surcharge returns tax + tip.
func (e *Expense) Surcharge() decimal.Decimal {
	return e.Tax.Add(e.Tip)
}
