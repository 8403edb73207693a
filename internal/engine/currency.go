package engine

import (
	"github.com/shopspring/decimal"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

// AmountInGroupCurrency returns the expense's effective amount converted into
// the group's display currency. For itemized expenses the effective amount is
// the sum of item amounts plus tax and tip; otherwise it is the recorded
// amount.
//
// When the expense currency matches the group currency, or no conversion rate
// was recorded, the amount passes through unchanged. An unconverted
// foreign-currency amount is not an error here; rejecting missing rates is
// the caller's concern.
func AmountInGroupCurrency(e *models.Expense, groupCurrency string) decimal.Decimal {
	return effectiveAmount(e).Mul(fxFactor(e, groupCurrency))
}

// effectiveAmount is the expense's total in its native currency.
func effectiveAmount(e *models.Expense) decimal.Decimal {
	if !e.Itemized() {
		return e.Amount
	}
	total := e.Surcharge()
	for _, item := range e.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// fxFactor is the multiplier that converts the expense's native currency into
// the group currency: the recorded rate when one applies, otherwise 1.
func fxFactor(e *models.Expense, groupCurrency string) decimal.Decimal {
	if e.CurrencyCode == groupCurrency || e.FxRate == nil {
		return decimal.NewFromInt(1)
	}
	return *e.FxRate
}
