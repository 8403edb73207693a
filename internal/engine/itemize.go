package engine

import (
	"github.com/shopspring/decimal"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

// ItemizedSplit computes each member's owed amount for an itemized expense,
// in the group's display currency: every item is split evenly among its own
// participant subset, then the surcharge (tax + tip) is allocated across the
// distinct item participants according to the expense's surcharge mode.
func ItemizedSplit(e *models.Expense, groupCurrency string) map[string]decimal.Decimal {
	shares, _ := itemizedCents(e, fxFactor(e, groupCurrency))
	out := make(map[string]decimal.Decimal, len(shares))
	for id, cents := range shares {
		out[id] = FromCents(cents)
	}
	return out
}

// itemizedCents resolves an itemized expense into per-member cents and the
// expense's effective total in cents, with every monetary value scaled by fx
// before entering cent arithmetic. The per-member shares always sum to the
// returned total.
func itemizedCents(e *models.Expense, fx decimal.Decimal) (map[string]int64, int64) {
	preTax := make(map[string]int64)
	var preTaxTotal int64

	// Distinct item participants in first-appearance order; remainder cents
	// and even surcharge shares follow this order.
	var order []string
	seen := make(map[string]bool)

	for _, item := range e.Items {
		if len(item.Participants) == 0 {
			continue
		}
		itemCents := ToCents(item.Amount.Mul(fx))
		preTaxTotal += itemCents
		for id, cents := range evenSplitCents(itemCents, item.Participants) {
			preTax[id] += cents
		}
		for _, id := range item.Participants {
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}

	surcharge := ToCents(e.Surcharge().Mul(fx))
	total := preTaxTotal + surcharge

	shares := make(map[string]int64, len(order))
	for id, cents := range preTax {
		shares[id] = cents
	}
	for id, cents := range surchargeCents(e, surcharge, preTax, preTaxTotal, order) {
		shares[id] += cents
	}
	return shares, total
}

// surchargeCents allocates the surcharge across the distinct item
// participants. Proportional mode reuses the weighted-split remainder
// discipline with each member's pre-tax cent subtotal as its weight, falling
// back to an even split when nothing was itemized to anyone.
func surchargeCents(e *models.Expense, surcharge int64, preTax map[string]int64, preTaxTotal int64, order []string) map[string]int64 {
	if surcharge == 0 || len(order) == 0 {
		return nil
	}
	if e.SurchargeMode == models.AllocationEven || preTaxTotal == 0 {
		return evenSplitCents(surcharge, order)
	}
	shares := make([]models.Share, len(order))
	for i, id := range order {
		shares[i] = models.Share{MemberID: id, Weight: preTax[id]}
	}
	return weightedSplitCents(surcharge, shares)
}
