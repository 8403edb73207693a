package engine

import (
	"github.com/shopspring/decimal"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

// NetBalances folds all expenses and settlements into a net balance per
// member, in the group's display currency. Positive means the member is owed
// money, negative means they owe. The balances always sum to exactly zero:
// every expense credits its payer by the same cent total it debits its
// participants, and every settlement moves cents between exactly two members.
func NetBalances(expenses []models.Expense, memberIDs []string, settlements []models.Settlement, groupCurrency string) map[string]decimal.Decimal {
	cents := make(map[string]int64, len(memberIDs))
	for _, id := range memberIDs {
		cents[id] = 0
	}

	for i := range expenses {
		e := &expenses[i]
		shares, total := expenseCents(e, groupCurrency)
		if e.PayerID != "" {
			cents[e.PayerID] += total
		}
		for id, owed := range shares {
			cents[id] -= owed
		}
	}

	for _, s := range settlements {
		amount := ToCents(s.Amount)
		cents[s.FromID] += amount
		cents[s.ToID] -= amount
	}

	balances := make(map[string]decimal.Decimal, len(cents))
	for id, c := range cents {
		balances[id] = FromCents(c)
	}
	return balances
}

// expenseCents computes the per-member owed cents and the effective cent
// total for one expense, both in the group currency. The splitting rule is
// chosen by specificity: itemized resolution when items are present, weighted
// split when explicit shares are present, even split over the participant
// list otherwise. The shares always sum to the returned total (or to zero
// when the expense has no one to split over).
func expenseCents(e *models.Expense, groupCurrency string) (map[string]int64, int64) {
	if e.Itemized() {
		return itemizedCents(e, fxFactor(e, groupCurrency))
	}

	total := ToCents(AmountInGroupCurrency(e, groupCurrency))
	if len(e.Shares) > 0 {
		return weightedSplitCents(total, e.Shares), total
	}
	return evenSplitCents(total, e.Participants), total
}
