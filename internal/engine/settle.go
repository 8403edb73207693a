package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer is a suggested payment that moves net balances toward zero.
type Transfer struct {
	FromID string
	ToID   string
	Amount decimal.Decimal
}

// ProposedTransfers converts net balances into a short list of transfers that
// settles all debts. Creditors and debtors are each sorted by amount
// descending, tie-broken by position in memberIDs, then matched greedily:
// the largest remaining debtor pays the largest remaining creditor the
// smaller of their two balances. The result is deterministic, never pairs two
// creditors or two debtors, omits zero amounts, and contains at most
// len(memberIDs)-1 transfers. Zero-balance members are excluded entirely.
//
// Greedy matching does not always reach the theoretical minimum transfer
// count, but it is O(n log n) and good enough for realistic group sizes.
func ProposedTransfers(balances map[string]decimal.Decimal, memberIDs []string) []Transfer {
	type account struct {
		id    string
		cents int64
	}

	var creditors, debtors []account
	for _, id := range memberIDs {
		bal, ok := balances[id]
		if !ok {
			continue
		}
		switch cents := ToCents(bal); {
		case cents > 0:
			creditors = append(creditors, account{id, cents})
		case cents < 0:
			debtors = append(debtors, account{id, -cents})
		}
	}

	// Stable sorts keep the memberIDs order as the tie-break.
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].cents > creditors[j].cents })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].cents > debtors[j].cents })

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].cents
		if creditors[j].cents < amount {
			amount = creditors[j].cents
		}
		if amount > 0 {
			transfers = append(transfers, Transfer{
				FromID: debtors[i].id,
				ToID:   creditors[j].id,
				Amount: FromCents(amount),
			})
		}
		debtors[i].cents -= amount
		creditors[j].cents -= amount
		if debtors[i].cents == 0 {
			i++
		}
		if creditors[j].cents == 0 {
			j++
		}
	}
	return transfers
}
