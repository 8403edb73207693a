package engine

import (
	"github.com/shopspring/decimal"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

// EvenSplit divides amount equally among the given member IDs. Remainder
// cents go to the leading members, one cent each, in the order given; callers
// must therefore pass members in a stable order (the group's canonical member
// order). Returns an empty map when memberIDs is empty or amount is negative.
func EvenSplit(amount decimal.Decimal, memberIDs []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(memberIDs))
	for id, cents := range evenSplitCents(ToCents(amount), memberIDs) {
		out[id] = FromCents(cents)
	}
	return out
}

// WeightedSplit divides amount among the given shares in proportion to their
// integer weights. Each share's base allocation is floor(total*weight/sum);
// leftover cents are handed out one at a time walking the share list in order,
// looping back to the front until exhausted. Returns an empty map when the
// total weight is not positive or the amount is negative. A member appearing
// in multiple shares accumulates all of its allocations.
func WeightedSplit(amount decimal.Decimal, shares []models.Share) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(shares))
	for id, cents := range weightedSplitCents(ToCents(amount), shares) {
		out[id] = FromCents(cents)
	}
	return out
}

func evenSplitCents(totalCents int64, memberIDs []string) map[string]int64 {
	out := make(map[string]int64, len(memberIDs))
	if totalCents < 0 {
		return out
	}
	for i, cents := range evenCents(totalCents, len(memberIDs)) {
		out[memberIDs[i]] += cents
	}
	return out
}

func weightedSplitCents(totalCents int64, shares []models.Share) map[string]int64 {
	out := make(map[string]int64, len(shares))
	if totalCents < 0 {
		return out
	}
	var totalWeight int64
	for _, s := range shares {
		if s.Weight > 0 {
			totalWeight += s.Weight
		}
	}
	if totalWeight <= 0 {
		return out
	}

	allocated := make([]int64, len(shares))
	var sum int64
	for i, s := range shares {
		if s.Weight <= 0 {
			continue
		}
		allocated[i] = totalCents * s.Weight / totalWeight
		sum += allocated[i]
	}

	// The remainder can exceed the share count when weights are large, so the
	// distribution loops over the list as many passes as needed.
	remainder := totalCents - sum
	for i := 0; remainder > 0; i = (i + 1) % len(shares) {
		if shares[i].Weight <= 0 {
			continue
		}
		allocated[i]++
		remainder--
	}

	for i, s := range shares {
		if s.Weight <= 0 {
			continue
		}
		out[s.MemberID] += allocated[i]
	}
	return out
}
