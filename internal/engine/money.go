package engine

import "github.com/shopspring/decimal"

var cent = decimal.NewFromInt(100)

// ToCents converts a decimal amount to integer cents, rounding half away from
// zero at the boundary (1.005 becomes 101, -1.005 becomes -101).
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(cent).Round(0).IntPart()
}

// FromCents converts integer cents back to an exact decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// evenCents distributes totalCents among n recipients: every recipient gets
// base cents and the first remainder recipients get one extra cent. The
// returned slice is indexed by recipient position.
func evenCents(totalCents int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	base := totalCents / int64(n)
	remainder := totalCents % int64(n)
	out := make([]int64, n)
	for i := range out {
		out[i] = base
		if int64(i) < remainder {
			out[i]++
		}
	}
	return out
}
