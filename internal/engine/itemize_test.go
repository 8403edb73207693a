package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

func TestItemizedSplit(t *testing.T) {
	tests := []struct {
		name    string
		expense models.Expense
		want    map[string]string
	}{
		{
			name: "proportional tax follows pre-tax subtotals",
			expense: models.Expense{
				CurrencyCode: "USD",
				Items: []models.Item{
					{Title: "Burger", Amount: dec("10"), Participants: []string{"A"}},
					{Title: "Pasta", Amount: dec("30"), Participants: []string{"A", "B"}},
				},
				Tax:           dec("6"),
				SurchargeMode: models.AllocationProportional,
			},
			// A: 10 + 15 pre-tax, tax 6*25/40 = 3.75 -> 28.75
			// B: 15 pre-tax, tax 6*15/40 = 2.25 -> 17.25
			want: map[string]string{"A": "28.75", "B": "17.25"},
		},
		{
			name: "even surcharge ignores subtotals",
			expense: models.Expense{
				CurrencyCode: "USD",
				Items: []models.Item{
					{Title: "Steak", Amount: dec("10"), Participants: []string{"A"}},
					{Title: "Wine", Amount: dec("30"), Participants: []string{"A", "B"}},
				},
				Tax:           dec("4"),
				Tip:           dec("2"),
				SurchargeMode: models.AllocationEven,
			},
			want: map[string]string{"A": "28.00", "B": "18.00"},
		},
		{
			name: "zero pre-tax total falls back to an even surcharge split",
			expense: models.Expense{
				CurrencyCode: "USD",
				Items: []models.Item{
					{Title: "Freebie", Amount: dec("0"), Participants: []string{"A", "B"}},
				},
				Tip:           dec("5"),
				SurchargeMode: models.AllocationProportional,
			},
			want: map[string]string{"A": "2.50", "B": "2.50"},
		},
		{
			name: "no surcharge at all",
			expense: models.Expense{
				CurrencyCode: "USD",
				Items: []models.Item{
					{Title: "Coffee", Amount: dec("3.50"), Participants: []string{"A"}},
					{Title: "Cake", Amount: dec("4.25"), Participants: []string{"B"}},
				},
			},
			want: map[string]string{"A": "3.50", "B": "4.25"},
		},
		{
			name: "items without participants are skipped",
			expense: models.Expense{
				CurrencyCode: "USD",
				Items: []models.Item{
					{Title: "Unclaimed", Amount: dec("9.99")},
					{Title: "Shared", Amount: dec("8.00"), Participants: []string{"A", "B"}},
				},
			},
			want: map[string]string{"A": "4.00", "B": "4.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemizedSplit(&tt.expense, "USD")
			if len(got) != len(tt.want) {
				t.Fatalf("got %d shares, want %d: %v", len(got), len(tt.want), got)
			}
			for id, want := range tt.want {
				if !got[id].Equal(dec(want)) {
					t.Errorf("%s = %s, want %s", id, got[id], want)
				}
			}
		})
	}
}

func TestItemizedSplitRemainderOrder(t *testing.T) {
	// 0.05 of tip across three participants: the two cents of remainder go to
	// the first two distinct participants in first-appearance order, which is
	// C then A here because C appears on the first item.
	e := models.Expense{
		CurrencyCode: "USD",
		Items: []models.Item{
			{Title: "One", Amount: dec("3"), Participants: []string{"C", "A"}},
			{Title: "Two", Amount: dec("3"), Participants: []string{"B"}},
		},
		Tip:           dec("0.05"),
		SurchargeMode: models.AllocationEven,
	}

	got := ItemizedSplit(&e, "USD")
	want := map[string]string{"C": "1.52", "A": "1.52", "B": "3.01"}
	for id, w := range want {
		if !got[id].Equal(dec(w)) {
			t.Errorf("%s = %s, want %s", id, got[id], w)
		}
	}
}

func TestItemizedSplitLosesNoCent(t *testing.T) {
	e := models.Expense{
		CurrencyCode: "USD",
		Items: []models.Item{
			{Title: "A1", Amount: dec("7.77"), Participants: []string{"A", "B", "C"}},
			{Title: "A2", Amount: dec("13.13"), Participants: []string{"B", "D"}},
			{Title: "A3", Amount: dec("0.05"), Participants: []string{"A", "B", "C", "D"}},
		},
		Tax:           dec("2.11"),
		Tip:           dec("3.89"),
		SurchargeMode: models.AllocationProportional,
	}

	got := ItemizedSplit(&e, "USD")
	sum := decimal.Zero
	for _, s := range got {
		sum = sum.Add(s)
	}
	if want := AmountInGroupCurrency(&e, "USD"); !sum.Equal(want) {
		t.Errorf("shares sum to %s, want %s", sum, want)
	}
}
