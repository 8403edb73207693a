package models

// Member represents a participant identity within a group.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// Name is the display name of the member.
	Name string
}

// Group represents a shared ledger: a set of members with their expenses and
// settlements, denominated in a single display currency.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Road Trip").
	Name string

	// CurrencyCode is the ISO 4217 code of the group's display currency.
	// All balances and settlements are denominated in this currency.
	CurrencyCode string

	// Members is the canonical ordered member list. Split remainders are
	// distributed in this order, so it must stay stable across loads.
	Members []Member

	// Expenses recorded in this group, ordered by date.
	Expenses []Expense

	// Settlements recorded in this group.
	Settlements []Settlement

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MemberIDs returns the IDs of all members in canonical order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether a member with the given ID belongs to the group.
func (g *Group) HasMember(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MemberName returns the display name for a member ID, or the ID itself when
// the member is unknown.
func (g *Group) MemberName(id string) string {
	for _, m := range g.Members {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}
