// Package commands expresses every group mutation as a value object with a
// computable inverse. The engine itself stays pure; the repository layer
// applies commands to a loaded group aggregate and persists the result, and
// undo/redo falls out of replaying inverses instead of tracking hidden state.
package commands

import (
	"errors"
	"fmt"

	"github.com/shaun-stanley/fairsplit/internal/engine"
	"github.com/shaun-stanley/fairsplit/internal/models"
)

var (
	// ErrExpenseNotFound is returned when a command references an expense
	// missing from the group.
	ErrExpenseNotFound = errors.New("expense not found in group")

	// ErrSettlementNotFound is returned when a command references a
	// settlement missing from the group.
	ErrSettlementNotFound = errors.New("settlement not found in group")
)

// Command is a single invertible mutation of a group aggregate.
type Command interface {
	// Apply performs the mutation on the group. A failed Apply leaves the
	// group unchanged.
	Apply(g *models.Group) error

	// Invert returns the command that undoes this one. Only valid after a
	// successful Apply.
	Invert() Command

	// Name identifies the command kind for logging.
	Name() string
}

// AddExpense appends an expense to the group.
type AddExpense struct {
	Expense models.Expense
}

func (c AddExpense) Apply(g *models.Group) error {
	g.Expenses = append(g.Expenses, c.Expense)
	return nil
}

func (c AddExpense) Invert() Command { return DeleteExpense{Expense: c.Expense} }
func (c AddExpense) Name() string    { return "add_expense" }

// DeleteExpense removes an expense by ID. It carries the full expense value
// so that its inverse can restore it.
type DeleteExpense struct {
	Expense models.Expense
}

func (c DeleteExpense) Apply(g *models.Group) error {
	for i := range g.Expenses {
		if g.Expenses[i].ID == c.Expense.ID {
			g.Expenses = append(g.Expenses[:i], g.Expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrExpenseNotFound, c.Expense.ID)
}

func (c DeleteExpense) Invert() Command { return AddExpense{Expense: c.Expense} }
func (c DeleteExpense) Name() string    { return "delete_expense" }

// UpdateExpense replaces an expense with a new version. Carrying both
// versions makes the inverse a mirror update.
type UpdateExpense struct {
	Before models.Expense
	After  models.Expense
}

func (c UpdateExpense) Apply(g *models.Group) error {
	for i := range g.Expenses {
		if g.Expenses[i].ID == c.Before.ID {
			g.Expenses[i] = c.After
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrExpenseNotFound, c.Before.ID)
}

func (c UpdateExpense) Invert() Command { return UpdateExpense{Before: c.After, After: c.Before} }
func (c UpdateExpense) Name() string    { return "update_expense" }

// RecordSettlement appends a settlement to the group.
type RecordSettlement struct {
	Settlement models.Settlement
}

func (c RecordSettlement) Apply(g *models.Group) error {
	g.Settlements = append(g.Settlements, c.Settlement)
	return nil
}

func (c RecordSettlement) Invert() Command { return DeleteSettlement{Settlement: c.Settlement} }
func (c RecordSettlement) Name() string    { return "record_settlement" }

// DeleteSettlement removes a settlement by ID, carrying the value for its
// inverse.
type DeleteSettlement struct {
	Settlement models.Settlement
}

func (c DeleteSettlement) Apply(g *models.Group) error {
	for i := range g.Settlements {
		if g.Settlements[i].ID == c.Settlement.ID {
			g.Settlements = append(g.Settlements[:i], g.Settlements[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSettlementNotFound, c.Settlement.ID)
}

func (c DeleteSettlement) Invert() Command { return RecordSettlement{Settlement: c.Settlement} }
func (c DeleteSettlement) Name() string    { return "delete_settlement" }

// MergeMembers unifies two member identities via engine.Merge. The inverse is
// a full restore of the collections the merge rewrote, captured just before
// the merge runs.
type MergeMembers struct {
	SourceID string
	TargetID string

	before *models.Group
}

func (c *MergeMembers) Apply(g *models.Group) error {
	snapshot := snapshotGroup(g)
	if err := engine.Merge(c.SourceID, c.TargetID, g); err != nil {
		return err
	}
	c.before = snapshot
	return nil
}

func (c *MergeMembers) Invert() Command {
	return restoreGroup{before: c.before, sourceID: c.SourceID, targetID: c.TargetID}
}

func (c *MergeMembers) Name() string { return "merge_members" }

// restoreGroup swaps a group's collections back to a captured snapshot. It is
// only ever produced as the inverse of a merge.
type restoreGroup struct {
	before   *models.Group
	sourceID string
	targetID string
}

func (c restoreGroup) Apply(g *models.Group) error {
	g.Members = c.before.Members
	g.Expenses = c.before.Expenses
	g.Settlements = c.before.Settlements
	return nil
}

func (c restoreGroup) Invert() Command {
	return &MergeMembers{SourceID: c.sourceID, TargetID: c.targetID}
}

func (c restoreGroup) Name() string { return "restore_group" }

// snapshotGroup deep-copies the collections a merge can touch.
func snapshotGroup(g *models.Group) *models.Group {
	out := &models.Group{
		ID:           g.ID,
		Name:         g.Name,
		CurrencyCode: g.CurrencyCode,
		CreatedAt:    g.CreatedAt,
		Members:      append([]models.Member(nil), g.Members...),
		Settlements:  append([]models.Settlement(nil), g.Settlements...),
		Expenses:     make([]models.Expense, len(g.Expenses)),
	}
	for i, e := range g.Expenses {
		copied := e
		copied.Participants = append([]string(nil), e.Participants...)
		copied.Shares = append([]models.Share(nil), e.Shares...)
		copied.Items = make([]models.Item, len(e.Items))
		for j, item := range e.Items {
			copied.Items[j] = item
			copied.Items[j].Participants = append([]string(nil), item.Participants...)
		}
		out.Expenses[i] = copied
	}
	return out
}
