package engine

import (
	"errors"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

var (
	// ErrSameMember is returned when a merge names the same member twice.
	ErrSameMember = errors.New("cannot merge a member into itself")

	// ErrNotAMember is returned when a merge references a member outside the
	// group.
	ErrNotAMember = errors.New("member does not belong to the group")
)

// Merge unifies two member identities: every record referencing sourceID is
// rewritten to reference targetID, then sourceID is removed from the group.
// Participant lists are deduplicated, weighted shares for both identities are
// combined by summing their weights, and settlements that end up from a
// member to itself (they were between source and target) are removed.
//
// The group is mutated in place; the caller persists it afterward. All
// preconditions are checked before the first mutation, so a failed merge
// leaves the group untouched.
func Merge(sourceID, targetID string, g *models.Group) error {
	if sourceID == targetID {
		return ErrSameMember
	}
	if !g.HasMember(sourceID) || !g.HasMember(targetID) {
		return ErrNotAMember
	}

	for i := range g.Expenses {
		e := &g.Expenses[i]
		if e.PayerID == sourceID {
			e.PayerID = targetID
		}
		e.Participants = retarget(e.Participants, sourceID, targetID)
		e.Shares = combineShares(e.Shares, sourceID, targetID)
		for j := range e.Items {
			e.Items[j].Participants = retarget(e.Items[j].Participants, sourceID, targetID)
		}
	}

	kept := g.Settlements[:0]
	for _, s := range g.Settlements {
		if s.FromID == sourceID {
			s.FromID = targetID
		}
		if s.ToID == sourceID {
			s.ToID = targetID
		}
		// A settlement between the two merged identities cancels out.
		if s.FromID == s.ToID {
			continue
		}
		kept = append(kept, s)
	}
	g.Settlements = kept

	members := g.Members[:0]
	for _, m := range g.Members {
		if m.ID != sourceID {
			members = append(members, m)
		}
	}
	g.Members = members

	return nil
}

// retarget replaces source with target in an ordered participant list,
// dropping any duplicates the replacement creates. Order of first appearance
// is preserved.
func retarget(ids []string, source, target string) []string {
	out := ids[:0]
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == source {
			id = target
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// combineShares retargets the source's weighted share onto the target,
// summing weights when both identities held one.
func combineShares(shares []models.Share, source, target string) []models.Share {
	sourceIdx, targetIdx := -1, -1
	for i, s := range shares {
		switch s.MemberID {
		case source:
			sourceIdx = i
		case target:
			targetIdx = i
		}
	}
	if sourceIdx == -1 {
		return shares
	}
	if targetIdx == -1 {
		shares[sourceIdx].MemberID = target
		return shares
	}
	shares[targetIdx].Weight += shares[sourceIdx].Weight
	return append(shares[:sourceIdx], shares[sourceIdx+1:]...)
}
