package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaun-stanley/fairsplit/internal/engine"
	"github.com/shaun-stanley/fairsplit/internal/middleware"
)

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	group, err := s.store.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	memberIDs := group.MemberIDs()
	balances := engine.NetBalances(group.Expenses, memberIDs, group.Settlements, group.CurrencyCode)
	middleware.BalanceComputations.WithLabelValues("balances").Inc()

	out := make([]balanceDTO, 0, len(memberIDs))
	for _, id := range memberIDs {
		out = append(out, balanceDTO{
			MemberID: id,
			Name:     group.MemberName(id),
			Amount:   balances[id],
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSuggestedSettlements(w http.ResponseWriter, r *http.Request) {
	group, err := s.store.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	memberIDs := group.MemberIDs()
	balances := engine.NetBalances(group.Expenses, memberIDs, group.Settlements, group.CurrencyCode)
	transfers := engine.ProposedTransfers(balances, memberIDs)
	middleware.BalanceComputations.WithLabelValues("transfers").Inc()

	out := make([]transferDTO, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, transferDTO{
			FromID:   t.FromID,
			FromName: group.MemberName(t.FromID),
			ToID:     t.ToID,
			ToName:   group.MemberName(t.ToID),
			Amount:   t.Amount,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
