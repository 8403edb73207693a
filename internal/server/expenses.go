package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shaun-stanley/fairsplit/internal/commands"
	"github.com/shaun-stanley/fairsplit/internal/models"
)

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	unlock := s.lockGroup(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	expense := toExpense(&req)
	expense.ID = uuid.New().String()
	expense.GroupID = groupID
	for i := range expense.Items {
		expense.Items[i].ID = uuid.New().String()
	}
	if err := validateExpense(group, &expense); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.applyToLoaded(w, r, group, commands.AddExpense{Expense: expense})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	expenseID := chi.URLParam(r, "expenseID")
	unlock := s.lockGroup(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	before := findExpense(group, expenseID)
	if before == nil {
		respondError(w, http.StatusNotFound, "expense not found")
		return
	}

	after := toExpense(&req)
	after.ID = expenseID
	after.GroupID = groupID
	for i := range after.Items {
		if after.Items[i].ID == "" {
			after.Items[i].ID = uuid.New().String()
		}
	}
	if err := validateExpense(group, &after); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.applyToLoaded(w, r, group, commands.UpdateExpense{Before: *before, After: after})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	expenseID := chi.URLParam(r, "expenseID")
	unlock := s.lockGroup(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	expense := findExpense(group, expenseID)
	if expense == nil {
		respondError(w, http.StatusNotFound, "expense not found")
		return
	}

	s.applyToLoaded(w, r, group, commands.DeleteExpense{Expense: *expense})
}

func (s *Server) handleRecordSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	unlock := s.lockGroup(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	if !group.HasMember(req.FromID) || !group.HasMember(req.ToID) {
		respondError(w, http.StatusBadRequest, "settlement parties must be group members")
		return
	}
	if req.FromID == req.ToID {
		respondError(w, http.StatusBadRequest, "settlement parties must differ")
		return
	}

	settlement := models.Settlement{
		ID:      uuid.New().String(),
		GroupID: groupID,
		FromID:  req.FromID,
		ToID:    req.ToID,
		Amount:  req.Amount,
		Date:    req.Date,
		Paid:    req.Paid,
		Note:    req.Note,
	}

	s.applyToLoaded(w, r, group, commands.RecordSettlement{Settlement: settlement})
}

func (s *Server) handleDeleteSettlement(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	settlementID := chi.URLParam(r, "settlementID")
	unlock := s.lockGroup(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	var settlement *models.Settlement
	for i := range group.Settlements {
		if group.Settlements[i].ID == settlementID {
			settlement = &group.Settlements[i]
			break
		}
	}
	if settlement == nil {
		respondError(w, http.StatusNotFound, "settlement not found")
		return
	}

	s.applyToLoaded(w, r, group, commands.DeleteSettlement{Settlement: *settlement})
}

func findExpense(g *models.Group, id string) *models.Expense {
	for i := range g.Expenses {
		if g.Expenses[i].ID == id {
			return &g.Expenses[i]
		}
	}
	return nil
}
