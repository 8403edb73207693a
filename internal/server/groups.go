package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shaun-stanley/fairsplit/internal/commands"
	"github.com/shaun-stanley/fairsplit/internal/middleware"
	"github.com/shaun-stanley/fairsplit/internal/models"
)

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "group name is required")
		return
	}
	if req.CurrencyCode == "" {
		req.CurrencyCode = "USD"
	}

	group := &models.Group{
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
	}
	for _, name := range req.Members {
		group.Members = append(group.Members, models.Member{
			ID:   uuid.New().String(),
			Name: name,
		})
	}

	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		slog.Error("failed to create group", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create group")
		return
	}
	respondJSON(w, http.StatusCreated, groupToDTO(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		slog.Error("failed to list groups", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list groups")
		return
	}

	out := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupToDTO(g))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, groupToDTO(group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	unlock := s.lockGroup(groupID)
	defer unlock()

	if err := s.store.DeleteGroup(r.Context(), groupID); err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}
	s.forgetGroup(groupID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "member name is required")
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

	group.Members = append(group.Members, models.Member{
		ID:   uuid.New().String(),
		Name: req.Name,
	})

	if err := s.store.SaveGroup(r.Context(), group); err != nil {
		slog.Error("failed to save group", "group_id", groupID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to add member")
		return
	}
	respondJSON(w, http.StatusCreated, groupToDTO(group))
}

func (s *Server) handleMergeMembers(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	sourceID := chi.URLParam(r, "memberID")
	targetID := chi.URLParam(r, "targetID")

	unlock := s.lockGroup(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	if s.applyToLoaded(w, r, group, &commands.MergeMembers{SourceID: sourceID, TargetID: targetID}) {
		middleware.BalanceComputations.WithLabelValues("merge").Inc()
	}
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.replay(w, r, chi.URLParam(r, "groupID"), (*commands.Log).Undo, commands.ErrNothingToUndo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.replay(w, r, chi.URLParam(r, "groupID"), (*commands.Log).Redo, commands.ErrNothingToRedo)
}

// applyToLoaded runs the command through the group's log and saves the
// result, reporting whether the command stuck. The caller holds the group
// lock and has already loaded the aggregate, leaving room for request
// validation in between.
func (s *Server) applyToLoaded(w http.ResponseWriter, r *http.Request, group *models.Group, cmd commands.Command) bool {
	if err := s.logFor(group.ID).Apply(group, cmd); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}

	if err := s.store.SaveGroup(r.Context(), group); err != nil {
		slog.Error("failed to save group", "group_id", group.ID, "command", cmd.Name(), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save group")
		return false
	}
	respondJSON(w, http.StatusOK, groupToDTO(group))
	return true
}

// replay runs an undo or redo step against the group's command log.
func (s *Server) replay(w http.ResponseWriter, r *http.Request, groupID string, step func(*commands.Log, *models.Group) (commands.Command, error), empty error) {
	unlock := s.lockGroup(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForStoreError(err), err.Error())
		return
	}

	cmd, err := step(s.logFor(groupID), group)
	if errors.Is(err, empty) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.SaveGroup(r.Context(), group); err != nil {
		slog.Error("failed to save group", "group_id", groupID, "command", cmd.Name(), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save group")
		return
	}
	respondJSON(w, http.StatusOK, groupToDTO(group))
}

// validateExpense rejects references to members outside the group and
// degenerate monetary input before a command can bake them into the
// aggregate. The engine silently produces empty splits for negative amounts,
// so letting one through would credit the payer without debiting anyone and
// break the zero-sum balance invariant.
func validateExpense(g *models.Group, e *models.Expense) error {
	if e.Title == "" {
		return errors.New("expense title is required")
	}
	if e.Amount.IsNegative() || e.Tax.IsNegative() || e.Tip.IsNegative() {
		return errors.New("amounts must not be negative")
	}
	if e.FxRate != nil && !e.FxRate.IsPositive() {
		return errors.New("fx rate must be positive")
	}
	if e.PayerID != "" && !g.HasMember(e.PayerID) {
		return errors.New("payer is not a group member")
	}
	for _, id := range e.Participants {
		if !g.HasMember(id) {
			return errors.New("participant is not a group member")
		}
	}
	for _, sh := range e.Shares {
		if !g.HasMember(sh.MemberID) {
			return errors.New("share member is not a group member")
		}
	}
	for _, item := range e.Items {
		if item.Amount.IsNegative() {
			return errors.New("item amounts must not be negative")
		}
		for _, id := range item.Participants {
			if !g.HasMember(id) {
				return errors.New("item participant is not a group member")
			}
		}
	}
	return nil
}
