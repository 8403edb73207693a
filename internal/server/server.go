package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaun-stanley/fairsplit/internal/auth"
	"github.com/shaun-stanley/fairsplit/internal/commands"
	"github.com/shaun-stanley/fairsplit/internal/middleware"
	"github.com/shaun-stanley/fairsplit/internal/storage"
)

// Server wires the stores, the balance engine and the command log behind a
// JSON API. Writes to a group are serialized through a per-group mutex so the
// command log and the persisted aggregate never diverge.
type Server struct {
	store  storage.Store
	authn  *auth.PasswordAuthenticator
	tokens *auth.JWTManager

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	logs  map[string]*commands.Log
}

func New(store storage.Store, authn *auth.PasswordAuthenticator, tokens *auth.JWTManager) *Server {
	return &Server{
		store:  store,
		authn:  authn,
		tokens: tokens,
		locks:  make(map[string]*sync.Mutex),
		logs:   make(map[string]*commands.Log),
	}
}

// Handler builds the chi router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)

	r.Route("/api/groups", func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.tokens))
		r.Post("/", s.handleCreateGroup)
		r.Get("/", s.handleListGroups)

		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", s.handleGetGroup)
			r.Delete("/", s.handleDeleteGroup)

			r.Post("/members", s.handleAddMember)
			r.Post("/members/{memberID}/merge-into/{targetID}", s.handleMergeMembers)

			r.Post("/expenses", s.handleAddExpense)
			r.Put("/expenses/{expenseID}", s.handleUpdateExpense)
			r.Delete("/expenses/{expenseID}", s.handleDeleteExpense)

			r.Post("/settlements", s.handleRecordSettlement)
			r.Delete("/settlements/{settlementID}", s.handleDeleteSettlement)

			r.Get("/balances", s.handleBalances)
			r.Get("/suggested-settlements", s.handleSuggestedSettlements)

			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
		})
	})

	return r
}

// lockGroup acquires the write lock for a group and returns the unlock func.
func (s *Server) lockGroup(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// logFor returns the command log for a group, creating it on first use.
// Callers must hold the group lock.
func (s *Server) logFor(id string) *commands.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		l = commands.NewLog()
		s.logs[id] = l
	}
	return l
}

func (s *Server) forgetGroup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	delete(s.logs, id)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func statusForStoreError(err error) int {
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
