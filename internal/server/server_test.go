package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/shaun-stanley/fairsplit/internal/auth"
	"github.com/shaun-stanley/fairsplit/internal/middleware"
	"github.com/shaun-stanley/fairsplit/internal/storage/sqlite"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	authn := auth.NewPasswordAuthenticator(store)
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	return New(store, authn, tokens).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func registerUser(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", registerRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "correct-horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp authResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	return resp.Token
}

func createGroup(t *testing.T, handler http.Handler, token string, members ...string) groupDTO {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/groups", token, createGroupRequest{
		Name:         "Trip",
		CurrencyCode: "USD",
		Members:      members,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group returned %d: %s", rec.Code, rec.Body.String())
	}
	var group groupDTO
	decodeBody(t, rec, &group)
	return group
}

func memberID(t *testing.T, g groupDTO, name string) string {
	t.Helper()
	for _, m := range g.Members {
		if m.Name == name {
			return m.ID
		}
	}
	t.Fatalf("no member named %s", name)
	return ""
}

func TestRegisterAndLogin(t *testing.T) {
	handler := newTestServer(t)
	registerUser(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", registerRequest{
		Email:    "alice@example.com",
		Name:     "Alice Again",
		Password: "correct-horse",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login returned %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthRequired(t *testing.T) {
	handler := newTestServer(t)
	rec := doJSON(t, handler, http.MethodGet, "/api/groups", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request returned %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestExpenseToBalances(t *testing.T) {
	handler := newTestServer(t)
	token := registerUser(t, handler)
	group := createGroup(t, handler, token, "Alice", "Bob", "Carol")
	alice := memberID(t, group, "Alice")
	bob := memberID(t, group, "Bob")
	carol := memberID(t, group, "Carol")

	rec := doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/expenses", token, expenseRequest{
		Title:        "Dinner",
		Amount:       decimal.RequireFromString("30.00"),
		CurrencyCode: "USD",
		PayerID:      alice,
		Participants: []string{alice, bob, carol},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add expense returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/groups/"+group.ID+"/balances", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balances returned %d: %s", rec.Code, rec.Body.String())
	}
	var balances []balanceDTO
	decodeBody(t, rec, &balances)

	want := map[string]string{alice: "20", bob: "-10", carol: "-10"}
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3", len(balances))
	}
	for _, b := range balances {
		if !b.Amount.Equal(decimal.RequireFromString(want[b.MemberID])) {
			t.Errorf("balance for %s = %s, want %s", b.Name, b.Amount, want[b.MemberID])
		}
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/groups/"+group.ID+"/suggested-settlements", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("suggestions returned %d: %s", rec.Code, rec.Body.String())
	}
	var transfers []transferDTO
	decodeBody(t, rec, &transfers)
	if len(transfers) != 2 {
		t.Fatalf("got %d transfers, want 2", len(transfers))
	}
	for _, tr := range transfers {
		if tr.ToID != alice {
			t.Errorf("transfer goes to %s, want Alice", tr.ToName)
		}
		if !tr.Amount.Equal(decimal.RequireFromString("10")) {
			t.Errorf("transfer amount = %s, want 10", tr.Amount)
		}
	}
}

func TestSettlementReducesDebt(t *testing.T) {
	handler := newTestServer(t)
	token := registerUser(t, handler)
	group := createGroup(t, handler, token, "Alice", "Bob")
	alice := memberID(t, group, "Alice")
	bob := memberID(t, group, "Bob")

	rec := doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/expenses", token, expenseRequest{
		Title:        "Taxi",
		Amount:       decimal.RequireFromString("20.00"),
		CurrencyCode: "USD",
		PayerID:      alice,
		Participants: []string{alice, bob},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add expense returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/settlements", token, settlementRequest{
		FromID: bob,
		ToID:   alice,
		Amount: decimal.RequireFromString("10.00"),
		Paid:   true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("record settlement returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/groups/"+group.ID+"/balances", token, nil)
	var balances []balanceDTO
	decodeBody(t, rec, &balances)
	for _, b := range balances {
		if !b.Amount.IsZero() {
			t.Errorf("balance for %s = %s, want 0 after settling up", b.Name, b.Amount)
		}
	}
}

func TestExpenseValidation(t *testing.T) {
	handler := newTestServer(t)
	token := registerUser(t, handler)
	group := createGroup(t, handler, token, "Alice", "Bob")
	alice := memberID(t, group, "Alice")
	bob := memberID(t, group, "Bob")

	zeroRate := decimal.Zero
	negativeRate := decimal.RequireFromString("-1.1")

	tests := []struct {
		name string
		req  expenseRequest
	}{
		{
			name: "unknown payer",
			req: expenseRequest{
				Title:        "Ghost dinner",
				Amount:       decimal.RequireFromString("10.00"),
				CurrencyCode: "USD",
				PayerID:      "not-a-member",
			},
		},
		{
			name: "missing title",
			req: expenseRequest{
				Amount:       decimal.RequireFromString("10.00"),
				CurrencyCode: "USD",
			},
		},
		{
			name: "negative amount",
			req: expenseRequest{
				Title:        "Refund",
				Amount:       decimal.RequireFromString("-10.00"),
				CurrencyCode: "USD",
				PayerID:      alice,
				Participants: []string{alice, bob},
			},
		},
		{
			name: "negative tax",
			req: expenseRequest{
				Title:        "Dinner",
				CurrencyCode: "USD",
				PayerID:      alice,
				Tax:          decimal.RequireFromString("-1.00"),
				Items: []itemDTO{
					{Title: "Pasta", Amount: decimal.RequireFromString("20.00"), Participants: []string{alice, bob}},
				},
			},
		},
		{
			name: "negative item amount",
			req: expenseRequest{
				Title:        "Dinner",
				CurrencyCode: "USD",
				PayerID:      alice,
				Items: []itemDTO{
					{Title: "Discount", Amount: decimal.RequireFromString("-5.00"), Participants: []string{alice}},
				},
			},
		},
		{
			name: "zero fx rate",
			req: expenseRequest{
				Title:        "Hotel",
				Amount:       decimal.RequireFromString("100.00"),
				CurrencyCode: "EUR",
				FxRate:       &zeroRate,
				PayerID:      alice,
				Participants: []string{alice, bob},
			},
		},
		{
			name: "negative fx rate",
			req: expenseRequest{
				Title:        "Hotel",
				Amount:       decimal.RequireFromString("100.00"),
				CurrencyCode: "EUR",
				FxRate:       &negativeRate,
				PayerID:      alice,
				Participants: []string{alice, bob},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/expenses", token, tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("returned %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}

	// Rejected expenses must leave the ledger untouched and zero-sum.
	rec := doJSON(t, handler, http.MethodGet, "/api/groups/"+group.ID+"/balances", token, nil)
	var balances []balanceDTO
	decodeBody(t, rec, &balances)
	for _, b := range balances {
		if !b.Amount.IsZero() {
			t.Errorf("balance for %s = %s after rejected expenses, want 0", b.Name, b.Amount)
		}
	}
}

func TestUndoRedo(t *testing.T) {
	handler := newTestServer(t)
	token := registerUser(t, handler)
	group := createGroup(t, handler, token, "Alice", "Bob")
	alice := memberID(t, group, "Alice")
	bob := memberID(t, group, "Bob")

	rec := doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/expenses", token, expenseRequest{
		Title:        "Lunch",
		Amount:       decimal.RequireFromString("15.00"),
		CurrencyCode: "USD",
		PayerID:      alice,
		Participants: []string{alice, bob},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add expense returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/undo", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("undo returned %d: %s", rec.Code, rec.Body.String())
	}
	var g groupDTO
	decodeBody(t, rec, &g)
	if len(g.Expenses) != 0 {
		t.Fatalf("got %d expenses after undo, want 0", len(g.Expenses))
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/redo", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("redo returned %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &g)
	if len(g.Expenses) != 1 {
		t.Fatalf("got %d expenses after redo, want 1", len(g.Expenses))
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/redo", token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("redo with empty stack returned %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestUpdateExpensePreservesItemIDs(t *testing.T) {
	handler := newTestServer(t)
	token := registerUser(t, handler)
	group := createGroup(t, handler, token, "Alice", "Bob")
	alice := memberID(t, group, "Alice")

	rec := doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/expenses", token, expenseRequest{
		Title:        "Groceries",
		CurrencyCode: "USD",
		PayerID:      alice,
		Items: []itemDTO{
			{Title: "Snacks", Amount: decimal.RequireFromString("12.50"), Participants: []string{alice}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add expense returned %d: %s", rec.Code, rec.Body.String())
	}
	var g groupDTO
	decodeBody(t, rec, &g)
	expenseID := g.Expenses[0].ID
	itemID := g.Expenses[0].Items[0].ID
	if itemID == "" {
		t.Fatal("expected a generated item ID")
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/groups/"+group.ID+"/expenses/"+expenseID, token, expenseRequest{
		Title:        "Groceries",
		CurrencyCode: "USD",
		PayerID:      alice,
		Items: []itemDTO{
			{ID: itemID, Title: "Snacks", Amount: decimal.RequireFromString("14.00"), Participants: []string{alice}},
			{Title: "Drinks", Amount: decimal.RequireFromString("8.00"), Participants: []string{alice}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update expense returned %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &g)
	items := g.Expenses[0].Items
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != itemID {
		t.Errorf("existing item ID changed across update: %s -> %s", itemID, items[0].ID)
	}
	if items[1].ID == "" || items[1].ID == itemID {
		t.Errorf("new item got ID %q, want a fresh one", items[1].ID)
	}
}

func TestMergeIncrementsComputationCounter(t *testing.T) {
	handler := newTestServer(t)
	token := registerUser(t, handler)
	group := createGroup(t, handler, token, "Alice", "Bob")
	alice := memberID(t, group, "Alice")
	bob := memberID(t, group, "Bob")

	counter := middleware.BalanceComputations.WithLabelValues("merge")
	before := testutil.ToFloat64(counter)

	rec := doJSON(t, handler, http.MethodPost,
		"/api/groups/"+group.ID+"/members/"+bob+"/merge-into/"+alice, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("merge returned %d: %s", rec.Code, rec.Body.String())
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("merge counter = %v, want %v", got, before+1)
	}

	// A rejected merge must not count.
	rec = doJSON(t, handler, http.MethodPost,
		"/api/groups/"+group.ID+"/members/ghost/merge-into/"+alice, token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("merge of unknown member returned %d", rec.Code)
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("merge counter = %v after rejected merge, want %v", got, before+1)
	}
}

func TestMergeMembersEndpoint(t *testing.T) {
	handler := newTestServer(t)
	token := registerUser(t, handler)
	group := createGroup(t, handler, token, "Alice", "Bob", "Bobby")
	alice := memberID(t, group, "Alice")
	bob := memberID(t, group, "Bob")
	bobby := memberID(t, group, "Bobby")

	rec := doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/expenses", token, expenseRequest{
		Title:        "Dinner",
		Amount:       decimal.RequireFromString("30.00"),
		CurrencyCode: "USD",
		PayerID:      alice,
		Participants: []string{alice, bob, bobby},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add expense returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost,
		"/api/groups/"+group.ID+"/members/"+bobby+"/merge-into/"+bob, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("merge returned %d: %s", rec.Code, rec.Body.String())
	}
	var g groupDTO
	decodeBody(t, rec, &g)
	if len(g.Members) != 2 {
		t.Fatalf("got %d members after merge, want 2", len(g.Members))
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/groups/"+group.ID+"/balances", token, nil)
	var balances []balanceDTO
	decodeBody(t, rec, &balances)
	want := map[string]string{alice: "20", bob: "-20"}
	for _, b := range balances {
		if !b.Amount.Equal(decimal.RequireFromString(want[b.MemberID])) {
			t.Errorf("balance for %s = %s, want %s", b.Name, b.Amount, want[b.MemberID])
		}
	}

	// Merging an unknown member fails without touching the group.
	rec = doJSON(t, handler, http.MethodPost,
		"/api/groups/"+group.ID+"/members/ghost/merge-into/"+bob, token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("merge of unknown member returned %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	// Undo restores the merged member and the original shares.
	rec = doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/undo", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("undo returned %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &g)
	if len(g.Members) != 3 {
		t.Fatalf("got %d members after undo, want 3", len(g.Members))
	}
}
