package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/kharcha/internal/auth"
	"github.com/mmynk/kharcha/internal/storage/sqlite"
)

// testEnv sets up a temp SQLite store and router, registers one user, and
// returns the router with that user's Bearer token.
func testEnv(t *testing.T) (http.Handler, string) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	router := NewRouter(store, auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour))

	w := do(t, router, http.MethodPost, "/auth/register", "", map[string]any{
		"email":        "test@example.com",
		"display_name": "Test",
		"password":     "hunter2secret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad register response: %v", err)
	}
	return router, resp.Token
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/people", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	w = do(t, router, http.MethodGet, "/people", "garbage-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}
}

func TestLoginAndCurrentUser(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "test@example.com",
		"password": "hunter2secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad login response: %v", err)
	}

	w = do(t, router, http.MethodGet, "/auth/me", resp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var me userResponse
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("bad me response: %v", err)
	}
	if me.Email != "test@example.com" {
		t.Errorf("email = %q", me.Email)
	}

	w = do(t, router, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "test@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}
}

func TestExpenseConsentFlow(t *testing.T) {
	router, token := testEnv(t)

	// Saving an expense that borrows from an unknown person leaves the
	// ledger untouched and reports a pending decision.
	w := do(t, router, http.MethodPost, "/expenses", token, map[string]any{
		"amount":        "200",
		"date":          "2025-11-01",
		"is_borrowed":   true,
		"borrowed_from": "ravi",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved saveExpenseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if saved.Applied {
		t.Error("expected no auto-apply for unknown person")
	}
	if saved.Pending == nil || saved.Pending.PersonName != "Ravi" {
		t.Fatalf("pending = %+v, want prompt for Ravi", saved.Pending)
	}

	// The consent button: create, track, and apply.
	w = do(t, router, http.MethodPost, "/expenses/"+saved.Expense.ID+"/apply", token, map[string]any{
		"person_name": "Ravi",
		"track":       true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d, body = %s", w.Code, w.Body.String())
	}

	// The person now shows on the tracked list with the borrowed balance.
	w = do(t, router, http.MethodGet, "/people", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list people status = %d", w.Code)
	}
	var list struct {
		People []personSummaryResponse `json:"people"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(list.People) != 1 {
		t.Fatalf("people = %d, want 1", len(list.People))
	}
	if list.People[0].Name != "Ravi" || list.People[0].Balance.String() != "-200" {
		t.Errorf("summary = %s %s, want Ravi -200", list.People[0].Name, list.People[0].Balance)
	}

	// Detail view renders the balance label with the user's currency.
	w = do(t, router, http.MethodGet, "/people/"+list.People[0].ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("person detail status = %d", w.Code)
	}
	var detail personDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if detail.BalanceLabel != "You owe Ravi ₹200" {
		t.Errorf("label = %q", detail.BalanceLabel)
	}
	if len(detail.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(detail.Entries))
	}

	// Deleting the expense purges the ledger.
	w = do(t, router, http.MethodDelete, "/expenses/"+saved.Expense.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/people/"+list.People[0].ID, token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !detail.Balance.IsZero() {
		t.Errorf("balance = %s, want 0 after delete", detail.Balance)
	}
}

func TestExpenseValidation(t *testing.T) {
	router, token := testEnv(t)

	// Missing date.
	w := do(t, router, http.MethodPost, "/expenses", token, map[string]any{
		"amount": "200",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing date status = %d, want 400", w.Code)
	}

	// Unknown payment type.
	w = do(t, router, http.MethodPost, "/expenses", token, map[string]any{
		"amount":       "200",
		"date":         "2025-11-01",
		"payment_type": "barter",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad payment type status = %d, want 400", w.Code)
	}
}

func TestIncomeConsentFlow(t *testing.T) {
	router, token := testEnv(t)

	w := do(t, router, http.MethodPost, "/incomes", token, map[string]any{
		"amount": "500",
		"date":   "2025-11-02",
		"source": "loan",
		"person": "asha",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create income status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved saveIncomeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if saved.Applied {
		t.Error("expected no auto-apply for unknown person")
	}
	if saved.Pending == nil || saved.Pending.PersonName != "Asha" {
		t.Fatalf("pending = %+v, want prompt for Asha", saved.Pending)
	}

	w = do(t, router, http.MethodPost, "/incomes/"+saved.Income.ID+"/apply", token, map[string]any{
		"person_name": "Asha",
		"track":       true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d, body = %s", w.Code, w.Body.String())
	}
	var applied struct {
		Applied bool `json:"applied"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &applied); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !applied.Applied {
		t.Fatal("expected consent to apply the loan")
	}

	w = do(t, router, http.MethodGet, "/incomes/"+saved.Income.ID, token, nil)
	var income incomeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &income); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !income.AppliedToPeople {
		t.Error("expected income marked applied")
	}
}

func TestPreferenceAndRestoreRoutes(t *testing.T) {
	router, token := testEnv(t)

	w := do(t, router, http.MethodPost, "/people", token, map[string]any{
		"name":                "Ravi",
		"tracking_preference": "TRACK",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create person status = %d, body = %s", w.Code, w.Body.String())
	}
	var person personResponse
	if err := json.Unmarshal(w.Body.Bytes(), &person); err != nil {
		t.Fatalf("bad response: %v", err)
	}

	w = do(t, router, http.MethodPost, "/people/"+person.ID+"/preference", token, map[string]any{
		"tracking_preference": "NO_TRACK",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("set preference status = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/people/"+person.ID+"/restore", token, map[string]any{
		"mode": "reapply",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("restore status = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/people/"+person.ID+"/restore", token, map[string]any{
		"mode": "merge",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid restore mode status = %d, want 400", w.Code)
	}
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", w.Code)
	}
}
