package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
	"github.com/mmynk/kharcha/internal/storage/sqlite"
)

// newTestEngine creates an engine over a real temp-file SQLite store with
// one registered user.
func newTestEngine(t *testing.T) (*Engine, storage.Store, string) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	user := models.NewUser("test@example.com", "Test", "irrelevant")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return NewEngine(store), store, user.ID
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func mustPerson(t *testing.T, store storage.Store, userID, name string, pref models.TrackingPreference) *models.Person {
	t.Helper()
	person := &models.Person{UserID: userID, Name: name, TrackingPreference: pref}
	if err := store.CreatePerson(context.Background(), person); err != nil {
		t.Fatalf("Failed to create person %s: %v", name, err)
	}
	return person
}

// mustExpense persists an expense so ledger entries can reference its ID.
func mustExpense(t *testing.T, store storage.Store, expense *models.Expense) {
	t.Helper()
	if err := store.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("Failed to create expense %s: %v", expense.ID, err)
	}
}

// mustIncome persists an income so ledger entries can reference its ID.
func mustIncome(t *testing.T, store storage.Store, income *models.Income) {
	t.Helper()
	if err := store.CreateIncome(context.Background(), income); err != nil {
		t.Fatalf("Failed to create income %s: %v", income.ID, err)
	}
}

// mustManualEntry seeds a person's balance directly.
func mustManualEntry(t *testing.T, store storage.Store, userID, personID, amount string) {
	t.Helper()
	err := store.CreateEntry(context.Background(), &models.LedgerEntry{
		UserID:   userID,
		PersonID: personID,
		Amount:   dec(t, amount),
		Source:   models.SourceManual,
		Note:     "seed",
	})
	if err != nil {
		t.Fatalf("Failed to create manual entry: %v", err)
	}
}

func entriesFor(t *testing.T, store storage.Store, userID, personID string) []models.LedgerEntry {
	t.Helper()
	entries, err := store.ListEntriesForPerson(context.Background(), userID, personID, storage.ListEntriesOptions{})
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	return entries
}

func balanceOf(t *testing.T, store storage.Store, userID, personID string) decimal.Decimal {
	t.Helper()
	balance, err := store.PersonBalance(context.Background(), userID, personID)
	if err != nil {
		t.Fatalf("Failed to get balance: %v", err)
	}
	return balance
}

func TestReconcileExpense_SignConvention(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)

	expense := &models.Expense{
		ID:           "exp-1",
		UserID:       userID,
		Amount:       dec(t, "200"),
		Date:         "2025-11-01",
		IsBorrowed:   true,
		BorrowedFrom: "Ravi",
		Description:  "Groceries",
	}
	mustExpense(t, store, expense)

	applied, err := engine.ReconcileExpense(ctx, userID, expense, false)
	if err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if !applied {
		t.Fatal("expected expense to apply")
	}

	entries := entriesFor(t, store, userID, ravi.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Amount.Equal(dec(t, "-200")) {
		t.Errorf("amount = %s, want -200", entries[0].Amount)
	}
	if entries[0].Note != "Borrowed: Groceries" {
		t.Errorf("note = %q, want %q", entries[0].Note, "Borrowed: Groceries")
	}
	if entries[0].ExpenseID != "exp-1" || entries[0].IncomeID != "" {
		t.Errorf("entry link = (%q, %q), want linked to expense only", entries[0].ExpenseID, entries[0].IncomeID)
	}

	balance := balanceOf(t, store, userID, ravi.ID)
	if !balance.Equal(dec(t, "-200")) {
		t.Errorf("balance = %s, want -200", balance)
	}
	if label := BalanceLabel(ravi, balance, "₹"); label != "You owe Ravi ₹200" {
		t.Errorf("label = %q, want %q", label, "You owe Ravi ₹200")
	}
}

func TestReconcileExpense_Idempotent(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)

	expense := &models.Expense{
		ID:           "exp-1",
		UserID:       userID,
		Amount:       dec(t, "100"),
		Date:         "2025-11-01",
		IsBorrowed:   true,
		BorrowedFrom: "Ravi",
	}
	mustExpense(t, store, expense)

	for i := 0; i < 3; i++ {
		if _, err := engine.ReconcileExpense(ctx, userID, expense, false); err != nil {
			t.Fatalf("ReconcileExpense #%d failed: %v", i+1, err)
		}
	}

	entries := entriesFor(t, store, userID, ravi.ID)
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 entry after repeated reconciliation, got %d", len(entries))
	}
	if !entries[0].Amount.Equal(dec(t, "-100")) {
		t.Errorf("amount = %s, want -100", entries[0].Amount)
	}
	if entries[0].Note != "Borrowed: Expense" {
		t.Errorf("note = %q, want %q", entries[0].Note, "Borrowed: Expense")
	}
}

func TestReconcileExpense_RebuildReplacesStaleEntry(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)

	expense := &models.Expense{
		ID:           "exp-1",
		UserID:       userID,
		Amount:       dec(t, "100"),
		Date:         "2025-11-01",
		IsBorrowed:   true,
		BorrowedFrom: "Ravi",
	}
	mustExpense(t, store, expense)
	if _, err := engine.ReconcileExpense(ctx, userID, expense, false); err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}

	// Edit the amount and reconcile again: the old -100 row must be gone.
	expense.Amount = dec(t, "150")
	if _, err := engine.ReconcileExpense(ctx, userID, expense, false); err != nil {
		t.Fatalf("ReconcileExpense after edit failed: %v", err)
	}

	entries := entriesFor(t, store, userID, ravi.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after rebuild, got %d", len(entries))
	}
	if !entries[0].Amount.Equal(dec(t, "-150")) {
		t.Errorf("amount = %s, want -150", entries[0].Amount)
	}
}

func TestReconcileExpense_NonPositiveAmount(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)

	for _, amount := range []string{"0", "-50"} {
		expense := &models.Expense{
			ID:           "exp-" + amount,
			UserID:       userID,
			Amount:       dec(t, amount),
			Date:         "2025-11-01",
			IsBorrowed:   true,
			BorrowedFrom: "Ravi",
		}
		applied, err := engine.ReconcileExpense(ctx, userID, expense, false)
		if err != nil {
			t.Fatalf("ReconcileExpense(%s) failed: %v", amount, err)
		}
		if applied {
			t.Errorf("expected amount %s to be rejected", amount)
		}
	}

	if entries := entriesFor(t, store, userID, ravi.ID); len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestReconcileExpense_UnknownPersonIsNoop(t *testing.T) {
	engine, _, userID := newTestEngine(t)
	ctx := context.Background()

	expense := &models.Expense{
		ID:           "exp-1",
		UserID:       userID,
		Amount:       dec(t, "75"),
		Date:         "2025-11-01",
		IsBorrowed:   true,
		BorrowedFrom: "Nobody",
	}

	applied, err := engine.ReconcileExpense(ctx, userID, expense, false)
	if err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if applied {
		t.Error("expected no-op for unknown person")
	}

	// Lookup during reconciliation must never create the person.
	person, err := engine.FindByName(ctx, userID, "Nobody")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if person != nil {
		t.Error("reconciliation created a person as a side effect")
	}
}

func TestReconcileExpense_RepaymentGuard(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)

	// Ravi owes the user 50: there is no debt to repay.
	mustManualEntry(t, store, userID, ravi.ID, "50")

	expense := &models.Expense{
		ID:          "exp-1",
		UserID:      userID,
		Category:    "Loan Repayment",
		Amount:      dec(t, "30"),
		Date:        "2025-11-01",
		IsForOthers: true,
		PaidFor:     "Ravi",
	}

	applied, err := engine.ReconcileExpense(ctx, userID, expense, false)
	if err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if applied {
		t.Error("expected repayment guard to reject")
	}

	entries := entriesFor(t, store, userID, ravi.ID)
	if len(entries) != 1 { // just the seed entry
		t.Fatalf("expected only the seed entry, got %d entries", len(entries))
	}
	if !balanceOf(t, store, userID, ravi.ID).Equal(dec(t, "50")) {
		t.Error("balance changed despite rejection")
	}
}

func TestReconcileExpense_RepaymentGuardBypassedByForceApply(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)
	mustManualEntry(t, store, userID, ravi.ID, "50")

	expense := &models.Expense{
		ID:          "exp-1",
		UserID:      userID,
		Category:    "Loan Repayment",
		Amount:      dec(t, "30"),
		Date:        "2025-11-01",
		IsForOthers: true,
		PaidFor:     "Ravi",
	}
	mustExpense(t, store, expense)

	applied, err := engine.ReconcileExpense(ctx, userID, expense, true)
	if err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if !applied {
		t.Fatal("expected forceApply to bypass the guard")
	}
	if !balanceOf(t, store, userID, ravi.ID).Equal(dec(t, "80")) {
		t.Errorf("balance = %s, want 80", balanceOf(t, store, userID, ravi.ID))
	}
}

func TestReconcileExpense_RepaymentAppliesWhenOwing(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)

	// The user owes Ravi 40: a repayment is legitimate.
	mustManualEntry(t, store, userID, ravi.ID, "-40")

	expense := &models.Expense{
		ID:          "exp-1",
		UserID:      userID,
		Category:    "Debt Settlement",
		Amount:      dec(t, "30"),
		Date:        "2025-11-01",
		IsForOthers: true,
		PaidFor:     "Ravi",
		Description: "Partial payback",
	}
	mustExpense(t, store, expense)

	applied, err := engine.ReconcileExpense(ctx, userID, expense, false)
	if err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if !applied {
		t.Fatal("expected settlement to apply while owing")
	}
	if !balanceOf(t, store, userID, ravi.ID).Equal(dec(t, "-10")) {
		t.Errorf("balance = %s, want -10", balanceOf(t, store, userID, ravi.ID))
	}
}

func TestReconcileExpense_BothBranchesApply(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)
	asha := mustPerson(t, store, userID, "Asha", models.Track)

	// Borrowed from Ravi to pay for Asha: both links fire on one expense.
	expense := &models.Expense{
		ID:           "exp-1",
		UserID:       userID,
		Amount:       dec(t, "120"),
		Date:         "2025-11-01",
		IsBorrowed:   true,
		BorrowedFrom: "Ravi",
		IsForOthers:  true,
		PaidFor:      "Asha",
	}
	mustExpense(t, store, expense)

	applied, err := engine.ReconcileExpense(ctx, userID, expense, false)
	if err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if !applied {
		t.Fatal("expected expense to apply")
	}

	if !balanceOf(t, store, userID, ravi.ID).Equal(dec(t, "-120")) {
		t.Errorf("Ravi balance = %s, want -120", balanceOf(t, store, userID, ravi.ID))
	}
	if !balanceOf(t, store, userID, asha.ID).Equal(dec(t, "120")) {
		t.Errorf("Asha balance = %s, want 120", balanceOf(t, store, userID, asha.ID))
	}
}

func TestReconcileExpense_GuardKeepsBorrowedEntry(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)
	asha := mustPerson(t, store, userID, "Asha", models.Track)

	// Asha doesn't owe anything, so the paid-for settlement is rejected;
	// the borrowed-from entry for Ravi is real and must survive.
	expense := &models.Expense{
		ID:           "exp-1",
		UserID:       userID,
		Category:     "Loan Repayment",
		Amount:       dec(t, "60"),
		Date:         "2025-11-01",
		IsBorrowed:   true,
		BorrowedFrom: "Ravi",
		IsForOthers:  true,
		PaidFor:      "Asha",
	}
	mustExpense(t, store, expense)

	applied, err := engine.ReconcileExpense(ctx, userID, expense, false)
	if err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if applied {
		t.Error("expected call to report not applied when the guard trips")
	}

	if got := entriesFor(t, store, userID, ravi.ID); len(got) != 1 {
		t.Errorf("expected borrowed-from entry to be kept, got %d entries", len(got))
	}
	if got := entriesFor(t, store, userID, asha.ID); len(got) != 0 {
		t.Errorf("expected no paid-for entry, got %d", len(got))
	}
}

func TestReconcileIncome_Loan(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	asha := mustPerson(t, store, userID, "Asha", models.Track)

	income := &models.Income{
		ID:     "inc-1",
		UserID: userID,
		Date:   "2025-11-02",
		Amount: dec(t, "500"),
		Source: models.IncomeLoan,
		Person: "Asha",
	}
	mustIncome(t, store, income)

	applied, err := engine.ReconcileIncome(ctx, userID, asha, income)
	if err != nil {
		t.Fatalf("ReconcileIncome failed: %v", err)
	}
	if !applied {
		t.Fatal("expected loan to apply")
	}

	entries := entriesFor(t, store, userID, asha.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Amount.Equal(dec(t, "-500")) {
		t.Errorf("amount = %s, want -500", entries[0].Amount)
	}
	if entries[0].Note != "Loan from Asha" {
		t.Errorf("note = %q, want %q", entries[0].Note, "Loan from Asha")
	}
	if entries[0].IncomeID != "inc-1" || entries[0].ExpenseID != "" {
		t.Errorf("entry link = (%q, %q), want linked to income only", entries[0].ExpenseID, entries[0].IncomeID)
	}
}

func TestReconcileIncome_RepaymentGuardNoDebt(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	asha := mustPerson(t, store, userID, "Asha", models.Track)

	income := &models.Income{
		ID:     "inc-1",
		UserID: userID,
		Date:   "2025-11-02",
		Amount: dec(t, "100"),
		Source: models.IncomeLoanRepayment,
		Person: "Asha",
	}

	applied, err := engine.ReconcileIncome(ctx, userID, asha, income)
	if err != nil {
		t.Fatalf("ReconcileIncome failed: %v", err)
	}
	if applied {
		t.Error("expected repayment against zero balance to be rejected")
	}
	if !balanceOf(t, store, userID, asha.ID).IsZero() {
		t.Error("balance changed despite rejection")
	}
}

func TestReconcileIncome_RepaymentCappedAtBalance(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	asha := mustPerson(t, store, userID, "Asha", models.Track)

	// Asha owes the user 40 and hands over 100: only 40 of it settles the
	// ledger, the cap keeps the balance from flipping sign.
	mustManualEntry(t, store, userID, asha.ID, "40")

	income := &models.Income{
		ID:     "inc-1",
		UserID: userID,
		Date:   "2025-11-02",
		Amount: dec(t, "100"),
		Source: models.IncomeLoanRepayment,
		Person: "Asha",
	}
	mustIncome(t, store, income)

	applied, err := engine.ReconcileIncome(ctx, userID, asha, income)
	if err != nil {
		t.Fatalf("ReconcileIncome failed: %v", err)
	}
	if !applied {
		t.Fatal("expected repayment to apply")
	}

	entries := entriesFor(t, store, userID, asha.ID)
	if len(entries) != 2 {
		t.Fatalf("expected seed + repayment entry, got %d", len(entries))
	}
	var repayment *models.LedgerEntry
	for i := range entries {
		if entries[i].Source == models.SourceIncome {
			repayment = &entries[i]
		}
	}
	if repayment == nil {
		t.Fatal("repayment entry not found")
	}
	if !repayment.Amount.Equal(dec(t, "-40")) {
		t.Errorf("repayment amount = %s, want -40 (capped)", repayment.Amount)
	}
	if !balanceOf(t, store, userID, asha.ID).IsZero() {
		t.Errorf("balance = %s, want 0", balanceOf(t, store, userID, asha.ID))
	}
}

func TestReconcileIncome_OtherSourcesUntouched(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	asha := mustPerson(t, store, userID, "Asha", models.Track)

	for _, source := range []string{models.IncomeSalary, models.IncomeRefund, models.IncomeOther} {
		income := &models.Income{
			ID:     "inc-" + source,
			UserID: userID,
			Date:   "2025-11-02",
			Amount: dec(t, "100"),
			Source: source,
			Person: "Asha",
		}
		applied, err := engine.ReconcileIncome(ctx, userID, asha, income)
		if err != nil {
			t.Fatalf("ReconcileIncome(%s) failed: %v", source, err)
		}
		if applied {
			t.Errorf("expected source %s to produce no entry", source)
		}
	}
	if entries := entriesFor(t, store, userID, asha.ID); len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestReconcileIncome_RebuildOnEdit(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	asha := mustPerson(t, store, userID, "Asha", models.Track)

	income := &models.Income{
		ID:     "inc-1",
		UserID: userID,
		Date:   "2025-11-02",
		Amount: dec(t, "500"),
		Source: models.IncomeLoan,
		Person: "Asha",
	}
	mustIncome(t, store, income)
	if _, err := engine.ReconcileIncome(ctx, userID, asha, income); err != nil {
		t.Fatalf("ReconcileIncome failed: %v", err)
	}

	income.Amount = dec(t, "650")
	if _, err := engine.ReconcileIncome(ctx, userID, asha, income); err != nil {
		t.Fatalf("ReconcileIncome after edit failed: %v", err)
	}

	entries := entriesFor(t, store, userID, asha.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after rebuild, got %d", len(entries))
	}
	if !entries[0].Amount.Equal(dec(t, "-650")) {
		t.Errorf("amount = %s, want -650", entries[0].Amount)
	}
}

func TestReconcileExpense_PreferenceGating(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	asha := mustPerson(t, store, userID, "Asha", models.Ask)
	nila := mustPerson(t, store, userID, "Nila", models.NoTrack)

	for _, name := range []string{"Asha", "Nila"} {
		expense := &models.Expense{
			ID:           "exp-" + name,
			UserID:       userID,
			Amount:       dec(t, "100"),
			Date:         "2025-11-01",
			IsBorrowed:   true,
			BorrowedFrom: name,
		}
		applied, err := engine.ReconcileExpense(ctx, userID, expense, false)
		if err != nil {
			t.Fatalf("ReconcileExpense(%s) failed: %v", name, err)
		}
		if applied {
			t.Errorf("expected no auto-apply for %s", name)
		}
	}
	if entries := entriesFor(t, store, userID, asha.ID); len(entries) != 0 {
		t.Errorf("Ask person got %d entries without consent", len(entries))
	}
	if entries := entriesFor(t, store, userID, nila.ID); len(entries) != 0 {
		t.Errorf("NoTrack person got %d entries", len(entries))
	}

	// Explicit consent applies even while the preference stays Ask.
	expense := &models.Expense{
		ID:           "exp-consent",
		UserID:       userID,
		Amount:       dec(t, "100"),
		Date:         "2025-11-01",
		IsBorrowed:   true,
		BorrowedFrom: "Asha",
	}
	mustExpense(t, store, expense)
	applied, err := engine.ReconcileExpense(ctx, userID, expense, true)
	if err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if !applied {
		t.Fatal("expected forceApply to override the Ask preference")
	}
	if !balanceOf(t, store, userID, asha.ID).Equal(dec(t, "-100")) {
		t.Errorf("balance = %s, want -100", balanceOf(t, store, userID, asha.ID))
	}
}

func TestDeletionCascade(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()
	ravi := mustPerson(t, store, userID, "Ravi", models.Track)

	expense := &models.Expense{
		UserID:       userID,
		Amount:       dec(t, "200"),
		Date:         "2025-11-01",
		IsBorrowed:   true,
		BorrowedFrom: "Ravi",
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if _, err := engine.ReconcileExpense(ctx, userID, expense, false); err != nil {
		t.Fatalf("ReconcileExpense failed: %v", err)
	}
	if !balanceOf(t, store, userID, ravi.ID).Equal(dec(t, "-200")) {
		t.Fatalf("precondition failed: balance = %s", balanceOf(t, store, userID, ravi.ID))
	}

	if err := store.DeleteExpense(ctx, userID, expense.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}

	if entries := entriesFor(t, store, userID, ravi.ID); len(entries) != 0 {
		t.Errorf("expected linked entries to cascade on expense delete, got %d", len(entries))
	}
	if !balanceOf(t, store, userID, ravi.ID).IsZero() {
		t.Errorf("balance = %s, want 0 after cascade", balanceOf(t, store, userID, ravi.ID))
	}
}
