package ledger

import (
	"context"
	"testing"

	"github.com/mmynk/kharcha/internal/models"
)

func TestFindOrCreateByName_NormalizationIsStable(t *testing.T) {
	engine, _, userID := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.FindOrCreateByName(ctx, userID, "  ravi ")
	if err != nil {
		t.Fatalf("FindOrCreateByName failed: %v", err)
	}
	if first == nil {
		t.Fatal("expected a person")
	}
	if first.Name != "Ravi" {
		t.Errorf("stored name = %q, want %q", first.Name, "Ravi")
	}
	if first.TrackingPreference != models.Ask {
		t.Errorf("default preference = %s, want ASK", first.TrackingPreference)
	}

	second, err := engine.FindOrCreateByName(ctx, userID, "RAVI")
	if err != nil {
		t.Fatalf("FindOrCreateByName failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected both spellings to resolve to one person, got %s and %s", first.ID, second.ID)
	}
	if second.Name != "Ravi" {
		t.Errorf("stored name = %q, want %q", second.Name, "Ravi")
	}
}

func TestFindOrCreateByName_BlankName(t *testing.T) {
	engine, _, userID := newTestEngine(t)

	for _, raw := range []string{"", "   ", "\t\n"} {
		person, err := engine.FindOrCreateByName(context.Background(), userID, raw)
		if err != nil {
			t.Fatalf("FindOrCreateByName(%q) failed: %v", raw, err)
		}
		if person != nil {
			t.Errorf("expected nil for blank name %q", raw)
		}
	}
}

func TestFindByName_NeverCreates(t *testing.T) {
	engine, _, userID := newTestEngine(t)
	ctx := context.Background()

	person, err := engine.FindByName(ctx, userID, "asha")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if person != nil {
		t.Fatal("expected no match")
	}

	// Still absent afterwards.
	person, err = engine.FindByName(ctx, userID, "Asha")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if person != nil {
		t.Error("FindByName created a person")
	}
}

func TestFindByName_ScopedToUser(t *testing.T) {
	engine, store, userID := newTestEngine(t)
	ctx := context.Background()

	other := models.NewUser("other@example.com", "Other", "irrelevant")
	if err := store.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	mustPerson(t, store, other.ID, "Ravi", models.Track)

	person, err := engine.FindByName(ctx, userID, "Ravi")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if person != nil {
		t.Error("found another user's person")
	}
}

func TestBalanceLabel(t *testing.T) {
	person := &models.Person{Name: "Ravi"}

	cases := []struct {
		balance string
		want    string
	}{
		{"200", "Ravi owes you ₹200"},
		{"-200", "You owe Ravi ₹200"},
		{"0", "Settled"},
	}
	for _, c := range cases {
		if got := BalanceLabel(person, dec(t, c.balance), "₹"); got != c.want {
			t.Errorf("BalanceLabel(%s) = %q, want %q", c.balance, got, c.want)
		}
	}
}

func TestIsSettlementCategory(t *testing.T) {
	cases := []struct {
		category string
		want     bool
	}{
		{"Loan Repayment", true},
		{"repayment", true},
		{"Debt Settlement", true},
		{"  SETTLEMENT  ", true},
		{"Food", false},
		{"", false},
		{"Loan", false},
	}
	for _, c := range cases {
		if got := IsSettlementCategory(c.category); got != c.want {
			t.Errorf("IsSettlementCategory(%q) = %v, want %v", c.category, got, c.want)
		}
	}
}
