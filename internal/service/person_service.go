package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kharcha/internal/ledger"
	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

var (
	// ErrNameRequired is returned when a person name is blank after
	// normalization.
	ErrNameRequired = errors.New("person name required")

	// ErrInvalidPreference is returned for an unknown tracking preference.
	ErrInvalidPreference = errors.New("invalid tracking preference")
)

// PersonService owns the people directory, tracking preferences, and the
// explicit consent operations behind the Ask banner.
type PersonService struct {
	store  storage.Store
	engine *ledger.Engine
}

// NewPersonService creates a PersonService with the given storage backend.
func NewPersonService(store storage.Store) *PersonService {
	return &PersonService{store: store, engine: ledger.NewEngine(store)}
}

// Engine exposes the underlying reconciliation engine for callers that need
// name resolution.
func (s *PersonService) Engine() *ledger.Engine {
	return s.engine
}

// Create explicitly creates a person.
func (s *PersonService) Create(ctx context.Context, userID, rawName string, pref models.TrackingPreference) (*models.Person, error) {
	name := models.NormalizeName(rawName)
	if name == "" {
		return nil, ErrNameRequired
	}
	if pref == "" {
		pref = models.Ask
	}
	if !pref.Valid() {
		return nil, ErrInvalidPreference
	}

	person := &models.Person{UserID: userID, Name: name, TrackingPreference: pref}
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

// List returns people with balances and last activity, most recently active
// first. By default only tracked people with active ledger entries are
// shown; showUntracked widens it to everyone, archived included.
func (s *PersonService) List(ctx context.Context, userID string, showUntracked bool, search string) ([]storage.PersonSummary, error) {
	return s.store.ListPeople(ctx, userID, storage.ListPeopleOptions{
		TrackedOnly: !showUntracked,
		Search:      search,
	})
}

// PersonDetail is a person with their active balance and a page of ledger
// history.
type PersonDetail struct {
	Person       *models.Person
	Balance      decimal.Decimal
	BalanceLabel string
	Entries      []models.LedgerEntry
}

// Detail returns a person with their balance label and a page of active
// ledger entries. The balance is computed over the full ledger, not the
// page, and in the same transaction as the page read.
func (s *PersonService) Detail(ctx context.Context, userID, personID string, limit, offset int) (*PersonDetail, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	detail := &PersonDetail{}
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		detail.Person, err = tx.GetPerson(ctx, userID, personID)
		if err != nil {
			return err
		}
		detail.Balance, err = tx.PersonBalance(ctx, userID, personID)
		if err != nil {
			return err
		}
		detail.Entries, err = tx.ListEntriesForPerson(ctx, userID, personID, storage.ListEntriesOptions{
			Limit:  limit,
			Offset: offset,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	detail.BalanceLabel = ledger.BalanceLabel(detail.Person, detail.Balance, user.CurrencySymbol)
	return detail, nil
}

// Delete permanently removes a person and their entire ledger history.
func (s *PersonService) Delete(ctx context.Context, userID, personID string) error {
	return s.store.DeletePerson(ctx, userID, personID)
}

// MarkSettled writes a manual adjustment that brings the person's balance to
// zero. Returns false when the balance is already settled.
func (s *PersonService) MarkSettled(ctx context.Context, userID, personID string) (bool, error) {
	settled := false
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		balance, err := tx.PersonBalance(ctx, userID, personID)
		if err != nil {
			return err
		}
		if balance.IsZero() {
			return nil
		}
		settled = true
		return tx.CreateEntry(ctx, &models.LedgerEntry{
			UserID:   userID,
			PersonID: personID,
			Amount:   balance.Neg(),
			Source:   models.SourceManual,
			Note:     "Marked as fully settled",
		})
	})
	return settled, err
}

// SetTrack, SetAsk, SetNoTrack and Restore are the explicit preference
// transitions; see the ledger package for their semantics.

func (s *PersonService) SetTrack(ctx context.Context, userID, personID string) error {
	return s.engine.SetTrack(ctx, userID, personID)
}

func (s *PersonService) SetAsk(ctx context.Context, userID, personID string) error {
	return s.engine.SetAsk(ctx, userID, personID)
}

func (s *PersonService) SetNoTrack(ctx context.Context, userID, personID string) error {
	return s.engine.SetNoTrack(ctx, userID, personID)
}

func (s *PersonService) Restore(ctx context.Context, userID, personID string, mode ledger.RestoreMode) error {
	return s.engine.Restore(ctx, userID, personID, mode)
}

// ApplyExpenseAndTrack resolves an Ask decision with "yes, track": the
// person is created if needed, set to Track, and the expense is force-applied
// (the consent bypasses the repayment guard).
func (s *PersonService) ApplyExpenseAndTrack(ctx context.Context, userID, personName, expenseID string) (bool, error) {
	return s.applyExpense(ctx, userID, personName, expenseID, true)
}

// ApplyExpenseOnce resolves an Ask decision with "apply this once": the
// expense is force-applied but the person's preference stays unchanged.
func (s *PersonService) ApplyExpenseOnce(ctx context.Context, userID, personName, expenseID string) (bool, error) {
	return s.applyExpense(ctx, userID, personName, expenseID, false)
}

func (s *PersonService) applyExpense(ctx context.Context, userID, personName, expenseID string, track bool) (bool, error) {
	applied := false
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		engine := ledger.NewEngine(tx)
		person, err := engine.FindOrCreateByName(ctx, userID, personName)
		if err != nil {
			return err
		}
		if person == nil {
			return ErrNameRequired
		}
		if track {
			if err := engine.SetTrack(ctx, userID, person.ID); err != nil {
				return err
			}
		}
		expense, err := tx.GetExpense(ctx, userID, expenseID)
		if err != nil {
			return err
		}
		applied, err = engine.ReconcileExpense(ctx, userID, expense, true)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to apply expense to ledger: %w", err)
	}
	if applied {
		slog.Info("expense applied after consent", "expense_id", expenseID, "user_id", userID, "track", track)
	}
	return applied, nil
}

// ApplyIncomeAndTrack resolves an Ask decision for an income with "yes,
// track": the person is created if needed and set to Track, the income is
// marked applied, and its entries are rebuilt.
func (s *PersonService) ApplyIncomeAndTrack(ctx context.Context, userID, personName, incomeID string) (bool, error) {
	return s.applyIncome(ctx, userID, personName, incomeID, true)
}

// ApplyIncomeOnce applies an income after consent without changing the
// person's preference.
func (s *PersonService) ApplyIncomeOnce(ctx context.Context, userID, personName, incomeID string) (bool, error) {
	return s.applyIncome(ctx, userID, personName, incomeID, false)
}

func (s *PersonService) applyIncome(ctx context.Context, userID, personName, incomeID string, track bool) (bool, error) {
	applied := false
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		engine := ledger.NewEngine(tx)
		person, err := engine.FindOrCreateByName(ctx, userID, personName)
		if err != nil {
			return err
		}
		if person == nil {
			return ErrNameRequired
		}
		if track {
			if err := engine.SetTrack(ctx, userID, person.ID); err != nil {
				return err
			}
		}
		income, err := tx.GetIncome(ctx, userID, incomeID)
		if err != nil {
			return err
		}
		income.AppliedToPeople = true
		if err := tx.UpdateIncome(ctx, income); err != nil {
			return err
		}
		applied, err = engine.ReconcileIncome(ctx, userID, person, income)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to apply income to ledger: %w", err)
	}
	if applied {
		slog.Info("income applied after consent", "income_id", incomeID, "user_id", userID, "track", track)
	}
	return applied, nil
}
