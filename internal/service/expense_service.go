// Package service orchestrates CRUD operations and invokes the
// reconciliation engine synchronously from every save and delete path, as a
// direct function call rather than an event subscription. A record save is
// only complete once its reconciliation has committed in the same
// transaction.
package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/kharcha/internal/ledger"
	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

// PendingDecision tells the caller a saved record touches a person whose
// tracking is unresolved: either the person doesn't exist yet, or their
// preference is Ask. The UI surfaces it as a consent prompt; it stays
// pending until the user resolves it for this specific record.
type PendingDecision struct {
	// PersonName is the normalized name from the record.
	PersonName string

	// PersonID is set when the person already exists.
	PersonID string

	// PersonExists distinguishes "unknown name" from "known person set
	// to Ask".
	PersonExists bool
}

// ExpenseService owns the expense CRUD flow.
type ExpenseService struct {
	store  storage.Store
	engine *ledger.Engine
}

// NewExpenseService creates an ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store, engine: ledger.NewEngine(store)}
}

// SaveExpenseResult reports what a save did to the ledger.
type SaveExpenseResult struct {
	Expense *models.Expense

	// Applied is whether reconciliation produced ledger entries.
	Applied bool

	// Pending is non-nil when a consent decision is needed.
	Pending *PendingDecision
}

// Create persists a new expense and reconciles it. The record and its ledger
// entries commit together: a reconciliation failure rolls back the save.
func (s *ExpenseService) Create(ctx context.Context, userID string, expense *models.Expense) (*SaveExpenseResult, error) {
	return s.save(ctx, userID, expense, true)
}

// Update persists changes to an expense and rebuilds its ledger entries.
func (s *ExpenseService) Update(ctx context.Context, userID string, expense *models.Expense) (*SaveExpenseResult, error) {
	return s.save(ctx, userID, expense, false)
}

func (s *ExpenseService) save(ctx context.Context, userID string, expense *models.Expense, create bool) (*SaveExpenseResult, error) {
	expense.UserID = userID
	expense.Normalize()

	var applied bool
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		var err error
		if create {
			err = tx.CreateExpense(ctx, expense)
		} else {
			err = tx.UpdateExpense(ctx, expense)
		}
		if err != nil {
			return err
		}
		// Automatic reconciliation never bypasses the repayment guard;
		// only the explicit consent operations pass forceApply.
		applied, err = ledger.NewEngine(tx).ReconcileExpense(ctx, userID, expense, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	pending, err := s.pendingDecision(ctx, userID, expense)
	if err != nil {
		return nil, err
	}
	if applied {
		slog.Info("expense reconciled", "expense_id", expense.ID, "user_id", userID)
	}

	return &SaveExpenseResult{Expense: expense, Applied: applied, Pending: pending}, nil
}

// pendingDecision checks whether the expense's person link needs a consent
// prompt. The borrowed-from link takes precedence when both are set.
func (s *ExpenseService) pendingDecision(ctx context.Context, userID string, expense *models.Expense) (*PendingDecision, error) {
	name := ""
	if expense.IsBorrowed && expense.BorrowedFrom != "" {
		name = expense.BorrowedFrom
	} else if expense.IsForOthers && expense.PaidFor != "" {
		name = expense.PaidFor
	}
	if name == "" {
		return nil, nil
	}

	person, err := s.engine.FindByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return &PendingDecision{PersonName: name}, nil
	}
	if person.TrackingPreference == models.Ask {
		return &PendingDecision{PersonName: person.Name, PersonID: person.ID, PersonExists: true}, nil
	}
	return nil, nil
}

// Get retrieves one expense.
func (s *ExpenseService) Get(ctx context.Context, userID, id string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, userID, id)
}

// List returns the user's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, userID string, limit, offset int) ([]models.Expense, error) {
	return s.store.ListExpenses(ctx, userID, limit, offset)
}

// Delete removes an expense and purges its ledger entries in the same
// transaction. Derived entries have no meaning without their record.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	return s.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.DeleteEntriesForExpense(ctx, userID, id); err != nil {
			return err
		}
		return tx.DeleteExpense(ctx, userID, id)
	})
}
