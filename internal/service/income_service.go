package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/kharcha/internal/ledger"
	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

// IncomeService owns the income CRUD flow.
type IncomeService struct {
	store  storage.Store
	engine *ledger.Engine
}

// NewIncomeService creates an IncomeService with the given storage backend.
func NewIncomeService(store storage.Store) *IncomeService {
	return &IncomeService{store: store, engine: ledger.NewEngine(store)}
}

// SaveIncomeResult reports what a save did to the ledger.
type SaveIncomeResult struct {
	Income  *models.Income
	Applied bool
	Pending *PendingDecision
}

// Create persists a new income. Reconciliation runs in the same transaction,
// but only when the named person already exists and either has preference
// Track or this income was already explicitly applied. Income never creates
// people and never applies without established consent.
func (s *IncomeService) Create(ctx context.Context, userID string, income *models.Income) (*SaveIncomeResult, error) {
	return s.save(ctx, userID, income, true)
}

// Update persists changes to an income and rebuilds its ledger entries under
// the same consent rules as Create.
func (s *IncomeService) Update(ctx context.Context, userID string, income *models.Income) (*SaveIncomeResult, error) {
	return s.save(ctx, userID, income, false)
}

func (s *IncomeService) save(ctx context.Context, userID string, income *models.Income, create bool) (*SaveIncomeResult, error) {
	income.UserID = userID
	income.Normalize()

	var applied bool
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		var err error
		if create {
			err = tx.CreateIncome(ctx, income)
		} else {
			err = tx.UpdateIncome(ctx, income)
		}
		if err != nil {
			return err
		}

		if income.Person == "" {
			return nil
		}
		engine := ledger.NewEngine(tx)
		person, err := engine.FindByName(ctx, userID, income.Person)
		if err != nil {
			return err
		}
		// Consent carries across edits: once the user applied this income,
		// later saves keep rebuilding its entries.
		if person == nil || (!income.AppliedToPeople && person.TrackingPreference != models.Track) {
			return nil
		}
		applied, err = engine.ReconcileIncome(ctx, userID, person, income)
		return err
	})
	if err != nil {
		return nil, err
	}

	pending, err := s.pendingDecision(ctx, userID, income, applied)
	if err != nil {
		return nil, err
	}
	if applied {
		slog.Info("income reconciled", "income_id", income.ID, "user_id", userID)
	}

	return &SaveIncomeResult{Income: income, Applied: applied, Pending: pending}, nil
}

// pendingDecision surfaces a consent prompt for ledger-relevant incomes
// (loans and repayments) whose person is unknown or set to Ask.
func (s *IncomeService) pendingDecision(ctx context.Context, userID string, income *models.Income, applied bool) (*PendingDecision, error) {
	if applied || income.Person == "" {
		return nil, nil
	}
	if income.Source != models.IncomeLoan && income.Source != models.IncomeLoanRepayment {
		return nil, nil
	}

	person, err := s.engine.FindByName(ctx, userID, income.Person)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return &PendingDecision{PersonName: income.Person}, nil
	}
	if person.TrackingPreference == models.Ask {
		return &PendingDecision{PersonName: person.Name, PersonID: person.ID, PersonExists: true}, nil
	}
	return nil, nil
}

// Get retrieves one income.
func (s *IncomeService) Get(ctx context.Context, userID, id string) (*models.Income, error) {
	return s.store.GetIncome(ctx, userID, id)
}

// List returns the user's incomes, newest first.
func (s *IncomeService) List(ctx context.Context, userID string, limit, offset int) ([]models.Income, error) {
	return s.store.ListIncomes(ctx, userID, limit, offset)
}

// Delete removes an income and purges its ledger entries in the same
// transaction.
func (s *IncomeService) Delete(ctx context.Context, userID, id string) error {
	return s.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.DeleteEntriesForIncome(ctx, userID, id); err != nil {
			return err
		}
		return tx.DeleteIncome(ctx, userID, id)
	})
}
