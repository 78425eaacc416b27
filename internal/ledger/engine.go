// Package ledger implements the person-ledger reconciliation engine: the
// logic that decides, for every expense or income touching a person, whether
// and how to mutate that person's running balance, and that rebuilds ledger
// rows whenever the originating record is saved.
//
// Both entry points are idempotent: they delete every entry linked to the
// record and regenerate from current record state, all inside one storage
// transaction so a partial rebuild can never be observed or persisted.
package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

// Engine applies expense and income records to the person ledger.
type Engine struct {
	store storage.Store
}

// NewEngine creates an engine backed by the given store.
func NewEngine(store storage.Store) *Engine {
	return &Engine{store: store}
}

// ReconcileExpense rebuilds the ledger entries derived from an expense.
// It returns whether the rebuild produced entries; validation rejections
// (non-positive amount, unknown person, tripped repayment guard) are
// (false, nil), not errors.
//
// The two person links are evaluated independently and both can fire for one
// expense:
//
//   - borrowed-from: entry of -amount (the user's debt to the lender grows)
//   - paid-for: entry of +amount (the person's debt to the user grows)
//
// People are resolved by lookup only; creating a person is the caller's
// responsibility and is gated on user consent. A resolved person only
// receives entries when their preference is Track or the caller passes
// forceApply: Ask defers to an explicit consent decision and NoTrack never
// auto-applies.
//
// When the expense's category marks a repayment/settlement and forceApply is
// false, the paid-for entry is only created if the user actually owes that
// person (active balance < 0). A tripped guard suppresses the paid-for entry
// and makes the whole call report false, but an already-created borrowed-from
// entry is kept: the branches are independent and the borrowed debt is real
// regardless of the bogus settlement.
func (e *Engine) ReconcileExpense(ctx context.Context, userID string, expense *models.Expense, forceApply bool) (bool, error) {
	if expense == nil {
		return false, nil
	}
	if userID == "" {
		slog.Warn("expense reconciliation without owning user", "expense_id", expense.ID)
		return false, nil
	}

	applied := false
	err := e.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.DeleteEntriesForExpense(ctx, userID, expense.ID); err != nil {
			return err
		}

		if !expense.Amount.IsPositive() {
			return nil
		}

		if expense.IsBorrowed && expense.BorrowedFrom != "" {
			person, err := findByName(ctx, tx, userID, expense.BorrowedFrom)
			if err != nil {
				return err
			}
			if autoApplies(person, forceApply) {
				err := tx.CreateEntry(ctx, &models.LedgerEntry{
					UserID:    userID,
					PersonID:  person.ID,
					Amount:    expense.Amount.Neg(), // you owe them
					Source:    models.SourceExpense,
					ExpenseID: expense.ID,
					Note:      "Borrowed: " + describe(expense.Description),
				})
				if err != nil {
					return err
				}
				applied = true
			}
		}

		if expense.IsForOthers && expense.PaidFor != "" {
			person, err := findByName(ctx, tx, userID, expense.PaidFor)
			if err != nil {
				return err
			}
			if autoApplies(person, forceApply) {
				if IsSettlementCategory(expense.Category) && !forceApply {
					balance, err := tx.PersonBalance(ctx, userID, person.ID)
					if err != nil {
						return err
					}
					if balance.Sign() >= 0 {
						// Repayment guard: can't repay a debt that
						// doesn't exist.
						reconciliationsRejected.WithLabelValues("expense").Inc()
						applied = false
						return nil
					}
				}
				err = tx.CreateEntry(ctx, &models.LedgerEntry{
					UserID:    userID,
					PersonID:  person.ID,
					Amount:    expense.Amount, // they owe you, or your debt shrinks
					Source:    models.SourceExpense,
					ExpenseID: expense.ID,
					Note:      "Paid for: " + describe(expense.Description),
				})
				if err != nil {
					return err
				}
				applied = true
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		reconciliationsApplied.WithLabelValues("expense").Inc()
	}
	return applied, nil
}

// ReconcileIncome rebuilds the ledger entries derived from an income. The
// caller must have established consent first: either the person's preference
// is Track, or the user explicitly applied this income.
//
// Only loan and loan_repayment sources touch the ledger:
//
//   - loan: entry of -amount (the user now owes the lender more)
//   - loan_repayment: entry of -min(amount, balance), and only when the
//     person currently owes the user. A repayment never over-corrects the
//     ledger past zero.
func (e *Engine) ReconcileIncome(ctx context.Context, userID string, person *models.Person, income *models.Income) (bool, error) {
	if person == nil || income == nil {
		return false, nil
	}
	if userID == "" {
		slog.Warn("income reconciliation without owning user", "income_id", income.ID)
		return false, nil
	}

	applied := false
	err := e.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.DeleteEntriesForIncome(ctx, userID, income.ID); err != nil {
			return err
		}

		if !income.Amount.IsPositive() {
			return nil
		}

		entry := &models.LedgerEntry{
			UserID:   userID,
			PersonID: person.ID,
			Source:   models.SourceIncome,
			IncomeID: income.ID,
		}

		switch income.Source {
		case models.IncomeLoan:
			entry.Amount = income.Amount.Neg() // you owe them
			entry.Note = "Loan from " + person.Name

		case models.IncomeLoanRepayment:
			balance, err := tx.PersonBalance(ctx, userID, person.ID)
			if err != nil {
				return err
			}
			if balance.Sign() <= 0 {
				// Repayment guard: they don't owe you anything.
				reconciliationsRejected.WithLabelValues("income").Inc()
				return nil
			}
			// Cap at the outstanding balance so the sign never flips.
			entry.Amount = decimalMin(income.Amount, balance).Neg()
			entry.Note = "Repayment by " + person.Name

		default:
			return nil
		}

		if err := tx.CreateEntry(ctx, entry); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		reconciliationsApplied.WithLabelValues("income").Inc()
	}
	return applied, nil
}

// autoApplies reports whether a resolved person should receive entries on
// this call. Preference transitions are never a side effect here.
func autoApplies(person *models.Person, forceApply bool) bool {
	if person == nil {
		return false
	}
	return forceApply || person.TrackingPreference == models.Track
}

// IsSettlementCategory reports whether a category name marks an expense as a
// debt repayment/settlement. Matched by substring so "Loan Repayment",
// "Repayment" and "Debt Settlement" all qualify.
func IsSettlementCategory(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	return strings.Contains(c, "repayment") || strings.Contains(c, "settlement")
}

func describe(description string) string {
	if description == "" {
		return "Expense"
	}
	return description
}
