package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

const expenseColumns = `id, user_id, category, payment_type, amount, description, date,
	is_borrowed, borrowed_from, is_for_others, paid_for, created_at`

// CreateExpense inserts a new expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.PaymentType == "" {
		expense.PaymentType = models.PaymentCash
	}

	_, err := s.q().ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, expense.Category, expense.PaymentType,
		expense.Amount.String(), expense.Description, expense.Date,
		expense.IsBorrowed, expense.BorrowedFrom,
		expense.IsForOthers, expense.PaidFor, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, scoped to the owning user.
func (s *SQLiteStore) GetExpense(ctx context.Context, userID, id string) (*models.Expense, error) {
	row := s.q().QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND id = ?",
		userID, id,
	)
	expense, err := scanExpense(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

func scanExpense(scan func(dest ...any) error) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount string
	err := scan(
		&expense.ID, &expense.UserID, &expense.Category, &expense.PaymentType,
		&amount, &expense.Description, &expense.Date,
		&expense.IsBorrowed, &expense.BorrowedFrom,
		&expense.IsForOthers, &expense.PaidFor, &expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	return expense, nil
}

// UpdateExpense updates an existing expense.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	res, err := s.q().ExecContext(ctx, `
		UPDATE expenses
		SET category = ?, payment_type = ?, amount = ?, description = ?, date = ?,
		    is_borrowed = ?, borrowed_from = ?, is_for_others = ?, paid_for = ?
		WHERE user_id = ? AND id = ?`,
		expense.Category, expense.PaymentType, expense.Amount.String(),
		expense.Description, expense.Date,
		expense.IsBorrowed, expense.BorrowedFrom,
		expense.IsForOthers, expense.PaidFor,
		expense.UserID, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireRow(res)
}

// DeleteExpense hard-deletes an expense. The schema cascades the delete to
// any ledger entries linked to it.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := s.q().ExecContext(ctx,
		"DELETE FROM expenses WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireRow(res)
}

// ListExpenses returns the user's expenses, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, userID string, limit, offset int) ([]models.Expense, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.q().QueryContext(ctx,
		"SELECT "+expenseColumns+` FROM expenses
		WHERE user_id = ? ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}
