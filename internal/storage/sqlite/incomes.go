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

const incomeColumns = `id, user_id, date, amount, source, payment_type, person,
	description, applied_to_people, created_at`

// CreateIncome inserts a new income.
func (s *SQLiteStore) CreateIncome(ctx context.Context, income *models.Income) error {
	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	if income.CreatedAt == 0 {
		income.CreatedAt = time.Now().Unix()
	}
	if income.Source == "" {
		income.Source = models.IncomeOther
	}
	if income.PaymentType == "" {
		income.PaymentType = models.PaymentCash
	}

	_, err := s.q().ExecContext(ctx, `
		INSERT INTO incomes (`+incomeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		income.ID, income.UserID, income.Date, income.Amount.String(),
		income.Source, income.PaymentType, income.Person,
		income.Description, income.AppliedToPeople, income.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}
	return nil
}

// GetIncome retrieves an income by ID, scoped to the owning user.
func (s *SQLiteStore) GetIncome(ctx context.Context, userID, id string) (*models.Income, error) {
	row := s.q().QueryRowContext(ctx,
		"SELECT "+incomeColumns+" FROM incomes WHERE user_id = ? AND id = ?",
		userID, id,
	)
	income, err := scanIncome(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get income: %w", err)
	}
	return income, nil
}

func scanIncome(scan func(dest ...any) error) (*models.Income, error) {
	income := &models.Income{}
	var amount string
	err := scan(
		&income.ID, &income.UserID, &income.Date, &amount,
		&income.Source, &income.PaymentType, &income.Person,
		&income.Description, &income.AppliedToPeople, &income.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	income.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	return income, nil
}

// UpdateIncome updates an existing income.
func (s *SQLiteStore) UpdateIncome(ctx context.Context, income *models.Income) error {
	res, err := s.q().ExecContext(ctx, `
		UPDATE incomes
		SET date = ?, amount = ?, source = ?, payment_type = ?, person = ?,
		    description = ?, applied_to_people = ?
		WHERE user_id = ? AND id = ?`,
		income.Date, income.Amount.String(), income.Source, income.PaymentType,
		income.Person, income.Description, income.AppliedToPeople,
		income.UserID, income.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update income: %w", err)
	}
	return requireRow(res)
}

// DeleteIncome hard-deletes an income. The schema cascades the delete to any
// ledger entries linked to it.
func (s *SQLiteStore) DeleteIncome(ctx context.Context, userID, id string) error {
	res, err := s.q().ExecContext(ctx,
		"DELETE FROM incomes WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	return requireRow(res)
}

// ListIncomes returns the user's incomes, newest first.
func (s *SQLiteStore) ListIncomes(ctx context.Context, userID string, limit, offset int) ([]models.Income, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q().QueryContext(ctx,
		"SELECT "+incomeColumns+` FROM incomes
		WHERE user_id = ? ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		income, err := scanIncome(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		incomes = append(incomes, *income)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incomes: %w", err)
	}
	return incomes, nil
}
