package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/storage"
)

const entryColumns = `id, user_id, person_id, amount, source, expense_id, income_id,
	note, archived, created_at`

// CreateEntry inserts a ledger entry. The schema rejects an entry linked to
// both an expense and an income.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	if entry.Source == "" {
		entry.Source = models.SourceManual
	}

	_, err := s.q().ExecContext(ctx, `
		INSERT INTO ledger_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.PersonID, entry.Amount.String(),
		string(entry.Source), nullable(entry.ExpenseID), nullable(entry.IncomeID),
		entry.Note, entry.Archived, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ListEntriesForPerson returns a person's ledger entries, newest first.
func (s *SQLiteStore) ListEntriesForPerson(ctx context.Context, userID, personID string, opts storage.ListEntriesOptions) ([]models.LedgerEntry, error) {
	query := "SELECT " + entryColumns + " FROM ledger_entries WHERE user_id = ? AND person_id = ?"
	args := []any{userID, personID}
	if !opts.IncludeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

func scanEntry(scan func(dest ...any) error) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{}
	var amount, source string
	var expenseID, incomeID sql.NullString
	err := scan(
		&entry.ID, &entry.UserID, &entry.PersonID, &amount, &source,
		&expenseID, &incomeID, &entry.Note, &entry.Archived, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	entry.Source = models.LedgerSource(source)
	entry.ExpenseID = expenseID.String
	entry.IncomeID = incomeID.String
	return entry, nil
}

// DeleteEntriesForExpense hard-deletes all entries linked to an expense.
// This is the first half of every expense rebuild.
func (s *SQLiteStore) DeleteEntriesForExpense(ctx context.Context, userID, expenseID string) error {
	_, err := s.q().ExecContext(ctx,
		"DELETE FROM ledger_entries WHERE user_id = ? AND expense_id = ?",
		userID, expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense ledger entries: %w", err)
	}
	return nil
}

// DeleteEntriesForIncome hard-deletes all entries linked to an income.
func (s *SQLiteStore) DeleteEntriesForIncome(ctx context.Context, userID, incomeID string) error {
	_, err := s.q().ExecContext(ctx,
		"DELETE FROM ledger_entries WHERE user_id = ? AND income_id = ?",
		userID, incomeID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete income ledger entries: %w", err)
	}
	return nil
}

// SetEntriesArchivedForPerson archives or un-archives every entry for a
// person. Used by the No-Track transition and by restore.
func (s *SQLiteStore) SetEntriesArchivedForPerson(ctx context.Context, userID, personID string, archived bool) error {
	_, err := s.q().ExecContext(ctx,
		"UPDATE ledger_entries SET archived = ? WHERE user_id = ? AND person_id = ?",
		archived, userID, personID,
	)
	if err != nil {
		return fmt.Errorf("failed to set ledger entries archived: %w", err)
	}
	return nil
}

// PersonBalance sums the person's non-archived entry amounts. The sum runs
// in Go over the stored TEXT amounts so no float arithmetic is involved.
func (s *SQLiteStore) PersonBalance(ctx context.Context, userID, personID string) (decimal.Decimal, error) {
	rows, err := s.q().QueryContext(ctx,
		"SELECT amount FROM ledger_entries WHERE user_id = ? AND person_id = ? AND archived = 0",
		userID, personID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query balance: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid stored amount %q: %w", amount, err)
		}
		total = total.Add(d)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate amounts: %w", err)
	}
	return total, nil
}
