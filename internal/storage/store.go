// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kharcha/internal/models"
)

// ErrNotFound is returned when a requested record does not exist for the
// given user. Callers that treat "missing" as a valid no-op (for example
// person lookup during reconciliation) check for it with errors.Is.
var ErrNotFound = errors.New("not found")

// ListPeopleOptions filters and shapes a people listing.
type ListPeopleOptions struct {
	// TrackedOnly restricts the listing to non-archived people with
	// preference Track that have at least one active ledger entry. This is
	// the default People page; the "show untracked" page sets it false.
	TrackedOnly bool

	// Search, if non-empty, keeps only people whose name contains the
	// string (case-insensitive).
	Search string
}

// PersonSummary is a person with the aggregates the list views need.
type PersonSummary struct {
	Person models.Person

	// Balance is the sum of the person's non-archived entry amounts.
	Balance decimal.Decimal

	// LastActivity is the Unix timestamp of the most recent active entry,
	// or 0 if the person has none.
	LastActivity int64
}

// ListEntriesOptions shapes a ledger listing for one person.
type ListEntriesOptions struct {
	// IncludeArchived also returns archived rows.
	IncludeArchived bool

	// Limit and Offset paginate the listing (newest first). Limit <= 0
	// means no limit.
	Limit  int
	Offset int
}

// Store defines the interface for all persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service or ledger layers.
type Store interface {
	// WithTx runs fn against a Store view scoped to a single transaction
	// and commits if fn returns nil, rolling back otherwise. Reconciliation
	// wraps its delete-then-rebuild sequence (and the balance reads the
	// guards depend on) in one call so a partial rebuild can never be
	// observed or persisted. Calls nest: inside a transaction, WithTx runs
	// fn in the same transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// People. Names passed to GetPersonByName are matched
	// case-insensitively against the stored (normalized) name.
	CreatePerson(ctx context.Context, person *models.Person) error
	GetPerson(ctx context.Context, userID, id string) (*models.Person, error)
	GetPersonByName(ctx context.Context, userID, name string) (*models.Person, error)
	UpdatePerson(ctx context.Context, person *models.Person) error
	// DeletePerson hard-deletes the person and all of their ledger entries.
	DeletePerson(ctx context.Context, userID, id string) error
	ListPeople(ctx context.Context, userID string, opts ListPeopleOptions) ([]PersonSummary, error)

	// Expenses. Deleting an expense cascades to its linked ledger entries.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, userID, id string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error
	ListExpenses(ctx context.Context, userID string, limit, offset int) ([]models.Expense, error)

	// Incomes. Deleting an income cascades to its linked ledger entries.
	CreateIncome(ctx context.Context, income *models.Income) error
	GetIncome(ctx context.Context, userID, id string) (*models.Income, error)
	UpdateIncome(ctx context.Context, income *models.Income) error
	DeleteIncome(ctx context.Context, userID, id string) error
	ListIncomes(ctx context.Context, userID string, limit, offset int) ([]models.Income, error)

	// Ledger entries.
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntriesForPerson(ctx context.Context, userID, personID string, opts ListEntriesOptions) ([]models.LedgerEntry, error)
	DeleteEntriesForExpense(ctx context.Context, userID, expenseID string) error
	DeleteEntriesForIncome(ctx context.Context, userID, incomeID string) error
	SetEntriesArchivedForPerson(ctx context.Context, userID, personID string, archived bool) error
	// PersonBalance sums the person's non-archived entry amounts.
	PersonBalance(ctx context.Context, userID, personID string) (decimal.Decimal, error)

	// Close releases any resources held by the store.
	Close() error
}
