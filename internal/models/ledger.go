package models

import "github.com/shopspring/decimal"

// LedgerSource identifies what kind of record produced a ledger entry.
type LedgerSource string

const (
	SourceExpense LedgerSource = "expense"
	SourceIncome  LedgerSource = "income"
	SourceManual  LedgerSource = "manual"
)

// LedgerEntry is a single change in balance with a person.
//
// Amount is signed: positive increases what the person owes the user,
// negative increases what the user owes the person.
//
// An entry may be linked to one Expense OR one Income (never both), or be a
// purely manual adjustment. Linked entries are derived data: they are rebuilt
// every time the originating record is saved and hard-deleted when it is
// deleted. At most one active set of entries exists per originating record.
type LedgerEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// PersonID is the person whose balance this entry adjusts.
	PersonID string

	// Amount is the signed balance change.
	Amount decimal.Decimal

	// Source is the kind of record that produced this entry.
	Source LedgerSource

	// ExpenseID links to the originating expense, if Source is expense.
	ExpenseID string

	// IncomeID links to the originating income, if Source is income.
	IncomeID string

	// Note is a short human-readable description ("Borrowed: Groceries").
	Note string

	// Archived excludes the entry from active balance sums while keeping
	// the row. Set when the person's preference moves to NoTrack.
	Archived bool

	// CreatedAt is the Unix timestamp when the entry was created.
	CreatedAt int64
}
