package models

import "github.com/shopspring/decimal"

// Payment types shared by expenses and incomes.
const (
	PaymentCash       = "cash"
	PaymentUPI        = "upi"
	PaymentCard       = "card"
	PaymentNetBanking = "netbanking"
	PaymentWallet     = "wallet"
	PaymentOther      = "other"
)

// Expense represents money spent by the user.
//
// Two independent flags link an expense to a person, and both can be set on
// the same expense:
//
//   - IsBorrowed / BorrowedFrom: the money spent was received from a person
//     (the user's debt to them grows)
//   - IsForOthers / PaidFor: the money was spent on a person's behalf
//     (their debt to the user grows, or the user's debt is offset)
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// Category is the normalized category name ("Food", "Loan Repayment").
	// A category containing "repayment" or "settlement" marks the expense
	// as a debt settlement for reconciliation purposes.
	Category string

	// PaymentType is one of the Payment* constants.
	PaymentType string

	// Amount is the expense amount. Must be positive to affect the ledger.
	Amount decimal.Decimal

	// Description is an optional free-text note.
	Description string

	// Date is the expense date in YYYY-MM-DD form.
	Date string

	// IsBorrowed marks the money as received from BorrowedFrom.
	IsBorrowed bool

	// BorrowedFrom is the normalized name of the lender. Empty unless
	// IsBorrowed is set.
	BorrowedFrom string

	// IsForOthers marks the money as spent on PaidFor's behalf.
	IsForOthers bool

	// PaidFor is the normalized name of the beneficiary. Empty unless
	// IsForOthers is set.
	PaidFor string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Normalize cleans the person-name fields the same way at every write site:
// names are normalized, and a name is dropped when its flag is off so stale
// links can't survive a flag toggle.
func (e *Expense) Normalize() {
	e.Category = NormalizeName(e.Category)
	e.BorrowedFrom = NormalizeName(e.BorrowedFrom)
	e.PaidFor = NormalizeName(e.PaidFor)
	if !e.IsBorrowed {
		e.BorrowedFrom = ""
	}
	if !e.IsForOthers {
		e.PaidFor = ""
	}
}
