package models

import "github.com/shopspring/decimal"

// Income source classifications. Only loans and loan repayments drive the
// person ledger; everything else is plain income.
const (
	IncomeSalary        = "salary_wages"
	IncomeBusiness      = "business"
	IncomeInvestment    = "investment"
	IncomeRefund        = "refund"
	IncomeGift          = "gift_support"
	IncomeLoan          = "loan"
	IncomeLoanRepayment = "loan_repayment"
	IncomeOther         = "other"
)

// Income represents money received by the user.
type Income struct {
	// ID is the unique identifier for the income (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// Date is the income date in YYYY-MM-DD form.
	Date string

	// Amount is the income amount. Must be positive to affect the ledger.
	Amount decimal.Decimal

	// Source is one of the Income* constants.
	Source string

	// PaymentType is one of the Payment* constants.
	PaymentType string

	// Person is the normalized name of who gave the money (optional).
	Person string

	// Description is an optional free-text note.
	Description string

	// AppliedToPeople is set once the user has explicitly applied this
	// income to the person ledger (consent given).
	AppliedToPeople bool

	// CreatedAt is the Unix timestamp when the income was recorded.
	CreatedAt int64
}

// Normalize cleans the linked person name.
func (i *Income) Normalize() {
	i.Person = NormalizeName(i.Person)
}
