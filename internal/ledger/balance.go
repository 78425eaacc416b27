package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kharcha/internal/models"
)

// PersonBalance returns the person's net balance: the sum of their
// non-archived ledger entry amounts. Positive means the person owes the
// user, negative means the user owes the person.
func (e *Engine) PersonBalance(ctx context.Context, userID, personID string) (decimal.Decimal, error) {
	return e.store.PersonBalance(ctx, userID, personID)
}

// BalanceLabel renders a balance in natural language using the owning
// user's currency symbol: "Ravi owes you ₹200", "You owe Ravi ₹200", or
// "Settled".
func BalanceLabel(person *models.Person, balance decimal.Decimal, currencySymbol string) string {
	if currencySymbol == "" {
		currencySymbol = models.DefaultCurrencySymbol
	}
	switch balance.Sign() {
	case 1:
		return fmt.Sprintf("%s owes you %s%s", person.Name, currencySymbol, balance.String())
	case -1:
		return fmt.Sprintf("You owe %s %s%s", person.Name, currencySymbol, balance.Abs().String())
	default:
		return "Settled"
	}
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
