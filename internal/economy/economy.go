// Package economy provides the currency service that gates satchel
// upgrades: a boundary interface plus a sqlite-backed wallet ledger.
package economy

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// Service is the currency boundary. Amounts are whole coins as int64; a nil
// Service means the economy is absent and upgrades are disabled.
type Service interface {
	// Has reports whether the user can afford amount.
	Has(ctx context.Context, user uuid.UUID, amount int64) (bool, error)
	// Withdraw atomically debits amount if the balance covers it and
	// reports whether the debit happened.
	Withdraw(ctx context.Context, user uuid.UUID, amount int64) (bool, error)
	// Balance returns the user's current balance.
	Balance(ctx context.Context, user uuid.UUID) (int64, error)
	// Format renders an amount as user-facing text.
	Format(amount int64) string
}

// FormatAmount renders a coin amount with a currency symbol and thousands
// grouping, e.g. "$150,000".
func FormatAmount(symbol string, amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	s := symbol + string(out)
	if neg {
		return "-" + s
	}
	return s
}
