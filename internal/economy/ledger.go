package economy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Ledger is the sqlite-backed wallet implementation of Service. Wallets are
// created lazily with a configurable starting balance the first time a user
// is seen.
type Ledger struct {
	db       *sql.DB
	symbol   string
	starting int64
}

func NewLedger(db *sql.DB, symbol string, startingBalance int64) *Ledger {
	return &Ledger{db: db, symbol: symbol, starting: startingBalance}
}

func (l *Ledger) ensure(ctx context.Context, user uuid.UUID) error {
	_, err := l.db.ExecContext(ctx, `
	INSERT INTO wallets(user_id, balance) VALUES (?, ?)
	ON CONFLICT(user_id) DO NOTHING;
	`, user.String(), l.starting)
	if err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}
	return nil
}

func (l *Ledger) Balance(ctx context.Context, user uuid.UUID) (int64, error) {
	if err := l.ensure(ctx, user); err != nil {
		return 0, err
	}
	var balance int64
	err := l.db.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = ?`, user.String()).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

func (l *Ledger) Has(ctx context.Context, user uuid.UUID, amount int64) (bool, error) {
	balance, err := l.Balance(ctx, user)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Withdraw debits in a single guarded statement so a concurrent debit can
// never push the balance negative.
func (l *Ledger) Withdraw(ctx context.Context, user uuid.UUID, amount int64) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("withdraw negative amount %d", amount)
	}
	if err := l.ensure(ctx, user); err != nil {
		return false, err
	}
	res, err := l.db.ExecContext(ctx, `
	UPDATE wallets
	SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP
	WHERE user_id = ? AND balance >= ?;
	`, amount, user.String(), amount)
	if err != nil {
		return false, fmt.Errorf("withdraw: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *Ledger) Deposit(ctx context.Context, user uuid.UUID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("deposit negative amount %d", amount)
	}
	if err := l.ensure(ctx, user); err != nil {
		return err
	}
	_, err := l.db.ExecContext(ctx, `
	UPDATE wallets
	SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP
	WHERE user_id = ?;
	`, amount, user.String())
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	return nil
}

func (l *Ledger) Format(amount int64) string {
	return FormatAmount(l.symbol, amount)
}
