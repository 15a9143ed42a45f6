package economy

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, starting int64) *Ledger {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "wallets.db")
	migrations, err := filepath.Abs("migrations")
	require.NoError(t, err)

	db, err := OpenDB(dbPath, migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewLedger(db, "$", starting)
}

func TestWalletLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	l := newLedger(t, 200_000)
	user := uuid.New()

	balance, err := l.Balance(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(200_000), balance, "lazy wallet gets the starting balance")

	ok, err := l.Has(ctx, user, 150_000)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Withdraw(ctx, user, 150_000)
	require.NoError(t, err)
	require.True(t, ok)

	balance, err = l.Balance(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(50_000), balance)
}

func TestWithdrawGuardsBalance(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	l := newLedger(t, 100)
	user := uuid.New()

	ok, err := l.Withdraw(ctx, user, 101)
	require.NoError(t, err)
	require.False(t, ok, "overdraw is refused, not an error")

	balance, err := l.Balance(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	_, err = l.Withdraw(ctx, user, -5)
	require.Error(t, err)
}

func TestDeposit(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	l := newLedger(t, 0)
	user := uuid.New()

	require.NoError(t, l.Deposit(ctx, user, 42))
	balance, err := l.Balance(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(42), balance)

	require.Error(t, l.Deposit(ctx, user, -1))
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int64
		want string
	}{
		{0, "$0"},
		{5, "$5"},
		{999, "$999"},
		{1_000, "$1,000"},
		{150_000, "$150,000"},
		{1_234_567, "$1,234,567"},
		{-300_000, "-$300,000"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatAmount("$", tc.in))
	}
}
