// Package upgrade migrates a user's satchel to the next tier as one logical
// transaction: classify, check funds, withdraw, copy data, swap the item.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Elock-exe/satchel/internal/catalog"
	"github.com/Elock-exe/satchel/internal/economy"
	"github.com/Elock-exe/satchel/internal/item"
	"github.com/Elock-exe/satchel/internal/store"
)

var (
	// ErrNotAContainer means the held item is not a satchel of any tier.
	ErrNotAContainer = errors.New("held item is not a satchel")
	// ErrAlreadyMaxTier means there is no next tier to upgrade into.
	ErrAlreadyMaxTier = errors.New("satchel is already at the highest tier")
	// ErrEconomyUnavailable means no currency service is wired in.
	ErrEconomyUnavailable = errors.New("economy service unavailable")
	// ErrInsufficientFunds means the balance does not cover the cost.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrWithdrawalFailed means the debit itself failed; no data was touched.
	ErrWithdrawalFailed = errors.New("withdrawal failed")
)

// Result reports a completed upgrade. Item is the replacement for the held
// satchel; swapping it into the user's hand is the host's job.
type Result struct {
	From, To catalog.Tier
	Cost     int64
	Item     item.Stack
	Message  string
}

// Orchestrator coordinates the currency service, the catalog, and the store.
type Orchestrator struct {
	catalog *catalog.Catalog
	store   *store.Store
	economy economy.Service
	warnf   func(format string, args ...any)
}

// New builds an orchestrator. A nil economy is allowed; every Upgrade call
// then fails with ErrEconomyUnavailable.
func New(cat *catalog.Catalog, st *store.Store, eco economy.Service) *Orchestrator {
	return &Orchestrator{catalog: cat, store: st, economy: eco, warnf: log.Printf}
}

// SetWarnf overrides where persistence warnings go. Tests use this.
func (o *Orchestrator) SetWarnf(fn func(format string, args ...any)) {
	o.warnf = fn
}

// Enabled reports whether upgrades are possible at all.
func (o *Orchestrator) Enabled() bool {
	return o.economy != nil
}

// Upgrade runs the migration for the user's held item. Checks run strictly
// before the withdrawal, and the withdrawal strictly before any data
// mutation, so funds and data never diverge. The copy itself is
// overwrite-by-slot and safe to re-run; a fresh Upgrade call performs a
// fresh purchase.
func (o *Orchestrator) Upgrade(ctx context.Context, user uuid.UUID, held item.Stack) (Result, error) {
	tier, ok := o.catalog.Classify(held)
	if !ok {
		return Result{}, ErrNotAContainer
	}
	next, ok := o.catalog.Next(tier)
	if !ok {
		return Result{}, ErrAlreadyMaxTier
	}
	if o.economy == nil {
		return Result{}, ErrEconomyUnavailable
	}

	cost := tier.UpgradeCost
	enough, err := o.economy.Has(ctx, user, cost)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrEconomyUnavailable, err)
	}
	if !enough {
		balance, berr := o.economy.Balance(ctx, user)
		if berr != nil {
			return Result{}, fmt.Errorf("%w: the upgrade costs %s", ErrInsufficientFunds, o.economy.Format(cost))
		}
		return Result{}, fmt.Errorf("%w: the upgrade costs %s, you have %s",
			ErrInsufficientFunds, o.economy.Format(cost), o.economy.Format(balance))
	}

	withdrawn, err := o.economy.Withdraw(ctx, user, cost)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrWithdrawalFailed, err)
	}
	if !withdrawn {
		return Result{}, ErrWithdrawalFailed
	}

	o.store.CopyTierData(user, tier, next)
	if err := o.store.Persist(); err != nil {
		o.warnf("warn: persist after upgrade: %v", err)
	}

	return Result{
		From: tier,
		To:   next,
		Cost: cost,
		Item: o.catalog.Instantiate(next),
		Message: fmt.Sprintf("your satchel was upgraded to %s for %s",
			next.Label, o.economy.Format(cost)),
	}, nil
}
