package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Elock-exe/satchel/internal/catalog"
	"github.com/Elock-exe/satchel/internal/config"
	"github.com/Elock-exe/satchel/internal/economy"
	"github.com/Elock-exe/satchel/internal/mediator"
	"github.com/Elock-exe/satchel/internal/session"
	"github.com/Elock-exe/satchel/internal/store"
	"github.com/Elock-exe/satchel/internal/tui"
	"github.com/Elock-exe/satchel/internal/upgrade"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cat, err := catalog.Load(cfg.Storage.CatalogPath)
	if err != nil {
		log.Fatalf("tier catalog: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}

	st := store.New(cfg.Storage.Path, cat)
	if err := st.Load(); err != nil {
		log.Fatalf("load satchel store: %v", err)
	}

	// the economy is optional; without it the upgrade command stays off
	var eco economy.Service
	if cfg.Economy.Enabled {
		if ledger, err := openLedger(cfg); err != nil {
			log.Printf("warn: economy unavailable, upgrades disabled: %v", err)
		} else {
			eco = ledger
		}
	} else {
		log.Printf("warn: economy disabled by config, upgrades disabled")
	}

	registry := session.NewRegistry(st)
	med := mediator.New(registry, cat, st)
	upgrader := upgrade.New(cat, st, eco)

	user := resolveUser(cfg)

	app := tui.New(ctx, user, cat, registry, med, upgrader, eco)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}

	// the host quit path already saved open sessions; flush once more on
	// the way out
	if err := st.Persist(); err != nil {
		log.Printf("warn: final persist: %v", err)
	}
}

func openLedger(cfg config.Config) (*economy.Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Economy.DatabasePath), 0o755); err != nil {
		return nil, err
	}
	db, err := economy.OpenDB(cfg.Economy.DatabasePath, cfg.Economy.MigrationsPath)
	if err != nil {
		return nil, err
	}
	return economy.NewLedger(db, cfg.Economy.CurrencySymbol, cfg.Economy.StartingBalance), nil
}

// resolveUser pins a stable identity for the local user, generating one on
// first run.
func resolveUser(cfg config.Config) uuid.UUID {
	if cfg.UI.UserID != "" {
		if user, err := uuid.Parse(cfg.UI.UserID); err == nil {
			return user
		}
		log.Printf("warn: malformed ui.user_id %q, generating a new one", cfg.UI.UserID)
	}
	user := uuid.New()
	cfg.UI.UserID = user.String()
	if err := config.Save(cfg); err != nil {
		log.Printf("warn: could not pin user id: %v", err)
	}
	return user
}
