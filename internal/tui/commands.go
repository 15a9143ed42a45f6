package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Elock-exe/satchel/internal/economy"
	"github.com/Elock-exe/satchel/internal/mediator"
)

var commandNames = []string{"upgrade", "balance", "deposit", "open", "quit", "help"}

func (a *App) updateCommand(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.commandOpen = false
		a.commandInput = ""
		return a, nil
	case "enter":
		a.commandOpen = false
		input := strings.TrimSpace(a.commandInput)
		a.commandInput = ""
		return a.execute(input)
	case "backspace":
		if len(a.commandInput) > 0 {
			a.commandInput = a.commandInput[:len(a.commandInput)-1]
		}
		return a, nil
	default:
		if m.Type == tea.KeyRunes {
			a.commandInput += string(m.Runes)
		} else if m.Type == tea.KeySpace {
			a.commandInput += " "
		}
		return a, nil
	}
}

func (a *App) execute(input string) (tea.Model, tea.Cmd) {
	if input == "" {
		return a, nil
	}
	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]

	switch name {
	case "upgrade":
		a.runUpgrade()
	case "balance":
		a.runBalance()
	case "deposit":
		a.runDeposit(args)
	case "open":
		a.runOpen(args)
	case "help":
		a.status = "commands: " + strings.Join(commandNames, ", ")
	case "quit":
		a.mediator.HandleDisconnect(a.user)
		return a, tea.Quit
	default:
		a.status = unknownCommand(name)
	}
	return a, nil
}

// unknownCommand suggests the closest command name when the typo is near
// enough to be meant.
func unknownCommand(name string) string {
	best := ""
	bestDist := len(name) + 1
	for _, candidate := range commandNames {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if best != "" && bestDist <= 2 {
		return fmt.Sprintf("unknown command %q (did you mean %q?)", name, best)
	}
	return fmt.Sprintf("unknown command %q", name)
}

// runUpgrade upgrades the held satchel, or the one under the cursor.
func (a *App) runUpgrade() {
	if a.upgrader == nil || !a.upgrader.Enabled() {
		a.status = "the economy is unavailable; upgrades are disabled"
		return
	}
	held := a.held
	slot := -1
	if held.IsEmpty() && a.pane == mediator.ZoneInventory {
		slot = a.cursor
		held = a.inventory[slot]
	}
	if held.IsEmpty() {
		a.status = "hold a satchel (or put the cursor on one) to upgrade it"
		return
	}
	res, err := a.upgrader.Upgrade(a.ctx, a.user, held)
	if err != nil {
		a.status = err.Error()
		return
	}
	if slot >= 0 {
		a.inventory[slot] = res.Item
	} else {
		a.held = res.Item
	}
	a.status = res.Message
}

func (a *App) runBalance() {
	if a.economy == nil {
		a.status = "the economy is unavailable"
		return
	}
	balance, err := a.economy.Balance(a.ctx, a.user)
	if err != nil {
		a.status = "balance: " + err.Error()
		return
	}
	a.status = "balance: " + a.economy.Format(balance)
}

func (a *App) runDeposit(args []string) {
	ledger, ok := a.economy.(*economy.Ledger)
	if !ok {
		a.status = "deposits need the wallet ledger"
		return
	}
	if len(args) != 1 {
		a.status = "usage: deposit <amount>"
		return
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || amount <= 0 {
		a.status = "usage: deposit <amount>"
		return
	}
	if err := ledger.Deposit(a.ctx, a.user, amount); err != nil {
		a.status = "deposit: " + err.Error()
		return
	}
	a.runBalance()
}

// runOpen opens a tier's grid directly, bypassing the held item. Handy for
// peeking at another tier's stored pages.
func (a *App) runOpen(args []string) {
	if len(args) != 1 {
		a.status = "usage: open <tier level>"
		return
	}
	level, err := strconv.Atoi(args[0])
	if err != nil {
		a.status = "usage: open <tier level>"
		return
	}
	tier, ok := a.catalog.Describe(level)
	if !ok {
		a.status = fmt.Sprintf("no tier %d", level)
		return
	}
	if _, err := a.registry.Open(a.user, tier, 0); err != nil {
		a.status = "warn: " + err.Error()
	}
	a.pane = mediator.ZoneGrid
	a.cursor = 0
	if sess, gerr := a.registry.Get(a.user); gerr == nil {
		a.status = "opened " + sess.Title()
	}
}
