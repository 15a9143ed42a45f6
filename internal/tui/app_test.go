package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Elock-exe/satchel/internal/catalog"
	"github.com/Elock-exe/satchel/internal/item"
	"github.com/Elock-exe/satchel/internal/mediator"
	"github.com/Elock-exe/satchel/internal/session"
	"github.com/Elock-exe/satchel/internal/store"
	"github.com/Elock-exe/satchel/internal/upgrade"
)

func newApp(t *testing.T) *App {
	t.Helper()
	cat := catalog.Default()
	st := store.New(filepath.Join(t.TempDir(), "satchels.yml"), cat)
	require.NoError(t, st.Load())
	reg := session.NewRegistry(st)
	med := mediator.New(reg, cat, st)
	med.SetWarnf(t.Logf)
	up := upgrade.New(cat, st, nil)
	return New(context.Background(), uuid.New(), cat, reg, med, up, nil)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUseOpensGridAndEscCloses(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	require.False(t, a.registry.Has(a.user))

	// cursor starts on the seeded satchel
	_, _ = a.Update(keyRunes("u"))
	require.True(t, a.registry.Has(a.user))
	require.Equal(t, mediator.ZoneGrid, a.pane)

	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, a.registry.Has(a.user))
}

func TestPickUpAndPlace(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	_, _ = a.Update(keyRunes("u"))
	sess, err := a.registry.Get(a.user)
	require.NoError(t, err)

	// move a stone stack from inventory slot 1 into grid slot 0
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab}) // to inventory
	require.Equal(t, mediator.ZoneInventory, a.pane)
	a.cursor = 1
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter}) // pick up
	require.Equal(t, "stone", a.held.ID)
	require.True(t, a.inventory[1].IsEmpty())

	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab}) // back to grid
	a.cursor = 0
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter}) // place
	require.True(t, a.held.IsEmpty())
	require.Equal(t, "stone", sess.Grid[0].ID)
}

func TestNestingRefusedThroughHost(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	_, _ = a.Update(keyRunes("u"))

	// pick the second satchel up and try to stuff it into the grid
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a.inventory[5] = a.catalog.Instantiate(mustTier(t, a, 2))
	a.cursor = 5
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, catalog.ItemID, a.held.ID)

	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a.cursor = 3
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	sess, err := a.registry.Get(a.user)
	require.NoError(t, err)
	require.True(t, sess.Grid[3].IsEmpty(), "the satchel never lands in the grid")
	require.Equal(t, catalog.ItemID, a.held.ID, "the cursor still holds it")
	require.Equal(t, mediator.NoticeNoNesting, a.status)
}

func TestDoubleActivationBlockedThroughHost(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	_, _ = a.Update(keyRunes("u"))
	sess, err := a.registry.Get(a.user)
	require.NoError(t, err)
	sess.Grid[2] = item.Stack{ID: "diamond", Count: 2}
	before := sess.Grid[2]

	a.pane = mediator.ZoneGrid
	a.cursor = 2
	_, _ = a.Update(keyRunes("D"))
	require.True(t, before.Equal(sess.Grid[2]))
	require.True(t, a.held.IsEmpty())
}

func TestUnknownCommandSuggestion(t *testing.T) {
	t.Parallel()

	require.Contains(t, unknownCommand("upgrdae"), `did you mean "upgrade"`)
	require.Contains(t, unknownCommand("balanc"), `did you mean "balance"`)
	require.NotContains(t, unknownCommand("zzzzzzzz"), "did you mean")
}

func TestCommandModeUpgradeWithoutEconomy(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	_, _ = a.Update(keyRunes(":"))
	require.True(t, a.commandOpen)
	for _, r := range "upgrade" {
		_, _ = a.Update(keyRunes(string(r)))
	}
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, a.commandOpen)
	require.Contains(t, a.status, "disabled")
}

func mustTier(t *testing.T, a *App, level int) catalog.Tier {
	t.Helper()
	tier, ok := a.catalog.Describe(level)
	require.True(t, ok)
	return tier
}
