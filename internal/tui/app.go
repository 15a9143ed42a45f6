// Package tui is the interactive host for the satchel engine: it renders the
// open grid and the personal inventory, translates keystrokes into
// interaction events, and defers to the mediator for every decision. All
// invariants live in the engine packages; this is glue.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Elock-exe/satchel/internal/catalog"
	"github.com/Elock-exe/satchel/internal/economy"
	"github.com/Elock-exe/satchel/internal/item"
	"github.com/Elock-exe/satchel/internal/mediator"
	"github.com/Elock-exe/satchel/internal/session"
	"github.com/Elock-exe/satchel/internal/upgrade"
)

// inventorySize is the personal inventory of the local user.
const inventorySize = 36

// App ties the engine to a terminal.
type App struct {
	ctx      context.Context
	user     uuid.UUID
	catalog  *catalog.Catalog
	registry *session.Registry
	mediator *mediator.Mediator
	upgrader *upgrade.Orchestrator
	economy  economy.Service

	inventory []item.Stack
	cursor    int           // focused slot within the active pane
	pane      mediator.Zone // which pane the cursor lives in
	held      item.Stack    // payload picked up on the cursor

	dragging  bool
	dragSlots []int

	commandOpen  bool
	commandInput string

	status string
	width  int
	height int
	keys   keyMap
}

// deferredMsg carries a mediator-scheduled action to run after the
// triggering event has fully completed.
type deferredMsg struct {
	fn func()
}

func New(ctx context.Context, user uuid.UUID, cat *catalog.Catalog, reg *session.Registry, med *mediator.Mediator, up *upgrade.Orchestrator, eco economy.Service) *App {
	a := &App{
		ctx:       ctx,
		user:      user,
		catalog:   cat,
		registry:  reg,
		mediator:  med,
		upgrader:  up,
		economy:   eco,
		inventory: make([]item.Stack, inventorySize),
		pane:      mediator.ZoneInventory,
		keys:      newKeyMap(),
		status:    "welcome; put the cursor on your satchel and press u",
	}
	a.seedInventory()
	return a
}

// seedInventory gives the local user a starter satchel and some goods to
// shuffle around. Purely host-side demo state.
func (a *App) seedInventory() {
	if tier, ok := a.catalog.Describe(1); ok {
		a.inventory[0] = a.catalog.Instantiate(tier)
	}
	a.inventory[1] = item.Stack{ID: "stone", Count: 64}
	a.inventory[2] = item.Stack{ID: "oak_log", Count: 32}
	a.inventory[3] = item.Stack{ID: "diamond", Count: 3}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case deferredMsg:
		// runs strictly after the event that scheduled it
		m.fn()
		a.clampCursor()
		return a, nil
	case tea.KeyMsg:
		if a.commandOpen {
			return a.updateCommand(m)
		}
		return a.handleKey(m)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		a.mediator.HandleDisconnect(a.user)
		return a, tea.Quit

	case key.Matches(m, a.keys.Command):
		a.commandOpen = true
		a.commandInput = ""
		return a, nil

	case key.Matches(m, a.keys.Move):
		a.moveCursor(m.String())
		return a, nil

	case key.Matches(m, a.keys.SwitchPen):
		if a.registry.Has(a.user) {
			if a.pane == mediator.ZoneGrid {
				a.pane = mediator.ZoneInventory
			} else {
				a.pane = mediator.ZoneGrid
			}
			a.cursor = 0
		}
		return a, nil

	case key.Matches(m, a.keys.Use):
		return a, a.useHeld()

	case key.Matches(m, a.keys.CloseGrid):
		if a.dragging {
			a.dragging = false
			a.dragSlots = nil
			a.status = "drag cancelled"
			return a, nil
		}
		if a.registry.Has(a.user) {
			a.mediator.HandleClose(a.user)
			a.pane = mediator.ZoneInventory
			a.cursor = 0
			a.status = "satchel closed"
		}
		return a, nil

	case key.Matches(m, a.keys.Primary):
		if a.dragging {
			return a, a.commitDrag()
		}
		return a, a.click(mediator.ClickPrimary)

	case key.Matches(m, a.keys.Secondary):
		return a, a.click(mediator.ClickSecondary)

	case key.Matches(m, a.keys.ShiftMove):
		return a, a.click(mediator.ClickShiftPrimary)

	case key.Matches(m, a.keys.Double):
		return a, a.click(mediator.ClickDouble)

	case key.Matches(m, a.keys.Drag):
		a.toggleDrag()
		return a, nil
	}
	return a, nil
}

// click builds the interaction event for the focused slot, asks the
// mediator, and applies the grid mechanics only when allowed.
func (a *App) click(kind mediator.ClickKind) tea.Cmd {
	current := a.slotAt(a.pane, a.cursor)
	ev := mediator.Click{
		User:    a.user,
		Zone:    a.pane,
		Slot:    a.cursor,
		Kind:    kind,
		Cursor:  a.held,
		Current: current,
	}
	d := a.mediator.HandleClick(ev)
	if !d.Allow {
		if d.Notice != "" {
			a.status = d.Notice
		}
		if d.After != nil {
			fn := d.After
			return func() tea.Msg { return deferredMsg{fn} }
		}
		return nil
	}
	a.apply(kind)
	return nil
}

// apply performs the slot mechanics for an allowed click.
func (a *App) apply(kind mediator.ClickKind) {
	switch kind {
	case mediator.ClickPrimary:
		cur := a.slotAt(a.pane, a.cursor)
		if a.held.IsEmpty() {
			a.held = cur
			a.setSlot(a.pane, a.cursor, item.Empty)
		} else if cur.IsEmpty() {
			a.setSlot(a.pane, a.cursor, a.held)
			a.held = item.Empty
		} else if cur.ID == a.held.ID && cur.Tag == a.held.Tag {
			merged := cur
			merged.Count += a.held.Count
			a.setSlot(a.pane, a.cursor, merged)
			a.held = item.Empty
		} else {
			a.setSlot(a.pane, a.cursor, a.held)
			a.held = cur
		}

	case mediator.ClickSecondary:
		cur := a.slotAt(a.pane, a.cursor)
		if a.held.IsEmpty() {
			// pick up half, rounded up
			if !cur.IsEmpty() {
				take := (cur.Count + 1) / 2
				rest := cur
				rest.Count -= take
				picked := cur
				picked.Count = take
				a.held = picked
				a.setSlot(a.pane, a.cursor, rest.Canon())
			}
		} else if cur.IsEmpty() || (cur.ID == a.held.ID && cur.Tag == a.held.Tag) {
			// drop a single item
			one := a.held
			one.Count = 1
			if cur.IsEmpty() {
				a.setSlot(a.pane, a.cursor, one)
			} else {
				cur.Count++
				a.setSlot(a.pane, a.cursor, cur)
			}
			a.held.Count--
			a.held = a.held.Canon()
		}

	case mediator.ClickShiftPrimary, mediator.ClickShiftSecondary:
		// only reachable for inventory slots; move the stack into the
		// first free usable grid slot
		sess, err := a.registry.Get(a.user)
		if err != nil {
			return
		}
		cur := a.slotAt(a.pane, a.cursor)
		if cur.IsEmpty() {
			return
		}
		for slot := 0; slot < sess.Tier.UsableSlots; slot++ {
			if sess.Grid[slot].IsEmpty() {
				sess.Grid[slot] = cur
				a.setSlot(a.pane, a.cursor, item.Empty)
				return
			}
		}
		a.status = "satchel is full"
	}
}

// useHeld activates the item under the cursor as the held item.
func (a *App) useHeld() tea.Cmd {
	if a.pane != mediator.ZoneInventory {
		return nil
	}
	heldItem := a.inventory[a.cursor]
	if heldItem.IsEmpty() {
		a.status = "nothing to use here"
		return nil
	}
	d := a.mediator.HandleUse(mediator.Use{User: a.user, Held: heldItem})
	if !d.Allow {
		// the use opened a grid
		a.pane = mediator.ZoneGrid
		a.cursor = 0
		if sess, err := a.registry.Get(a.user); err == nil {
			a.status = "opened " + sess.Title()
		}
	} else {
		a.status = "nothing happens"
	}
	return nil
}

func (a *App) toggleDrag() {
	if !a.registry.Has(a.user) || a.held.IsEmpty() {
		a.status = "pick something up before dragging"
		return
	}
	a.dragging = true
	a.dragSlots = a.dragSlots[:0]
	a.status = "drag: move and press enter over slots, enter on the last one commits"
}

// commitDrag sends the collected raw slots through the mediator and, when
// allowed, spreads one item into each targeted slot.
func (a *App) commitDrag() tea.Cmd {
	raw := a.rawCursor()
	a.dragSlots = append(a.dragSlots, raw)

	sess, err := a.registry.Get(a.user)
	if err != nil {
		a.dragging = false
		return nil
	}
	d := a.mediator.HandleDrag(mediator.Drag{User: a.user, RawSlots: a.dragSlots, Payload: a.held})
	a.dragging = false
	if !d.Allow {
		if d.Notice != "" {
			a.status = d.Notice
		} else {
			a.status = "drag cancelled"
		}
		a.dragSlots = nil
		return nil
	}

	for _, r := range a.dragSlots {
		if a.held.IsEmpty() {
			break
		}
		zone, slot := a.zoneFor(r, sess)
		if !a.slotAt(zone, slot).IsEmpty() {
			continue
		}
		one := a.held
		one.Count = 1
		a.setSlot(zone, slot, one)
		a.held.Count--
		a.held = a.held.Canon()
	}
	a.dragSlots = nil
	return nil
}

// slot plumbing

func (a *App) slotAt(zone mediator.Zone, slot int) item.Stack {
	if zone == mediator.ZoneGrid {
		if sess, err := a.registry.Get(a.user); err == nil && slot < len(sess.Grid) {
			return sess.Grid[slot]
		}
		return item.Empty
	}
	if slot < len(a.inventory) {
		return a.inventory[slot]
	}
	return item.Empty
}

func (a *App) setSlot(zone mediator.Zone, slot int, s item.Stack) {
	if zone == mediator.ZoneGrid {
		if sess, err := a.registry.Get(a.user); err == nil && slot < len(sess.Grid) {
			sess.Grid[slot] = s
		}
		return
	}
	if slot < len(a.inventory) {
		a.inventory[slot] = s
	}
}

// rawCursor flattens the cursor into raw-slot space: grid first, then
// inventory.
func (a *App) rawCursor() int {
	if a.pane == mediator.ZoneGrid {
		return a.cursor
	}
	if sess, err := a.registry.Get(a.user); err == nil {
		return sess.Tier.GridSize + a.cursor
	}
	return a.cursor
}

func (a *App) zoneFor(raw int, sess *session.Session) (mediator.Zone, int) {
	if raw < sess.Tier.GridSize {
		return mediator.ZoneGrid, raw
	}
	return mediator.ZoneInventory, raw - sess.Tier.GridSize
}

func (a *App) paneSize() int {
	if a.pane == mediator.ZoneGrid {
		if sess, err := a.registry.Get(a.user); err == nil {
			return sess.Tier.GridSize
		}
	}
	return len(a.inventory)
}

func (a *App) moveCursor(dir string) {
	size := a.paneSize()
	switch dir {
	case "left":
		a.cursor--
	case "right":
		a.cursor++
	case "up":
		a.cursor -= gridColumns
	case "down":
		a.cursor += gridColumns
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.cursor >= size {
		a.cursor = size - 1
	}
	if a.dragging {
		raw := a.rawCursor()
		for _, r := range a.dragSlots {
			if r == raw {
				return
			}
		}
		a.dragSlots = append(a.dragSlots, raw)
	}
}

func (a *App) clampCursor() {
	if size := a.paneSize(); a.cursor >= size {
		a.cursor = size - 1
	}
}
