// Package mediator classifies raw interaction events from the display host
// against the active session and decides whether they may proceed. Every
// known duplication and nesting vector is cut off here, before the live grid
// mutates.
package mediator

import (
	"log"

	"github.com/google/uuid"

	"github.com/Elock-exe/satchel/internal/catalog"
	"github.com/Elock-exe/satchel/internal/item"
	"github.com/Elock-exe/satchel/internal/session"
	"github.com/Elock-exe/satchel/internal/store"
)

// Zone says which container an event touches.
type Zone int

const (
	// ZoneGrid is the open satchel grid.
	ZoneGrid Zone = iota
	// ZoneInventory is the user's personal inventory.
	ZoneInventory
)

// ClickKind is the semantic kind of a click interaction.
type ClickKind int

const (
	ClickPrimary ClickKind = iota
	ClickSecondary
	ClickDouble
	ClickShiftPrimary
	ClickShiftSecondary
)

func (k ClickKind) shift() bool {
	return k == ClickShiftPrimary || k == ClickShiftSecondary
}

// Click is one click interaction delivered by the host.
type Click struct {
	User    uuid.UUID
	Zone    Zone
	Slot    int
	Kind    ClickKind
	Cursor  item.Stack // payload held on the cursor
	Current item.Stack // payload in the clicked slot
}

// Drag is a multi-slot placement. RawSlots below the grid size address the
// open grid; higher raw slots address the personal inventory.
type Drag struct {
	User     uuid.UUID
	RawSlots []int
	Payload  item.Stack
}

// Use is the user activating a held item.
type Use struct {
	User uuid.UUID
	Held item.Stack
}

// Decision is the mediator's verdict on an event. After, when set, must run
// strictly after the triggering event finishes processing; the host
// schedules it, never calls it inline.
type Decision struct {
	Allow  bool
	Notice string
	After  func()
}

var allowed = Decision{Allow: true}

func cancelled() Decision {
	return Decision{}
}

func cancelledNotice(msg string) Decision {
	return Decision{Notice: msg}
}

// NoticeNoNesting is shown whenever a satchel would end up inside a satchel.
const NoticeNoNesting = "you can't put a satchel inside a satchel"

// Mediator applies anti-duplication and navigation policy.
type Mediator struct {
	registry *session.Registry
	catalog  *catalog.Catalog
	store    *store.Store
	warnf    func(format string, args ...any)
}

func New(reg *session.Registry, cat *catalog.Catalog, st *store.Store) *Mediator {
	return &Mediator{
		registry: reg,
		catalog:  cat,
		store:    st,
		warnf:    log.Printf,
	}
}

// SetWarnf overrides where persistence warnings go. Tests use this.
func (m *Mediator) SetWarnf(fn func(format string, args ...any)) {
	m.warnf = fn
}

// HandleUse reacts to the user activating a held item. Held satchels open
// their grid at page 0; everything else passes through.
func (m *Mediator) HandleUse(u Use) Decision {
	tier, ok := m.catalog.Classify(u.Held)
	if !ok {
		return allowed
	}
	if _, err := m.registry.Open(u.User, tier, 0); err != nil {
		m.warnf("warn: save before reopen: %v", err)
	}
	return cancelled()
}

// HandleClick applies the click decision tables. Events from users with no
// open session are none of the mediator's business.
func (m *Mediator) HandleClick(c Click) Decision {
	sess, err := m.registry.Get(c.User)
	if err != nil {
		return allowed
	}

	// double activation sweeps matching items onto the cursor from both
	// containers at once; there is no safe variant of it here
	if c.Kind == ClickDouble {
		return cancelled()
	}

	if c.Zone == ZoneInventory {
		if c.Kind.shift() {
			if _, isSatchel := m.catalog.Classify(c.Current); isSatchel {
				return cancelledNotice(NoticeNoNesting)
			}
		}
		return allowed
	}

	tier := sess.Tier
	if tier.IsReservedSlot(c.Slot) {
		d := cancelled()
		if tier.IsNavSlot(c.Slot) && tier.PageCount > 1 {
			d.After = m.navigateAfter(c.User, sess, c.Kind)
		}
		return d
	}

	if _, isSatchel := m.catalog.Classify(c.Cursor); isSatchel {
		return cancelledNotice(NoticeNoNesting)
	}

	// shift transfers out of the grid race the close-time save; all of
	// them are blocked, satchel or not. That also covers the slot-holds-a-
	// satchel sub-case, which is unreachable by construction anyway.
	if c.Kind.shift() {
		return cancelled()
	}

	return allowed
}

// navigateAfter saves the current page now and returns the deferred re-open
// at the adjacent page. Re-opening must not happen inside the triggering
// event: the host is still delivering against the old grid.
func (m *Mediator) navigateAfter(user uuid.UUID, sess *session.Session, kind ClickKind) func() {
	var target int
	switch kind {
	case ClickPrimary:
		target = (sess.Page + 1) % sess.Tier.PageCount
	case ClickSecondary:
		target = (sess.Page - 1 + sess.Tier.PageCount) % sess.Tier.PageCount
	default:
		return nil
	}
	if err := m.registry.Save(user); err != nil {
		m.warnf("warn: save before page flip: %v", err)
	}
	tier := sess.Tier
	return func() {
		m.registry.Close(user)
		if _, err := m.registry.Open(user, tier, target); err != nil {
			m.warnf("warn: save before reopen: %v", err)
		}
	}
}

// HandleDrag cancels any drag that touches a reserved grid slot, and any
// drag that would place a satchel into the grid.
func (m *Mediator) HandleDrag(d Drag) Decision {
	sess, err := m.registry.Get(d.User)
	if err != nil {
		return allowed
	}
	tier := sess.Tier

	touchesGrid := false
	for _, raw := range d.RawSlots {
		if raw >= tier.GridSize {
			continue
		}
		touchesGrid = true
		if tier.IsReservedSlot(raw) {
			return cancelled()
		}
	}
	if touchesGrid {
		if _, isSatchel := m.catalog.Classify(d.Payload); isSatchel {
			return cancelledNotice(NoticeNoNesting)
		}
	}
	return allowed
}

// HandleClose saves and closes the user's session, however the close was
// initiated.
func (m *Mediator) HandleClose(user uuid.UUID) {
	if !m.registry.Has(user) {
		return
	}
	if err := m.registry.Save(user); err != nil {
		m.warnf("warn: save on close: %v", err)
	}
	m.registry.Close(user)
}

// HandleDisconnect saves and closes any open session, then flushes the
// whole store regardless of session presence.
func (m *Mediator) HandleDisconnect(user uuid.UUID) {
	m.HandleClose(user)
	if err := m.store.Persist(); err != nil {
		m.warnf("warn: persist on disconnect: %v", err)
	}
}

// HandleShutdown flushes the whole store. Open sessions are saved first so a
// host teardown loses nothing.
func (m *Mediator) HandleShutdown(users []uuid.UUID) {
	for _, user := range users {
		m.HandleClose(user)
	}
	if err := m.store.Persist(); err != nil {
		m.warnf("warn: persist on shutdown: %v", err)
	}
}
