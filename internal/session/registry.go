// Package session owns the set of open satchel grids, one per user, and the
// boundary between live grids and durable pages.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Elock-exe/satchel/internal/catalog"
	"github.com/Elock-exe/satchel/internal/item"
	"github.com/Elock-exe/satchel/internal/store"
)

// ErrNotFound is returned by Get when the user has no open session.
var ErrNotFound = errors.New("no open session")

// UI-reserved slot contents. These exist only inside live grids; the save
// path reads usable slots only, so they can never reach the store.
var (
	Filler = item.Stack{ID: "ui:filler", Count: 1}
	Nav    = item.Stack{ID: "ui:nav", Count: 1}
)

// Session binds a user to one open, live grid view of one tier and page.
// Grid has the tier's full grid length; indices at and past UsableSlots are
// UI-reserved.
type Session struct {
	User uuid.UUID
	Tier catalog.Tier
	Page int
	Grid []item.Stack
}

// Title is the host-facing heading for the open grid.
func (s *Session) Title() string {
	return fmt.Sprintf("%s - page %d/%d", s.Tier.Label, s.Page+1, s.Tier.PageCount)
}

// Registry tracks open sessions and mediates every mutation path into the
// store. At most one session exists per user.
type Registry struct {
	mu       sync.Mutex
	store    *store.Store
	sessions map[uuid.UUID]*Session
}

func NewRegistry(st *store.Store) *Registry {
	return &Registry{
		store:    st,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open materializes a live grid for the user from the stored page, clamping
// page into the tier's range. If the user already has an open session it is
// saved and closed first; a live grid is never silently dropped. The
// returned error only ever reports a persistence failure from that forced
// save; the new session is open either way.
func (r *Registry) Open(user uuid.UUID, tier catalog.Tier, page int) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var saveErr error
	if _, exists := r.sessions[user]; exists {
		saveErr = r.saveLocked(user)
		delete(r.sessions, user)
	}

	if page < 0 {
		page = 0
	}
	if page >= tier.PageCount {
		page = tier.PageCount - 1
	}

	grid := make([]item.Stack, tier.GridSize)
	stored := r.store.GetPage(user, tier, page)
	for i := 0; i < tier.UsableSlots && i < len(stored); i++ {
		grid[i] = stored[i]
	}
	for i := tier.UsableSlots; i < tier.GridSize; i++ {
		grid[i] = Filler
	}
	if tier.PageCount > 1 {
		grid[tier.NavSlot()] = Nav
	}

	sess := &Session{User: user, Tier: tier, Page: page, Grid: grid}
	r.sessions[user] = sess
	return sess, saveErr
}

// Save writes the session's usable slots back to the store and flushes it.
// No-op when the user has no session. A returned error is a persistence
// write failure: the page is already captured in memory and the caller
// should log and carry on.
func (r *Registry) Save(user uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(user)
}

func (r *Registry) saveLocked(user uuid.UUID) error {
	sess, ok := r.sessions[user]
	if !ok {
		return nil
	}
	page := make(store.Page, sess.Tier.UsableSlots)
	for i := 0; i < sess.Tier.UsableSlots; i++ {
		page[i] = sess.Grid[i].Canon()
	}
	r.store.SetPage(user, sess.Tier, sess.Page, page)
	return r.store.Persist()
}

// Close discards the session record. It does not save; callers wanting
// persistence call Save first.
func (r *Registry) Close(user uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, user)
}

// Has reports whether the user has an open session.
func (r *Registry) Has(user uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[user]
	return ok
}

// Get returns the user's open session, or ErrNotFound.
func (r *Registry) Get(user uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[user]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}
