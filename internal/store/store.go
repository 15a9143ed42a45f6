// Package store is the single source of truth for every user's satchel
// contents. It bridges in-memory per-user page data to a human-editable YAML
// document keyed players.<uuid>.tier_<level>.page_<p>.slot_<s>.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/Elock-exe/satchel/internal/catalog"
	"github.com/Elock-exe/satchel/internal/item"
)

// Page is one fixed-length run of slot contents, length = the tier's usable
// slot count.
type Page []item.Stack

// Clone returns an independent copy of the page.
func (p Page) Clone() Page {
	out := make(Page, len(p))
	copy(out, p)
	return out
}

// Store owns all persistent user records. Top-level access is mutex-guarded
// so different users' events may touch it concurrently; the backing file
// assumes a single process.
type Store struct {
	mu    sync.Mutex
	path  string
	cat   *catalog.Catalog
	data  map[uuid.UUID]map[int][]Page // user -> tier level -> pages
	dirty bool
}

// New builds a store over the document at path. Call Load before use.
func New(path string, cat *catalog.Catalog) *Store {
	return &Store{
		path: path,
		cat:  cat,
		data: make(map[uuid.UUID]map[int][]Page),
	}
}

// Load populates in-memory state from the backing document. A missing file
// is an empty store. Malformed users, tiers, pages, or slots are skipped;
// load never aborts over a bad entry.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[uuid.UUID]map[int][]Page)
	s.dirty = false

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return nil
		}
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	players := v.GetStringMap("players")
	for userKey, rawTiers := range players {
		user, err := uuid.Parse(userKey)
		if err != nil {
			continue
		}
		tiersMap, ok := rawTiers.(map[string]any)
		if !ok {
			continue
		}
		for tierKey, rawPages := range tiersMap {
			tier, ok := s.tierForKey(tierKey)
			if !ok {
				continue
			}
			pagesMap, ok := rawPages.(map[string]any)
			if !ok {
				continue
			}
			for pageKey, rawSlots := range pagesMap {
				index, ok := indexAfter(pageKey, "page_")
				if !ok || index >= tier.PageCount {
					continue
				}
				slotsMap, ok := rawSlots.(map[string]any)
				if !ok {
					continue
				}
				page := s.pageLocked(user, tier, index)
				for slotKey, rawStack := range slotsMap {
					slot, ok := indexAfter(slotKey, "slot_")
					if !ok || slot >= tier.UsableSlots {
						continue
					}
					stack, err := item.Decode(rawStack)
					if err != nil {
						continue
					}
					page[slot] = stack
				}
			}
		}
	}
	return nil
}

// GetPage returns a copy of the page, lazily creating it (and any empty
// intermediate pages) if the user has never written it. It never fails.
func (s *Store) GetPage(user uuid.UUID, tier catalog.Tier, page int) Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageLocked(user, tier, page).Clone()
}

// SetPage replaces a page's contents wholesale and marks the store dirty.
// Nothing is written to disk until Persist.
func (s *Store) SetPage(user uuid.UUID, tier catalog.Tier, page int, contents Page) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := s.pageLocked(user, tier, page)
	for i := range dst {
		if i < len(contents) {
			dst[i] = contents[i].Canon()
		} else {
			dst[i] = item.Empty
		}
	}
	s.dirty = true
}

// PageCount reports how many pages the user has materialized for a tier.
func (s *Store) PageCount(user uuid.UUID, tier catalog.Tier) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data[user][tier.Level])
}

// CopyTierData copies every existing page of from into the matching page of
// to, slot by slot up to the smaller tier's usable slot count. Destination
// slots beyond that bound keep their prior contents. A source with no pages
// is a no-op.
func (s *Store) CopyTierData(user uuid.UUID, from, to catalog.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.data[user][from.Level]
	if len(src) == 0 {
		return
	}
	limit := from.UsableSlots
	if to.UsableSlots < limit {
		limit = to.UsableSlots
	}
	for p := range src {
		if p >= to.PageCount {
			break
		}
		dst := s.pageLocked(user, to, p)
		for slot := 0; slot < limit && slot < len(src[p]); slot++ {
			dst[slot] = src[p][slot]
		}
	}
	s.dirty = true
}

// Persist flushes all in-memory records to the backing document. It is
// synchronous, idempotent, and safe to call repeatedly; clean stores skip
// the write. On failure the in-memory state stays authoritative and the
// error is the caller's to log.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir storage dir: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("players", map[string]any{})
	for user, tiers := range s.data {
		for level, pages := range tiers {
			for p, page := range pages {
				for slot, stack := range page {
					enc := stack.Encode()
					if enc == nil {
						continue
					}
					key := fmt.Sprintf("players.%s.tier_%d.page_%d.slot_%d", user, level, p, slot)
					v.Set(key, enc)
				}
			}
		}
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}

// pageLocked returns the live backing slice for a page, synthesizing empty
// pages up to and including the requested index. Callers hold s.mu.
func (s *Store) pageLocked(user uuid.UUID, tier catalog.Tier, page int) Page {
	tiers, ok := s.data[user]
	if !ok {
		tiers = make(map[int][]Page)
		s.data[user] = tiers
	}
	pages := tiers[tier.Level]
	for len(pages) <= page {
		pages = append(pages, make(Page, tier.UsableSlots))
	}
	tiers[tier.Level] = pages
	return pages[page]
}

func (s *Store) tierForKey(key string) (catalog.Tier, bool) {
	level, ok := indexAfter(key, "tier_")
	if !ok {
		return catalog.Tier{}, false
	}
	return s.cat.Describe(level)
}

func indexAfter(key, prefix string) (int, bool) {
	rest, found := strings.CutPrefix(key, prefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
