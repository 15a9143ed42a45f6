package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Elock-exe/satchel/internal/catalog"
	"github.com/Elock-exe/satchel/internal/item"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "satchels.yml")
	s := New(path, catalog.Default())
	require.NoError(t, s.Load())
	return s, path
}

func tier(t *testing.T, level int) catalog.Tier {
	t.Helper()
	tr, ok := catalog.Default().Describe(level)
	require.True(t, ok)
	return tr
}

func TestGetPageSynthesizesEmpty(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	user := uuid.New()
	t3 := tier(t, 3)

	page := s.GetPage(user, t3, 0)
	require.Len(t, page, 54)
	for _, stack := range page {
		require.True(t, stack.IsEmpty())
	}
	require.Equal(t, 1, s.PageCount(user, t3))
}

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	user := uuid.New()
	t1 := tier(t, 1)

	page := make(Page, t1.UsableSlots)
	page[5] = item.Stack{ID: "diamond", Count: 3}
	page[26] = item.Stack{ID: "stone", Count: 64, Meta: map[string]string{"note": "spare"}}
	s.SetPage(user, t1, 0, page)

	got := s.GetPage(user, t1, 0)
	require.Len(t, got, t1.UsableSlots)
	for i := range page {
		require.True(t, page[i].Canon().Equal(got[i]), "slot %d", i)
	}

	// the returned page is a copy: mutating it does not touch the store
	got[5] = item.Empty
	again := s.GetPage(user, t1, 0)
	require.Equal(t, "diamond", again[5].ID)
}

func TestSetPageCreatesIntermediatePages(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	user := uuid.New()
	t1 := tier(t, 1)

	page := make(Page, t1.UsableSlots)
	page[0] = item.Stack{ID: "coal", Count: 1}
	s.SetPage(user, t1, 2, page)

	require.Equal(t, 3, s.PageCount(user, t1))
	for _, stack := range s.GetPage(user, t1, 1) {
		require.True(t, stack.IsEmpty())
	}
	require.Equal(t, "coal", s.GetPage(user, t1, 2)[0].ID)
}

func TestPersistReload(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	user := uuid.New()
	t2 := tier(t, 2)

	page := make(Page, t2.UsableSlots)
	page[0] = item.Stack{ID: "iron_ingot", Count: 7, Tag: 0}
	page[39] = item.Stack{ID: "satchel_key", Count: 1, Meta: map[string]string{"owner": "someone"}}
	s.SetPage(user, t2, 0, page)
	require.NoError(t, s.Persist())

	// repeated persist of a clean store is a cheap no-op
	require.NoError(t, s.Persist())

	reloaded := New(path, catalog.Default())
	require.NoError(t, reloaded.Load())
	got := reloaded.GetPage(user, t2, 0)
	require.True(t, got[0].Equal(page[0]))
	require.True(t, got[39].Equal(page[39]))
	for i := 1; i < 39; i++ {
		require.True(t, got[i].IsEmpty(), "slot %d", i)
	}
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "satchels.yml")
	user := uuid.New()
	doc := `players:
  not-a-uuid:
    tier_1:
      page_0:
        slot_0:
          id: stone
          count: 1
  ` + user.String() + `:
    tier_9:
      page_0:
        slot_0:
          id: stone
          count: 1
    tier_1:
      garbage: true
      page_0:
        slot_0: just-a-string
        slot_1:
          id: gold_ingot
          count: 2
        slot_99:
          id: stone
          count: 1
      page_x:
        slot_0:
          id: stone
          count: 1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := New(path, catalog.Default())
	require.NoError(t, s.Load())

	got := s.GetPage(user, tier(t, 1), 0)
	require.Equal(t, "gold_ingot", got[1].ID)
	require.True(t, got[0].IsEmpty())
	require.Equal(t, 0, s.PageCount(uuid.Nil, tier(t, 1)))
}

func TestLoadMissingFileIsEmptyStore(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "absent", "satchels.yml"), catalog.Default())
	require.NoError(t, s.Load())
	require.Equal(t, 0, s.PageCount(uuid.New(), tier(t, 1)))
}

func TestCopyTierData(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	user := uuid.New()
	t1, t2 := tier(t, 1), tier(t, 2)

	// source: one item at slot 5
	src := make(Page, t1.UsableSlots)
	src[5] = item.Stack{ID: "diamond", Count: 2}
	s.SetPage(user, t1, 0, src)

	// destination already holds items both inside and beyond the copy bound
	dst := make(Page, t2.UsableSlots)
	dst[5] = item.Stack{ID: "dirt", Count: 1}
	dst[20] = item.Stack{ID: "gravel", Count: 9}
	dst[35] = item.Stack{ID: "sand", Count: 4}
	s.SetPage(user, t2, 0, dst)

	s.CopyTierData(user, t1, t2)

	got := s.GetPage(user, t2, 0)
	require.Equal(t, "diamond", got[5].ID, "copied over prior contents")
	require.True(t, got[20].IsEmpty(), "slot inside copy range overwritten by empty source slot")
	require.Equal(t, "sand", got[35].ID, "slot beyond source capacity untouched")
	for slot := t1.UsableSlots; slot < t2.UsableSlots; slot++ {
		if slot == 35 {
			continue
		}
		require.True(t, got[slot].IsEmpty(), "slot %d", slot)
	}

	// source pages unchanged
	back := s.GetPage(user, t1, 0)
	require.Equal(t, "diamond", back[5].ID)
}

func TestCopyTierDataNoSourceIsNoop(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	user := uuid.New()
	t1, t2 := tier(t, 1), tier(t, 2)

	s.CopyTierData(user, t1, t2)
	require.Equal(t, 0, s.PageCount(user, t2))
}

func TestCopyTierDataDownTier(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	user := uuid.New()
	t1, t3 := tier(t, 1), tier(t, 3)

	src := make(Page, t3.UsableSlots)
	src[10] = item.Stack{ID: "emerald", Count: 1}
	src[50] = item.Stack{ID: "lost", Count: 1}
	s.SetPage(user, t3, 0, src)

	s.CopyTierData(user, t3, t1)

	got := s.GetPage(user, t1, 0)
	require.Equal(t, "emerald", got[10].ID)
	require.Len(t, got, t1.UsableSlots)
}
