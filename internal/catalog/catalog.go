// Package catalog holds the static description of every satchel tier:
// capacity, grid geometry, display label, and the upgrade chain. The tier set
// is data, not code; it is decoded from a TOML document so adding a tier is a
// data change.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/Elock-exe/satchel/internal/item"
)

// Tier describes one satchel capacity level.
type Tier struct {
	Level       int    `toml:"level"`
	Tag         int    `toml:"tag"`
	UsableSlots int    `toml:"usable_slots"`
	GridSize    int    `toml:"grid_size"`
	PageCount   int    `toml:"pages"`
	Label       string `toml:"label"`
	UpgradeCost int64  `toml:"upgrade_cost"`
}

// ItemID is the identifier carried by every satchel item regardless of tier;
// the tier is encoded in the Tag, never in display text.
const ItemID = "satchel"

// NavSlot returns the grid index of the page-navigation control: the last
// grid slot. Tiers whose whole grid is usable have no navigation slot and
// return -1; such tiers are single-page by validation.
func (t Tier) NavSlot() int {
	if t.UsableSlots == t.GridSize {
		return -1
	}
	return t.GridSize - 1
}

// IsNavSlot reports whether slot is the page-navigation control.
func (t Tier) IsNavSlot(slot int) bool {
	nav := t.NavSlot()
	return nav >= 0 && slot == nav
}

// IsFillerSlot reports whether slot is blocked-off padding between the last
// usable slot and the navigation control.
func (t Tier) IsFillerSlot(slot int) bool {
	return slot >= t.UsableSlots && slot < t.GridSize && !t.IsNavSlot(slot)
}

// IsReservedSlot reports whether slot is UI-reserved (navigation or filler).
// Reserved slots are exactly [UsableSlots, GridSize): they never overlap
// usable indices, are never persisted, and never hold user items.
func (t Tier) IsReservedSlot(slot int) bool {
	return slot >= t.UsableSlots && slot < t.GridSize
}

// Catalog is the ordered, immutable set of tiers.
type Catalog struct {
	tiers []Tier // sorted by level, levels contiguous from 1
}

type tierFile struct {
	Tier []Tier `toml:"tier"`
}

const defaultTiersTOML = `# Satchel tier definitions.
# Add a [[tier]] block to introduce a new capacity level. Levels must be
# contiguous starting at 1; the last tier's upgrade_cost is ignored.

[[tier]]
level = 1
tag = 4510
usable_slots = 27
grid_size = 27
pages = 1
label = "Satchel I"
upgrade_cost = 150000

[[tier]]
level = 2
tag = 4511
usable_slots = 40
grid_size = 45
pages = 1
label = "Satchel II"
upgrade_cost = 300000

[[tier]]
level = 3
tag = 4512
usable_slots = 54
grid_size = 54
pages = 1
label = "Satchel III"
upgrade_cost = -1
`

// Default returns the built-in tier set.
func Default() *Catalog {
	c, err := Parse(defaultTiersTOML)
	if err != nil {
		// the built-in document is validated by tests
		panic(err)
	}
	return c
}

// Load reads a tier document from path, falling back to the built-in set
// when the file does not exist.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tier file: %w", err)
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a TOML tier document.
func Parse(doc string) (*Catalog, error) {
	var f tierFile
	if _, err := toml.Decode(doc, &f); err != nil {
		return nil, err
	}
	if len(f.Tier) == 0 {
		return nil, fmt.Errorf("no tiers defined")
	}
	tiers := append([]Tier(nil), f.Tier...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Level < tiers[j].Level })

	seenTags := make(map[int]int, len(tiers))
	for i, t := range tiers {
		if t.Level != i+1 {
			return nil, fmt.Errorf("tier levels must be contiguous from 1, got level %d at position %d", t.Level, i)
		}
		if t.UsableSlots <= 0 || t.GridSize <= 0 {
			return nil, fmt.Errorf("tier %d: slot counts must be positive", t.Level)
		}
		if t.UsableSlots > t.GridSize {
			return nil, fmt.Errorf("tier %d: usable_slots %d exceeds grid_size %d", t.Level, t.UsableSlots, t.GridSize)
		}
		if t.PageCount < 1 {
			return nil, fmt.Errorf("tier %d: pages must be at least 1", t.Level)
		}
		if t.PageCount > 1 && t.UsableSlots == t.GridSize {
			return nil, fmt.Errorf("tier %d: multi-page tiers need a reserved navigation slot (usable_slots < grid_size)", t.Level)
		}
		if t.Tag == 0 {
			return nil, fmt.Errorf("tier %d: tag is required", t.Level)
		}
		if prev, dup := seenTags[t.Tag]; dup {
			return nil, fmt.Errorf("tier %d: tag %d already used by tier %d", t.Level, t.Tag, prev)
		}
		seenTags[t.Tag] = t.Level
	}
	return &Catalog{tiers: tiers}, nil
}

// Tiers returns the tiers in ascending level order.
func (c *Catalog) Tiers() []Tier {
	return append([]Tier(nil), c.tiers...)
}

// Describe returns the tier at a given level.
func (c *Catalog) Describe(level int) (Tier, bool) {
	if level < 1 || level > len(c.tiers) {
		return Tier{}, false
	}
	return c.tiers[level-1], true
}

// Next returns the upgrade target of t, if any.
func (c *Catalog) Next(t Tier) (Tier, bool) {
	return c.Describe(t.Level + 1)
}

// Classify identifies whether a stack is a satchel of some tier. Matching is
// by the embedded tag value only; display text carries no meaning.
func (c *Catalog) Classify(s item.Stack) (Tier, bool) {
	if s.IsEmpty() || s.Tag == 0 {
		return Tier{}, false
	}
	for _, t := range c.tiers {
		if t.Tag == s.Tag {
			return t, true
		}
	}
	return Tier{}, false
}

// Instantiate builds a fresh satchel item for a tier.
func (c *Catalog) Instantiate(t Tier) item.Stack {
	return item.Stack{
		ID:    ItemID,
		Count: 1,
		Tag:   t.Tag,
		Meta:  map[string]string{"label": t.Label},
	}
}
