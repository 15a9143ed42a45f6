package item

import (
	"fmt"
)

// Stack is the contents of one slot: an item identifier, a count, and
// optional metadata. Tag carries the client model tag for items that have
// one; container items are recognized by it. The zero value is the canonical
// empty slot.
type Stack struct {
	ID    string
	Count int
	Tag   int
	Meta  map[string]string
}

// Empty is the canonical empty slot. A slot holding Empty is distinct from a
// slot the store has never written: the latter simply has no key in the
// backing document.
var Empty = Stack{}

// IsEmpty reports whether the stack represents an empty slot.
func (s Stack) IsEmpty() bool {
	return s.ID == "" || s.Count <= 0
}

// Canon collapses every empty-ish stack (no ID, zero count) to Empty so that
// comparisons and persistence see a single empty representation.
func (s Stack) Canon() Stack {
	if s.IsEmpty() {
		return Empty
	}
	return s
}

// Equal compares two stacks including metadata.
func (s Stack) Equal(o Stack) bool {
	if s.IsEmpty() && o.IsEmpty() {
		return true
	}
	if s.ID != o.ID || s.Count != o.Count || s.Tag != o.Tag {
		return false
	}
	if len(s.Meta) != len(o.Meta) {
		return false
	}
	for k, v := range s.Meta {
		if o.Meta[k] != v {
			return false
		}
	}
	return true
}

// Encode converts the stack to the map shape stored in the backing document.
// Empty stacks encode to nil: the store drops their keys entirely.
func (s Stack) Encode() map[string]any {
	if s.IsEmpty() {
		return nil
	}
	m := map[string]any{
		"id":    s.ID,
		"count": s.Count,
	}
	if s.Tag != 0 {
		m["tag"] = s.Tag
	}
	if len(s.Meta) > 0 {
		meta := make(map[string]any, len(s.Meta))
		for k, v := range s.Meta {
			meta[k] = v
		}
		m["meta"] = meta
	}
	return m
}

// Decode parses a value read back from the backing document. Anything that
// is not a well-formed encoded stack returns an error so the loader can skip
// it.
func Decode(v any) (Stack, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Empty, fmt.Errorf("slot payload is %T, want map", v)
	}
	var s Stack
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return Empty, fmt.Errorf("slot payload has no id")
	}
	s.ID = id
	count, err := toInt(m["count"])
	if err != nil {
		return Empty, fmt.Errorf("slot %q count: %w", id, err)
	}
	if count <= 0 {
		return Empty, fmt.Errorf("slot %q count %d out of range", id, count)
	}
	s.Count = count
	if raw, present := m["tag"]; present {
		tag, err := toInt(raw)
		if err != nil {
			return Empty, fmt.Errorf("slot %q tag: %w", id, err)
		}
		s.Tag = tag
	}
	if raw, present := m["meta"]; present {
		meta, ok := raw.(map[string]any)
		if !ok {
			return Empty, fmt.Errorf("slot %q meta is %T, want map", id, raw)
		}
		s.Meta = make(map[string]string, len(meta))
		for k, mv := range meta {
			str, ok := mv.(string)
			if !ok {
				return Empty, fmt.Errorf("slot %q meta %q is %T, want string", id, k, mv)
			}
			s.Meta[k] = str
		}
	}
	return s, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("value is %T, want number", v)
	}
}
