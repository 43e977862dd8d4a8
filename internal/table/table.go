// Package table implements the open-addressed hash table used to back
// global variable bindings, instance fields, and class method tables.
// Keys must compare equal only to themselves once canonical (see Key),
// so equality inside the probe loop is pointer/value equality on K.
//
// No pack example implements this algorithm (funvibe-funxy backs its
// equivalent maps with a plain Go map, since Go's runtime already
// gives it amortized O(1) access); this table exists because the
// specification calls for specific, testable open-addressing behavior
// (tombstones counting toward load factor, an explicit growth
// threshold, a copy-all operation) that a bare `map[K]V` cannot be
// made to exhibit.
package table

import "hash/fnv"

// Key is anything usable as a Table key: comparable (so the probe loop
// can test identity directly) and able to report its own cached hash.
// The vm package instantiates tables with K = *ObjString, so that a
// table's keys are the same heap objects the GC walks and marks —
// there is no detached key identity for a collection to leave behind.
type Key interface {
	comparable
	Hash() uint32
}

// StrKey is a minimal Key used directly by this package's own tests
// and by vm's interner, which needs a hash key before it has a
// canonical owning object to hang it off of.
type StrKey struct {
	hash  uint32
	Bytes []byte
}

// NewStrKey computes the hash and wraps b.
func NewStrKey(b []byte) *StrKey {
	return &StrKey{hash: HashBytes(b), Bytes: b}
}

func (k *StrKey) Hash() uint32 { return k.hash }

// HashBytes computes the 32-bit FNV-1a hash the spec requires for
// cached string hashes.
func HashBytes(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

const maxLoadFactor = 0.75

type entry[K Key, V any] struct {
	key   K
	value V
	used  bool // slot has ever held an entry (live or tombstone)
	live  bool // slot currently holds a live entry (false = tombstone)
}

// Table is an open-addressed, linear-probed map keyed by K. Capacity
// is always a power of two and grows when the load factor (live
// entries + tombstones, over capacity) exceeds 0.75.
type Table[K Key, V any] struct {
	entries []entry[K, V]
	count   int // live entries + tombstones, for load-factor accounting
	live    int
}

// New returns an empty table.
func New[K Key, V any]() *Table[K, V] {
	return &Table[K, V]{}
}

// Len reports the number of live (non-tombstone, non-deleted) entries.
func (t *Table[K, V]) Len() int {
	return t.live
}

// Put inserts or overwrites key's value. It reports whether key was
// new to the table (matching the "returns whether the key was new"
// contract of put).
func (t *Table[K, V]) Put(key K, value V) bool {
	if t.entries == nil || float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		t.grow()
	}
	idx, found := t.find(key)
	e := &t.entries[idx]
	wasNew := !e.used || !e.live
	if !e.used {
		t.count++
	}
	if !found {
		t.live++
	}
	e.key = key
	e.value = value
	e.used = true
	e.live = true
	return wasNew
}

// Get returns the value bound to key, if any.
func (t *Table[K, V]) Get(key K) (V, bool) {
	var zero V
	if len(t.entries) == 0 {
		return zero, false
	}
	idx, found := t.find(key)
	if !found {
		return zero, false
	}
	return t.entries[idx].value, true
}

// Delete removes key's binding, leaving a tombstone behind so the
// probe sequence of other keys stays intact. Tombstones still count
// toward occupancy for growth purposes; Put reuses them.
func (t *Table[K, V]) Delete(key K) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx, found := t.find(key)
	if !found {
		return false
	}
	var zero V
	t.entries[idx].live = false
	t.entries[idx].value = zero
	t.live--
	return true
}

// CopyTo copies every live entry into dst, used by INHERIT to copy a
// superclass's method table into a subclass.
func (t *Table[K, V]) CopyTo(dst *Table[K, V]) {
	for _, e := range t.entries {
		if e.used && e.live {
			dst.Put(e.key, e.value)
		}
	}
}

// Each calls fn for every live entry; fn must not mutate the table.
func (t *Table[K, V]) Each(fn func(key K, value V)) {
	for _, e := range t.entries {
		if e.used && e.live {
			fn(e.key, e.value)
		}
	}
}

// find locates key's slot. If found is true, idx is its current slot.
// If found is false, idx is the first empty-or-tombstone slot on the
// probe sequence, suitable for insertion.
func (t *Table[K, V]) find(key K) (idx int, found bool) {
	mask := uint32(len(t.entries) - 1)
	i := key.Hash() & mask
	tombstone := -1
	for {
		e := &t.entries[i]
		switch {
		case !e.used:
			if tombstone != -1 {
				return tombstone, false
			}
			return int(i), false
		case !e.live:
			if tombstone == -1 {
				tombstone = int(i)
			}
		case e.key == key:
			return int(i), true
		}
		i = (i + 1) & mask
	}
}

func (t *Table[K, V]) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]entry[K, V], newCap)
	t.count = 0
	t.live = 0
	for _, e := range old {
		if e.used && e.live {
			idx, _ := t.find(e.key)
			t.entries[idx] = entry[K, V]{key: e.key, value: e.value, used: true, live: true}
			t.count++
			t.live++
		}
	}
}
