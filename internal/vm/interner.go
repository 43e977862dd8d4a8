package vm

import "github.com/havrix/glox/internal/table"

// interner is the weak reference set of every live ObjString, keyed
// by content. Unlike table.Table (which compares keys by pointer once
// they're canonical), the interner's whole job is answering "is there
// already a canonical key for these bytes" before a caller has one —
// so it probes by hash then byte comparison, the one operation the
// generic Table can't express over an opaque key type.
//
// The interner never roots a string: an entry survives collection
// only because some other root (the stack, globals, a closure's
// constant pool, ...) still points at its ObjString. removeUnmarked
// implements §4.7 phase 3 and leaves tombstones behind for the same
// reason table.Table does: clearing a slot outright would break the
// probe sequence of every other string hashed past it.
type interner struct {
	entries []internEntry
	count   int // live + tombstones, for load-factor accounting
	live    int
}

type internEntry struct {
	str  *ObjString
	used bool // slot has ever held an entry (live or tombstone)
	live bool // slot currently holds a live string (false = tombstone)
}

func newInterner() *interner {
	return &interner{}
}

// intern returns the canonical ObjString for b, allocating one (via
// alloc) if no byte-equal string is already live.
func (in *interner) intern(b []byte, alloc func(*table.StrKey) *ObjString) *ObjString {
	h := table.HashBytes(b)
	if in.entries != nil {
		if idx, found := in.find(b, h); found {
			return in.entries[idx].str
		}
	}
	if in.entries == nil || float64(in.count+1) > float64(len(in.entries))*0.75 {
		in.grow()
	}
	idx, found := in.find(b, h)
	if found {
		return in.entries[idx].str
	}
	key := table.NewStrKey(b)
	str := alloc(key)
	if !in.entries[idx].used {
		in.count++
	}
	in.entries[idx] = internEntry{str: str, used: true, live: true}
	in.live++
	return str
}

// find scans the probe sequence for b/h. It returns the live match if
// one exists; otherwise it returns the first tombstone-or-empty slot
// on the sequence (so intern can reuse it) with found=false — it must
// keep scanning past tombstones rather than stopping at the first one,
// or a live entry further down the chain would become unreachable.
func (in *interner) find(b []byte, h uint32) (idx int, found bool) {
	mask := uint32(len(in.entries) - 1)
	i := h & mask
	insertAt := -1
	for {
		e := &in.entries[i]
		switch {
		case !e.used:
			if insertAt != -1 {
				return insertAt, false
			}
			return int(i), false
		case !e.live:
			if insertAt == -1 {
				insertAt = int(i)
			}
		case e.str.Hash() == h && string(e.str.Chars()) == string(b):
			return int(i), true
		}
		i = (i + 1) & mask
	}
}

func (in *interner) grow() {
	newCap := 8
	if len(in.entries) > 0 {
		newCap = len(in.entries) * 2
	}
	old := in.entries
	in.entries = make([]internEntry, newCap)
	in.count = 0
	in.live = 0
	for _, e := range old {
		if e.used && e.live {
			idx, _ := in.find(e.str.Chars(), e.str.Hash())
			in.entries[idx] = internEntry{str: e.str, used: true, live: true}
			in.count++
			in.live++
		}
	}
}

// removeUnmarked implements the interner's weak-set contract: any
// string the GC's mark phase did not reach this cycle is unreachable
// from anywhere else, so its entry is tombstoned.
func (in *interner) removeUnmarked() {
	for i := range in.entries {
		if in.entries[i].used && in.entries[i].live && !in.entries[i].str.marked {
			in.entries[i].live = false
			in.entries[i].str = nil
			in.live--
		}
	}
}
