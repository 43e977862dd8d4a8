package table

import "testing"

func key(s string) *StrKey { return NewStrKey([]byte(s)) }

func TestPutGet(t *testing.T) {
	tbl := New[*StrKey, int]()
	a, b := key("a"), key("b")
	tbl.Put(a, 1)
	tbl.Put(b, 2)

	if v, ok := tbl.Get(a); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v, want 1, true", v, ok)
	}
	if v, ok := tbl.Get(b); !ok || v != 2 {
		t.Fatalf("Get(b) = %v, %v, want 2, true", v, ok)
	}
	if _, ok := tbl.Get(key("c")); ok {
		t.Fatalf("Get(c) found a value that was never put")
	}
}

func TestPutReportsNewVsOverwrite(t *testing.T) {
	tbl := New[*StrKey, int]()
	a := key("a")
	if isNew := tbl.Put(a, 1); !isNew {
		t.Fatalf("first Put reported isNew = false")
	}
	if isNew := tbl.Put(a, 2); isNew {
		t.Fatalf("overwriting Put reported isNew = true")
	}
	if v, _ := tbl.Get(a); v != 2 {
		t.Fatalf("Get after overwrite = %d, want 2", v)
	}
}

func TestDeleteLeavesTombstone(t *testing.T) {
	tbl := New[*StrKey, int]()
	a, b := key("a"), key("b")
	tbl.Put(a, 1)
	tbl.Put(b, 2)

	if ok := tbl.Delete(a); !ok {
		t.Fatalf("Delete(a) = false, want true")
	}
	if ok := tbl.Delete(a); ok {
		t.Fatalf("Delete(a) twice = true, want false")
	}
	// b must still be reachable by linear probing past a's tombstone.
	if v, ok := tbl.Get(b); !ok || v != 2 {
		t.Fatalf("Get(b) after deleting a = %v, %v, want 2, true", v, ok)
	}
	if _, ok := tbl.Get(a); ok {
		t.Fatalf("Get(a) found a value after Delete")
	}
}

func TestGrowPreservesAllEntries(t *testing.T) {
	tbl := New[*StrKey, int]()
	const n = 200
	keys := make([]*StrKey, n)
	for i := 0; i < n; i++ {
		k := key(string(rune('a' + (i % 26))) + string(rune('0'+(i/26)%10)))
		keys[i] = k
		tbl.Put(k, i)
	}
	for i, k := range keys {
		v, ok := tbl.Get(k)
		if !ok || v != i {
			t.Fatalf("entry %d lost after growth: got %v, %v", i, v, ok)
		}
	}
}

func TestCopyToCopiesAllLiveEntries(t *testing.T) {
	src := New[*StrKey, int]()
	a, b, c := key("a"), key("b"), key("c")
	src.Put(a, 1)
	src.Put(b, 2)
	src.Put(c, 3)
	src.Delete(b)

	dst := New[*StrKey, int]()
	src.CopyTo(dst)

	if v, ok := dst.Get(a); !ok || v != 1 {
		t.Fatalf("dst.Get(a) = %v, %v, want 1, true", v, ok)
	}
	if v, ok := dst.Get(c); !ok || v != 3 {
		t.Fatalf("dst.Get(c) = %v, %v, want 3, true", v, ok)
	}
	if _, ok := dst.Get(b); ok {
		t.Fatalf("dst.Get(b) found a tombstoned entry")
	}
}

func TestEachVisitsEveryLiveEntry(t *testing.T) {
	tbl := New[*StrKey, int]()
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	keys := make(map[string]*StrKey)
	for k, v := range want {
		keys[k] = key(k)
		tbl.Put(keys[k], v)
	}
	tbl.Delete(keys["b"])
	delete(want, "b")

	got := make(map[string]int)
	tbl.Each(func(k *StrKey, v int) { got[string(k.Bytes)] = v })

	if len(got) != len(want) {
		t.Fatalf("Each visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Each entry %q = %d, want %d", k, got[k], v)
		}
	}
}
