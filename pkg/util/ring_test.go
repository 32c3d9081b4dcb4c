package util

import "testing"

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Append(i)
	}
	if r.Len() != 3 {
		t.Fatalf("expected len 3, got %d", r.Len())
	}
	items := r.Items()
	want := []int{3, 4, 5}
	for i, v := range want {
		if items[i] != v {
			t.Fatalf("expected %v, got %v", want, items)
		}
	}
}

func TestRingLast(t *testing.T) {
	r := NewRing[int](4)
	for i := 1; i <= 4; i++ {
		r.Append(i)
	}
	last := r.Last(2)
	if len(last) != 2 || last[0] != 3 || last[1] != 4 {
		t.Fatalf("unexpected tail %v", last)
	}
	if all := r.Last(10); len(all) != 4 {
		t.Fatalf("overlong request must return all, got %v", all)
	}
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing[string](0)
	if r.Cap() != 1 {
		t.Fatalf("expected capacity 1, got %d", r.Cap())
	}
	r.Append("a")
	r.Append("b")
	if items := r.Items(); len(items) != 1 || items[0] != "b" {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestSyncRingBounded(t *testing.T) {
	r := NewSyncRing[int](2)
	r.Append(1)
	r.Append(2)
	r.Append(3)
	if r.Len() != 2 || r.Cap() != 2 {
		t.Fatalf("unexpected size len=%d cap=%d", r.Len(), r.Cap())
	}
	last := r.Last(1)
	if len(last) != 1 || last[0] != 3 {
		t.Fatalf("unexpected tail %v", last)
	}
}

func TestSyncMapSnapshot(t *testing.T) {
	m := NewSyncMap[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("a", 3)
	if v, ok := m.Load("a"); !ok || v != 3 {
		t.Fatalf("expected a=3, got %v %v", v, ok)
	}
	snap := m.Snapshot()
	if len(snap) != 2 || snap["b"] != 2 {
		t.Fatalf("unexpected snapshot %v", snap)
	}
	snap["b"] = 99
	if v, _ := m.Load("b"); v != 2 {
		t.Fatalf("snapshot must not alias the map, got %v", v)
	}
}
