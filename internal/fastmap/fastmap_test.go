package fastmap

import (
	"math/rand"
	"testing"
)

type handle struct {
	name string
}

func TestUint32Map(t *testing.T) {
	m := &Uint32Map[handle]{}

	if m.Get(1) != nil {
		t.Error("Expected nil for empty map")
	}

	h1 := &handle{"one"}
	h2 := &handle{"two"}
	m.Set(1, h1)
	m.Set(2, h2)

	if m.Get(1) != h1 {
		t.Error("Get(1) failed")
	}
	if m.Get(2) != h2 {
		t.Error("Get(2) failed")
	}
	if m.Get(3) != nil {
		t.Error("Get(3) should be nil")
	}

	h3 := &handle{"three"}
	m.Set(1, h3)
	if m.Get(1) != h3 {
		t.Error("Update failed")
	}
	if m.Len() != 2 {
		t.Errorf("Expected len=2, got %d", m.Len())
	}

	seen := 0
	m.ForEach(func(k uint32, v *handle) {
		seen++
		if m.Get(k) != v {
			t.Errorf("ForEach yielded stale value for %d", k)
		}
	})
	if seen != 2 {
		t.Errorf("ForEach visited %d entries, want 2", seen)
	}

	m.Clear()
	if m.Len() != 0 {
		t.Error("Clear failed")
	}
	if m.Get(1) != nil {
		t.Error("Get after clear should be nil")
	}
}

func TestUint32MapGrowth(t *testing.T) {
	m := &Uint32Map[handle]{}

	n := 10000
	handles := make([]*handle, n)
	for i := 0; i < n; i++ {
		handles[i] = &handle{}
		m.Set(uint32(i), handles[i])
	}

	if m.Len() != n {
		t.Errorf("Expected len=%d, got %d", n, m.Len())
	}
	for i := 0; i < n; i++ {
		if m.Get(uint32(i)) != handles[i] {
			t.Errorf("Get(%d) failed", i)
		}
	}
}

func TestUint32MapDelete(t *testing.T) {
	m := &Uint32Map[handle]{}

	n := 1000
	handles := make([]*handle, n)
	for i := 0; i < n; i++ {
		handles[i] = &handle{}
		m.Set(uint32(i), handles[i])
	}
	for i := 0; i < n; i += 2 {
		m.Delete(uint32(i))
	}
	m.Delete(uint32(n + 1))

	if m.Len() != n/2 {
		t.Errorf("Expected len=%d, got %d", n/2, m.Len())
	}
	for i := 0; i < n; i++ {
		got := m.Get(uint32(i))
		if i%2 == 0 && got != nil {
			t.Errorf("Get(%d) should be nil after delete", i)
		}
		if i%2 == 1 && got != handles[i] {
			t.Errorf("Get(%d) lost after deleting neighbours", i)
		}
	}
}

func TestUint32MapZeroKey(t *testing.T) {
	m := &Uint32Map[handle]{}

	h := &handle{"zero"}
	m.Set(0, h)

	if m.Get(0) != h {
		t.Error("Zero key failed")
	}
	if m.Len() != 1 {
		t.Error("Len should be 1")
	}
}

func BenchmarkFastMapRandRead(b *testing.B) {
	m := &Uint32Map[handle]{}
	keys := make([]uint32, 100000)
	h := &handle{}
	for i := range keys {
		keys[i] = rand.Uint32()
		m.Set(keys[i], h)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Get(keys[i%100000])
	}
}

func BenchmarkGoMapRandRead(b *testing.B) {
	m := make(map[uint32]*handle)
	keys := make([]uint32, 100000)
	h := &handle{}
	for i := range keys {
		keys[i] = rand.Uint32()
		m[keys[i]] = h
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m[keys[i%100000]]
	}
}
