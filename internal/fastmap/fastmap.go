// Package fastmap provides a fast hash map for integer keys.
// Uses fibonacci hashing for better distribution of sequential keys.
package fastmap

// Uint32Map is a fast hash map from uint32 to *V.
// Uses open addressing with linear probing and fibonacci hashing.
type Uint32Map[V any] struct {
	buckets []bucket[V]
	count   int
	mask    uint32
}

type bucket[V any] struct {
	key   uint32
	value *V
	used  bool // Needed because key=0 might be valid
}

// Fibonacci hash constant: 2^32 / golden ratio
const fibHash32 = 2654435769

// hash computes a fast hash using fibonacci hashing
func (m *Uint32Map[V]) hash(key uint32) uint32 {
	return key * fibHash32
}

// Get returns the value for the given key, or nil if not found.
func (m *Uint32Map[V]) Get(key uint32) *V {
	if len(m.buckets) == 0 {
		return nil
	}
	idx := m.hash(key) & m.mask
	for {
		b := &m.buckets[idx]
		if !b.used {
			return nil
		}
		if b.key == key {
			return b.value
		}
		idx = (idx + 1) & m.mask
	}
}

// Set stores a key-value pair.
func (m *Uint32Map[V]) Set(key uint32, value *V) {
	if len(m.buckets) == 0 {
		m.buckets = make([]bucket[V], 16)
		m.mask = 15
	} else if m.count >= len(m.buckets)*3/4 {
		m.grow()
	}

	idx := m.hash(key) & m.mask
	for {
		b := &m.buckets[idx]
		if !b.used {
			b.key = key
			b.value = value
			b.used = true
			m.count++
			return
		}
		if b.key == key {
			b.value = value
			return
		}
		idx = (idx + 1) & m.mask
	}
}

// Delete removes key. Later entries of the probe chain are shifted back so
// lookups never stop early at the freed slot.
func (m *Uint32Map[V]) Delete(key uint32) {
	if len(m.buckets) == 0 {
		return
	}
	idx := m.hash(key) & m.mask
	for {
		b := &m.buckets[idx]
		if !b.used {
			return
		}
		if b.key == key {
			break
		}
		idx = (idx + 1) & m.mask
	}
	m.buckets[idx] = bucket[V]{}
	m.count--

	hole := idx
	for j := (idx + 1) & m.mask; m.buckets[j].used; j = (j + 1) & m.mask {
		home := m.hash(m.buckets[j].key) & m.mask
		if !between(hole, home, j) {
			m.buckets[hole] = m.buckets[j]
			m.buckets[j] = bucket[V]{}
			hole = j
		}
	}
}

// between reports whether h lies in the cyclic range (lo, hi].
func between(lo, h, hi uint32) bool {
	if lo <= hi {
		return lo < h && h <= hi
	}
	return h > lo || h <= hi
}

// grow doubles the hash table size
func (m *Uint32Map[V]) grow() {
	oldBuckets := m.buckets
	newSize := len(oldBuckets) * 2
	m.buckets = make([]bucket[V], newSize)
	m.mask = uint32(newSize - 1)
	m.count = 0

	for i := range oldBuckets {
		if oldBuckets[i].used {
			m.Set(oldBuckets[i].key, oldBuckets[i].value)
		}
	}
}

// ForEach iterates over all key-value pairs.
func (m *Uint32Map[V]) ForEach(fn func(uint32, *V)) {
	for i := range m.buckets {
		if m.buckets[i].used {
			fn(m.buckets[i].key, m.buckets[i].value)
		}
	}
}

// Clear removes all entries but keeps the backing array.
func (m *Uint32Map[V]) Clear() {
	clear(m.buckets)
	m.count = 0
}

// Len returns the number of entries.
func (m *Uint32Map[V]) Len() int {
	return m.count
}
