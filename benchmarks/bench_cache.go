package benchmarks

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Giulio2002/tkv"
	"github.com/Giulio2002/tkv/internal/engine/mdbx"
)

// Cached benchmark database directory
const benchCacheDir = "testdata/benchdb"

type plainStore = tkv.Store[uint64, []byte]

type dupStore = tkv.Store[uint64, uint64]

var (
	cacheMu     sync.Mutex
	plainStores = make(map[string]*plainStore)
	dupStores   = make(map[string]*dupStore)
)

// backends lists the engines compiled into this binary.
func backends() []tkv.Backend {
	out := []tkv.Backend{tkv.BackendBolt}
	if mdbx.Available {
		out = append(out, tkv.BackendMDBX)
	}
	return out
}

func formatSize(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%dk", n/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// benchValue fills a value of n bytes derived from i.
func benchValue(i uint64, n int) []byte {
	v := make([]byte, n)
	r := rand.New(rand.NewSource(int64(i)))
	r.Read(v)
	return v
}

// getCachedPlainStore returns a store holding keys 0..size-1 with 32 byte
// values. The data lives in testdata/benchdb/plain_<size>_<backend>.
func getCachedPlainStore(b *testing.B, backend tkv.Backend, size int) *plainStore {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	name := fmt.Sprintf("plain_%d_%s", size, backend)
	if s, ok := plainStores[name]; ok {
		return s
	}

	dir := filepath.Join(benchCacheDir, name)
	exists := fileExists(dir)
	s, err := tkv.Open(dir, tkv.IntKey[uint64]{}, tkv.BytesValue[[]byte]{},
		tkv.WithBackend(backend), tkv.WithMaxMapSize(4*tkv.GB))
	if err != nil {
		b.Fatal(err)
	}
	if !exists {
		populatePlain(b, s, size)
	}
	plainStores[name] = s
	return s
}

func populatePlain(b *testing.B, s *plainStore, size int) {
	for i := 0; i < size; i++ {
		if err := s.Add(uint64(i), benchValue(uint64(i), 32), false); err != nil {
			b.Fatal(err)
		}
		if i%100_000 == 99_999 {
			if err := s.Commit(); err != nil {
				b.Fatal(err)
			}
		}
	}
	if err := s.Commit(); err != nil {
		b.Fatal(err)
	}
}

// getCachedDupStore returns a duplicate-mode store with valsPerKey values
// under each of numKeys keys.
func getCachedDupStore(b *testing.B, backend tkv.Backend, numKeys, valsPerKey int) *dupStore {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	name := fmt.Sprintf("dupsort_%d_%d_%s", numKeys, valsPerKey, backend)
	if s, ok := dupStores[name]; ok {
		return s
	}

	dir := filepath.Join(benchCacheDir, name)
	exists := fileExists(dir)
	s, err := tkv.Open(dir, tkv.IntKey[uint64]{}, tkv.IntValue[uint64]{},
		tkv.WithBackend(backend), tkv.WithDuplicates(), tkv.WithMaxMapSize(4*tkv.GB))
	if err != nil {
		b.Fatal(err)
	}
	if !exists {
		for k := 0; k < numKeys; k++ {
			for v := 0; v < valsPerKey; v++ {
				if err := s.Add(uint64(k), uint64(v), false); err != nil {
					b.Fatal(err)
				}
			}
		}
		if err := s.Commit(); err != nil {
			b.Fatal(err)
		}
	}
	dupStores[name] = s
	return s
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CleanupBenchCache closes all cached stores.
func CleanupBenchCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	for _, s := range plainStores {
		s.Close()
	}
	for _, s := range dupStores {
		s.Close()
	}
	plainStores = make(map[string]*plainStore)
	dupStores = make(map[string]*dupStore)
}

// DeleteBenchCache removes all cached database files.
func DeleteBenchCache() error {
	return os.RemoveAll(benchCacheDir)
}
