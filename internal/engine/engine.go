// Package engine defines the primitive set the typed store consumes from an
// embedded MVCC key/value engine. Backends live in the mdbx and bolt
// subpackages; both report failures as *OpError carrying a Status so callers
// never look at backend-specific error values.
package engine

import (
	"os"
	"strings"
)

// DBI is a database handle, valid for the lifetime of the environment that
// opened it.
type DBI uint32

// Op is a cursor positioning operation.
type Op uint

// Cursor operations.
const (
	// First positions at the first key
	First Op = iota
	// Last positions at the last key
	Last
	// Next moves to the next key/value pair
	Next
	// Prev moves to the previous key/value pair
	Prev
	// Set positions at the given key
	Set
	// NextDup moves to the next value of the current key
	NextDup
	// GetCurrent returns the pair under the cursor
	GetCurrent
)

var opNames = [...]string{"first", "last", "next", "prev", "set", "next_dup", "get_current"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Database flags. Values match libmdbx.
const (
	// DBDefaults uses byte-lexicographic keys without duplicates
	DBDefaults uint = 0
	// DupSort allows multiple sorted values per key
	DupSort uint = 0x04
	// IntegerKey orders keys as native-endian uint32/uint64
	IntegerKey uint = 0x08
	// DupFixed requires every duplicate of a database to have the same size
	DupFixed uint = 0x10
	// IntegerDup orders duplicate values as native-endian uint32/uint64.
	// Requires DupFixed.
	IntegerDup uint = 0x20
	// Create creates the database if it doesn't exist
	Create uint = 0x40000
)

// MainTable is the table backing the unnamed database. The engine's root
// table only holds database names. The name is reserved.
const MainTable = "tkv.main"

// ValidName reports whether name can be used for a named database.
func ValidName(name string) bool {
	return name != "" && name != MainTable && strings.IndexByte(name, 0) < 0
}

// Put flags. Values match libmdbx.
const (
	// Upsert inserts or overwrites
	Upsert uint = 0
	// NoOverwrite fails with KeyExist if the key is present
	NoOverwrite uint = 0x10
	// NoDupData fails with KeyExist if the key/value pair is present
	NoDupData uint = 0x20
	// Append requires the key to sort after every existing key
	Append uint = 0x20000
)

// Env is an engine environment: one mapped data file plus its lock table.
// Limits must be configured before Open unless noted otherwise.
type Env interface {
	// SetMaxMapSize sets the upper bound of the data file. May be called
	// after Open while no transaction is active.
	SetMaxMapSize(size uint64) error
	SetMaxReaders(readers uint32) error
	// SetMaxDBs sets how many named databases the environment may hold,
	// the unnamed one not included.
	SetMaxDBs(dbs uint32) error

	Open(path string, mode os.FileMode) error
	BeginTxn(readOnly bool) (Txn, error)
	CloseDBI(dbi DBI)
	Close() error
}

// Txn is a read-only or read-write transaction. A Txn and its cursors must
// be used by one goroutine only.
type Txn interface {
	// OpenDBI opens the database called name, "" for the unnamed one.
	// Without Create a missing database fails with NotFound. Layout flags
	// are recorded on creation and must match on every later open.
	OpenDBI(name string, flags uint) (DBI, error)
	Get(dbi DBI, key []byte) ([]byte, error)
	Put(dbi DBI, key, val []byte, flags uint) error
	// Del removes key. A nil val removes every duplicate of key.
	Del(dbi DBI, key, val []byte) error
	OpenCursor(dbi DBI) (Cursor, error)
	// Entries returns the number of key/value pairs in the database.
	Entries(dbi DBI) (uint64, error)

	Commit() error
	Abort()
	// Reset releases the snapshot of a read-only transaction, Renew
	// acquires a fresh one.
	Reset()
	Renew() error
	ReadOnly() bool
}

// Cursor iterates one database inside one transaction.
type Cursor interface {
	Get(key, val []byte, op Op) ([]byte, []byte, error)
	Close()
}
