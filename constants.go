package tkv

import (
	"os"

	"github.com/Giulio2002/tkv/internal/engine"
)

// DBFlags configure a database when it is first opened. They are fixed for
// the lifetime of the database.
type DBFlags uint

// Database flags. Values match libmdbx.
const (
	// DBDefaults orders keys byte-lexicographically without duplicates
	DBDefaults = DBFlags(engine.DBDefaults)
	// DupSort allows multiple sorted values per key
	DupSort = DBFlags(engine.DupSort)
	// IntegerKey orders keys as native-endian uint32/uint64
	IntegerKey = DBFlags(engine.IntegerKey)
	// DupFixed requires every duplicate value to have the same size
	DupFixed = DBFlags(engine.DupFixed)
	// IntegerDup orders duplicate values as native-endian uint32/uint64.
	// DupFixed is added with it.
	IntegerDup = DBFlags(engine.IntegerDup)
	// Create creates the database if it doesn't exist
	Create = DBFlags(engine.Create)
)

// PutFlags select the write semantics of Add.
type PutFlags uint

// Put flags. Values match libmdbx.
const (
	// Upsert inserts or overwrites
	Upsert = PutFlags(engine.Upsert)
	// NoOverwrite fails with KeyExists if the key is present
	NoOverwrite = PutFlags(engine.NoOverwrite)
	// NoDupData fails with KeyExists if the key/value pair is present
	NoDupData = PutFlags(engine.NoDupData)
	// Append requires keys to be added in sorted order
	Append = PutFlags(engine.Append)
)

// Size units
const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
)

// Defaults applied by Open.
const (
	DefaultMaxMapSize = 64 * MB
	DefaultMaxReaders = 126
	DefaultMaxDBs     = 10

	// DefaultFileMode is the permission of the engine data files
	DefaultFileMode os.FileMode = 0o644

	// dirMode is the permission of a directory created by Open
	dirMode os.FileMode = 0o775
)

// Operation names used in errors, logs and metrics.
const (
	opOpen      = "open"
	opOpenDB    = "open_db"
	opGet       = "get"
	opAdd       = "add"
	opDelete    = "delete"
	opCommit    = "commit"
	opAbort     = "abort"
	opRenew     = "renew"
	opStat      = "stat"
	opCursor    = "cursor"
	opSetOption = "set_option"
	opClose     = "close"
)
