package tkv

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/Giulio2002/tkv/internal/engine/mdbx"
)

// Backend selects the engine a store runs on.
type Backend int

const (
	// BackendMDBX uses libmdbx through cgo
	BackendMDBX Backend = iota
	// BackendBolt uses bbolt, pure Go
	BackendBolt
)

func (b Backend) String() string {
	switch b {
	case BackendMDBX:
		return "mdbx"
	case BackendBolt:
		return "bolt"
	default:
		return "unknown"
	}
}

// DefaultBackend is the backend Open uses without WithBackend: mdbx when it
// is compiled in, bolt otherwise.
func DefaultBackend() Backend {
	if mdbx.Available {
		return BackendMDBX
	}
	return BackendBolt
}

// ParseBackend returns the backend called name. An empty name selects
// DefaultBackend.
func ParseBackend(name string) (Backend, bool) {
	switch name {
	case "":
		return DefaultBackend(), true
	case "mdbx":
		return BackendMDBX, true
	case "bolt", "bbolt":
		return BackendBolt, true
	default:
		return 0, false
	}
}

type options struct {
	name       string
	maxReaders uint32
	maxMapSize uint64
	maxDBs     uint32
	duplicates bool
	dbFlags    DBFlags
	putFlags   PutFlags
	fileMode   os.FileMode
	backend    Backend
	logger     zerolog.Logger
}

func defaultOptions() options {
	return options{
		maxReaders: DefaultMaxReaders,
		maxMapSize: DefaultMaxMapSize,
		maxDBs:     DefaultMaxDBs,
		fileMode:   DefaultFileMode,
		backend:    DefaultBackend(),
		logger:     zerolog.Nop(),
	}
}

// Option configures Open.
type Option func(*options)

// WithName opens the named database, creating it if needed, instead of the
// unnamed one.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMaxReaders sets the environment's reader slot count.
func WithMaxReaders(n uint32) Option {
	return func(o *options) { o.maxReaders = n }
}

// WithMaxMapSize sets the upper bound of the environment's data file.
func WithMaxMapSize(size uint64) Option {
	return func(o *options) { o.maxMapSize = size }
}

// WithMaxDBs sets how many named databases the environment may hold.
func WithMaxDBs(n uint32) Option {
	return func(o *options) { o.maxDBs = n }
}

// WithDuplicates allows several sorted values per key.
func WithDuplicates() Option {
	return func(o *options) { o.duplicates = true }
}

// WithDBFlags adds database flags to the ones derived from the codecs.
func WithDBFlags(flags DBFlags) Option {
	return func(o *options) { o.dbFlags |= flags }
}

// WithPutFlags sets the flags Add writes with.
func WithPutFlags(flags PutFlags) Option {
	return func(o *options) { o.putFlags = flags }
}

// WithFileMode sets the permission of the engine's data files.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) { o.fileMode = mode }
}

// WithBackend selects the storage engine.
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithLogger sets the logger. Stores log nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
