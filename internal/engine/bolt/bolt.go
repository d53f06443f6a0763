// Package bolt is a pure-Go backend of the engine interfaces built on
// go.etcd.io/bbolt.
//
// Each database is a top-level bucket. Duplicate-sort databases store every
// key as a nested bucket whose keys are the sorted values. Integer keys and
// integer duplicates are kept big-endian on disk so bbolt's byte ordering
// matches numeric ordering; callers see native-endian bytes like libmdbx.
// The map size limit is advisory: bbolt grows the file on demand.
package bolt

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Giulio2002/tkv/internal/engine"
	"github.com/Giulio2002/tkv/internal/fastmap"
)

// DataFile is the name of the bbolt file inside the environment directory.
const DataFile = "data.db"

const (
	mainBucket = "\x00main"
	metaBucket = "\x00meta"

	// MainDBI is the handle of the unnamed database.
	MainDBI engine.DBI = 1
)

const (
	defaultMaxReaders = 126
	defaultLockWait   = time.Second
)

// persisted flags, the rest are open-time only
const layoutFlags = engine.DupSort | engine.IntegerKey | engine.DupFixed | engine.IntegerDup

type dbInfo struct {
	name   string
	bucket []byte
	flags  uint
}

func (d *dbInfo) dupSort() bool {
	return d.flags&engine.DupSort != 0
}

// Env is a bbolt-backed environment.
type Env struct {
	db         *bolt.DB
	maxMapSize uint64
	maxReaders uint32
	maxDBs     uint32
	readers    atomic.Int32

	mu    sync.Mutex
	dbis  fastmap.Uint32Map[dbInfo]
	names map[string]engine.DBI
	next  engine.DBI
}

// New creates an environment handle. It must be opened before use.
func New() *Env {
	return &Env{
		maxReaders: defaultMaxReaders,
		names:      make(map[string]engine.DBI),
		next:       MainDBI + 1,
	}
}

func (e *Env) SetMaxMapSize(size uint64) error {
	e.maxMapSize = size
	return nil
}

func (e *Env) SetMaxReaders(readers uint32) error {
	if e.db != nil {
		return engine.NewError("env_set_maxreaders", engine.Permission)
	}
	e.maxReaders = readers
	return nil
}

func (e *Env) SetMaxDBs(dbs uint32) error {
	if e.db != nil {
		return engine.NewError("env_set_maxdbs", engine.Permission)
	}
	e.maxDBs = dbs
	return nil
}

// Open opens (creating if needed) the data file in directory path.
func (e *Env) Open(path string, mode os.FileMode) error {
	if e.db != nil {
		return engine.NewError("env_open", engine.Busy)
	}
	opts := &bolt.Options{
		Timeout:         defaultLockWait,
		InitialMmapSize: int(e.maxMapSize),
	}
	db, err := bolt.Open(filepath.Join(path, DataFile), mode, opts)
	if err != nil {
		return wrap("env_open", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(metaBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(mainBucket))
		return err
	})
	if err != nil {
		db.Close()
		return wrap("env_open", err)
	}
	e.db = db
	return nil
}

func (e *Env) BeginTxn(readOnly bool) (engine.Txn, error) {
	if e.db == nil {
		return nil, engine.NewError("txn_begin", engine.BadTxn)
	}
	if readOnly {
		if err := e.acquireReader(); err != nil {
			return nil, err
		}
	}
	tx, err := e.db.Begin(!readOnly)
	if err != nil {
		if readOnly {
			e.releaseReader()
		}
		return nil, wrap("txn_begin", err)
	}
	return &Txn{env: e, tx: tx, readOnly: readOnly}, nil
}

func (e *Env) CloseDBI(dbi engine.DBI) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if info := e.dbis.Get(uint32(dbi)); info != nil {
		delete(e.names, info.name)
		e.dbis.Delete(uint32(dbi))
	}
}

func (e *Env) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	e.mu.Lock()
	e.dbis.Clear()
	clear(e.names)
	e.mu.Unlock()
	if err != nil {
		return wrap("env_close", err)
	}
	return nil
}

func (e *Env) acquireReader() error {
	if n := e.readers.Add(1); uint32(n) > e.maxReaders {
		e.readers.Add(-1)
		return engine.NewError("txn_begin", engine.ReadersFull)
	}
	return nil
}

func (e *Env) releaseReader() {
	e.readers.Add(-1)
}

func (e *Env) lookup(dbi engine.DBI) *dbInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dbis.Get(uint32(dbi))
}

// register returns the handle for name, assigning one on first use.
func (e *Env) register(name string, bucket []byte, flags uint) engine.DBI {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dbi, ok := e.names[name]; ok {
		return dbi
	}
	dbi := MainDBI
	if name != "" {
		dbi = e.next
		e.next++
	}
	e.names[name] = dbi
	e.dbis.Set(uint32(dbi), &dbInfo{name: name, bucket: bucket, flags: flags & layoutFlags})
	return dbi
}
