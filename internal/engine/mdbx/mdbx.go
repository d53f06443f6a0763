//go:build cgo

// Package mdbx is the libmdbx backend of the engine interfaces, built on
// github.com/erigontech/mdbx-go.
//
// libmdbx binds transactions to the OS thread that started them, so every
// transaction pins the calling goroutine with runtime.LockOSThread until it
// is committed or aborted. The goroutine that begins a transaction must
// finish it.
package mdbx

import (
	"os"
	"runtime"
	"sync"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/Giulio2002/tkv/internal/engine"
)

// Available reports whether the backend was compiled in.
const Available = true

// libmdbx table flags mdbx-go does not export. mdbx_dbi_open takes them
// as is.
const (
	integerKey uint = 0x08 // MDBX_INTEGERKEY
	integerDup uint = 0x20 // MDBX_INTEGERDUP
)

// Env wraps an mdbx environment.
type Env struct {
	env *mdbx.Env

	// named databases with an open handle, bounded by maxDBs
	mu     sync.Mutex
	maxDBs uint32
	named  map[string]engine.DBI
}

// New creates an environment handle. It must be opened before use.
func New(label string) (*Env, error) {
	env, err := mdbx.NewEnv(mdbx.Label(label))
	if err != nil {
		return nil, wrap("mdbx_env_create", err)
	}
	return &Env{env: env, named: make(map[string]engine.DBI)}, nil
}

func (e *Env) SetMaxMapSize(size uint64) error {
	if err := e.env.SetGeometry(-1, -1, int(size), -1, -1, -1); err != nil {
		return wrap("mdbx_env_set_geometry", err)
	}
	return nil
}

func (e *Env) SetMaxReaders(readers uint32) error {
	if err := e.env.SetOption(mdbx.OptMaxReaders, uint64(readers)); err != nil {
		return wrap("mdbx_env_set_maxreaders", err)
	}
	return nil
}

// SetMaxDBs reserves one extra table for the unnamed database. The limit
// on named databases is enforced here.
func (e *Env) SetMaxDBs(dbs uint32) error {
	if err := e.env.SetOption(mdbx.OptMaxDB, uint64(dbs)+1); err != nil {
		return wrap("mdbx_env_set_maxdbs", err)
	}
	e.mu.Lock()
	e.maxDBs = dbs
	e.mu.Unlock()
	return nil
}

func (e *Env) Open(path string, mode os.FileMode) error {
	if err := e.env.Open(path, 0, mode); err != nil {
		return wrap("mdbx_env_open", err)
	}
	return nil
}

func (e *Env) BeginTxn(readOnly bool) (engine.Txn, error) {
	var flags uint
	if readOnly {
		flags = mdbx.Readonly
	}
	runtime.LockOSThread()
	txn, err := e.env.BeginTxn(nil, flags)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, wrap("mdbx_txn_begin", err)
	}
	return &Txn{env: e, txn: txn, readOnly: readOnly}, nil
}

func (e *Env) CloseDBI(dbi engine.DBI) {
	e.mu.Lock()
	for name, d := range e.named {
		if d == dbi {
			delete(e.named, name)
		}
	}
	e.mu.Unlock()
	e.env.CloseDBI(mdbx.DBI(dbi))
}

func (e *Env) Close() error {
	e.env.Close()
	return nil
}

// Txn wraps an mdbx transaction.
type Txn struct {
	env      *Env
	txn      *mdbx.Txn
	readOnly bool
	done     bool
}

// OpenDBI opens a table. The unnamed database lives in engine.MainTable, so
// the root table only ever holds table names.
func (t *Txn) OpenDBI(name string, flags uint) (engine.DBI, error) {
	const op = "mdbx_dbi_open"
	if name == "" {
		dbi, err := t.txn.OpenDBISimple(engine.MainTable, dbFlags(flags))
		if err != nil {
			return 0, wrap(op, err)
		}
		return engine.DBI(dbi), nil
	}
	if !engine.ValidName(name) {
		return 0, engine.NewError(op, engine.InvalidArgument)
	}

	e := t.env
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.named[name]; !ok && uint32(len(e.named)) >= e.maxDBs {
		return 0, engine.NewError(op, engine.DBsFull)
	}
	dbi, err := t.txn.OpenDBISimple(name, dbFlags(flags))
	if err != nil {
		return 0, wrap(op, err)
	}
	e.named[name] = engine.DBI(dbi)
	return engine.DBI(dbi), nil
}

func (t *Txn) Get(dbi engine.DBI, key []byte) ([]byte, error) {
	val, err := t.txn.Get(mdbx.DBI(dbi), key)
	if err != nil {
		return nil, wrap("mdbx_get", err)
	}
	return val, nil
}

func (t *Txn) Put(dbi engine.DBI, key, val []byte, flags uint) error {
	if err := t.txn.Put(mdbx.DBI(dbi), key, val, putFlags(flags)); err != nil {
		return wrap("mdbx_put", err)
	}
	return nil
}

func (t *Txn) Del(dbi engine.DBI, key, val []byte) error {
	if err := t.txn.Del(mdbx.DBI(dbi), key, val); err != nil {
		return wrap("mdbx_del", err)
	}
	return nil
}

func (t *Txn) OpenCursor(dbi engine.DBI) (engine.Cursor, error) {
	cur, err := t.txn.OpenCursor(mdbx.DBI(dbi))
	if err != nil {
		return nil, wrap("mdbx_cursor_open", err)
	}
	return &Cursor{cur: cur}, nil
}

func (t *Txn) Entries(dbi engine.DBI) (uint64, error) {
	stat, err := t.txn.StatDBI(mdbx.DBI(dbi))
	if err != nil {
		return 0, wrap("mdbx_dbi_stat", err)
	}
	return stat.Entries, nil
}

func (t *Txn) Commit() error {
	if t.done {
		return engine.NewError("mdbx_txn_commit", engine.BadTxn)
	}
	t.done = true
	defer runtime.UnlockOSThread()
	if _, err := t.txn.Commit(); err != nil {
		return wrap("mdbx_txn_commit", err)
	}
	return nil
}

func (t *Txn) Abort() {
	if t.done {
		return
	}
	t.done = true
	t.txn.Abort()
	runtime.UnlockOSThread()
}

func (t *Txn) Reset() {
	if t.readOnly && !t.done {
		t.txn.Reset()
	}
}

func (t *Txn) Renew() error {
	if !t.readOnly || t.done {
		return engine.NewError("mdbx_txn_renew", engine.BadTxn)
	}
	if err := t.txn.Renew(); err != nil {
		return wrap("mdbx_txn_renew", err)
	}
	return nil
}

func (t *Txn) ReadOnly() bool {
	return t.readOnly
}

// Cursor wraps an mdbx cursor.
type Cursor struct {
	cur *mdbx.Cursor
}

func (c *Cursor) Get(key, val []byte, op engine.Op) ([]byte, []byte, error) {
	k, v, err := c.cur.Get(key, val, cursorOp(op))
	if err != nil {
		return nil, nil, wrap("mdbx_cursor_get", err)
	}
	return k, v, nil
}

func (c *Cursor) Close() {
	if c.cur != nil {
		c.cur.Close()
		c.cur = nil
	}
}

func dbFlags(flags uint) uint {
	var out uint
	if flags&engine.Create != 0 {
		out |= mdbx.Create
	}
	if flags&engine.DupSort != 0 {
		out |= mdbx.DupSort
	}
	if flags&engine.IntegerKey != 0 {
		out |= integerKey
	}
	if flags&engine.DupFixed != 0 {
		out |= mdbx.DupFixed
	}
	if flags&engine.IntegerDup != 0 {
		out |= integerDup
	}
	return out
}

func putFlags(flags uint) uint {
	var out uint
	if flags&engine.NoOverwrite != 0 {
		out |= mdbx.NoOverwrite
	}
	if flags&engine.NoDupData != 0 {
		out |= mdbx.NoDupData
	}
	if flags&engine.Append != 0 {
		out |= mdbx.Append
	}
	return out
}

func cursorOp(op engine.Op) uint {
	switch op {
	case engine.First:
		return mdbx.First
	case engine.Last:
		return mdbx.Last
	case engine.Next:
		return mdbx.Next
	case engine.Prev:
		return mdbx.Prev
	case engine.Set:
		return mdbx.SetKey
	case engine.NextDup:
		return mdbx.NextDup
	default:
		return mdbx.GetCurrent
	}
}
