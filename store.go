package tkv

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/Giulio2002/tkv/internal/engine"
)

// Store is a typed view of one database. It holds at most one transaction,
// begun lazily by the first operation that needs it: reads begin a read
// transaction, Add and Delete a write transaction. A Store and its cursors
// must be used by one goroutine at a time; open one Store per goroutine to
// share a database.
type Store[K, V any] struct {
	env      *Env
	keys     KeyCodec[K]
	values   Codec[V]
	name     string
	dbFlags  DBFlags
	putFlags PutFlags
	log      zerolog.Logger

	dbi     engine.DBI
	dbiOpen bool

	txn     engine.Txn
	state   txnState
	cursors []*Cursor[K, V]

	closed bool
}

// Open opens the database in dir, creating the directory if needed. The
// environment is shared with other stores of the process opened on the same
// directory; limits in opts apply only when this call opens it.
func Open[K, V any](dir string, keys KeyCodec[K], values Codec[V], opts ...Option) (*Store[K, V], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, &Error{Kind: Unknown, Op: opOpen, Message: "cannot create directory", Err: err}
	}
	env, err := acquireEnv(dir, &o)
	if err != nil {
		return nil, err
	}

	s := &Store[K, V]{
		env:      env,
		keys:     keys,
		values:   values,
		name:     o.name,
		dbFlags:  resolveFlags(keys, values, &o),
		putFlags: o.putFlags,
	}
	s.log = o.logger.With().Str("component", "store").Str("db", s.dbLabel()).Logger()
	s.log.Debug().Str("path", env.Path()).Msg("store opened")
	return s, nil
}

// Env returns the environment the store runs on.
func (s *Store[K, V]) Env() *Env {
	return s.env
}

// Name returns the database name, empty for the unnamed database.
func (s *Store[K, V]) Name() string {
	return s.name
}

// Get returns the value stored under key, or a NotFound error. In duplicate
// mode it returns the first value. Get leaves the transaction open.
func (s *Store[K, V]) Get(key K) (V, error) {
	var zero V
	if err := s.readTxn(opGet); err != nil {
		return zero, err
	}
	countOp(opGet, s.dbLabel())
	kb, err := s.keys.EncodeKey(key)
	if err != nil {
		return zero, err
	}
	raw, err := s.txn.Get(s.dbi, kb)
	if err != nil {
		return zero, translate(opGet, err)
	}
	return s.values.Decode(raw)
}

// Add stores value under key with the configured put flags. With autocommit
// the transaction is committed afterwards, and aborted if the write fails.
func (s *Store[K, V]) Add(key K, value V, autocommit bool) error {
	if err := s.writeTxn(opAdd); err != nil {
		return err
	}
	countOp(opAdd, s.dbLabel())
	err := s.put(key, value)
	return s.settle(err, autocommit)
}

// Put is Add with autocommit.
func (s *Store[K, V]) Put(key K, value V) error {
	return s.Add(key, value, true)
}

// Delete removes key and, in duplicate mode, all of its values.
func (s *Store[K, V]) Delete(key K, autocommit bool) error {
	if err := s.writeTxn(opDelete); err != nil {
		return err
	}
	countOp(opDelete, s.dbLabel())
	err := s.del(key)
	return s.settle(err, autocommit)
}

// DeleteValue removes one value of key in duplicate mode.
func (s *Store[K, V]) DeleteValue(key K, value V, autocommit bool) error {
	if err := s.writeTxn(opDelete); err != nil {
		return err
	}
	countOp(opDelete, s.dbLabel())
	err := s.delValue(key, value)
	return s.settle(err, autocommit)
}

// settle ends an autocommitted write: commit on success, abort on failure.
func (s *Store[K, V]) settle(err error, autocommit bool) error {
	if !autocommit {
		return err
	}
	if err != nil {
		s.finish(false)
		return err
	}
	return s.finish(true)
}

func (s *Store[K, V]) put(key K, value V) error {
	kb, err := s.keys.EncodeKey(key)
	if err != nil {
		return err
	}
	vb, err := s.values.Encode(value)
	if err != nil {
		return err
	}
	if err := s.txn.Put(s.dbi, kb, vb, uint(s.putFlags)); err != nil {
		return translate(opAdd, err)
	}
	return nil
}

func (s *Store[K, V]) del(key K) error {
	kb, err := s.keys.EncodeKey(key)
	if err != nil {
		return err
	}
	if err := s.txn.Del(s.dbi, kb, nil); err != nil {
		return translate(opDelete, err)
	}
	return nil
}

func (s *Store[K, V]) delValue(key K, value V) error {
	kb, err := s.keys.EncodeKey(key)
	if err != nil {
		return err
	}
	vb, err := s.values.Encode(value)
	if err != nil {
		return err
	}
	if err := s.txn.Del(s.dbi, kb, vb); err != nil {
		return translate(opDelete, err)
	}
	return nil
}

// IsEmpty reports whether the database holds no entries.
func (s *Store[K, V]) IsEmpty() (bool, error) {
	n, err := s.Len()
	return n == 0, err
}

// Len returns the number of key/value pairs in the database.
func (s *Store[K, V]) Len() (uint64, error) {
	if err := s.readTxn(opStat); err != nil {
		return 0, err
	}
	countOp(opStat, s.dbLabel())
	return s.entries()
}

func (s *Store[K, V]) entries() (uint64, error) {
	n, err := s.txn.Entries(s.dbi)
	if err != nil {
		return 0, translate(opStat, err)
	}
	return n, nil
}

// Begin returns a cursor on the first entry.
func (s *Store[K, V]) Begin() (*Cursor[K, V], error) {
	return s.position(engine.First, nil)
}

// End returns a cursor on the last entry.
func (s *Store[K, V]) End() (*Cursor[K, V], error) {
	return s.position(engine.Last, nil)
}

// FindFirst returns a cursor on the first entry of key.
func (s *Store[K, V]) FindFirst(key K) (*Cursor[K, V], error) {
	kb, err := s.keys.EncodeKey(key)
	if err != nil {
		return nil, err
	}
	return s.position(engine.Set, kb)
}

// position opens a cursor and moves it with op. The cursor is closed again
// if there is no such entry.
func (s *Store[K, V]) position(op engine.Op, key []byte) (*Cursor[K, V], error) {
	if err := s.readTxn(opCursor); err != nil {
		return nil, err
	}
	countOp(opCursor, s.dbLabel())
	c, err := s.openCursor(opCursor)
	if err != nil {
		return nil, err
	}
	if err := c.move(op, key); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Values returns every value stored under key in sorted order.
func (s *Store[K, V]) Values(key K) ([]V, error) {
	c, err := s.FindFirst(key)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var out []V
	for {
		v, err := c.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		ok, err := c.NextDup()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
	}
}

// Close aborts a pending transaction, releases the database handle and the
// environment. Close is idempotent; any other call afterwards fails with
// BadDatabase.
func (s *Store[K, V]) Close() error {
	if s.closed {
		return nil
	}
	if s.state != txnNone {
		s.log.Warn().Stringer("txn", s.state).Int("cursors", len(s.cursors)).
			Msg("closing store with an active transaction, aborting")
		s.finish(false)
	}
	if s.dbiOpen {
		s.env.closeDBI(s.name)
		s.dbiOpen = false
	}
	s.closed = true
	return s.env.release()
}
