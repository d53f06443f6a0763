package bolt

import (
	"bytes"

	bolt "go.etcd.io/bbolt"

	"github.com/Giulio2002/tkv/internal/engine"
)

// Txn wraps a bbolt transaction.
type Txn struct {
	env      *Env
	tx       *bolt.Tx
	readOnly bool
	done     bool
	reset    bool
}

func (t *Txn) live(op string) error {
	if t.done || t.reset {
		return engine.NewError(op, engine.BadTxn)
	}
	return nil
}

func (t *Txn) writable(op string) error {
	if err := t.live(op); err != nil {
		return err
	}
	if t.readOnly {
		return engine.NewError(op, engine.Permission)
	}
	return nil
}

// OpenDBI opens the database called name ("" for the unnamed one). Flags
// are recorded on creation and must match on every later open. The unnamed
// database reads as missing until a write transaction records its flags.
func (t *Txn) OpenDBI(name string, flags uint) (engine.DBI, error) {
	const op = "dbi_open"
	if err := t.live(op); err != nil {
		return 0, err
	}
	bucket := []byte(mainBucket)
	if name != "" {
		if !engine.ValidName(name) {
			return 0, engine.NewError(op, engine.InvalidArgument)
		}
		bucket = []byte(name)
	}

	meta := t.tx.Bucket([]byte(metaBucket))
	if meta == nil {
		return 0, engine.NewError(op, engine.Invalid)
	}
	if stored := meta.Get(bucket); stored != nil {
		if len(stored) != 1 || uint(stored[0]) != flags&layoutFlags {
			return 0, engine.NewError(op, engine.Incompatible)
		}
		return t.env.register(name, bucket, flags), nil
	}
	switch {
	case flags&engine.Create == 0:
		return 0, engine.NewError(op, engine.NotFound)
	case t.readOnly:
		return 0, engine.NewError(op, engine.Permission)
	}

	exists := t.tx.Bucket(bucket) != nil
	if name != "" && !exists {
		var named uint32
		err := meta.ForEach(func(k, _ []byte) error {
			if string(k) != mainBucket {
				named++
			}
			return nil
		})
		if err != nil {
			return 0, wrap(op, err)
		}
		if named >= t.env.maxDBs {
			return 0, engine.NewError(op, engine.DBsFull)
		}
	}
	if _, err := t.tx.CreateBucketIfNotExists(bucket); err != nil {
		return 0, wrap(op, err)
	}
	if err := meta.Put(bucket, []byte{byte(flags & layoutFlags)}); err != nil {
		return 0, wrap(op, err)
	}
	return t.env.register(name, bucket, flags), nil
}

// bucket resolves dbi. A nil bucket with a nil error means the database has
// no bucket in this snapshot and reads as empty.
func (t *Txn) bucket(op string, dbi engine.DBI) (*dbInfo, *bolt.Bucket, error) {
	if err := t.live(op); err != nil {
		return nil, nil, err
	}
	info := t.env.lookup(dbi)
	if info == nil {
		return nil, nil, engine.NewError(op, engine.BadDBI)
	}
	b := t.tx.Bucket(info.bucket)
	if b == nil && !t.readOnly {
		var err error
		if b, err = t.tx.CreateBucket(info.bucket); err != nil {
			return nil, nil, wrap(op, err)
		}
	}
	return info, b, nil
}

func (t *Txn) Get(dbi engine.DBI, key []byte) ([]byte, error) {
	const op = "get"
	info, b, err := t.bucket(op, dbi)
	if err != nil {
		return nil, err
	}
	sk, err := encodeKey(op, info, key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, engine.NewError(op, engine.NotFound)
	}
	if info.dupSort() {
		inner := b.Bucket(sk)
		if inner == nil {
			return nil, engine.NewError(op, engine.NotFound)
		}
		v, _ := inner.Cursor().First()
		if v == nil {
			return nil, engine.NewError(op, engine.NotFound)
		}
		return decodeDup(info, v), nil
	}
	k, v := b.Cursor().Seek(sk)
	if k == nil || !bytes.Equal(k, sk) {
		return nil, engine.NewError(op, engine.NotFound)
	}
	return v, nil
}

func (t *Txn) Put(dbi engine.DBI, key, val []byte, flags uint) error {
	const op = "put"
	if err := t.writable(op); err != nil {
		return err
	}
	info, b, err := t.bucket(op, dbi)
	if err != nil {
		return err
	}
	// bbolt keeps both slices until commit
	key, val = bytes.Clone(key), bytes.Clone(val)
	sk, err := encodeKey(op, info, key)
	if err != nil {
		return err
	}
	if info.dupSort() {
		return t.putDup(info, b, sk, val, flags)
	}

	c := b.Cursor()
	if flags&engine.NoOverwrite != 0 {
		if k, _ := c.Seek(sk); k != nil && bytes.Equal(k, sk) {
			return engine.NewError(op, engine.KeyExist)
		}
	}
	if flags&engine.Append != 0 {
		if last, _ := c.Last(); last != nil && bytes.Compare(sk, last) <= 0 {
			return engine.NewError(op, engine.KeyExist)
		}
	}
	if err := b.Put(sk, val); err != nil {
		return wrap(op, err)
	}
	return nil
}

func (t *Txn) putDup(info *dbInfo, b *bolt.Bucket, sk, val []byte, flags uint) error {
	const op = "put"
	sv, err := encodeDup(op, info, val)
	if err != nil {
		return err
	}
	inner := b.Bucket(sk)
	if inner != nil && flags&engine.NoOverwrite != 0 {
		return engine.NewError(op, engine.KeyExist)
	}
	if inner != nil && info.flags&engine.DupFixed != 0 {
		if first, _ := inner.Cursor().First(); first != nil && len(first) != len(sv) {
			return engine.NewError(op, engine.BadValSize)
		}
	}
	if flags&engine.Append != 0 {
		if last, _ := b.Cursor().Last(); last != nil {
			switch cmp := bytes.Compare(sk, last); {
			case cmp < 0:
				return engine.NewError(op, engine.KeyExist)
			case cmp == 0 && inner != nil:
				if lastDup, _ := inner.Cursor().Last(); lastDup != nil && bytes.Compare(sv, lastDup) <= 0 {
					return engine.NewError(op, engine.KeyExist)
				}
			}
		}
	}
	if inner == nil {
		if inner, err = b.CreateBucket(sk); err != nil {
			return wrap(op, err)
		}
	} else if flags&engine.NoDupData != 0 {
		if k, _ := inner.Cursor().Seek(sv); k != nil && bytes.Equal(k, sv) {
			return engine.NewError(op, engine.KeyExist)
		}
	}
	if err := inner.Put(sv, []byte{}); err != nil {
		return wrap(op, err)
	}
	return nil
}

func (t *Txn) Del(dbi engine.DBI, key, val []byte) error {
	const op = "del"
	if err := t.writable(op); err != nil {
		return err
	}
	info, b, err := t.bucket(op, dbi)
	if err != nil {
		return err
	}
	sk, err := encodeKey(op, info, key)
	if err != nil {
		return err
	}

	if !info.dupSort() {
		if k, _ := b.Cursor().Seek(sk); k == nil || !bytes.Equal(k, sk) {
			return engine.NewError(op, engine.NotFound)
		}
		if err := b.Delete(sk); err != nil {
			return wrap(op, err)
		}
		return nil
	}

	inner := b.Bucket(sk)
	if inner == nil {
		return engine.NewError(op, engine.NotFound)
	}
	if val == nil {
		if err := b.DeleteBucket(sk); err != nil {
			return wrap(op, err)
		}
		return nil
	}
	sv, err := encodeDup(op, info, val)
	if err != nil {
		return err
	}
	if k, _ := inner.Cursor().Seek(sv); k == nil || !bytes.Equal(k, sv) {
		return engine.NewError(op, engine.NotFound)
	}
	if err := inner.Delete(sv); err != nil {
		return wrap(op, err)
	}
	if first, _ := inner.Cursor().First(); first == nil {
		if err := b.DeleteBucket(sk); err != nil {
			return wrap(op, err)
		}
	}
	return nil
}

func (t *Txn) OpenCursor(dbi engine.DBI) (engine.Cursor, error) {
	info, b, err := t.bucket("cursor_open", dbi)
	if err != nil {
		return nil, err
	}
	return &Cursor{txn: t, info: info, bucket: b}, nil
}

// Entries counts key/value pairs by walking the bucket; bbolt page
// statistics do not include uncommitted nodes.
func (t *Txn) Entries(dbi engine.DBI) (uint64, error) {
	const op = "dbi_stat"
	info, b, err := t.bucket(op, dbi)
	if err != nil || b == nil {
		return 0, err
	}
	var n uint64
	err = b.ForEach(func(k, _ []byte) error {
		if !info.dupSort() {
			n++
			return nil
		}
		inner := b.Bucket(k)
		if inner == nil {
			return nil
		}
		return inner.ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	if err != nil {
		return 0, wrap(op, err)
	}
	return n, nil
}

// Commit commits a write transaction. Committing a read-only transaction
// releases its snapshot.
func (t *Txn) Commit() error {
	const op = "txn_commit"
	if t.done {
		return engine.NewError(op, engine.BadTxn)
	}
	if t.readOnly {
		t.Abort()
		return nil
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return wrap(op, err)
	}
	return nil
}

func (t *Txn) Abort() {
	if t.done {
		return
	}
	t.done = true
	if t.reset {
		return
	}
	t.tx.Rollback()
	if t.readOnly {
		t.env.releaseReader()
	}
}

func (t *Txn) Reset() {
	if !t.readOnly || t.done || t.reset {
		return
	}
	t.tx.Rollback()
	t.env.releaseReader()
	t.reset = true
}

func (t *Txn) Renew() error {
	const op = "txn_renew"
	if !t.readOnly || t.done {
		return engine.NewError(op, engine.BadTxn)
	}
	t.Reset()
	if t.env.db == nil {
		return engine.NewError(op, engine.BadTxn)
	}
	if err := t.env.acquireReader(); err != nil {
		return err
	}
	tx, err := t.env.db.Begin(false)
	if err != nil {
		t.env.releaseReader()
		return wrap(op, err)
	}
	t.tx = tx
	t.reset = false
	return nil
}

func (t *Txn) ReadOnly() bool {
	return t.readOnly
}
