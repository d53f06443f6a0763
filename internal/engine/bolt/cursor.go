package bolt

import (
	"bytes"

	bolt "go.etcd.io/bbolt"

	"github.com/Giulio2002/tkv/internal/engine"
)

type cursorState uint8

const (
	unset cursorState = iota
	positioned
	atEOF
	atBOF
)

// Cursor walks one database. Every move re-seeks from the remembered
// position, so writes made through the same transaction between moves are
// observed.
type Cursor struct {
	txn    *Txn
	info   *dbInfo
	bucket *bolt.Bucket // nil when the database has no bucket yet
	closed bool

	state cursorState
	key   []byte // stored form
	val   []byte // stored form
}

func (c *Cursor) Get(key, _ []byte, op engine.Op) ([]byte, []byte, error) {
	const name = "cursor_get"
	if c.closed {
		return nil, nil, engine.NewError(name, engine.InvalidArgument)
	}
	if err := c.txn.live(name); err != nil {
		return nil, nil, err
	}
	if c.bucket == nil {
		c.state = unset
		return nil, nil, engine.NewError(name, engine.NotFound)
	}

	var ok bool
	switch op {
	case engine.First:
		ok = c.first()
	case engine.Last:
		ok = c.last()
	case engine.Next:
		switch c.state {
		case unset, atBOF:
			ok = c.first()
		case positioned:
			ok = c.next()
		}
		if !ok {
			c.state = atEOF
		}
	case engine.Prev:
		switch c.state {
		case unset, atEOF:
			ok = c.last()
		case positioned:
			ok = c.prev()
		}
		if !ok {
			c.state = atBOF
		}
	case engine.Set:
		sk, err := encodeKey(name, c.info, key)
		if err != nil {
			return nil, nil, err
		}
		ok = c.set(sk)
	case engine.NextDup:
		if c.state != positioned || !c.info.dupSort() {
			return nil, nil, engine.NewError(name, engine.NotFound)
		}
		if !c.nextDup() {
			return nil, nil, engine.NewError(name, engine.NotFound)
		}
		ok = true
	case engine.GetCurrent:
		ok = c.state == positioned
	default:
		return nil, nil, engine.NewError(name, engine.InvalidArgument)
	}
	if !ok {
		if op != engine.Next && op != engine.Prev && op != engine.GetCurrent {
			c.state = unset
		}
		return nil, nil, engine.NewError(name, engine.NotFound)
	}
	return c.current()
}

func (c *Cursor) Close() {
	c.closed = true
	c.bucket = nil
}

func (c *Cursor) current() ([]byte, []byte, error) {
	k := decodeKey(c.info, c.key)
	if c.info.dupSort() {
		return k, decodeDup(c.info, c.val), nil
	}
	return k, c.val, nil
}

// moveTo positions on outer key k, picking its first or last duplicate.
func (c *Cursor) moveTo(k, v []byte, lastDup bool) bool {
	if k == nil {
		return false
	}
	if c.info.dupSort() {
		inner := c.bucket.Bucket(k)
		if inner == nil {
			return false
		}
		ic := inner.Cursor()
		if lastDup {
			v, _ = ic.Last()
		} else {
			v, _ = ic.First()
		}
		if v == nil {
			return false
		}
	}
	c.key, c.val, c.state = bytes.Clone(k), bytes.Clone(v), positioned
	return true
}

func (c *Cursor) first() bool {
	k, v := c.bucket.Cursor().First()
	return c.moveTo(k, v, false)
}

func (c *Cursor) last() bool {
	k, v := c.bucket.Cursor().Last()
	return c.moveTo(k, v, true)
}

func (c *Cursor) set(sk []byte) bool {
	k, v := c.bucket.Cursor().Seek(sk)
	if k == nil || !bytes.Equal(k, sk) {
		return false
	}
	return c.moveTo(k, v, false)
}

func (c *Cursor) nextDup() bool {
	inner := c.bucket.Bucket(c.key)
	if inner == nil {
		return false
	}
	ic := inner.Cursor()
	v, _ := ic.Seek(c.val)
	if v != nil && bytes.Equal(v, c.val) {
		v, _ = ic.Next()
	}
	if v == nil {
		return false
	}
	c.val = bytes.Clone(v)
	return true
}

func (c *Cursor) next() bool {
	if c.info.dupSort() && c.nextDup() {
		return true
	}
	oc := c.bucket.Cursor()
	k, v := oc.Seek(c.key)
	if k != nil && bytes.Equal(k, c.key) {
		k, v = oc.Next()
	}
	return c.moveTo(k, v, false)
}

func (c *Cursor) prev() bool {
	if c.info.dupSort() {
		if inner := c.bucket.Bucket(c.key); inner != nil {
			ic := inner.Cursor()
			v, _ := ic.Seek(c.val)
			if v == nil {
				v, _ = ic.Last()
			} else {
				v, _ = ic.Prev()
			}
			if v != nil {
				c.val = bytes.Clone(v)
				return true
			}
		}
	}
	oc := c.bucket.Cursor()
	k, v := oc.Seek(c.key)
	if k == nil {
		k, v = oc.Last()
	} else {
		k, v = oc.Prev()
	}
	return c.moveTo(k, v, true)
}
