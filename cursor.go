package tkv

import (
	"bytes"

	"github.com/Giulio2002/tkv/internal/engine"
)

// Cursor iterates a database in key order inside the transaction it was
// opened in. Ending that transaction closes the cursor; any later use fails
// with BadTransaction.
//
// A cursor is either positioned on an entry or unpositioned. Absolute seeks
// on an empty database and relative moves past either end leave it
// unpositioned. A cursor that was never positioned starts at the first
// entry on Next and at the last one on Prev.
type Cursor[K, V any] struct {
	store *Store[K, V]
	cur   engine.Cursor

	key   []byte
	val   []byte
	valid bool

	ended  bool // owning transaction finished
	closed bool
}

// release closes the engine cursor when the owning transaction ends.
func (c *Cursor[K, V]) release() {
	if c.ended || c.closed {
		return
	}
	c.cur.Close()
	c.ended = true
	c.valid = false
}

func (c *Cursor[K, V]) usable() error {
	switch {
	case c.closed:
		return newError(opCursor, BadTransaction, "cursor is closed")
	case c.ended:
		return newError(opCursor, BadTransaction, "cursor outlived its transaction")
	}
	return nil
}

// move runs op and records the new position. A NotFound result leaves the
// cursor unpositioned and is returned as an error.
func (c *Cursor[K, V]) move(op engine.Op, key []byte) error {
	if err := c.get(op, key); err != nil {
		return translate(opCursor, err)
	}
	return nil
}

// get runs op and returns the engine error untranslated.
func (c *Cursor[K, V]) get(op engine.Op, key []byte) error {
	if err := c.usable(); err != nil {
		return err
	}
	k, v, err := c.cur.Get(key, nil, op)
	if err != nil {
		if engine.IsNotFound(err) && op != engine.NextDup {
			c.valid = false
		}
		return err
	}
	c.key = append(c.key[:0], k...)
	c.val = append(c.val[:0], v...)
	c.valid = true
	return nil
}

// step runs a relative move. Running out of entries is not an error.
func (c *Cursor[K, V]) step(op engine.Op) (bool, error) {
	err := c.get(op, nil)
	switch {
	case err == nil:
		return true, nil
	case engine.IsNotFound(err):
		return false, nil
	default:
		return false, translate(opCursor, err)
	}
}

// seekAbsolute treats an empty database as success.
func (c *Cursor[K, V]) seekAbsolute(op engine.Op) error {
	if err := c.get(op, nil); err != nil && !engine.IsNotFound(err) {
		return translate(opCursor, err)
	}
	return nil
}

// SeekBegin moves to the first entry. On an empty database the cursor is
// left unpositioned.
func (c *Cursor[K, V]) SeekBegin() error {
	return c.seekAbsolute(engine.First)
}

// SeekEnd moves to the last entry. On an empty database the cursor is left
// unpositioned.
func (c *Cursor[K, V]) SeekEnd() error {
	return c.seekAbsolute(engine.Last)
}

// Seek moves to the first entry of key, failing with NotFound if it is
// absent.
func (c *Cursor[K, V]) Seek(key K) error {
	kb, err := c.store.keys.EncodeKey(key)
	if err != nil {
		return err
	}
	return c.move(engine.Set, kb)
}

// Next moves to the next entry. It returns false when there is none.
func (c *Cursor[K, V]) Next() (bool, error) {
	return c.step(engine.Next)
}

// Prev moves to the previous entry. It returns false when there is none.
func (c *Cursor[K, V]) Prev() (bool, error) {
	return c.step(engine.Prev)
}

// NextDup moves to the next value of the current key in duplicate mode. It
// returns false, keeping the position, when the key has no more values.
func (c *Cursor[K, V]) NextDup() (bool, error) {
	return c.step(engine.NextDup)
}

// Valid reports whether the cursor is positioned on an entry.
func (c *Cursor[K, V]) Valid() bool {
	return c.valid && !c.ended && !c.closed
}

func (c *Cursor[K, V]) positioned() error {
	if err := c.usable(); err != nil {
		return err
	}
	if !c.valid {
		return newError(opCursor, NotFound, "cursor is not positioned")
	}
	return nil
}

// Key decodes the key at the cursor position.
func (c *Cursor[K, V]) Key() (K, error) {
	if err := c.positioned(); err != nil {
		var zero K
		return zero, err
	}
	return c.store.keys.DecodeKey(c.key)
}

// Value decodes the value at the cursor position.
func (c *Cursor[K, V]) Value() (V, error) {
	if err := c.positioned(); err != nil {
		var zero V
		return zero, err
	}
	return c.store.values.Decode(c.val)
}

// Equal reports whether both cursors are on the same key. Values are not
// compared. Two unpositioned cursors are equal, and nil counts as
// unpositioned.
func (c *Cursor[K, V]) Equal(other *Cursor[K, V]) bool {
	otherValid := other != nil && other.Valid()
	if c.Valid() != otherValid {
		return false
	}
	return !otherValid || bytes.Equal(c.key, other.key)
}

// Close releases the cursor. It is safe to call more than once and after
// the transaction ended.
func (c *Cursor[K, V]) Close() {
	if c.closed {
		return
	}
	if !c.ended {
		c.cur.Close()
		c.store.removeCursor(c)
	}
	c.closed = true
	c.valid = false
}
