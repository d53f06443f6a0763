package tkv

import "github.com/Giulio2002/tkv/internal/engine"

// TxOp is a function that operates on a scoped transaction.
// This is the callback type for View and Update.
type TxOp[K, V any] func(tx *Tx[K, V]) error

// Tx is a transaction scoped to a View or Update callback. It must not be
// used after the callback returns.
type Tx[K, V any] struct {
	s        *Store[K, V]
	writable bool
}

// View runs fn in a read-only transaction. The transaction is released
// when fn returns or panics.
func (s *Store[K, V]) View(fn TxOp[K, V]) error {
	return s.runTxn(txnRead, fn)
}

// Update runs fn in a read-write transaction. The transaction is committed
// when fn returns nil, or aborted when fn returns an error or panics.
func (s *Store[K, V]) Update(fn TxOp[K, V]) error {
	return s.runTxn(txnWrite, fn)
}

func (s *Store[K, V]) runTxn(state txnState, fn TxOp[K, V]) error {
	op := "view"
	if state == txnWrite {
		op = "update"
	}
	if err := s.usable(op); err != nil {
		return err
	}
	if s.state != txnNone {
		return newError(op, BadTransaction, "store already has an active transaction")
	}
	if err := s.begin(op, state); err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			s.finish(false)
		}
	}()

	if err := fn(&Tx[K, V]{s: s, writable: state == txnWrite}); err != nil {
		return err
	}
	committed = true
	return s.finish(true)
}

func (tx *Tx[K, V]) check(op string) error {
	if tx.s.state == txnNone {
		return newError(op, BadTransaction, "transaction has ended")
	}
	return nil
}

// Get returns the value stored under key.
func (tx *Tx[K, V]) Get(key K) (V, error) {
	var zero V
	if err := tx.check(opGet); err != nil {
		return zero, err
	}
	return tx.s.Get(key)
}

// Put stores value under key with the store's put flags.
func (tx *Tx[K, V]) Put(key K, value V) error {
	if err := tx.writableCheck(opAdd); err != nil {
		return err
	}
	countOp(opAdd, tx.s.dbLabel())
	return tx.s.put(key, value)
}

// Delete removes key and all of its values.
func (tx *Tx[K, V]) Delete(key K) error {
	if err := tx.writableCheck(opDelete); err != nil {
		return err
	}
	countOp(opDelete, tx.s.dbLabel())
	return tx.s.del(key)
}

func (tx *Tx[K, V]) writableCheck(op string) error {
	if err := tx.check(op); err != nil {
		return err
	}
	if !tx.writable {
		return translate(op, engine.NewError(op, engine.Permission))
	}
	return nil
}

// Len returns the number of key/value pairs.
func (tx *Tx[K, V]) Len() (uint64, error) {
	if err := tx.check(opStat); err != nil {
		return 0, err
	}
	return tx.s.entries()
}

// Cursor opens an unpositioned cursor. It is closed when the transaction
// ends.
func (tx *Tx[K, V]) Cursor() (*Cursor[K, V], error) {
	if err := tx.check(opCursor); err != nil {
		return nil, err
	}
	return tx.s.openCursor(opCursor)
}
