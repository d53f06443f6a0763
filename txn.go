package tkv

// txnState is the transaction a store currently holds.
type txnState uint8

const (
	txnNone txnState = iota
	txnRead
	txnWrite
)

func (s txnState) String() string {
	switch s {
	case txnRead:
		return "read"
	case txnWrite:
		return "write"
	default:
		return "none"
	}
}

// usable fails once the store is closed.
func (s *Store[K, V]) usable(op string) error {
	if s.closed {
		return newError(op, BadDatabase, "store is closed")
	}
	return nil
}

// readTxn makes sure a transaction is active. Any transaction can serve
// reads, so a write transaction is kept.
func (s *Store[K, V]) readTxn(op string) error {
	if err := s.usable(op); err != nil {
		return err
	}
	if s.state != txnNone {
		return nil
	}
	return s.begin(op, txnRead)
}

// writeTxn makes sure a write transaction is active. A read transaction is
// released and replaced, which is only possible while no cursor uses it.
func (s *Store[K, V]) writeTxn(op string) error {
	if err := s.usable(op); err != nil {
		return err
	}
	switch s.state {
	case txnWrite:
		return nil
	case txnRead:
		if len(s.cursors) > 0 {
			return newError(op, BadTransaction, "cannot upgrade a read transaction with live cursors")
		}
		s.log.Debug().Msg("releasing read transaction for write")
		s.finish(false)
	}
	return s.begin(op, txnWrite)
}

func (s *Store[K, V]) begin(op string, state txnState) error {
	if err := s.ensureDBI(); err != nil {
		return err
	}
	txn, err := s.env.env.BeginTxn(state == txnRead)
	if err != nil {
		return translate(op, err)
	}
	s.txn = txn
	s.state = state
	countTxn(state, "begin")
	s.log.Debug().Stringer("txn", state).Str("op", op).Msg("transaction started")
	return nil
}

// finish commits or aborts the current transaction and invalidates its
// cursors. Committing a read transaction releases its snapshot.
func (s *Store[K, V]) finish(commit bool) error {
	if s.state == txnNone {
		return nil
	}
	s.closeAllCursors()
	txn, state := s.txn, s.state
	s.txn = nil
	s.state = txnNone

	if !commit {
		txn.Abort()
		countTxn(state, "abort")
		s.log.Debug().Stringer("txn", state).Msg("transaction aborted")
		return nil
	}
	if err := txn.Commit(); err != nil {
		countTxn(state, "failed")
		return translate(opCommit, err)
	}
	countTxn(state, "commit")
	s.log.Debug().Stringer("txn", state).Msg("transaction committed")
	return nil
}

// Commit commits the current transaction. It fails with BadTransaction when
// no transaction is active.
func (s *Store[K, V]) Commit() error {
	if err := s.usable(opCommit); err != nil {
		return err
	}
	if s.state == txnNone {
		return newError(opCommit, BadTransaction, "no active transaction")
	}
	return s.finish(true)
}

// Abort discards the current transaction, if any.
func (s *Store[K, V]) Abort() error {
	if err := s.usable(opAbort); err != nil {
		return err
	}
	return s.finish(false)
}

// Renew replaces the snapshot of the current read transaction with the
// latest committed state. Live cursors are closed.
func (s *Store[K, V]) Renew() error {
	if err := s.usable(opRenew); err != nil {
		return err
	}
	if s.state != txnRead {
		return newError(opRenew, BadTransaction, "no active read transaction")
	}
	s.closeAllCursors()
	s.txn.Reset()
	if err := s.txn.Renew(); err != nil {
		s.txn.Abort()
		s.txn = nil
		s.state = txnNone
		return translate(opRenew, err)
	}
	s.log.Debug().Msg("read transaction renewed")
	return nil
}

// InTransaction reports whether the store holds an active transaction.
func (s *Store[K, V]) InTransaction() bool {
	return s.state != txnNone
}

// openCursor opens an engine cursor bound to the current transaction.
func (s *Store[K, V]) openCursor(op string) (*Cursor[K, V], error) {
	cur, err := s.txn.OpenCursor(s.dbi)
	if err != nil {
		return nil, translate(op, err)
	}
	c := &Cursor[K, V]{store: s, cur: cur}
	s.cursors = append(s.cursors, c)
	return c, nil
}

// removeCursor drops c from the live cursor list.
func (s *Store[K, V]) removeCursor(c *Cursor[K, V]) {
	n := len(s.cursors)
	for i := 0; i < n; i++ {
		if s.cursors[i] == c {
			s.cursors[i] = s.cursors[n-1]
			s.cursors[n-1] = nil
			s.cursors = s.cursors[:n-1]
			return
		}
	}
}

// closeAllCursors releases every live cursor of the current transaction.
func (s *Store[K, V]) closeAllCursors() {
	for _, c := range s.cursors {
		c.release()
	}
	s.cursors = nil
}
