package tkv

import "github.com/Giulio2002/tkv/internal/engine"

// mainDB labels the unnamed database in logs and metrics.
const mainDB = "main"

// resolveFlags derives the database flags from the codecs and options.
func resolveFlags[K, V any](keys KeyCodec[K], values Codec[V], o *options) DBFlags {
	flags := keys.keyFlags() | o.dbFlags
	if o.duplicates {
		flags |= DupSort
		if d, ok := values.(dupFlagger); ok {
			flags |= d.dupFlags()
		}
	}
	return normalizeFlags(flags)
}

// normalizeFlags adds the flags the engines require alongside others.
// Create also lets a fresh environment record the layout of the unnamed
// database.
func normalizeFlags(flags DBFlags) DBFlags {
	if flags&IntegerDup != 0 {
		flags |= DupFixed
	}
	return flags | Create
}

func (s *Store[K, V]) dbLabel() string {
	if s.name == "" {
		return mainDB
	}
	return s.name
}

// ensureDBI opens the database handle once per store.
func (s *Store[K, V]) ensureDBI() error {
	if s.dbiOpen {
		return nil
	}
	dbi, err := s.env.openDBI(s.name, s.dbFlags)
	if err != nil {
		return err
	}
	s.dbi = dbi
	s.dbiOpen = true
	return nil
}

// DBFlags returns the flags the database is opened with.
func (s *Store[K, V]) DBFlags() DBFlags {
	return s.dbFlags
}

// SetDBFlags replaces the flags derived from the codecs and options. The
// database must not have been opened yet.
func (s *Store[K, V]) SetDBFlags(flags DBFlags) error {
	if err := s.configurable(); err != nil {
		return err
	}
	if s.dbiOpen {
		return newError(opSetOption, IncompatibleOptions, "database flags are fixed once the database is open")
	}
	s.dbFlags = normalizeFlags(flags)
	return nil
}

// SetPutFlags sets the flags Add writes with.
func (s *Store[K, V]) SetPutFlags(flags PutFlags) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.putFlags = flags
	return nil
}

// SetMaxReaders forwards to the environment. Engines only accept it before
// the environment is open, so prefer WithMaxReaders.
func (s *Store[K, V]) SetMaxReaders(n uint32) error {
	return s.setEnv(func(env engine.Env) error { return env.SetMaxReaders(n) })
}

// SetMaxMapSize changes the upper bound of the data file.
func (s *Store[K, V]) SetMaxMapSize(size uint64) error {
	return s.setEnv(func(env engine.Env) error { return env.SetMaxMapSize(size) })
}

// SetMaxDBs forwards to the environment. Engines only accept it before the
// environment is open, so prefer WithMaxDBs.
func (s *Store[K, V]) SetMaxDBs(n uint32) error {
	return s.setEnv(func(env engine.Env) error { return env.SetMaxDBs(n) })
}

func (s *Store[K, V]) setEnv(fn func(engine.Env) error) error {
	if err := s.configurable(); err != nil {
		return err
	}
	if err := fn(s.env.env); err != nil {
		return translate(opSetOption, err)
	}
	return nil
}

// configurable fails while a transaction is active.
func (s *Store[K, V]) configurable() error {
	if err := s.usable(opSetOption); err != nil {
		return err
	}
	if s.state != txnNone {
		return newError(opSetOption, BadTransaction, "options cannot change during a transaction")
	}
	return nil
}
