package tkv

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/Giulio2002/tkv/internal/engine"
	"github.com/Giulio2002/tkv/internal/engine/bolt"
	"github.com/Giulio2002/tkv/internal/engine/mdbx"
)

// envLabel tags environments created by this package.
const envLabel = "tkv"

// environments holds every open environment by absolute directory path.
var environments = xsync.NewMapOf[string, *Env]()

// Env is an open engine environment shared by every store of the process
// that was opened on the same directory. It is closed when the last store
// using it is closed.
type Env struct {
	path    string
	backend Backend
	env     engine.Env
	log     zerolog.Logger

	// guarded by environments
	refs int

	mu   sync.Mutex
	dbis map[string]*sharedDBI
}

type sharedDBI struct {
	dbi   engine.DBI
	flags DBFlags
	refs  int
}

// Path returns the environment directory.
func (e *Env) Path() string {
	return e.path
}

// Backend returns the engine the environment runs on.
func (e *Env) Backend() Backend {
	return e.backend
}

func newEngine(b Backend) (engine.Env, error) {
	switch b {
	case BackendMDBX:
		env, err := mdbx.New(envLabel)
		if err != nil {
			return nil, err
		}
		return env, nil
	case BackendBolt:
		return bolt.New(), nil
	default:
		return nil, engine.NewError("env_create", engine.InvalidArgument)
	}
}

// openEnv creates and opens an environment in dir with the limits in opts.
func openEnv(dir string, opts *options) (*Env, error) {
	env, err := newEngine(opts.backend)
	if err != nil {
		return nil, err
	}
	if err := env.SetMaxMapSize(opts.maxMapSize); err != nil {
		env.Close()
		return nil, err
	}
	if err := env.SetMaxReaders(opts.maxReaders); err != nil {
		env.Close()
		return nil, err
	}
	if err := env.SetMaxDBs(opts.maxDBs); err != nil {
		env.Close()
		return nil, err
	}
	if err := env.Open(dir, opts.fileMode); err != nil {
		env.Close()
		return nil, err
	}
	return &Env{
		path:    dir,
		backend: opts.backend,
		env:     env,
		log:     opts.logger.With().Str("component", "env").Str("path", dir).Logger(),
		dbis:    make(map[string]*sharedDBI),
	}, nil
}

// acquireEnv returns the environment for dir, opening it on first use.
// Limits in opts only apply when the environment is opened here.
func acquireEnv(dir string, opts *options) (*Env, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, newError(opOpen, Unknown, err.Error())
	}
	var openErr error
	env, _ := environments.Compute(abs, func(old *Env, loaded bool) (*Env, bool) {
		if loaded {
			if old.backend != opts.backend {
				openErr = newError(opOpen, IncompatibleOptions,
					fmt.Sprintf("environment is open with the %s backend", old.backend))
				return old, false
			}
			old.refs++
			return old, false
		}
		if err := checkDataFormat(abs, opts.backend); err != nil {
			openErr = err
			return nil, true
		}
		e, err := openEnv(abs, opts)
		if err != nil {
			openErr = translate(opOpen, err)
			return nil, true
		}
		e.refs = 1
		e.log.Debug().Stringer("backend", e.backend).Msg("environment opened")
		return e, false
	})
	if openErr != nil {
		return nil, openErr
	}
	return env, nil
}

// checkDataFormat fails when dir holds an environment of another backend or
// a data file that cannot be one.
func checkDataFormat(dir string, want Backend) error {
	b, found, err := detectBackend(dir)
	if err != nil {
		return err
	}
	if found && b != want {
		return newError(opOpen, IncompatibleOptions, fmt.Sprintf("environment was created by the %s backend", b))
	}
	return nil
}

// release drops one reference and closes the environment with the last one.
func (e *Env) release() error {
	var closeErr error
	environments.Compute(e.path, func(old *Env, loaded bool) (*Env, bool) {
		if !loaded || old != e {
			return old, !loaded
		}
		e.refs--
		if e.refs > 0 {
			return e, false
		}
		if err := e.env.Close(); err != nil {
			closeErr = translate(opClose, err)
		}
		e.log.Debug().Msg("environment closed")
		return nil, true
	})
	return closeErr
}

// openDBI returns the shared handle of the database called name. An
// existing database is opened in a read transaction so that a pending
// writer never delays a reader; a write transaction is only used to create
// it.
func (e *Env) openDBI(name string, flags DBFlags) (engine.DBI, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	layout := flags &^ Create
	if d, ok := e.dbis[name]; ok {
		if d.flags != layout {
			return 0, newError(opOpenDB, IncompatibleOptions,
				fmt.Sprintf("database %q is open with flags %#x", name, uint(d.flags)))
		}
		d.refs++
		return d.dbi, nil
	}

	dbi, err := e.openDBIWith(true, name, uint(layout))
	if engine.IsNotFound(err) && flags&Create != 0 {
		dbi, err = e.openDBIWith(false, name, uint(flags))
	}
	if err != nil {
		return 0, translate(opOpenDB, err)
	}
	e.dbis[name] = &sharedDBI{dbi: dbi, flags: layout, refs: 1}
	e.log.Debug().Str("db", name).Uint("flags", uint(flags)).Msg("database opened")
	return dbi, nil
}

// openDBIWith opens name in a short transaction of its own. Handles stay
// valid after the transaction commits.
func (e *Env) openDBIWith(readOnly bool, name string, flags uint) (engine.DBI, error) {
	txn, err := e.env.BeginTxn(readOnly)
	if err != nil {
		return 0, err
	}
	dbi, err := txn.OpenDBI(name, flags)
	if err != nil {
		txn.Abort()
		return 0, err
	}
	if err := txn.Commit(); err != nil {
		return 0, err
	}
	return dbi, nil
}

// closeDBI drops one reference to the database called name.
func (e *Env) closeDBI(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.dbis[name]
	if !ok {
		return
	}
	d.refs--
	if d.refs > 0 {
		return
	}
	e.env.CloseDBI(d.dbi)
	delete(e.dbis, name)
	e.log.Debug().Str("db", name).Msg("database closed")
}
