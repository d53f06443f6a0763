//go:build !cgo

package mdbx

import (
	"errors"
	"os"

	"github.com/Giulio2002/tkv/internal/engine"
)

// Available reports whether the backend was compiled in.
const Available = false

var errNoCgo = errors.New("mdbx backend requires cgo")

// Env is a placeholder; New always fails without cgo.
type Env struct{}

// New fails: libmdbx is linked through cgo.
func New(label string) (*Env, error) {
	return nil, engine.WrapError("mdbx_env_create", engine.Incompatible, errNoCgo)
}

func (e *Env) SetMaxMapSize(uint64) error        { return errNoCgo }
func (e *Env) SetMaxReaders(uint32) error        { return errNoCgo }
func (e *Env) SetMaxDBs(uint32) error            { return errNoCgo }
func (e *Env) Open(string, os.FileMode) error    { return errNoCgo }
func (e *Env) BeginTxn(bool) (engine.Txn, error) { return nil, errNoCgo }
func (e *Env) CloseDBI(engine.DBI)               {}
func (e *Env) Close() error                      { return nil }
