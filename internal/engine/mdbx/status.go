//go:build cgo

package mdbx

import (
	"errors"
	"syscall"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/Giulio2002/tkv/internal/engine"
)

// wrap converts an mdbx-go error into an engine.OpError. mdbx-go reports
// failures as *mdbx.OpError whose Errno is either an mdbx.Errno (engine code)
// or a syscall.Errno.
func wrap(op string, err error) error {
	return engine.WrapError(op, statusOf(err), err)
}

func statusOf(err error) engine.Status {
	var opErr *mdbx.OpError
	if errors.As(err, &opErr) {
		switch e := opErr.Errno.(type) {
		case mdbx.Errno:
			return engine.Status(e)
		case syscall.Errno:
			return errnoStatus(e)
		}
	}
	var code mdbx.Errno
	if errors.As(err, &code) {
		return engine.Status(code)
	}
	var sys syscall.Errno
	if errors.As(err, &sys) {
		return errnoStatus(sys)
	}
	if mdbx.IsNotFound(err) {
		return engine.NotFound
	}
	return engine.Problem
}
