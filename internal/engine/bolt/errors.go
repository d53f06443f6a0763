package bolt

import (
	"errors"
	"io/fs"

	berrors "go.etcd.io/bbolt/errors"

	"github.com/Giulio2002/tkv/internal/engine"
)

// wrap converts a bbolt error into an engine.OpError.
func wrap(op string, err error) error {
	return engine.WrapError(op, statusOf(err), err)
}

func statusOf(err error) engine.Status {
	switch {
	case errors.Is(err, berrors.ErrTxNotWritable),
		errors.Is(err, berrors.ErrDatabaseReadOnly),
		errors.Is(err, fs.ErrPermission):
		return engine.Permission
	case errors.Is(err, berrors.ErrTxClosed),
		errors.Is(err, berrors.ErrDatabaseNotOpen):
		return engine.BadTxn
	case errors.Is(err, berrors.ErrKeyRequired),
		errors.Is(err, berrors.ErrKeyTooLarge),
		errors.Is(err, berrors.ErrValueTooLarge),
		errors.Is(err, berrors.ErrBucketNameRequired):
		return engine.BadValSize
	case errors.Is(err, berrors.ErrIncompatibleValue):
		return engine.Incompatible
	case errors.Is(err, berrors.ErrBucketExists):
		return engine.KeyExist
	case errors.Is(err, berrors.ErrBucketNotFound):
		return engine.NotFound
	case errors.Is(err, berrors.ErrInvalid):
		return engine.Invalid
	case errors.Is(err, berrors.ErrVersionMismatch):
		return engine.VersionMismatch
	case errors.Is(err, berrors.ErrChecksum):
		return engine.Corrupted
	case errors.Is(err, berrors.ErrTimeout):
		return engine.Busy
	}
	return engine.Problem
}
