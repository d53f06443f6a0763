//go:build cgo && unix

package mdbx

import (
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/Giulio2002/tkv/internal/engine"
)

func errnoStatus(errno syscall.Errno) engine.Status {
	switch errno {
	case unix.EACCES, unix.EPERM, unix.EROFS:
		return engine.Permission
	case unix.EINVAL:
		return engine.InvalidArgument
	case unix.EBUSY:
		return engine.Busy
	default:
		return engine.Status(errno)
	}
}
