//go:build cgo && !unix

package mdbx

import (
	"syscall"

	"github.com/Giulio2002/tkv/internal/engine"
)

func errnoStatus(errno syscall.Errno) engine.Status {
	switch errno {
	case syscall.EACCES, syscall.EPERM:
		return engine.Permission
	case syscall.EINVAL:
		return engine.InvalidArgument
	default:
		return engine.Status(errno)
	}
}
