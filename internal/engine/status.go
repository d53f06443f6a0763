package engine

import (
	"errors"
	"fmt"
)

// Status is an engine return code. Negative values are engine codes
// (libmdbx numbering), positive values are errno values.
type Status int

// Engine status codes.
const (
	// Success indicates the operation completed successfully
	Success Status = 0

	// KeyExist indicates the key/data pair already exists
	KeyExist Status = -30799
	// NotFound indicates the key/data pair was not found (EOF)
	NotFound Status = -30798
	// PageNotFound indicates a requested page was not found (corruption)
	PageNotFound Status = -30797
	// Corrupted indicates a located page was of the wrong type
	Corrupted Status = -30796
	// Panic indicates a fatal environment error
	Panic Status = -30795
	// VersionMismatch indicates the file version doesn't match the library
	VersionMismatch Status = -30794
	// Invalid indicates the file is not a valid database
	Invalid Status = -30793
	// MapFull indicates the environment map size was reached
	MapFull Status = -30792
	// DBsFull indicates the environment maxdbs was reached
	DBsFull Status = -30791
	// ReadersFull indicates the environment maxreaders was reached
	ReadersFull Status = -30790
	// TLSFull indicates too many TLS keys are in use
	TLSFull Status = -30789
	// TxnFull indicates the transaction has too many dirty pages
	TxnFull Status = -30788
	// CursorFull indicates cursor stack overflow
	CursorFull Status = -30787
	// PageFull indicates a page has no space (internal error)
	PageFull Status = -30786
	// MapResized indicates the data file outgrew the mapping
	MapResized Status = -30785
	// Incompatible indicates incompatible operation or flags
	Incompatible Status = -30784
	// BadRSlot indicates a reader slot was corrupted or reused
	BadRSlot Status = -30783
	// BadTxn indicates the transaction is invalid
	BadTxn Status = -30782
	// BadValSize indicates invalid key or data size
	BadValSize Status = -30781
	// BadDBI indicates the DBI handle is invalid
	BadDBI Status = -30780
	// Problem indicates an unexpected internal error
	Problem Status = -30779
	// Busy indicates another write transaction is running
	Busy Status = -30778

	// Permission is EACCES: write attempted in a read-only transaction or
	// access to the environment denied
	Permission Status = 13
	// InvalidArgument is EINVAL
	InvalidArgument Status = 22
)

var statusMessages = map[Status]string{
	Success:         "success",
	KeyExist:        "key/data pair already exists",
	NotFound:        "key/data pair not found",
	PageNotFound:    "requested page not found",
	Corrupted:       "located page was of wrong type",
	Panic:           "fatal environment error",
	VersionMismatch: "database version mismatch",
	Invalid:         "file is not a valid database",
	MapFull:         "environment mapsize limit reached",
	DBsFull:         "environment maxdbs limit reached",
	ReadersFull:     "environment maxreaders limit reached",
	TLSFull:         "too many thread-local storage keys",
	TxnFull:         "transaction has too many dirty pages",
	CursorFull:      "cursor stack overflow",
	PageFull:        "page has no space",
	MapResized:      "database grew beyond the mapping",
	Incompatible:    "incompatible operation or flags",
	BadRSlot:        "reader slot corrupted",
	BadTxn:          "transaction is invalid",
	BadValSize:      "invalid key or value size",
	BadDBI:          "invalid DBI handle",
	Problem:         "unexpected internal error",
	Busy:            "another write transaction is running",
	Permission:      "permission denied",
	InvalidArgument: "invalid argument",
}

func (s Status) String() string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return fmt.Sprintf("status %d", int(s))
}

// OpError is returned by every backend primitive that fails.
type OpError struct {
	Op     string
	Status Status
	Err    error // backend error, may be nil
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewError creates an OpError without a backend cause.
func NewError(op string, status Status) *OpError {
	return &OpError{Op: op, Status: status}
}

// WrapError creates an OpError around a backend error.
func WrapError(op string, status Status, err error) *OpError {
	return &OpError{Op: op, Status: status, Err: err}
}

// StatusOf returns the status carried by err, Success for nil and Problem
// for errors that did not come from a backend.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var e *OpError
	if errors.As(err, &e) {
		return e.Status
	}
	return Problem
}

// IsNotFound reports whether err carries NotFound.
func IsNotFound(err error) bool {
	return StatusOf(err) == NotFound
}
