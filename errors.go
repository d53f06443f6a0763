package tkv

import (
	"errors"
	"fmt"

	"github.com/Giulio2002/tkv/internal/engine"
)

// Error is returned by every store, cursor and transaction operation that
// fails inside the engine.
type Error struct {
	Kind    Kind
	Op      string // store operation that failed
	Message string
	Err     error // wrapped engine error
}

func (e *Error) Error() string {
	prefix := "tkv: "
	if e.Op != "" {
		prefix += e.Op + ": "
	}
	if e.Err != nil {
		return fmt.Sprintf("%s%s: %v", prefix, e.Message, e.Err)
	}
	return prefix + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so the Err* sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind classifies store errors.
type Kind int

// Error kinds.
const (
	// Unknown covers permission denial, invalid arguments and unmapped codes
	Unknown Kind = iota
	// KeyExists indicates the key/value pair already exists
	KeyExists
	// NotFound indicates the key/value pair was not found
	NotFound
	// PageNotFound indicates a requested page was not found
	PageNotFound
	// PageMismatch indicates a located page was of the wrong type
	PageMismatch
	// Panic indicates a fatal environment error
	Panic
	// VersionMismatch indicates the environment was written by another version
	VersionMismatch
	// InvalidFile indicates the data file is not a valid database
	InvalidFile
	// MaxMapExceeded indicates the map size limit was reached
	MaxMapExceeded
	// MaxDbsExceeded indicates the named database limit was reached
	MaxDbsExceeded
	// MaxReadersExceeded indicates the reader slot table is full
	MaxReadersExceeded
	// TLSLimitExceeded indicates too many thread-local keys are in use
	TLSLimitExceeded
	// MaxDirtyTxnExceeded indicates the transaction has too many dirty pages
	MaxDirtyTxnExceeded
	// CursorDepthExceeded indicates cursor stack overflow
	CursorDepthExceeded
	// MapsizeTooSmall indicates the database outgrew the configured map size
	MapsizeTooSmall
	// IncompatibleOptions indicates the operation conflicts with database flags
	IncompatibleOptions
	// InvalidReuse indicates a reader slot was reused incorrectly
	InvalidReuse
	// BadTransaction indicates the transaction is invalid or missing
	BadTransaction
	// BadDatabase indicates the database handle is invalid or closed
	BadDatabase
)

var kindNames = [...]string{
	Unknown:             "Unknown",
	KeyExists:           "KeyExists",
	NotFound:            "NotFound",
	PageNotFound:        "PageNotFound",
	PageMismatch:        "PageMismatch",
	Panic:               "Panic",
	VersionMismatch:     "VersionMismatch",
	InvalidFile:         "InvalidFile",
	MaxMapExceeded:      "MaxMapExceeded",
	MaxDbsExceeded:      "MaxDbsExceeded",
	MaxReadersExceeded:  "MaxReadersExceeded",
	TLSLimitExceeded:    "TLSLimitExceeded",
	MaxDirtyTxnExceeded: "MaxDirtyTxnExceeded",
	CursorDepthExceeded: "CursorDepthExceeded",
	MapsizeTooSmall:     "MapsizeTooSmall",
	IncompatibleOptions: "IncompatibleOptions",
	InvalidReuse:        "InvalidReuse",
	BadTransaction:      "BadTransaction",
	BadDatabase:         "BadDatabase",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var kindMessages = map[Kind]string{
	Unknown:             "unknown error",
	KeyExists:           "key already exists in database",
	NotFound:            "key/value pair not found in database",
	PageNotFound:        "page not found in database, corruption likely",
	PageMismatch:        "located page was of wrong type",
	Panic:               "update of meta page failed or environment had fatal error",
	VersionMismatch:     "environment is an incompatible version",
	InvalidFile:         "file is not a valid database file",
	MaxMapExceeded:      "maximum map size exceeded, consider increasing MaxMapSize",
	MaxDbsExceeded:      "maximum database count exceeded, consider increasing MaxDBs",
	MaxReadersExceeded:  "maximum reader count exceeded, consider increasing MaxReaders",
	TLSLimitExceeded:    "too many keys are being stored in thread local storage",
	MaxDirtyTxnExceeded: "transaction has too many dirty pages",
	CursorDepthExceeded: "cursor stack has exceeded its maximum depth",
	MapsizeTooSmall:     "the database is bigger than MaxMapSize",
	IncompatibleOptions: "operation is incompatible with the database options",
	InvalidReuse:        "the reader lock table slot cannot be reused this way",
	BadTransaction:      "transaction must abort, has a child, or is invalid",
	BadDatabase:         "database handle is invalid or was changed unexpectedly",
}

var statusKinds = map[engine.Status]Kind{
	engine.KeyExist:        KeyExists,
	engine.NotFound:        NotFound,
	engine.PageNotFound:    PageNotFound,
	engine.Corrupted:       PageMismatch,
	engine.Panic:           Panic,
	engine.VersionMismatch: VersionMismatch,
	engine.Invalid:         InvalidFile,
	engine.MapFull:         MaxMapExceeded,
	engine.DBsFull:         MaxDbsExceeded,
	engine.ReadersFull:     MaxReadersExceeded,
	engine.TLSFull:         TLSLimitExceeded,
	engine.TxnFull:         MaxDirtyTxnExceeded,
	engine.CursorFull:      CursorDepthExceeded,
	engine.MapResized:      MapsizeTooSmall,
	engine.Incompatible:    IncompatibleOptions,
	engine.BadRSlot:        InvalidReuse,
	engine.BadTxn:          BadTransaction,
	engine.BadDBI:          BadDatabase,
}

// Unknown-kind statuses that deserve their own message.
var unknownMessages = map[engine.Status]string{
	engine.Success:         "engine reported success as a failure",
	engine.Permission:      "an attempt was made to write in a read-only transaction or access was denied",
	engine.InvalidArgument: "an invalid parameter was specified",
	engine.Problem:         "unexpected problem, transaction should abort",
}

// Sentinel errors, one per kind, for use with errors.Is.
var (
	ErrUnknown             = &Error{Kind: Unknown, Message: kindMessages[Unknown]}
	ErrKeyExists           = &Error{Kind: KeyExists, Message: kindMessages[KeyExists]}
	ErrNotFound            = &Error{Kind: NotFound, Message: kindMessages[NotFound]}
	ErrPageNotFound        = &Error{Kind: PageNotFound, Message: kindMessages[PageNotFound]}
	ErrPageMismatch        = &Error{Kind: PageMismatch, Message: kindMessages[PageMismatch]}
	ErrPanic               = &Error{Kind: Panic, Message: kindMessages[Panic]}
	ErrVersionMismatch     = &Error{Kind: VersionMismatch, Message: kindMessages[VersionMismatch]}
	ErrInvalidFile         = &Error{Kind: InvalidFile, Message: kindMessages[InvalidFile]}
	ErrMaxMapExceeded      = &Error{Kind: MaxMapExceeded, Message: kindMessages[MaxMapExceeded]}
	ErrMaxDbsExceeded      = &Error{Kind: MaxDbsExceeded, Message: kindMessages[MaxDbsExceeded]}
	ErrMaxReadersExceeded  = &Error{Kind: MaxReadersExceeded, Message: kindMessages[MaxReadersExceeded]}
	ErrTLSLimitExceeded    = &Error{Kind: TLSLimitExceeded, Message: kindMessages[TLSLimitExceeded]}
	ErrMaxDirtyTxnExceeded = &Error{Kind: MaxDirtyTxnExceeded, Message: kindMessages[MaxDirtyTxnExceeded]}
	ErrCursorDepthExceeded = &Error{Kind: CursorDepthExceeded, Message: kindMessages[CursorDepthExceeded]}
	ErrMapsizeTooSmall     = &Error{Kind: MapsizeTooSmall, Message: kindMessages[MapsizeTooSmall]}
	ErrIncompatibleOptions = &Error{Kind: IncompatibleOptions, Message: kindMessages[IncompatibleOptions]}
	ErrInvalidReuse        = &Error{Kind: InvalidReuse, Message: kindMessages[InvalidReuse]}
	ErrBadTransaction      = &Error{Kind: BadTransaction, Message: kindMessages[BadTransaction]}
	ErrBadDatabase         = &Error{Kind: BadDatabase, Message: kindMessages[BadDatabase]}
)

// translate converts an engine failure into a store error. It never returns
// nil: a nil err is reported as an Unknown failure.
func translate(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	status := engine.StatusOf(err)
	kind, ok := statusKinds[status]
	msg := kindMessages[kind]
	if !ok {
		kind = Unknown
		if m, found := unknownMessages[status]; found {
			msg = m
		} else {
			msg = kindMessages[Unknown]
		}
	}
	countError(kind)
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

// newError builds a store error raised by the typed layer itself.
func newError(op string, kind Kind, msg string) *Error {
	if msg == "" {
		msg = kindMessages[kind]
	}
	countError(kind)
	return &Error{Kind: kind, Op: op, Message: msg}
}

// KindOf returns the kind of err, or Unknown if err is not a store error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == NotFound
}

// IsKeyExists reports whether err is a KeyExists error.
func IsKeyExists(err error) bool {
	return err != nil && KindOf(err) == KeyExists
}

// IsEnvironmentError reports whether err means the environment itself is
// unusable: it could not be opened, or the data file is damaged or from an
// incompatible version.
func IsEnvironmentError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Op == opOpen {
		return true
	}
	switch e.Kind {
	case PageNotFound, PageMismatch, Panic, VersionMismatch, InvalidFile, MapsizeTooSmall:
		return true
	}
	return false
}

// CodecError reports a value that could not be encoded or decoded.
type CodecError struct {
	Codec string
	Op    string // "encode" or "decode"
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("tkv: %s %s: %v", e.Codec, e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}
