package mdbx

import (
	"encoding/binary"

	"github.com/Giulio2002/tkv/internal/engine"
)

// DataFile is the name of the libmdbx data file inside the environment
// directory.
const DataFile = "mdbx.dat"

// On-disk layout of the first meta page.
//
//	Offset  Size  Field
//	0       8     txnid
//	8       2     dupfix_ksize
//	10      2     flags
//	12      4     lower/upper
//	16      4     pgno
//	20      8     meta magic_and_version
const (
	pageHeaderSize = 20
	pageFlagsOff   = 10
	pageMeta       = 0x08

	// metaMagic is the libmdbx 56-bit magic number
	metaMagic uint64 = 0x59659DBDEF4C11

	// metaDataVersion is the newest data format version understood
	metaDataVersion = 3

	// HeaderSize is how many leading bytes CheckHeader needs.
	HeaderSize = pageHeaderSize + 8
)

// CheckHeader validates the first meta page of a data file.
func CheckHeader(data []byte) error {
	const op = "check_header"
	if len(data) < HeaderSize {
		return engine.NewError(op, engine.Invalid)
	}
	if binary.NativeEndian.Uint16(data[pageFlagsOff:])&pageMeta == 0 {
		return engine.NewError(op, engine.Invalid)
	}
	mv := binary.NativeEndian.Uint64(data[pageHeaderSize:])
	if mv>>8 != metaMagic {
		return engine.NewError(op, engine.Invalid)
	}
	if v := uint8(mv); v < 2 || v > metaDataVersion {
		return engine.NewError(op, engine.VersionMismatch)
	}
	return nil
}
