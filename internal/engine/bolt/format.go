package bolt

import (
	"encoding/binary"

	"github.com/Giulio2002/tkv/internal/engine"
)

// On-disk layout of the first bbolt meta page.
//
//	Offset  Size  Field
//	0       8     page id
//	8       2     flags
//	10      2     count
//	12      4     overflow
//	16      4     meta magic
//	20      4     meta version
const (
	pageHeaderSize = 16
	pageFlagsOff   = 8
	metaPageFlag   = 0x04

	metaMagic   uint32 = 0xED0CDAED
	metaVersion uint32 = 2

	// HeaderSize is how many leading bytes CheckHeader needs.
	HeaderSize = pageHeaderSize + 8
)

// CheckHeader validates the first meta page of a bbolt data file.
func CheckHeader(data []byte) error {
	const op = "check_header"
	if len(data) < HeaderSize {
		return engine.NewError(op, engine.Invalid)
	}
	if binary.NativeEndian.Uint16(data[pageFlagsOff:])&metaPageFlag == 0 {
		return engine.NewError(op, engine.Invalid)
	}
	if binary.NativeEndian.Uint32(data[pageHeaderSize:]) != metaMagic {
		return engine.NewError(op, engine.Invalid)
	}
	if binary.NativeEndian.Uint32(data[pageHeaderSize+4:]) != metaVersion {
		return engine.NewError(op, engine.VersionMismatch)
	}
	return nil
}
