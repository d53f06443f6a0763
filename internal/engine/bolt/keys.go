package bolt

import (
	"encoding/binary"

	"github.com/Giulio2002/tkv/internal/engine"
)

// encodeKey converts a caller key to its stored form.
func encodeKey(op string, info *dbInfo, key []byte) ([]byte, error) {
	if info.flags&engine.IntegerKey == 0 {
		return key, nil
	}
	return toBigEndian(op, key)
}

func decodeKey(info *dbInfo, key []byte) []byte {
	if info.flags&engine.IntegerKey == 0 {
		return key
	}
	return toNative(key)
}

func encodeDup(op string, info *dbInfo, val []byte) ([]byte, error) {
	if info.flags&engine.IntegerDup == 0 {
		return val, nil
	}
	return toBigEndian(op, val)
}

func decodeDup(info *dbInfo, val []byte) []byte {
	if info.flags&engine.IntegerDup == 0 {
		return val
	}
	return toNative(val)
}

func toBigEndian(op string, b []byte) ([]byte, error) {
	switch len(b) {
	case 4:
		out := make([]byte, 4)
		binary.BigEndian.PutUint32(out, binary.NativeEndian.Uint32(b))
		return out, nil
	case 8:
		out := make([]byte, 8)
		binary.BigEndian.PutUint64(out, binary.NativeEndian.Uint64(b))
		return out, nil
	default:
		return nil, engine.NewError(op, engine.BadValSize)
	}
}

func toNative(b []byte) []byte {
	switch len(b) {
	case 4:
		out := make([]byte, 4)
		binary.NativeEndian.PutUint32(out, binary.BigEndian.Uint32(b))
		return out
	case 8:
		out := make([]byte, 8)
		binary.NativeEndian.PutUint64(out, binary.BigEndian.Uint64(b))
		return out
	default:
		return b
	}
}
