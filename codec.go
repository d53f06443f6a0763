package tkv

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/golang/snappy"
	"github.com/hashicorp/go-msgpack/v2/codec"
	"golang.org/x/exp/constraints"
)

// KeyCodec converts keys of type K to and from their stored bytes. The set
// of key codecs is closed: use IntKey, StringKey or BytesKey.
type KeyCodec[K any] interface {
	EncodeKey(key K) ([]byte, error)
	DecodeKey(data []byte) (K, error)
	// keyFlags returns the database flags the key layout requires.
	keyFlags() DBFlags
}

// Codec converts values of type V to and from their stored bytes.
type Codec[V any] interface {
	Encode(value V) ([]byte, error)
	Decode(data []byte) (V, error)
	Name() string
}

// dupFlagger is implemented by value codecs that order duplicates
// numerically.
type dupFlagger interface {
	dupFlags() DBFlags
}

// FixedWidth is the set of integer types usable as integer keys: exactly
// 4 or 8 bytes wide.
type FixedWidth interface {
	~int32 | ~uint32 | ~int64 | ~uint64 | ~int | ~uint
}

func putUint(b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.NativeEndian.PutUint16(b, uint16(v))
	case 4:
		binary.NativeEndian.PutUint32(b, uint32(v))
	default:
		binary.NativeEndian.PutUint64(b, v)
	}
}

func getUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(b))
	case 4:
		return uint64(binary.NativeEndian.Uint32(b))
	default:
		return binary.NativeEndian.Uint64(b)
	}
}

func sizeError(name string, want, got int) error {
	return &CodecError{Codec: name, Op: "decode", Err: fmt.Errorf("want %d bytes, got %d", want, got)}
}

// IntKey stores integer keys in native byte order with the IntegerKey flag,
// so keys sort numerically as unsigned integers. Negative keys of signed
// types sort after every non-negative key.
type IntKey[K FixedWidth] struct{}

func (IntKey[K]) EncodeKey(key K) ([]byte, error) {
	b := make([]byte, unsafe.Sizeof(key))
	putUint(b, uint64(key))
	return b, nil
}

func (IntKey[K]) DecodeKey(data []byte) (K, error) {
	var k K
	if n := int(unsafe.Sizeof(k)); len(data) != n {
		return k, sizeError("int key", n, len(data))
	}
	return K(getUint(data)), nil
}

func (IntKey[K]) keyFlags() DBFlags {
	return IntegerKey
}

// StringKey stores string keys as raw bytes in lexicographic order.
type StringKey[K ~string] struct{}

func (StringKey[K]) EncodeKey(key K) ([]byte, error) {
	return []byte(key), nil
}

func (StringKey[K]) DecodeKey(data []byte) (K, error) {
	return K(data), nil
}

func (StringKey[K]) keyFlags() DBFlags {
	return DBDefaults
}

// BytesKey stores byte slice keys in lexicographic order.
type BytesKey[K ~[]byte] struct{}

func (BytesKey[K]) EncodeKey(key K) ([]byte, error) {
	return []byte(key), nil
}

func (BytesKey[K]) DecodeKey(data []byte) (K, error) {
	return K(bytes.Clone(data)), nil
}

func (BytesKey[K]) keyFlags() DBFlags {
	return DBDefaults
}

// IntValue stores integers in native byte order. In duplicate mode 4 and 8
// byte values are ordered numerically.
type IntValue[V constraints.Integer] struct{}

func (IntValue[V]) Encode(value V) ([]byte, error) {
	b := make([]byte, unsafe.Sizeof(value))
	putUint(b, uint64(value))
	return b, nil
}

func (c IntValue[V]) Decode(data []byte) (V, error) {
	var v V
	if n := int(unsafe.Sizeof(v)); len(data) != n {
		return v, sizeError(c.Name(), n, len(data))
	}
	return V(getUint(data)), nil
}

func (IntValue[V]) Name() string {
	return "int"
}

func (IntValue[V]) dupFlags() DBFlags {
	var v V
	if n := unsafe.Sizeof(v); n == 4 || n == 8 {
		return IntegerDup | DupFixed
	}
	return DBDefaults
}

// StringValue stores strings as raw bytes.
type StringValue[V ~string] struct{}

func (StringValue[V]) Encode(value V) ([]byte, error) {
	return []byte(value), nil
}

func (StringValue[V]) Decode(data []byte) (V, error) {
	return V(data), nil
}

func (StringValue[V]) Name() string {
	return "string"
}

// BytesValue stores byte slices as is. Decoded values are copies and stay
// valid after the transaction ends.
type BytesValue[V ~[]byte] struct{}

func (BytesValue[V]) Encode(value V) ([]byte, error) {
	return []byte(value), nil
}

func (BytesValue[V]) Decode(data []byte) (V, error) {
	return V(bytes.Clone(data)), nil
}

func (BytesValue[V]) Name() string {
	return "bytes"
}

// BinaryValue stores values that serialize themselves through
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler on *V.
type BinaryValue[V any, PV interface {
	*V
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}] struct{}

func (c BinaryValue[V, PV]) Encode(value V) ([]byte, error) {
	data, err := PV(&value).MarshalBinary()
	if err != nil {
		return nil, &CodecError{Codec: c.Name(), Op: "encode", Err: err}
	}
	return data, nil
}

func (c BinaryValue[V, PV]) Decode(data []byte) (V, error) {
	var v V
	if err := PV(&v).UnmarshalBinary(data); err != nil {
		return v, &CodecError{Codec: c.Name(), Op: "decode", Err: err}
	}
	return v, nil
}

func (BinaryValue[V, PV]) Name() string {
	return "binary"
}

// MsgpackValue stores values msgpack-encoded.
type MsgpackValue[V any] struct{}

func (c MsgpackValue[V]) Encode(value V) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &codec.MsgpackHandle{})
	if err := enc.Encode(value); err != nil {
		return nil, &CodecError{Codec: c.Name(), Op: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

func (c MsgpackValue[V]) Decode(data []byte) (V, error) {
	var v V
	dec := codec.NewDecoderBytes(data, &codec.MsgpackHandle{})
	if err := dec.Decode(&v); err != nil {
		return v, &CodecError{Codec: c.Name(), Op: "decode", Err: err}
	}
	return v, nil
}

func (MsgpackValue[V]) Name() string {
	return "msgpack"
}

type snappyCodec[V any] struct {
	inner Codec[V]
}

// Snappy compresses the output of inner with snappy block encoding.
func Snappy[V any](inner Codec[V]) Codec[V] {
	return snappyCodec[V]{inner: inner}
}

func (c snappyCodec[V]) Encode(value V) ([]byte, error) {
	data, err := c.inner.Encode(value)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, data), nil
}

func (c snappyCodec[V]) Decode(data []byte) (V, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		var zero V
		return zero, &CodecError{Codec: c.Name(), Op: "decode", Err: err}
	}
	return c.inner.Decode(raw)
}

func (c snappyCodec[V]) Name() string {
	return "snappy+" + c.inner.Name()
}
