package state

import (
	"math/big"
	"reflect"

	"github.com/ugorji/go/codec"
)

// cborHandle is the shared codec handle for state records. big.Int fields are
// encoded as CBOR bignums (tag 2) via the extension below so records stay
// free of string-encoded amounts.
var cborHandle = newCborHandle()

func newCborHandle() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	if err := h.SetInterfaceExt(reflect.TypeOf(big.Int{}), 2, bigIntExt{}); err != nil {
		panic(err)
	}
	return h
}

type bigIntExt struct{}

func (bigIntExt) ConvertExt(v interface{}) interface{} {
	switch i := v.(type) {
	case *big.Int:
		return i.Bytes()
	case big.Int:
		return i.Bytes()
	}
	return nil
}

func (bigIntExt) UpdateExt(dst interface{}, src interface{}) {
	d := dst.(*big.Int)
	switch s := src.(type) {
	case []byte:
		d.SetBytes(s)
	case string:
		d.SetBytes([]byte(s))
	}
}

// Encode serializes a state record.
func Encode(v interface{}) ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, cborHandle).Encode(v); err != nil {
		return nil, err
	}
	return b, nil
}

// Decode deserializes a state record produced by Encode.
func Decode(data []byte, v interface{}) error {
	return codec.NewDecoderBytes(data, cborHandle).Decode(v)
}
