// Package codec provides byte-stable serialization for keys, values and
// annotation values. It wraps canonical CBOR so that encoding the same Go
// value always yields the same bytes, which is what makes encoded keys
// usable as hash input and stored node payloads content-addressable.
package codec

import (
	"fmt"

	ucodec "github.com/ugorji/go/codec"
)

// handle is the shared canonical CBOR handle. Canonical mode sorts map keys
// and uses the shortest integer encodings, so Marshal is deterministic.
var handle = func() *ucodec.CborHandle {
	h := new(ucodec.CborHandle)
	h.Canonical = true
	return h
}()

// Marshal encodes v into canonical CBOR bytes.
func Marshal(v interface{}) ([]byte, error) {
	var out []byte
	enc := ucodec.NewEncoderBytes(&out, handle)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("codec: encode %T: %w", v, err)
	}
	return out, nil
}

// Unmarshal decodes CBOR bytes into v, which must be a pointer.
func Unmarshal(data []byte, v interface{}) error {
	dec := ucodec.NewDecoderBytes(data, handle)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("codec: decode %T: %w", v, err)
	}
	return nil
}

// MustMarshal is Marshal for values that are known to be encodable.
// An encoding failure here is a programmer error (an unencodable type was
// used as a map key or value), so it panics rather than returning an error.
func MustMarshal(v interface{}) []byte {
	out, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return out
}
