package store

import (
	"encoding/binary"
	"fmt"

	"github.com/trielab/go-hamt4/store/compression"
)

// Disk value envelope: a one-byte flag, then for compressed values the
// original length as a little-endian uint32, then the payload. Nodes
// smaller than minCompressSize are stored raw; compression that fails to
// shrink the payload is discarded.
const (
	envelopeRaw        = 0x00
	envelopeCompressed = 0x01

	minCompressSize = 128
)

func packValue(c compression.Compressor, data []byte) ([]byte, error) {
	if c == nil || len(data) < minCompressSize {
		return packRaw(data), nil
	}
	compressed, err := c.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("pack value: %w", err)
	}
	if len(compressed) >= len(data) {
		return packRaw(data), nil
	}
	out := make([]byte, 0, 5+len(compressed))
	out = append(out, envelopeCompressed)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, compressed...)
	return out, nil
}

func packRaw(data []byte) []byte {
	out := make([]byte, 0, 1+len(data))
	out = append(out, envelopeRaw)
	return append(out, data...)
}

func unpackValue(c compression.Compressor, value []byte) ([]byte, error) {
	if len(value) < 1 {
		return nil, fmt.Errorf("unpack value: empty envelope: %w", ErrCorrupt)
	}
	switch value[0] {
	case envelopeRaw:
		out := make([]byte, len(value)-1)
		copy(out, value[1:])
		return out, nil
	case envelopeCompressed:
		if len(value) < 5 {
			return nil, fmt.Errorf("unpack value: truncated header: %w", ErrCorrupt)
		}
		if c == nil {
			return nil, fmt.Errorf("unpack value: compressed value but no compressor configured: %w", ErrCorrupt)
		}
		origLen := binary.LittleEndian.Uint32(value[1:5])
		out, err := c.Decompress(value[5:], int(origLen))
		if err != nil {
			return nil, fmt.Errorf("unpack value: %v: %w", err, ErrCorrupt)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unpack value: unknown flag 0x%02x: %w", value[0], ErrCorrupt)
	}
}
