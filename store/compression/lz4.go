package compression

import (
	"fmt"

	"github.com/pierrec/lz4"
)

// lz4Compressor compresses node payloads with LZ4 block compression.
type lz4Compressor struct{}

func (lz4Compressor) Name() string { return "lz4" }

func (lz4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		// Incompressible input; hand it back as-is and let the caller
		// store it uncompressed.
		return data, nil
	}
	return buf[:n], nil
}

func (lz4Compressor) Decompress(data []byte, originalSize int) ([]byte, error) {
	if originalSize == 0 {
		return []byte{}, nil
	}
	out := make([]byte, originalSize)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != originalSize {
		return nil, fmt.Errorf("lz4 decompress: inflated to %d bytes, expected %d", n, originalSize)
	}
	return out, nil
}
