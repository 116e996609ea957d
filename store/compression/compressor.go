// Package compression provides the block compressors used by disk-backed
// stores. Trie nodes are small and compressed one at a time, so only block
// codecs (no streaming) are supported.
package compression

import (
	"fmt"
	"sync"
)

// Compressor compresses single node payloads. Callers record the original
// size alongside the compressed bytes and hand it back to Decompress.
type Compressor interface {
	// Name returns the codec name used in configuration.
	Name() string

	// Compress returns the compressed form of data. A result no smaller
	// than the input signals the caller to store the input uncompressed.
	Compress(data []byte) ([]byte, error)

	// Decompress inflates data into a buffer of originalSize bytes.
	Decompress(data []byte, originalSize int) ([]byte, error)
}

// Factory creates a compressor instance.
type Factory func() Compressor

var (
	mu          sync.RWMutex
	compressors = make(map[string]Factory)
)

// Register makes a compressor available by name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	compressors[name] = factory
}

// Get returns a new compressor for the given name.
func Get(name string) (Compressor, error) {
	mu.RLock()
	factory, ok := compressors[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}
	return factory(), nil
}

// Available returns the names of registered compressors.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	return names
}

func init() {
	Register("none", func() Compressor { return noCompressor{} })
	Register("lz4", func() Compressor { return lz4Compressor{} })
}

// noCompressor passes data through untouched.
type noCompressor struct{}

func (noCompressor) Name() string { return "none" }

func (noCompressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (noCompressor) Decompress(data []byte, originalSize int) ([]byte, error) {
	if len(data) != originalSize {
		return nil, fmt.Errorf("size mismatch: have %d bytes, expected %d", len(data), originalSize)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
