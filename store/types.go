// Package store provides content-addressed persistence for hamt tries.
// Serialized nodes are keyed by the SHA-256 hash of their bytes, so a
// stored identity's content is immutable by construction: a persisted trie
// can be shared across goroutines or processes with no synchronization.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash256 is the identity of a stored node: the SHA-256 of its bytes.
type Hash256 [32]byte

// HashData computes the identity for a node's serialized bytes.
func HashData(data []byte) Hash256 {
	return sha256.Sum256(data)
}

// IsZero reports whether the hash is all zeroes.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}

// String returns the hash in hex.
func (h Hash256) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses a 64-character hex string into a Hash256.
func ParseHash(s string) (Hash256, error) {
	var h Hash256
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse hash: %w", err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("parse hash: %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

// Node is one stored trie node: its identity and serialized bytes. The
// store treats Data as opaque; the archive format lives in archive.go.
type Node struct {
	Hash Hash256
	Data []byte
}

// NewNode creates a Node for the given bytes, computing its identity.
func NewNode(data []byte) *Node {
	return &Node{Hash: HashData(data), Data: data}
}

// Size returns the size of the node's data in bytes.
func (n *Node) Size() int {
	return len(n.Data)
}

// Status is the outcome of a backend operation.
type Status int

const (
	// OK indicates the operation succeeded.
	OK Status = iota
	// NotFound indicates the requested identity is not present.
	NotFound
	// DataCorrupt indicates the stored bytes failed validation.
	DataCorrupt
	// BackendError indicates a failure in the storage backend.
	BackendError
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case NotFound:
		return "NotFound"
	case DataCorrupt:
		return "DataCorrupt"
	case BackendError:
		return "BackendError"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Backend is a raw identity-to-bytes store. Implementations must be safe
// for concurrent use.
type Backend interface {
	// Name returns a human-readable name for this backend.
	Name() string

	// Open opens the backend for use.
	Open(createIfMissing bool) error

	// Close closes the backend and releases resources.
	Close() error

	// IsOpen reports whether the backend is currently open.
	IsOpen() bool

	// Fetch retrieves a single node by identity.
	Fetch(hash Hash256) (*Node, Status)

	// FetchBatch retrieves multiple nodes; absent entries are nil.
	FetchBatch(hashes []Hash256) ([]*Node, Status)

	// Store persists a single node.
	Store(node *Node) Status

	// StoreBatch persists multiple nodes in one write.
	StoreBatch(nodes []*Node) Status

	// Sync forces pending writes to durable storage.
	Sync() Status

	// ForEach visits every stored node.
	ForEach(fn func(*Node) error) error
}

// Database is the caching store handed to persistence code. Fetch returns
// (nil, nil) for an absent identity: absence is a normal value here, and
// only the archive layer decides whether a missing child is corruption.
type Database interface {
	Store(ctx context.Context, node *Node) error
	StoreBatch(ctx context.Context, nodes []*Node) error
	Fetch(ctx context.Context, hash Hash256) (*Node, error)
	FetchBatch(ctx context.Context, hashes []Hash256) ([]*Node, error)
	Stats() Statistics
	Sync() error
	Close() error
}

// Statistics holds performance counters for a Database.
type Statistics struct {
	Reads       uint64
	Writes      uint64
	CacheHits   uint64
	CacheMisses uint64
	ReadBytes   uint64
	WriteBytes  uint64
	BackendName string
}

// String returns a formatted summary of the statistics.
func (s Statistics) String() string {
	hitRate := float64(0)
	if s.Reads > 0 {
		hitRate = float64(s.CacheHits) / float64(s.Reads) * 100
	}
	return fmt.Sprintf("store statistics: backend=%s reads=%d (%.1f%% cache hits) writes=%d read_bytes=%d write_bytes=%d",
		s.BackendName, s.Reads, hitRate, s.Writes, s.ReadBytes, s.WriteBytes)
}
