package hamt

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/trielab/go-hamt4/codec"
)

// Hasher turns a key into a 64-bit digest. Any deterministic hash with
// reasonable avalanche behavior satisfies the contract; swapping hashers
// changes tree shape but not correctness.
type Hasher[K any] interface {
	Digest(key K) uint64
}

// CodecHasher is the default hasher: it encodes the key to its canonical
// byte form and hashes that with xxhash. Any key the codec can encode is
// therefore usable; an unencodable key type panics, since that is a
// programmer error rather than a runtime condition.
type CodecHasher[K any] struct{}

func (CodecHasher[K]) Digest(key K) uint64 {
	return xxhash.Sum64(codec.MustMarshal(key))
}

// Slot derives the bucket index for a digest at the given depth. The digest
// is re-hashed together with the depth rather than consumed bit by bit, so
// the path never exhausts the digest's 64 bits and slot choices at
// different depths are decorrelated.
func Slot(digest uint64, depth int) int {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], digest+uint64(depth))
	return int(xxhash.Sum64(buf[:]) % BranchFactor)
}
