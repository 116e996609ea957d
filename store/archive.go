package store

import (
	"encoding/binary"
	"fmt"
)

// Archive format, version 1. One serialized node is:
//
//	[0]    version byte
//	[1..4] one tag per bucket: empty, leaf, or link
//	then, for each non-empty bucket in order:
//	       uint32 LE payload length, payload bytes
//
// A leaf payload is the canonical CBOR of its key/value pair. A link
// payload is the 32-byte child identity followed by the canonical CBOR of
// the child's cached annotation. Tags and lengths make the layout
// self-describing, so a node can be validated and sliced without decoding
// any CBOR.
const (
	archiveVersion = 0x01

	tagEmpty = 0x00
	tagLeaf  = 0x01
	tagLink  = 0x02

	archiveBuckets    = 4
	archiveHeaderSize = 1 + archiveBuckets
	linkIDSize        = 32
)

// ArchivedNode is a validated, zero-copy view over one serialized node.
// Its accessors slice the original buffer; the buffer must stay immutable
// for the view's lifetime. Content-addressed storage guarantees that.
type ArchivedNode struct {
	tags     [archiveBuckets]byte
	payloads [archiveBuckets][]byte
}

// ParseArchivedNode validates data and returns a view over it. All
// structural checks happen here, once; the accessors cannot fail.
func ParseArchivedNode(data []byte) (*ArchivedNode, error) {
	if len(data) < archiveHeaderSize {
		return nil, fmt.Errorf("archive: %d-byte node is shorter than its header: %w", len(data), ErrCorrupt)
	}
	if data[0] != archiveVersion {
		return nil, fmt.Errorf("archive: unknown version 0x%02x: %w", data[0], ErrCorrupt)
	}
	n := new(ArchivedNode)
	rest := data[archiveHeaderSize:]
	for i := 0; i < archiveBuckets; i++ {
		tag := data[1+i]
		n.tags[i] = tag
		if tag == tagEmpty {
			continue
		}
		if tag != tagLeaf && tag != tagLink {
			return nil, fmt.Errorf("archive: bucket %d has unknown tag 0x%02x: %w", i, tag, ErrCorrupt)
		}
		if len(rest) < 4 {
			return nil, fmt.Errorf("archive: bucket %d length truncated: %w", i, ErrCorrupt)
		}
		size := binary.LittleEndian.Uint32(rest)
		rest = rest[4:]
		if uint64(size) > uint64(len(rest)) {
			return nil, fmt.Errorf("archive: bucket %d claims %d bytes, %d remain: %w", i, size, len(rest), ErrCorrupt)
		}
		if tag == tagLink && size < linkIDSize {
			return nil, fmt.Errorf("archive: bucket %d link payload of %d bytes lacks a child identity: %w", i, size, ErrCorrupt)
		}
		n.payloads[i] = rest[:size:size]
		rest = rest[size:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("archive: %d trailing bytes: %w", len(rest), ErrCorrupt)
	}
	return n, nil
}

// IsEmpty reports whether bucket i is unoccupied.
func (n *ArchivedNode) IsEmpty(i int) bool { return n.tags[i] == tagEmpty }

// IsLeaf reports whether bucket i holds a pair.
func (n *ArchivedNode) IsLeaf(i int) bool { return n.tags[i] == tagLeaf }

// IsLink reports whether bucket i links a child node.
func (n *ArchivedNode) IsLink(i int) bool { return n.tags[i] == tagLink }

// LeafBytes returns the CBOR pair payload of a leaf bucket.
func (n *ArchivedNode) LeafBytes(i int) []byte { return n.payloads[i] }

// LinkID returns the child identity of a link bucket.
func (n *ArchivedNode) LinkID(i int) Hash256 {
	var id Hash256
	copy(id[:], n.payloads[i][:linkIDSize])
	return id
}

// AnnoBytes returns the CBOR annotation payload of a link bucket.
func (n *ArchivedNode) AnnoBytes(i int) []byte { return n.payloads[i][linkIDSize:] }

// encodeArchivedNode assembles a node from per-bucket tags and payloads.
func encodeArchivedNode(tags [archiveBuckets]byte, payloads [archiveBuckets][]byte) []byte {
	size := archiveHeaderSize
	for i, tag := range tags {
		if tag != tagEmpty {
			size += 4 + len(payloads[i])
		}
	}
	out := make([]byte, 0, size)
	out = append(out, archiveVersion)
	out = append(out, tags[:]...)
	for i, tag := range tags {
		if tag == tagEmpty {
			continue
		}
		out = binary.LittleEndian.AppendUint32(out, uint32(len(payloads[i])))
		out = append(out, payloads[i]...)
	}
	return out
}
