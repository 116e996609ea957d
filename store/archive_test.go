package store

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func validTestNode(t *testing.T) []byte {
	t.Helper()
	var childID [32]byte
	for i := range childID {
		childID[i] = byte(i)
	}
	linkPayload := append(childID[:], 0x18, 0x2a) // CBOR uint 42 annotation
	return encodeArchivedNode(
		[archiveBuckets]byte{tagLeaf, tagEmpty, tagLink, tagEmpty},
		[archiveBuckets][]byte{0: {0xa0}, 2: linkPayload},
	)
}

func TestParseArchivedNode(t *testing.T) {
	data := validTestNode(t)

	node, err := ParseArchivedNode(data)
	require.NoError(t, err)

	require.True(t, node.IsLeaf(0))
	require.True(t, node.IsEmpty(1))
	require.True(t, node.IsLink(2))
	require.True(t, node.IsEmpty(3))

	require.Equal(t, []byte{0xa0}, node.LeafBytes(0))

	id := node.LinkID(2)
	require.Equal(t, byte(0), id[0])
	require.Equal(t, byte(31), id[31])
	require.Equal(t, []byte{0x18, 0x2a}, node.AnnoBytes(2))
}

func TestParseArchivedNodeRejectsCorruptBytes(t *testing.T) {
	valid := validTestNode(t)

	corrupt := func(mutate func(data []byte) []byte) error {
		data := append([]byte(nil), valid...)
		_, err := ParseArchivedNode(mutate(data))
		return err
	}

	t.Run("Truncated", func(t *testing.T) {
		require.ErrorIs(t, corrupt(func(d []byte) []byte { return d[:3] }), ErrCorrupt)
		require.ErrorIs(t, corrupt(func(d []byte) []byte { return nil }), ErrCorrupt)
	})

	t.Run("BadVersion", func(t *testing.T) {
		require.ErrorIs(t, corrupt(func(d []byte) []byte { d[0] = 0x7f; return d }), ErrCorrupt)
	})

	t.Run("BadTag", func(t *testing.T) {
		require.ErrorIs(t, corrupt(func(d []byte) []byte { d[2] = 0x09; return d }), ErrCorrupt)
	})

	t.Run("LengthPastEnd", func(t *testing.T) {
		require.ErrorIs(t, corrupt(func(d []byte) []byte {
			binary.LittleEndian.PutUint32(d[archiveHeaderSize:], 1<<30)
			return d
		}), ErrCorrupt)
	})

	t.Run("TruncatedLength", func(t *testing.T) {
		require.ErrorIs(t, corrupt(func(d []byte) []byte { return d[:archiveHeaderSize+2] }), ErrCorrupt)
	})

	t.Run("TrailingBytes", func(t *testing.T) {
		require.ErrorIs(t, corrupt(func(d []byte) []byte { return append(d, 0x00) }), ErrCorrupt)
	})

	t.Run("ShortLinkPayload", func(t *testing.T) {
		data := encodeArchivedNode(
			[archiveBuckets]byte{tagLink, tagEmpty, tagEmpty, tagEmpty},
			[archiveBuckets][]byte{0: make([]byte, 16)},
		)
		_, err := ParseArchivedNode(data)
		require.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestEncodeEmptyNode(t *testing.T) {
	data := encodeArchivedNode([archiveBuckets]byte{}, [archiveBuckets][]byte{})
	require.Len(t, data, archiveHeaderSize)

	node, err := ParseArchivedNode(data)
	require.NoError(t, err)
	for i := 0; i < archiveBuckets; i++ {
		require.True(t, node.IsEmpty(i))
	}
}

func TestEnvelope(t *testing.T) {
	t.Run("SmallStaysRaw", func(t *testing.T) {
		in := []byte("short")
		packed, err := packValue(nil, in)
		require.NoError(t, err)
		require.Equal(t, byte(envelopeRaw), packed[0])

		out, err := unpackValue(nil, packed)
		require.NoError(t, err)
		require.Equal(t, in, out)
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		_, err := unpackValue(nil, []byte{0x77, 1, 2, 3})
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := unpackValue(nil, nil)
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("CompressedWithoutCompressor", func(t *testing.T) {
		_, err := unpackValue(nil, []byte{envelopeCompressed, 0, 0, 0, 16, 1, 2})
		require.ErrorIs(t, err, ErrCorrupt)
	})
}
