package compression_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trielab/go-hamt4/store/compression"
)

func TestRegistry(t *testing.T) {
	names := compression.Available()
	require.Contains(t, names, "none")
	require.Contains(t, names, "lz4")

	_, err := compression.Get("zstd-imaginary")
	require.Error(t, err)
}

func TestNoneRoundTrip(t *testing.T) {
	c, err := compression.Get("none")
	require.NoError(t, err)

	in := []byte("uncompressed payload")
	packed, err := c.Compress(in)
	require.NoError(t, err)
	require.Equal(t, in, packed)

	out, err := c.Decompress(packed, len(in))
	require.NoError(t, err)
	require.Equal(t, in, out)

	_, err = c.Decompress(packed, len(in)+1)
	require.Error(t, err)
}

func TestLZ4RoundTrip(t *testing.T) {
	c, err := compression.Get("lz4")
	require.NoError(t, err)

	in := bytes.Repeat([]byte("hash array mapped trie "), 256)
	packed, err := c.Compress(in)
	require.NoError(t, err)
	require.Less(t, len(packed), len(in))

	out, err := c.Decompress(packed, len(in))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestLZ4WrongSizeHint(t *testing.T) {
	c, err := compression.Get("lz4")
	require.NoError(t, err)

	in := bytes.Repeat([]byte{0xab}, 1024)
	packed, err := c.Compress(in)
	require.NoError(t, err)

	_, err = c.Decompress(packed, len(in)/2)
	require.Error(t, err)
}

func TestLZ4Empty(t *testing.T) {
	c, err := compression.Get("lz4")
	require.NoError(t, err)

	packed, err := c.Compress(nil)
	require.NoError(t, err)
	require.Empty(t, packed)

	out, err := c.Decompress(packed, 0)
	require.NoError(t, err)
	require.Empty(t, out)
}
