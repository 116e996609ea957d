package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trielab/go-hamt4/codec"
)

func TestRoundTrip(t *testing.T) {
	type pair struct {
		Key uint64
		Val string
	}

	in := pair{Key: 42, Val: "forty-two"}
	data, err := codec.Marshal(in)
	require.NoError(t, err)

	var out pair
	require.NoError(t, codec.Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestMarshalIsDeterministic(t *testing.T) {
	// Map iteration order is randomized; canonical encoding must erase it.
	in := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}

	first, err := codec.Marshal(in)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		again, err := codec.Marshal(in)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	var out struct{ A int }
	err := codec.Unmarshal([]byte{0xff, 0x00, 0xfe}, &out)
	require.Error(t, err)
}

func TestMustMarshalPanicsOnUnencodable(t *testing.T) {
	require.Panics(t, func() {
		codec.MustMarshal(make(chan int))
	})
}
