package hamt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trielab/go-hamt4/hamt"
)

func TestIteratorVisitsEveryPairOnce(t *testing.T) {
	const n = 512

	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < n; i++ {
		m.Insert(i, i*3)
	}

	seen := make(map[uint64]uint64, n)
	for it := m.Iterator(); it.Next(); {
		pair := it.Leaf()
		_, dup := seen[pair.Key]
		require.False(t, dup, "key %d visited twice", pair.Key)
		seen[pair.Key] = pair.Val
	}

	require.Len(t, seen, n)
	for i := uint64(0); i < n; i++ {
		require.Equal(t, i*3, seen[i])
	}
}

func TestIteratorEmpty(t *testing.T) {
	m := hamt.New[uint64, uint64]()
	it := m.Iterator()
	require.False(t, it.Next())
	require.Nil(t, it.Leaf())
}

func TestIteratorOrderIsStable(t *testing.T) {
	const n = 256

	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < n; i++ {
		m.Insert(i, i)
	}

	var first []uint64
	for it := m.Iterator(); it.Next(); {
		first = append(first, it.Leaf().Key)
	}

	var second []uint64
	for it := m.Iterator(); it.Next(); {
		second = append(second, it.Leaf().Key)
	}

	require.Equal(t, first, second)
}

func TestIteratorEarlyDrop(t *testing.T) {
	const n = 256

	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < n; i++ {
		m.Insert(i, i)
	}

	it := m.Iterator()
	for i := 0; i < 10; i++ {
		require.True(t, it.Next())
	}
	// Dropping a half-consumed iterator must leave the map untouched.
	require.Equal(t, n, m.Len())
}
