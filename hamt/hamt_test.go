package hamt_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trielab/go-hamt4/hamt"
)

func TestEmptyMap(t *testing.T) {
	m := hamt.New[uint64, uint64]()

	require.True(t, m.IsEmpty())
	require.Equal(t, 0, m.Len())

	_, found := m.Get(42)
	require.False(t, found)

	_, removed := m.Remove(42)
	require.False(t, removed)
	require.True(t, m.IsEmpty())
}

func TestInsertReplace(t *testing.T) {
	m := hamt.New[uint64, uint64]()

	_, replaced := m.Insert(0, 38)
	require.False(t, replaced)

	old, replaced := m.Insert(0, 0)
	require.True(t, replaced)
	require.Equal(t, uint64(38), old)

	got, found := m.Get(0)
	require.True(t, found)
	require.Equal(t, uint64(0), got)
	require.Equal(t, 1, m.Len())
}

func TestInsertGet(t *testing.T) {
	const n = 1024

	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < n; i++ {
		_, replaced := m.Insert(i, i+1)
		require.False(t, replaced)
	}

	require.Equal(t, n, m.Len())
	for i := uint64(0); i < n; i++ {
		got, found := m.Get(i)
		require.True(t, found, "key %d", i)
		require.Equal(t, i+1, got)
	}

	_, found := m.Get(n)
	require.False(t, found)
}

func TestGetMut(t *testing.T) {
	const n = 64

	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < n; i++ {
		m.Insert(i, i)
	}

	for i := uint64(0); i < n; i++ {
		v, found := m.GetMut(i)
		require.True(t, found)
		*v += 1
	}

	for i := uint64(0); i < n; i++ {
		got, found := m.Get(i)
		require.True(t, found)
		require.Equal(t, i+1, got)
	}

	_, found := m.GetMut(n)
	require.False(t, found)
}

func TestRemoveAll(t *testing.T) {
	const n = 1024

	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < n; i++ {
		m.Insert(i, i+1)
	}

	for i := uint64(0); i < n; i++ {
		old, removed := m.Remove(i)
		require.True(t, removed, "key %d", i)
		require.Equal(t, i+1, old)
	}

	require.True(t, m.IsEmpty())
	require.Equal(t, 0, m.Len())
}

func TestCollapseToRootLeaf(t *testing.T) {
	const n = 256

	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < n; i++ {
		m.Insert(i, i)
	}
	for i := uint64(1); i < n; i++ {
		_, removed := m.Remove(i)
		require.True(t, removed)
	}

	// The survivor must sit directly in a root bucket; every split node on
	// its path collapsed away as its siblings were removed.
	leaves, links := 0, 0
	for i := 0; i < hamt.BranchFactor; i++ {
		switch m.ChildAt(i).Kind {
		case hamt.ChildLeaf:
			leaves++
		case hamt.ChildLink:
			links++
		}
	}
	require.Equal(t, 1, leaves)
	require.Equal(t, 0, links)

	got, found := m.Get(0)
	require.True(t, found)
	require.Equal(t, uint64(0), got)
}

// collidingHasher maps every key to the same digest, forcing the worst
// case for equality filtering.
type collidingHasher struct{}

func (collidingHasher) Digest(uint64) uint64 { return 42 }

func TestDigestCollisionFiltersByKey(t *testing.T) {
	m := hamt.New[uint64, uint64]().WithHasher(collidingHasher{})

	m.Insert(1, 100)

	// Key 2 shares key 1's digest and therefore its whole path. Equality
	// on the real key must still keep the two apart.
	_, found := m.Get(2)
	require.False(t, found)

	_, removed := m.Remove(2)
	require.False(t, removed)

	got, found := m.Get(1)
	require.True(t, found)
	require.Equal(t, uint64(100), got)
}

func TestWithHasherOnPopulatedMapPanics(t *testing.T) {
	m := hamt.New[uint64, uint64]()
	m.Insert(1, 1)
	require.Panics(t, func() {
		m.WithHasher(collidingHasher{})
	})
}

func TestForEach(t *testing.T) {
	const n = 128

	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < n; i++ {
		m.Insert(i, i*2)
	}

	seen := make(map[uint64]uint64, n)
	m.ForEach(func(pair *hamt.KvPair[uint64, uint64]) bool {
		seen[pair.Key] = pair.Val
		return true
	})
	require.Len(t, seen, n)
	for i := uint64(0); i < n; i++ {
		require.Equal(t, i*2, seen[i])
	}

	visits := 0
	m.ForEach(func(*hamt.KvPair[uint64, uint64]) bool {
		visits++
		return visits < 10
	})
	require.Equal(t, 10, visits)
}

func TestInvariantsUnderRandomWorkload(t *testing.T) {
	rng := rand.New(rand.NewSource(0x7a3d))
	m := hamt.NewCounted[uint64, uint64]()
	live := make(map[uint64]uint64)

	for step := 0; step < 4096; step++ {
		key := uint64(rng.Intn(512))
		if rng.Intn(3) == 0 {
			_, removed := m.Remove(key)
			_, expect := live[key]
			require.Equal(t, expect, removed, "remove %d at step %d", key, step)
			delete(live, key)
		} else {
			val := rng.Uint64()
			m.Insert(key, val)
			live[key] = val
		}
		if step%256 == 0 {
			require.NoError(t, m.CheckInvariants())
		}
	}

	require.NoError(t, m.CheckInvariants())
	require.Equal(t, len(live), m.Len())
	for key, val := range live {
		got, found := m.Get(key)
		require.True(t, found)
		require.Equal(t, val, got)
	}
}

func TestStringKeys(t *testing.T) {
	m := hamt.New[string, int]()
	m.Insert("alpha", 1)
	m.Insert("beta", 2)
	m.Insert("gamma", 3)

	got, found := m.Get("beta")
	require.True(t, found)
	require.Equal(t, 2, got)

	old, removed := m.Remove("alpha")
	require.True(t, removed)
	require.Equal(t, 1, old)
	require.Equal(t, 2, m.Len())
}

func TestStructKeys(t *testing.T) {
	type point struct {
		X, Y int
	}

	m := hamt.New[point, string]()
	m.Insert(point{1, 2}, "a")
	m.Insert(point{2, 1}, "b")

	got, found := m.Get(point{1, 2})
	require.True(t, found)
	require.Equal(t, "a", got)

	_, found = m.Get(point{2, 2})
	require.False(t, found)
}
