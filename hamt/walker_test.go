package hamt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trielab/go-hamt4/hamt"
)

// leftmostWalker descends to the first leaf in bucket order: a strategy
// built purely on the exported walker surface.
type leftmostWalker struct{}

func (leftmostWalker) Walk(level hamt.Level[uint64, uint64, struct{}]) hamt.Step {
	for i := 0; ; i++ {
		switch level.Child(i).Kind {
		case hamt.ChildLeaf:
			return hamt.Found(i)
		case hamt.ChildLink:
			return hamt.Into(i)
		case hamt.ChildEnd:
			return hamt.Abort()
		}
	}
}

func TestCustomWalkerFindsLeftmostLeaf(t *testing.T) {
	m := hamt.New[uint64, uint64]()
	for i := uint64(0); i < 100; i++ {
		m.Insert(i, i)
	}

	branch, found := hamt.Walk(m, leftmostWalker{})
	require.True(t, found)
	require.GreaterOrEqual(t, branch.Depth(), 1)

	it := m.Iterator()
	require.True(t, it.Next())
	require.Equal(t, it.Leaf().Key, branch.Leaf().Key)
}

func TestWalkEmptyMapAborts(t *testing.T) {
	m := hamt.New[uint64, uint64]()
	_, found := hamt.Walk(m, leftmostWalker{})
	require.False(t, found)
}

func TestWalkRejectsInvalidSteps(t *testing.T) {
	m := hamt.New[uint64, uint64]()
	m.Insert(7, 7)

	// Whichever bucket key 7 landed in, at least one other bucket is empty;
	// point a walker at one and the traversal must fail closed.
	for slot := 0; slot < hamt.BranchFactor; slot++ {
		if m.ChildAt(slot).Kind != hamt.ChildEmpty {
			continue
		}
		_, found := hamt.Walk(m, staticWalker{step: hamt.Found(slot)})
		require.False(t, found)
		_, found = hamt.Walk(m, staticWalker{step: hamt.Into(slot)})
		require.False(t, found)
	}

	_, found := hamt.Walk(m, staticWalker{step: hamt.Found(-1)})
	require.False(t, found)
}

type staticWalker struct {
	step hamt.Step
}

func (w staticWalker) Walk(hamt.Level[uint64, uint64, struct{}]) hamt.Step {
	return w.step
}

func TestChildAtOutOfRange(t *testing.T) {
	m := hamt.New[uint64, uint64]()
	m.Insert(1, 1)

	require.Equal(t, hamt.ChildEnd, m.ChildAt(-1).Kind)
	require.Equal(t, hamt.ChildEnd, m.ChildAt(hamt.BranchFactor).Kind)
}

func TestChildLinkCarriesAnnotation(t *testing.T) {
	m := hamt.NewCounted[uint64, uint64]()
	for i := uint64(0); i < 64; i++ {
		m.Insert(i, i)
	}

	total := uint64(0)
	for i := 0; i < hamt.BranchFactor; i++ {
		switch c := m.ChildAt(i); c.Kind {
		case hamt.ChildLeaf:
			total++
		case hamt.ChildLink:
			require.GreaterOrEqual(t, c.Anno, uint64(2))
			total += c.Anno
		}
	}
	require.Equal(t, uint64(64), total)
}
