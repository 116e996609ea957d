package hamt

import (
	"fmt"
	"reflect"
)

// CheckInvariants verifies the structural invariants of the whole tree:
// bucket exclusivity, the collapse invariant (a linked node carries at
// least two leaves), and the accuracy of every cached annotation. A
// violation is a core bug, never a user-input condition; callers (tests,
// debug builds) should treat a non-nil result as fatal.
func (h *Hamt[K, V, A]) CheckInvariants() error {
	return h.checkNode(true)
}

func (h *Hamt[K, V, A]) checkNode(isRoot bool) error {
	leaves := 0
	for i := range h.buckets {
		b := &h.buckets[i]
		if b.leaf != nil && b.node != nil {
			return fmt.Errorf("bucket %d holds both a leaf and a link", i)
		}
		switch {
		case b.leaf != nil:
			leaves++
		case b.node != nil:
			if err := b.node.checkNode(false); err != nil {
				return err
			}
			n := b.node.leafCount()
			leaves += n
			if n < 2 {
				return fmt.Errorf("bucket %d links a node with %d leaves", i, n)
			}
			if _, trivial := any(h.anno).(unitAnnotation); !trivial {
				want := b.node.recompute()
				if !reflect.DeepEqual(b.anno, want) {
					return fmt.Errorf("bucket %d caches annotation %v, children reduce to %v", i, b.anno, want)
				}
			}
		}
	}
	if !isRoot && leaves < 2 {
		return fmt.Errorf("non-root node has %d leaves", leaves)
	}
	return nil
}

func (h *Hamt[K, V, A]) leafCount() int {
	n := 0
	for i := range h.buckets {
		b := &h.buckets[i]
		switch {
		case b.leaf != nil:
			n++
		case b.node != nil:
			n += b.node.leafCount()
		}
	}
	return n
}
