package hamt

// Iterator walks every leaf in bucket order, depth first, descending into
// links before moving to the next sibling. It is lazy and safe to drop
// early; a fresh Iterator from the same unmodified root reproduces the
// same order. Mutating the map mid-iteration invalidates the iterator.
//
//	for it := m.Iterator(); it.Next(); {
//	    pair := it.Leaf()
//	    ...
//	}
type Iterator[K comparable, V any, A any] struct {
	frames []frame[K, V, A]
	pair   *KvPair[K, V]
}

// Iterator returns a new iterator positioned before the first leaf.
func (h *Hamt[K, V, A]) Iterator() *Iterator[K, V, A] {
	return &Iterator[K, V, A]{
		frames: []frame[K, V, A]{{node: h}},
	}
}

// Next advances to the next leaf, reporting whether one exists.
func (it *Iterator[K, V, A]) Next() bool {
	for len(it.frames) > 0 {
		top := &it.frames[len(it.frames)-1]
		if top.slot >= BranchFactor {
			it.frames = it.frames[:len(it.frames)-1]
			continue
		}
		b := &top.node.buckets[top.slot]
		top.slot++
		switch {
		case b.leaf != nil:
			it.pair = b.leaf
			return true
		case b.node != nil:
			it.frames = append(it.frames, frame[K, V, A]{node: b.node})
		}
	}
	it.pair = nil
	return false
}

// Leaf returns the current pair. Only valid after Next returned true.
func (it *Iterator[K, V, A]) Leaf() *KvPair[K, V] {
	return it.pair
}
