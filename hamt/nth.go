package hamt

// rankWalker selects the pair at a given 0-based rank by spending rank
// budget against cached cardinalities: a leaf costs 1, a link costs its
// subtree's count. Whole subtrees are skipped without being visited.
type rankWalker[K comparable, V any, A any] struct {
	remaining uint64
	count     func(A) uint64
}

func (w *rankWalker[K, V, A]) Walk(level Level[K, V, A]) Step {
	for i := 0; ; i++ {
		c := level.Child(i)
		switch c.Kind {
		case ChildLeaf:
			if w.remaining == 0 {
				return Found(i)
			}
			w.remaining--
		case ChildLink:
			n := w.count(c.Anno)
			if w.remaining < n {
				return Into(i)
			}
			w.remaining -= n
		case ChildEnd:
			return Abort()
		}
	}
}

// Nth returns the pair at the given rank in bucket order. Ranks at or past
// Len are not found. The map's annotation must be in the cardinality
// family (see NewCounted); calling Nth on a map without one is a
// programmer error and panics.
func (h *Hamt[K, V, A]) Nth(rank uint64) (*KvPair[K, V], bool) {
	counter, ok := h.anno.(Counter[A])
	if !ok {
		panic("hamt: Nth requires a cardinality-family annotation")
	}
	branch, ok := Walk(h, &rankWalker[K, V, A]{remaining: rank, count: counter.Count})
	if !ok {
		return nil, false
	}
	return branch.Leaf(), true
}
