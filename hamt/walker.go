package hamt

// ChildKind discriminates the view of a single bucket presented to walkers.
type ChildKind uint8

const (
	// ChildEmpty is an unoccupied bucket.
	ChildEmpty ChildKind = iota
	// ChildLeaf is a bucket holding a single pair.
	ChildLeaf
	// ChildLink is a bucket holding a child node and its cached annotation.
	ChildLink
	// ChildEnd is returned for slot indexes past the last bucket.
	ChildEnd
)

// Child is a read-only view of one bucket. Leaf is set for ChildLeaf;
// Node and Anno are set for ChildLink.
type Child[K comparable, V any, A any] struct {
	Kind ChildKind
	Leaf *KvPair[K, V]
	Node *Hamt[K, V, A]
	Anno A
}

// ChildAt exposes bucket i as a Child view. Out-of-range indexes yield
// ChildEnd, which strategies use to detect the end of a node.
func (h *Hamt[K, V, A]) ChildAt(i int) Child[K, V, A] {
	if i < 0 || i >= BranchFactor {
		return Child[K, V, A]{Kind: ChildEnd}
	}
	b := &h.buckets[i]
	switch {
	case b.leaf != nil:
		return Child[K, V, A]{Kind: ChildLeaf, Leaf: b.leaf}
	case b.node != nil:
		return Child[K, V, A]{Kind: ChildLink, Node: b.node, Anno: b.anno}
	default:
		return Child[K, V, A]{Kind: ChildEmpty}
	}
}

// Level is the per-level view handed to a walker: the four children of the
// node the traversal currently sits on.
type Level[K comparable, V any, A any] struct {
	node *Hamt[K, V, A]
}

// Child returns the view of child i at this level.
func (l Level[K, V, A]) Child(i int) Child[K, V, A] {
	return l.node.ChildAt(i)
}

type stepKind uint8

const (
	stepFound stepKind = iota
	stepInto
	stepAbort
)

// Step is a walker's decision for one level.
type Step struct {
	kind stepKind
	slot int
}

// Found stops the traversal: the indicated slot holds the answer.
func Found(slot int) Step { return Step{kind: stepFound, slot: slot} }

// Into descends into the link at the indicated slot.
func Into(slot int) Step { return Step{kind: stepInto, slot: slot} }

// Abort terminates the traversal as unsatisfiable. There is no
// backtracking: a strategy encodes any lookahead it needs (as the rank
// strategy does through cached annotations) instead of relying on retry.
func Abort() Step { return Step{kind: stepAbort} }

// Walker decides, once per level, which child to enter next. Each strategy
// is a separate type carrying its own state (remaining rank, digest and
// depth, and so on).
type Walker[K comparable, V any, A any] interface {
	Walk(level Level[K, V, A]) Step
}

// frame is one element of a root-to-leaf path: a node and the slot taken.
type frame[K comparable, V any, A any] struct {
	node *Hamt[K, V, A]
	slot int
}

// Branch is the cursor produced by a successful traversal: the chain of
// nodes from the root down to the found leaf. It stays valid until the
// next structural mutation of the map.
type Branch[K comparable, V any, A any] struct {
	frames []frame[K, V, A]
}

// Leaf returns the pair the branch terminates in.
func (b *Branch[K, V, A]) Leaf() *KvPair[K, V] {
	top := b.frames[len(b.frames)-1]
	return top.node.buckets[top.slot].leaf
}

// Depth returns the number of levels the branch spans.
func (b *Branch[K, V, A]) Depth() int {
	return len(b.frames)
}

// Walk drives a walker down from root one level at a time, materializing
// the path as a Branch. A walker that points Found at a non-leaf slot or
// Into at a non-link slot aborts the traversal; both indicate a broken
// strategy and never a property of the tree.
func Walk[K comparable, V any, A any](root *Hamt[K, V, A], w Walker[K, V, A]) (Branch[K, V, A], bool) {
	var frames []frame[K, V, A]
	node := root
	for {
		step := w.Walk(Level[K, V, A]{node: node})
		switch step.kind {
		case stepFound:
			if step.slot < 0 || step.slot >= BranchFactor || node.buckets[step.slot].leaf == nil {
				return Branch[K, V, A]{}, false
			}
			frames = append(frames, frame[K, V, A]{node: node, slot: step.slot})
			return Branch[K, V, A]{frames: frames}, true
		case stepInto:
			if step.slot < 0 || step.slot >= BranchFactor || node.buckets[step.slot].node == nil {
				return Branch[K, V, A]{}, false
			}
			frames = append(frames, frame[K, V, A]{node: node, slot: step.slot})
			node = node.buckets[step.slot].node
		default:
			return Branch[K, V, A]{}, false
		}
	}
}

// pathWalker follows the slot sequence derived from a key's digest: the
// exact-key strategy. It stops at the first leaf on the path; the caller
// filters by true key equality, since digests are not collision-free.
type pathWalker[K comparable, V any, A any] struct {
	digest uint64
	depth  int
}

func (w *pathWalker[K, V, A]) Walk(level Level[K, V, A]) Step {
	slot := Slot(w.digest, w.depth)
	w.depth++
	switch level.Child(slot).Kind {
	case ChildLeaf:
		return Found(slot)
	case ChildLink:
		return Into(slot)
	default:
		return Abort()
	}
}
