// Package hamt implements a hash array mapped trie with branching factor 4.
//
// The trie is the indexing primitive underneath a content-addressed data
// layer: unrelated subtrees are shared between successive versions of a map
// instead of being copied, and a persisted snapshot can be re-opened and
// walked without deserializing it in full (see the store package).
//
// Mutation is single-writer: callers must not invoke Insert or Remove
// concurrently on the same root. Reads against a tree that is not being
// mutated may run concurrently.
package hamt

// BranchFactor is the number of buckets per node.
const BranchFactor = 4

// KvPair is a key and value stored together at a leaf. A pair is replaced
// wholesale when its key is re-inserted; the key is never mutated in place.
type KvPair[K comparable, V any] struct {
	Key K
	Val V
}

// bucket is one of the four slots in a node. At most one of leaf and node
// is set: both nil means empty, leaf set means a single pair, node set
// means a link to a child subtree with its cached annotation.
type bucket[K comparable, V any, A any] struct {
	leaf *KvPair[K, V]
	node *Hamt[K, V, A]
	anno A
}

// Hamt is a node of the trie. A node IS the trie: the root is an ordinary
// node and there is no separate tree wrapper.
type Hamt[K comparable, V any, A any] struct {
	buckets [BranchFactor]bucket[K, V, A]
	anno    Annotation[A]
	hasher  Hasher[K]
}

// Map is a Hamt carrying the trivial annotation.
type Map[K comparable, V any] = Hamt[K, V, struct{}]

// New creates an empty map with no annotation overhead.
func New[K comparable, V any]() *Map[K, V] {
	return NewAnnotated[K, V, struct{}](unitAnnotation{})
}

// NewCounted creates an empty map annotated with Cardinality, enabling Nth.
func NewCounted[K comparable, V any]() *Hamt[K, V, uint64] {
	return NewAnnotated[K, V, uint64](Cardinality{})
}

// NewAnnotated creates an empty map with the given annotation.
func NewAnnotated[K comparable, V any, A any](anno Annotation[A]) *Hamt[K, V, A] {
	return &Hamt[K, V, A]{
		anno:   anno,
		hasher: CodecHasher[K]{},
	}
}

// WithHasher replaces the key hasher. The map must still be empty; changing
// the hasher of a populated map would orphan every stored key.
func (h *Hamt[K, V, A]) WithHasher(hasher Hasher[K]) *Hamt[K, V, A] {
	if !h.IsEmpty() {
		panic("hamt: WithHasher on a non-empty map")
	}
	h.hasher = hasher
	return h
}

// Hasher returns the key hasher used by this map.
func (h *Hamt[K, V, A]) Hasher() Hasher[K] {
	return h.hasher
}

// newChild creates an empty node sharing this map's annotation and hasher.
func (h *Hamt[K, V, A]) newChild() *Hamt[K, V, A] {
	return &Hamt[K, V, A]{anno: h.anno, hasher: h.hasher}
}

// IsEmpty reports whether all four buckets are empty.
func (h *Hamt[K, V, A]) IsEmpty() bool {
	for i := range h.buckets {
		b := &h.buckets[i]
		if b.leaf != nil || b.node != nil {
			return false
		}
	}
	return true
}

// Len returns the number of pairs in the map.
func (h *Hamt[K, V, A]) Len() int {
	if c, ok := h.anno.(Counter[A]); ok {
		return int(c.Count(h.recompute()))
	}
	n := 0
	for it := h.Iterator(); it.Next(); {
		n++
	}
	return n
}

// recompute folds the annotation over the four buckets. Each link already
// caches its child's value, so this is O(4) regardless of subtree size.
// The unit annotation short-circuits so unannotated maps pay nothing.
func (h *Hamt[K, V, A]) recompute() A {
	if _, trivial := any(h.anno).(unitAnnotation); trivial {
		var zero A
		return zero
	}
	acc := h.anno.Identity()
	for i := range h.buckets {
		b := &h.buckets[i]
		switch {
		case b.leaf != nil:
			acc = h.anno.Combine(acc, h.anno.Leaf())
		case b.node != nil:
			acc = h.anno.Combine(acc, b.anno)
		}
	}
	return acc
}

// Insert adds or replaces the pair for key. It returns the previous value
// and true when the key was already present. Inserting never fails: the
// in-memory form allocates nodes directly and has no store dependency.
func (h *Hamt[K, V, A]) Insert(key K, val V) (V, bool) {
	return h.insert(key, val, h.hasher.Digest(key), 0)
}

func (h *Hamt[K, V, A]) insert(key K, val V, digest uint64, depth int) (V, bool) {
	slot := Slot(digest, depth)
	b := &h.buckets[slot]

	switch {
	case b.leaf == nil && b.node == nil:
		b.leaf = &KvPair[K, V]{Key: key, Val: val}
		var zero V
		return zero, false

	case b.leaf != nil:
		if b.leaf.Key == key {
			old := b.leaf.Val
			b.leaf = &KvPair[K, V]{Key: key, Val: val}
			return old, true
		}
		// Two distinct keys contend for the slot: split into a fresh
		// child and reinsert both one level down, each by its own digest.
		child := h.newChild()
		child.insert(key, val, digest, depth+1)
		old := b.leaf
		child.insert(old.Key, old.Val, h.hasher.Digest(old.Key), depth+1)
		b.leaf = nil
		b.node = child
		b.anno = child.recompute()
		var zero V
		return zero, false

	default:
		old, replaced := b.node.insert(key, val, digest, depth+1)
		b.anno = b.node.recompute()
		return old, replaced
	}
}

// Remove deletes the pair for key, returning its value and true when the
// key was present. Removing an absent key makes no structural change.
func (h *Hamt[K, V, A]) Remove(key K) (V, bool) {
	return h.remove(key, h.hasher.Digest(key), 0)
}

func (h *Hamt[K, V, A]) remove(key K, digest uint64, depth int) (V, bool) {
	slot := Slot(digest, depth)
	b := &h.buckets[slot]

	switch {
	case b.leaf != nil:
		if b.leaf.Key != key {
			var zero V
			return zero, false
		}
		old := b.leaf.Val
		b.leaf = nil
		return old, true

	case b.node != nil:
		old, removed := b.node.remove(key, digest, depth+1)
		if removed {
			if pair, ok := b.node.collapse(); ok {
				// The child decayed to a single leaf: promote it and
				// discard the now-redundant node.
				b.node = nil
				b.leaf = pair
				var zero A
				b.anno = zero
			} else {
				b.anno = b.node.recompute()
			}
		}
		return old, removed

	default:
		var zero V
		return zero, false
	}
}

// collapse detaches and returns the node's sole leaf when exactly one
// bucket holds a leaf and the other three are empty. A linked node must
// always carry at least two leaves, so this is checked after every removal
// that passed through a link.
func (h *Hamt[K, V, A]) collapse() (*KvPair[K, V], bool) {
	var sole *bucket[K, V, A]
	for i := range h.buckets {
		b := &h.buckets[i]
		if b.node != nil {
			return nil, false
		}
		if b.leaf != nil {
			if sole != nil {
				return nil, false
			}
			sole = b
		}
	}
	if sole == nil {
		return nil, false
	}
	pair := sole.leaf
	sole.leaf = nil
	return pair, true
}

// Get returns the value for key. A digest collision with a different key
// walks the same path but is filtered out by true key equality here.
func (h *Hamt[K, V, A]) Get(key K) (V, bool) {
	pair, ok := h.lookup(key)
	if !ok {
		var zero V
		return zero, false
	}
	return pair.Val, true
}

// GetMut returns a pointer to the value for key, valid until the next
// structural mutation of the map. Mutating the value through it does not
// disturb annotations; only Insert and Remove change leaf counts.
func (h *Hamt[K, V, A]) GetMut(key K) (*V, bool) {
	pair, ok := h.lookup(key)
	if !ok {
		return nil, false
	}
	return &pair.Val, true
}

func (h *Hamt[K, V, A]) lookup(key K) (*KvPair[K, V], bool) {
	branch, ok := Walk(h, &pathWalker[K, V, A]{digest: h.hasher.Digest(key)})
	if !ok {
		return nil, false
	}
	pair := branch.Leaf()
	if pair.Key != key {
		return nil, false
	}
	return pair, true
}

// ForEach calls fn for every pair in the map in bucket order, descending
// into links before moving to the next sibling. Returning false from fn
// stops the walk early.
func (h *Hamt[K, V, A]) ForEach(fn func(*KvPair[K, V]) bool) {
	for it := h.Iterator(); it.Next(); {
		if !fn(it.Leaf()) {
			return
		}
	}
}
