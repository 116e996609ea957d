package hamt

// Annotation defines an associative, order-independent reduction over a
// node's children. Empty buckets contribute Identity, leaves contribute
// Leaf, and links contribute the child's cached value, so recomputing a
// node's annotation never descends past its own four buckets.
type Annotation[A any] interface {
	// Identity is the annotation of an empty bucket.
	Identity() A
	// Leaf is the contribution of a single key/value pair.
	Leaf() A
	// Combine merges two annotation values. It must be associative and
	// insensitive to the order in which children are folded.
	Combine(a, b A) A
}

// Counter is implemented by annotations in the cardinality family: those
// whose value can be read as a leaf count. Nth requires one.
type Counter[A any] interface {
	Count(a A) uint64
}

// Cardinality annotates each subtree with its number of leaves.
type Cardinality struct{}

func (Cardinality) Identity() uint64           { return 0 }
func (Cardinality) Leaf() uint64               { return 1 }
func (Cardinality) Combine(a, b uint64) uint64 { return a + b }
func (Cardinality) Count(a uint64) uint64      { return a }

// Unit returns the trivial annotation carried by plain maps. Useful when an
// API takes an Annotation and no per-subtree value is wanted.
func Unit() Annotation[struct{}] {
	return unitAnnotation{}
}

// unitAnnotation is the trivial annotation carried by plain maps. The core
// recognizes it and skips recomputation entirely.
type unitAnnotation struct{}

func (unitAnnotation) Identity() struct{}             { return struct{}{} }
func (unitAnnotation) Leaf() struct{}                 { return struct{}{} }
func (unitAnnotation) Combine(_, _ struct{}) struct{} { return struct{}{} }
