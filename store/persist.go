package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/trielab/go-hamt4/codec"
	"github.com/trielab/go-hamt4/hamt"
)

// The archive format carries one tag per trie bucket.
var _ [archiveBuckets]struct{} = [hamt.BranchFactor]struct{}{}

// Persist writes every node reachable from m into db, children before
// parents, in one batch. It returns the root identity; the map itself is
// untouched and remains fully usable. Persisting the same content twice is
// idempotent: identical nodes hash to identical identities.
func Persist[K comparable, V any, A any](ctx context.Context, db Database, m *hamt.Hamt[K, V, A]) (Hash256, error) {
	var batch []*Node
	root, err := appendSubtree(&batch, m)
	if err != nil {
		return Hash256{}, err
	}
	if err := db.StoreBatch(ctx, batch); err != nil {
		return Hash256{}, err
	}
	return root, nil
}

func appendSubtree[K comparable, V any, A any](batch *[]*Node, n *hamt.Hamt[K, V, A]) (Hash256, error) {
	var tags [archiveBuckets]byte
	var payloads [archiveBuckets][]byte
	for i := 0; i < hamt.BranchFactor; i++ {
		child := n.ChildAt(i)
		switch child.Kind {
		case hamt.ChildLeaf:
			pair, err := codec.Marshal(child.Leaf)
			if err != nil {
				return Hash256{}, fmt.Errorf("persist: encode pair: %w", err)
			}
			tags[i] = tagLeaf
			payloads[i] = pair
		case hamt.ChildLink:
			id, err := appendSubtree(batch, child.Node)
			if err != nil {
				return Hash256{}, err
			}
			anno, err := codec.Marshal(child.Anno)
			if err != nil {
				return Hash256{}, fmt.Errorf("persist: encode annotation: %w", err)
			}
			payload := make([]byte, 0, linkIDSize+len(anno))
			payload = append(payload, id[:]...)
			payload = append(payload, anno...)
			tags[i] = tagLink
			payloads[i] = payload
		}
	}
	node := NewNode(encodeArchivedNode(tags, payloads))
	*batch = append(*batch, node)
	return node.Hash, nil
}

// ArchivedMap is a read-only view of a persisted trie, addressed by its
// root identity. Lookups fetch and validate only the nodes on the key's
// path; nothing is deserialized beyond the single pair inspected. The view
// is immutable and safe for concurrent use.
type ArchivedMap[K comparable, V any, A any] struct {
	db     Database
	root   Hash256
	hasher hamt.Hasher[K]
}

// OpenArchived views the persisted trie rooted at root.
func OpenArchived[K comparable, V any, A any](db Database, root Hash256) *ArchivedMap[K, V, A] {
	return &ArchivedMap[K, V, A]{db: db, root: root, hasher: hamt.CodecHasher[K]{}}
}

// WithHasher substitutes the key hasher. It must match the hasher the
// persisted map was built with, or paths will not resolve.
func (m *ArchivedMap[K, V, A]) WithHasher(hasher hamt.Hasher[K]) *ArchivedMap[K, V, A] {
	m.hasher = hasher
	return m
}

// Root returns the identity this view is anchored at.
func (m *ArchivedMap[K, V, A]) Root() Hash256 {
	return m.root
}

func (m *ArchivedMap[K, V, A]) fetchNode(ctx context.Context, id Hash256) (*ArchivedNode, error) {
	node, err := m.db.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		// A reachable child that is absent means the archive is torn.
		return nil, &StoreError{Op: "fetch", Hash: id, Cause: ErrNotFound}
	}
	return ParseArchivedNode(node.Data)
}

// Get looks up a key without materializing the trie. The bool reports
// presence; the error reports store failures only.
func (m *ArchivedMap[K, V, A]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	digest := m.hasher.Digest(key)
	id := m.root
	for depth := 0; ; depth++ {
		node, err := m.fetchNode(ctx, id)
		if err != nil {
			return zero, false, err
		}
		slot := hamt.Slot(digest, depth)
		switch {
		case node.IsLeaf(slot):
			var pair hamt.KvPair[K, V]
			if err := codec.Unmarshal(node.LeafBytes(slot), &pair); err != nil {
				return zero, false, fmt.Errorf("archive: decode pair: %v: %w", err, ErrCorrupt)
			}
			if pair.Key != key {
				return zero, false, nil
			}
			return pair.Val, true, nil
		case node.IsLink(slot):
			id = node.LinkID(slot)
		default:
			return zero, false, nil
		}
	}
}

// ForEach visits every archived pair in bucket order, depth first. The
// visitor returns false to stop early.
func (m *ArchivedMap[K, V, A]) ForEach(ctx context.Context, fn func(hamt.KvPair[K, V]) bool) error {
	_, err := m.forEachNode(ctx, m.root, fn)
	return err
}

func (m *ArchivedMap[K, V, A]) forEachNode(ctx context.Context, id Hash256, fn func(hamt.KvPair[K, V]) bool) (bool, error) {
	node, err := m.fetchNode(ctx, id)
	if err != nil {
		return false, err
	}
	for i := 0; i < archiveBuckets; i++ {
		switch {
		case node.IsLeaf(i):
			pair, err := decodePair[K, V](node.LeafBytes(i))
			if err != nil {
				return false, err
			}
			if !fn(pair) {
				return false, nil
			}
		case node.IsLink(i):
			more, err := m.forEachNode(ctx, node.LinkID(i), fn)
			if err != nil || !more {
				return false, err
			}
		}
	}
	return true, nil
}

// Len counts the archived pairs by walking the trie.
func (m *ArchivedMap[K, V, A]) Len(ctx context.Context) (int, error) {
	n := 0
	err := m.ForEach(ctx, func(hamt.KvPair[K, V]) bool {
		n++
		return true
	})
	return n, err
}

// Restore materializes the archive back into a fresh in-memory map built
// on the given annotation. The four root subtrees are collected in
// parallel. The archive itself is untouched.
func (m *ArchivedMap[K, V, A]) Restore(ctx context.Context, anno hamt.Annotation[A]) (*hamt.Hamt[K, V, A], error) {
	root, err := m.fetchNode(ctx, m.root)
	if err != nil {
		return nil, err
	}

	var subtrees [archiveBuckets][]hamt.KvPair[K, V]
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < archiveBuckets; i++ {
		switch {
		case root.IsLeaf(i):
			pair, err := decodePair[K, V](root.LeafBytes(i))
			if err != nil {
				return nil, err
			}
			subtrees[i] = []hamt.KvPair[K, V]{pair}
		case root.IsLink(i):
			i, id := i, root.LinkID(i)
			g.Go(func() error {
				pairs, err := m.collectPairs(gctx, id)
				subtrees[i] = pairs
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := hamt.NewAnnotated[K, V](anno).WithHasher(m.hasher)
	for _, pairs := range subtrees {
		for _, pair := range pairs {
			out.Insert(pair.Key, pair.Val)
		}
	}
	return out, nil
}

func (m *ArchivedMap[K, V, A]) collectPairs(ctx context.Context, id Hash256) ([]hamt.KvPair[K, V], error) {
	var pairs []hamt.KvPair[K, V]
	_, err := m.forEachNode(ctx, id, func(pair hamt.KvPair[K, V]) bool {
		pairs = append(pairs, pair)
		return true
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func decodePair[K comparable, V any](data []byte) (hamt.KvPair[K, V], error) {
	var pair hamt.KvPair[K, V]
	if err := codec.Unmarshal(data, &pair); err != nil {
		return pair, fmt.Errorf("archive: decode pair: %v: %w", err, ErrCorrupt)
	}
	return pair, nil
}
