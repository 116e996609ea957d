package store

import (
	"context"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DB is the caching Database over a Backend. Reads consult an LRU of
// recently fetched nodes plus a negative cache of identities known to be
// absent; both are TTL-bounded so entries age out on their own. Nodes are
// content-addressed, so a positive cache entry can never go stale, and a
// negative entry is invalidated on the spot when the identity is stored.
type DB struct {
	backend  Backend
	cache    *expirable.LRU[Hash256, *Node]
	negative *expirable.LRU[Hash256, struct{}]
	closed   atomic.Bool

	stats struct {
		reads       atomic.Uint64
		writes      atomic.Uint64
		cacheHits   atomic.Uint64
		cacheMisses atomic.Uint64
		readBytes   atomic.Uint64
		writeBytes  atomic.Uint64
	}
}

var _ Database = (*DB)(nil)

// Open validates the config, creates and opens the configured backend, and
// wraps it in a caching DB. Close releases the backend.
func Open(cfg *Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	if err := backend.Open(cfg.CreateIfMissing); err != nil {
		return nil, err
	}
	return NewDB(backend, cfg), nil
}

// NewDB wraps an already-open backend. The caller keeps ownership of
// opening; Close still closes the backend.
func NewDB(backend Backend, cfg *Config) *DB {
	db := &DB{backend: backend}
	if cfg.CacheSize > 0 {
		db.cache = expirable.NewLRU[Hash256, *Node](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	if cfg.NegativeCacheSize > 0 {
		db.negative = expirable.NewLRU[Hash256, struct{}](cfg.NegativeCacheSize, nil, cfg.NegativeCacheTTL)
	}
	return db
}

// Store persists a single node.
func (d *DB) Store(ctx context.Context, node *Node) error {
	if err := d.check(ctx); err != nil {
		return err
	}
	if status := d.backend.Store(node); status != OK {
		return &StoreError{Op: "store", Backend: d.backend.Name(), Hash: node.Hash, Cause: statusErr(status)}
	}
	d.stats.writes.Add(1)
	d.stats.writeBytes.Add(uint64(len(node.Data)))
	d.admit(node)
	return nil
}

// StoreBatch persists nodes in one backend write.
func (d *DB) StoreBatch(ctx context.Context, nodes []*Node) error {
	if err := d.check(ctx); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	if status := d.backend.StoreBatch(nodes); status != OK {
		return &StoreError{Op: "store batch", Backend: d.backend.Name(), Cause: statusErr(status)}
	}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		d.stats.writes.Add(1)
		d.stats.writeBytes.Add(uint64(len(node.Data)))
		d.admit(node)
	}
	return nil
}

// Fetch retrieves a node by identity. An absent identity yields (nil, nil).
func (d *DB) Fetch(ctx context.Context, hash Hash256) (*Node, error) {
	if err := d.check(ctx); err != nil {
		return nil, err
	}
	d.stats.reads.Add(1)

	if d.cache != nil {
		if node, ok := d.cache.Get(hash); ok {
			d.stats.cacheHits.Add(1)
			return node, nil
		}
	}
	if d.negative != nil {
		if _, ok := d.negative.Get(hash); ok {
			d.stats.cacheHits.Add(1)
			return nil, nil
		}
	}
	d.stats.cacheMisses.Add(1)

	node, status := d.backend.Fetch(hash)
	switch status {
	case OK:
		d.stats.readBytes.Add(uint64(len(node.Data)))
		d.admit(node)
		return node, nil
	case NotFound:
		if d.negative != nil {
			d.negative.Add(hash, struct{}{})
		}
		return nil, nil
	default:
		return nil, &StoreError{Op: "fetch", Backend: d.backend.Name(), Hash: hash, Cause: statusErr(status)}
	}
}

// FetchBatch retrieves multiple nodes; absent entries are nil.
func (d *DB) FetchBatch(ctx context.Context, hashes []Hash256) ([]*Node, error) {
	if err := d.check(ctx); err != nil {
		return nil, err
	}
	out := make([]*Node, len(hashes))
	missing := make([]Hash256, 0, len(hashes))
	missingIdx := make([]int, 0, len(hashes))
	for i, hash := range hashes {
		d.stats.reads.Add(1)
		if d.cache != nil {
			if node, ok := d.cache.Get(hash); ok {
				d.stats.cacheHits.Add(1)
				out[i] = node
				continue
			}
		}
		d.stats.cacheMisses.Add(1)
		missing = append(missing, hash)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	fetched, status := d.backend.FetchBatch(missing)
	if status != OK {
		return nil, &StoreError{Op: "fetch batch", Backend: d.backend.Name(), Cause: statusErr(status)}
	}
	for j, node := range fetched {
		if node == nil {
			if d.negative != nil {
				d.negative.Add(missing[j], struct{}{})
			}
			continue
		}
		d.stats.readBytes.Add(uint64(len(node.Data)))
		d.admit(node)
		out[missingIdx[j]] = node
	}
	return out, nil
}

// Stats returns a snapshot of the performance counters.
func (d *DB) Stats() Statistics {
	return Statistics{
		Reads:       d.stats.reads.Load(),
		Writes:      d.stats.writes.Load(),
		CacheHits:   d.stats.cacheHits.Load(),
		CacheMisses: d.stats.cacheMisses.Load(),
		ReadBytes:   d.stats.readBytes.Load(),
		WriteBytes:  d.stats.writeBytes.Load(),
		BackendName: d.backend.Name(),
	}
}

// Sync flushes pending backend writes to durable storage.
func (d *DB) Sync() error {
	if d.closed.Load() {
		return ErrClosed
	}
	if status := d.backend.Sync(); status != OK {
		return &StoreError{Op: "sync", Backend: d.backend.Name(), Cause: statusErr(status)}
	}
	return nil
}

// Close closes the underlying backend. Further calls fail with ErrClosed.
func (d *DB) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	return d.backend.Close()
}

func (d *DB) check(ctx context.Context) error {
	if d.closed.Load() {
		return ErrClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (d *DB) admit(node *Node) {
	if d.cache != nil {
		d.cache.Add(node.Hash, node)
	}
	if d.negative != nil {
		d.negative.Remove(node.Hash)
	}
}
