package store

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"

	"github.com/trielab/go-hamt4/store/compression"
)

func init() {
	RegisterBackend("pebble", func(cfg *Config) (Backend, error) {
		return newPebbleBackend(cfg)
	})
}

// pebbleBackend stores nodes in PebbleDB keyed by their Hash256. The
// workload is point lookups by hash and batched writes from Persist, so
// every level carries a bloom filter and table compression is disabled in
// favor of the configured per-value compressor.
type pebbleBackend struct {
	db         *pebble.DB
	compressor compression.Compressor
	cfg        *Config
	open       atomic.Bool
}

func newPebbleBackend(cfg *Config) (*pebbleBackend, error) {
	compressor, err := compression.Get(cfg.Compression)
	if err != nil {
		return nil, fmt.Errorf("pebble backend: %w", err)
	}
	return &pebbleBackend{compressor: compressor, cfg: cfg}, nil
}

func (p *pebbleBackend) Name() string {
	return fmt.Sprintf("pebble(%s)", p.cfg.Path)
}

func (p *pebbleBackend) Open(createIfMissing bool) error {
	if !p.open.CompareAndSwap(false, true) {
		return fmt.Errorf("pebble backend: already open")
	}
	if createIfMissing {
		if err := os.MkdirAll(p.cfg.Path, 0o755); err != nil {
			p.open.Store(false)
			return fmt.Errorf("pebble backend: create %s: %w", p.cfg.Path, err)
		}
	}
	db, err := pebble.Open(p.cfg.Path, p.buildOptions())
	if err != nil {
		p.open.Store(false)
		return fmt.Errorf("pebble backend: open %s: %w", p.cfg.Path, err)
	}
	p.db = db
	return nil
}

func (p *pebbleBackend) buildOptions() *pebble.Options {
	opts := &pebble.Options{
		Cache:        pebble.NewCache(p.cfg.BlockCacheSize),
		MaxOpenFiles: p.cfg.OpenFilesLimit,
		MemTableSize: 16 << 20,
		MaxConcurrentCompactions: func() int {
			return runtime.NumCPU()
		},
		Levels: make([]pebble.LevelOptions, 7),
	}
	for i := range opts.Levels {
		opts.Levels[i] = pebble.LevelOptions{
			BlockSize:      32 << 10,
			FilterPolicy:   bloom.FilterPolicy(10),
			FilterType:     pebble.TableFilter,
			TargetFileSize: int64(8<<20) << uint(i),
			// Values carry their own compression envelope.
			Compression: pebble.NoCompression,
		}
		if opts.Levels[i].TargetFileSize > 256<<20 {
			opts.Levels[i].TargetFileSize = 256 << 20
		}
	}
	return opts
}

func (p *pebbleBackend) Close() error {
	if !p.open.CompareAndSwap(true, false) {
		return nil
	}
	var err error
	if p.db != nil {
		if flushErr := p.db.Flush(); flushErr != nil {
			err = flushErr
		}
		if closeErr := p.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		p.db = nil
	}
	return err
}

func (p *pebbleBackend) IsOpen() bool {
	return p.open.Load()
}

func (p *pebbleBackend) Fetch(hash Hash256) (*Node, Status) {
	if !p.IsOpen() {
		return nil, BackendError
	}
	value, closer, err := p.db.Get(hash[:])
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, NotFound
		}
		return nil, BackendError
	}
	defer closer.Close()
	data, err := unpackValue(p.compressor, value)
	if err != nil {
		return nil, DataCorrupt
	}
	return &Node{Hash: hash, Data: data}, OK
}

func (p *pebbleBackend) FetchBatch(hashes []Hash256) ([]*Node, Status) {
	if !p.IsOpen() {
		return nil, BackendError
	}
	out := make([]*Node, len(hashes))
	for i, hash := range hashes {
		node, status := p.Fetch(hash)
		switch status {
		case OK:
			out[i] = node
		case NotFound:
		default:
			return nil, status
		}
	}
	return out, OK
}

func (p *pebbleBackend) Store(node *Node) Status {
	if !p.IsOpen() {
		return BackendError
	}
	value, err := packValue(p.compressor, node.Data)
	if err != nil {
		return BackendError
	}
	// NoSync: the WAL carries durability, Sync flushes explicitly.
	if err := p.db.Set(node.Hash[:], value, pebble.NoSync); err != nil {
		return BackendError
	}
	return OK
}

func (p *pebbleBackend) StoreBatch(nodes []*Node) Status {
	if !p.IsOpen() {
		return BackendError
	}
	if len(nodes) == 0 {
		return OK
	}
	batch := p.db.NewBatch()
	defer batch.Close()
	for _, node := range nodes {
		if node == nil {
			continue
		}
		value, err := packValue(p.compressor, node.Data)
		if err != nil {
			return BackendError
		}
		if err := batch.Set(node.Hash[:], value, nil); err != nil {
			return BackendError
		}
	}
	if err := batch.Commit(pebble.NoSync); err != nil {
		return BackendError
	}
	return OK
}

func (p *pebbleBackend) Sync() Status {
	if !p.IsOpen() {
		return BackendError
	}
	if err := p.db.Flush(); err != nil {
		return BackendError
	}
	return OK
}

func (p *pebbleBackend) ForEach(fn func(*Node) error) error {
	if !p.IsOpen() {
		return ErrClosed
	}
	iter, err := p.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("pebble backend: iterator: %w", err)
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != 32 {
			return fmt.Errorf("pebble backend: malformed key of %d bytes: %w", len(key), ErrCorrupt)
		}
		var hash Hash256
		copy(hash[:], key)
		data, err := unpackValue(p.compressor, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(&Node{Hash: hash, Data: data}); err != nil {
			return err
		}
	}
	return iter.Error()
}
