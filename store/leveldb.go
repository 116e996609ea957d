package store

import (
	"fmt"
	"sync/atomic"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/trielab/go-hamt4/store/compression"
)

func init() {
	RegisterBackend("leveldb", func(cfg *Config) (Backend, error) {
		return newLevelDBBackend(cfg)
	})
}

// levelDBBackend stores nodes in goleveldb. Simpler and lighter than the
// pebble backend; same key layout and value envelope, so the two are
// interchangeable on disk format at the store API level.
type levelDBBackend struct {
	db         *leveldb.DB
	compressor compression.Compressor
	cfg        *Config
	open       atomic.Bool
}

func newLevelDBBackend(cfg *Config) (*levelDBBackend, error) {
	compressor, err := compression.Get(cfg.Compression)
	if err != nil {
		return nil, fmt.Errorf("leveldb backend: %w", err)
	}
	return &levelDBBackend{compressor: compressor, cfg: cfg}, nil
}

func (l *levelDBBackend) Name() string {
	return fmt.Sprintf("leveldb(%s)", l.cfg.Path)
}

func (l *levelDBBackend) Open(createIfMissing bool) error {
	if !l.open.CompareAndSwap(false, true) {
		return fmt.Errorf("leveldb backend: already open")
	}
	options := &opt.Options{
		ErrorIfMissing:         !createIfMissing,
		OpenFilesCacheCapacity: l.cfg.OpenFilesLimit,
		BlockCacheCapacity:     int(l.cfg.BlockCacheSize),
		Filter:                 filter.NewBloomFilter(10),
		// Values carry their own compression envelope.
		Compression: opt.NoCompression,
	}
	db, err := leveldb.OpenFile(l.cfg.Path, options)
	if err != nil {
		l.open.Store(false)
		return fmt.Errorf("leveldb backend: open %s: %w", l.cfg.Path, err)
	}
	l.db = db
	return nil
}

func (l *levelDBBackend) Close() error {
	if !l.open.CompareAndSwap(true, false) {
		return nil
	}
	if l.db != nil {
		err := l.db.Close()
		l.db = nil
		return err
	}
	return nil
}

func (l *levelDBBackend) IsOpen() bool {
	return l.open.Load()
}

func (l *levelDBBackend) Fetch(hash Hash256) (*Node, Status) {
	if !l.IsOpen() {
		return nil, BackendError
	}
	value, err := l.db.Get(hash[:], nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, NotFound
		}
		return nil, BackendError
	}
	data, err := unpackValue(l.compressor, value)
	if err != nil {
		return nil, DataCorrupt
	}
	return &Node{Hash: hash, Data: data}, OK
}

func (l *levelDBBackend) FetchBatch(hashes []Hash256) ([]*Node, Status) {
	if !l.IsOpen() {
		return nil, BackendError
	}
	out := make([]*Node, len(hashes))
	for i, hash := range hashes {
		node, status := l.Fetch(hash)
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

func (l *levelDBBackend) Store(node *Node) Status {
	if !l.IsOpen() {
		return BackendError
	}
	value, err := packValue(l.compressor, node.Data)
	if err != nil {
		return BackendError
	}
	if err := l.db.Put(node.Hash[:], value, nil); err != nil {
		return BackendError
	}
	return OK
}

func (l *levelDBBackend) StoreBatch(nodes []*Node) Status {
	if !l.IsOpen() {
		return BackendError
	}
	if len(nodes) == 0 {
		return OK
	}
	batch := new(leveldb.Batch)
	for _, node := range nodes {
		if node == nil {
			continue
		}
		value, err := packValue(l.compressor, node.Data)
		if err != nil {
			return BackendError
		}
		batch.Put(node.Hash[:], value)
	}
	if err := l.db.Write(batch, nil); err != nil {
		return BackendError
	}
	return OK
}

func (l *levelDBBackend) Sync() Status {
	if !l.IsOpen() {
		return BackendError
	}
	// goleveldb has no explicit flush; force one with a synced no-op write.
	if err := l.db.Put([]byte("\x00sync"), nil, &opt.WriteOptions{Sync: true}); err != nil {
		return BackendError
	}
	if err := l.db.Delete([]byte("\x00sync"), nil); err != nil {
		return BackendError
	}
	return OK
}

func (l *levelDBBackend) ForEach(fn func(*Node) error) error {
	if !l.IsOpen() {
		return ErrClosed
	}
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		if len(key) != 32 {
			continue // skip bookkeeping keys
		}
		var hash Hash256
		copy(hash[:], key)
		data, err := unpackValue(l.compressor, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(&Node{Hash: hash, Data: data}); err != nil {
			return err
		}
	}
	return iter.Error()
}
