package store

import "sync"

func init() {
	RegisterBackend("memory", func(cfg *Config) (Backend, error) {
		return newMemoryBackend(), nil
	})
}

// memoryBackend keeps nodes in a map. Used by tests and as the ephemeral
// store for tries that never need to outlive the process.
type memoryBackend struct {
	mu    sync.RWMutex
	nodes map[Hash256][]byte
	open  bool
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{}
}

func (b *memoryBackend) Name() string { return "memory" }

func (b *memoryBackend) Open(createIfMissing bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		return nil
	}
	b.nodes = make(map[Hash256][]byte)
	b.open = true
	return nil
}

func (b *memoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nodes = nil
	b.open = false
	return nil
}

func (b *memoryBackend) IsOpen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.open
}

func (b *memoryBackend) Fetch(hash Hash256) (*Node, Status) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.open {
		return nil, BackendError
	}
	data, ok := b.nodes[hash]
	if !ok {
		return nil, NotFound
	}
	return &Node{Hash: hash, Data: data}, OK
}

func (b *memoryBackend) FetchBatch(hashes []Hash256) ([]*Node, Status) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.open {
		return nil, BackendError
	}
	out := make([]*Node, len(hashes))
	for i, hash := range hashes {
		if data, ok := b.nodes[hash]; ok {
			out[i] = &Node{Hash: hash, Data: data}
		}
	}
	return out, OK
}

func (b *memoryBackend) Store(node *Node) Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return BackendError
	}
	b.nodes[node.Hash] = node.Data
	return OK
}

func (b *memoryBackend) StoreBatch(nodes []*Node) Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return BackendError
	}
	for _, node := range nodes {
		b.nodes[node.Hash] = node.Data
	}
	return OK
}

func (b *memoryBackend) Sync() Status {
	if !b.IsOpen() {
		return BackendError
	}
	return OK
}

func (b *memoryBackend) ForEach(fn func(*Node) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.open {
		return ErrClosed
	}
	for hash, data := range b.nodes {
		if err := fn(&Node{Hash: hash, Data: data}); err != nil {
			return err
		}
	}
	return nil
}
