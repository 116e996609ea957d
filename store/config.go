package store

import (
	"fmt"
	"time"
)

// Config configures a store: which backend holds the bytes, where it
// lives on disk, and how the caching layer above it behaves.
type Config struct {
	// BackendType selects a registered backend ("memory", "pebble", "leveldb").
	BackendType string

	// Path is the on-disk location for persistent backends. Ignored by
	// the memory backend.
	Path string

	// CreateIfMissing creates the database directory if absent.
	CreateIfMissing bool

	// CacheSize bounds the positive node cache (entries). Zero disables it.
	CacheSize int

	// CacheTTL expires positive cache entries. Zero means no expiry.
	CacheTTL time.Duration

	// NegativeCacheSize bounds the cache of identities known to be absent,
	// sparing the backend repeated misses. Zero disables it.
	NegativeCacheSize int

	// NegativeCacheTTL expires negative entries so later writes become
	// visible. Zero means no expiry.
	NegativeCacheTTL time.Duration

	// Compression names the block compressor for disk backends
	// ("none", "lz4"). The memory backend ignores it.
	Compression string

	// OpenFilesLimit caps file handles held by disk backends.
	OpenFilesLimit int

	// BlockCacheSize is the disk backend's internal block cache in bytes.
	BlockCacheSize int64
}

// DefaultConfig returns a memory-backed configuration with moderate caches.
func DefaultConfig() *Config {
	return &Config{
		BackendType:       "memory",
		CreateIfMissing:   true,
		CacheSize:         16384,
		CacheTTL:          5 * time.Minute,
		NegativeCacheSize: 4096,
		NegativeCacheTTL:  time.Minute,
		Compression:       "lz4",
		OpenFilesLimit:    1000,
		BlockCacheSize:    64 << 20,
	}
}

// String returns a one-line summary of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("store config: backend=%s path=%q compression=%s cache=%d/%s negative=%d/%s",
		c.BackendType, c.Path, c.Compression,
		c.CacheSize, c.CacheTTL, c.NegativeCacheSize, c.NegativeCacheTTL)
}

// NewConfig builds a Config from the defaults plus the given options.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option mutates a Config.
type Option func(*Config)

// WithBackend selects the backend type.
func WithBackend(name string) Option {
	return func(c *Config) { c.BackendType = name }
}

// WithPath sets the on-disk location for persistent backends.
func WithPath(path string) Option {
	return func(c *Config) { c.Path = path }
}

// WithCache sizes the positive node cache.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Config) { c.CacheSize = size; c.CacheTTL = ttl }
}

// WithNegativeCache sizes the known-absent cache.
func WithNegativeCache(size int, ttl time.Duration) Option {
	return func(c *Config) { c.NegativeCacheSize = size; c.NegativeCacheTTL = ttl }
}

// WithCompression selects the disk compressor by name.
func WithCompression(name string) Option {
	return func(c *Config) { c.Compression = name }
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	if c.BackendType == "" {
		return fmt.Errorf("%w: backend type is empty", ErrInvalidConfig)
	}
	if c.BackendType != "memory" && c.Path == "" {
		return fmt.Errorf("%w: backend %q requires a path", ErrInvalidConfig, c.BackendType)
	}
	if c.CacheSize < 0 || c.NegativeCacheSize < 0 {
		return fmt.Errorf("%w: cache sizes must be non-negative", ErrInvalidConfig)
	}
	if c.OpenFilesLimit < 0 {
		return fmt.Errorf("%w: open files limit must be non-negative", ErrInvalidConfig)
	}
	return nil
}
