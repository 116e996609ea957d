package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trielab/go-hamt4/store"
)

func openMemoryDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(store.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDBStoreFetch(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	node := store.NewNode([]byte("db payload"))
	require.NoError(t, db.Store(ctx, node))

	fetched, err := db.Fetch(ctx, node.Hash)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, node.Data, fetched.Data)
}

func TestDBFetchAbsentIsNotAnError(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	fetched, err := db.Fetch(ctx, store.HashData([]byte("absent")))
	require.NoError(t, err)
	require.Nil(t, fetched)
}

func TestDBNegativeCacheInvalidatedByStore(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	node := store.NewNode([]byte("late arrival"))

	// Prime the negative cache with a miss.
	fetched, err := db.Fetch(ctx, node.Hash)
	require.NoError(t, err)
	require.Nil(t, fetched)

	// Storing the identity must make it visible immediately.
	require.NoError(t, db.Store(ctx, node))
	fetched, err = db.Fetch(ctx, node.Hash)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, node.Data, fetched.Data)
}

func TestDBStatistics(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	node := store.NewNode([]byte("counted payload"))
	require.NoError(t, db.Store(ctx, node))

	// First fetch is served by the cache populated on store.
	_, err := db.Fetch(ctx, node.Hash)
	require.NoError(t, err)

	stats := db.Stats()
	require.Equal(t, uint64(1), stats.Writes)
	require.Equal(t, uint64(1), stats.Reads)
	require.Equal(t, uint64(1), stats.CacheHits)
	require.Equal(t, uint64(len(node.Data)), stats.WriteBytes)
	require.Equal(t, "memory", stats.BackendName)
	require.NotEmpty(t, stats.String())
}

func TestDBFetchBatch(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	a := store.NewNode([]byte("batch a"))
	b := store.NewNode([]byte("batch b"))
	require.NoError(t, db.StoreBatch(ctx, []*store.Node{a, b}))

	missing := store.HashData([]byte("not there"))
	fetched, err := db.FetchBatch(ctx, []store.Hash256{a.Hash, missing, b.Hash})
	require.NoError(t, err)
	require.Len(t, fetched, 3)
	require.Equal(t, a.Data, fetched[0].Data)
	require.Nil(t, fetched[1])
	require.Equal(t, b.Data, fetched[2].Data)
}

func TestDBClosed(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)
	require.NoError(t, db.Close())

	_, err := db.Fetch(ctx, store.HashData([]byte("x")))
	require.ErrorIs(t, err, store.ErrClosed)
	require.ErrorIs(t, db.Store(ctx, store.NewNode([]byte("x"))), store.ErrClosed)
	require.ErrorIs(t, db.Sync(), store.ErrClosed)
	require.NoError(t, db.Close())
}

func TestDBCancelledContext(t *testing.T) {
	db := openMemoryDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Fetch(ctx, store.HashData([]byte("x")))
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := store.Open(&store.Config{})
	require.ErrorIs(t, err, store.ErrInvalidConfig)

	cfg := store.DefaultConfig()
	cfg.BackendType = "imaginary"
	cfg.Path = t.TempDir()
	_, err = store.Open(cfg)
	require.ErrorIs(t, err, store.ErrBackendNotRegistered)
}
