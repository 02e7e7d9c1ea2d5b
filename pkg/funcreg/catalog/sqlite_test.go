package catalog_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/funcreg/pkg/funcreg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	store1, err := catalog.NewSQLiteStore(dbPath)
	require.NoError(t, err)

	snap := catalog.NewSnapshot("request", sampleEntries())
	require.NoError(t, store1.Save(snap))
	require.NoError(t, store1.Close())

	// Reopen the database
	store2, err := catalog.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	loaded, err := store2.Load(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), loaded.Entries)

	// Sequence continues after reopen
	next := catalog.NewSnapshot("request", nil)
	require.NoError(t, store2.Save(next))
	assert.Equal(t, 2, next.Sequence)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := catalog.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := catalog.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	store, err := catalog.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	const workers = 20

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			snap := catalog.NewSnapshot("request", sampleEntries())
			assert.NoError(t, store.Save(snap))
			_, err := store.Load(snap.ID)
			assert.NoError(t, err)
			_, err = store.List()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, workers)
	for i, info := range infos {
		assert.Equal(t, i+1, info.Sequence)
	}
}
