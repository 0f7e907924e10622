package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/src/chatsdk"
)

// fakeLister serves canned pages trimmed to the requested limit and counts
// fetches.
type fakeLister struct {
	page  *chatsdk.CatalogPage
	err   error
	calls int
}

func (f *fakeLister) ListCatalog(ctx context.Context, limit int) (*chatsdk.CatalogPage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rows := f.page.Rows
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return &chatsdk.CatalogPage{Total: f.page.Total, Rows: rows}, nil
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testPage() *chatsdk.CatalogPage {
	return &chatsdk.CatalogPage{
		Total: 2,
		Rows: []chatsdk.CatalogEntry{
			{ID: 1, Name: "summarizer", Status: "published"},
			{ID: 2, Name: "translator", Status: "published"},
		},
	}
}

func TestOpenRunsMigrationsIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening must not re-apply the schema
	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestCacheFetchesThenServesFromCache(t *testing.T) {
	lister := &fakeLister{page: testPage()}
	cache := NewCache(openTestDB(t), lister, time.Hour, nil)

	entries, err := cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, lister.calls)

	entries, err = cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "summarizer", entries[0].Name)
	assert.Equal(t, "translator", entries[1].Name)
	assert.Equal(t, 1, lister.calls, "second read must come from the cache")
}

func TestCacheLargerLimitRefetches(t *testing.T) {
	lister := &fakeLister{page: testPage()}
	cache := NewCache(openTestDB(t), lister, time.Hour, nil)

	entries, err := cache.Entries(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, lister.calls)

	// a request exceeding the cached page size must not be served the
	// truncated page
	entries, err = cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, lister.calls)
}

func TestCacheShortPageServedWhenFetchedWithLargerLimit(t *testing.T) {
	lister := &fakeLister{page: testPage()}
	cache := NewCache(openTestDB(t), lister, time.Hour, nil)

	// the hub only has 2 entries; a limit-10 fetch records that the page is
	// complete up to 10
	_, err := cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)

	entries, err := cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, lister.calls)
}

func TestCacheForceRefresh(t *testing.T) {
	lister := &fakeLister{page: testPage()}
	cache := NewCache(openTestDB(t), lister, time.Hour, nil)

	_, err := cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)

	_, err = cache.Entries(context.Background(), 10, true)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestCacheStaleEntriesRefetched(t *testing.T) {
	lister := &fakeLister{page: testPage()}
	// a nanosecond TTL means every cached row is already stale
	cache := NewCache(openTestDB(t), lister, time.Nanosecond, nil)

	_, err := cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestCacheServesStaleOnFetchFailure(t *testing.T) {
	db := openTestDB(t)
	lister := &fakeLister{page: testPage()}
	cache := NewCache(db, lister, time.Nanosecond, nil)

	_, err := cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	lister.err = errors.New("hub down")

	entries, err := cache.Entries(context.Background(), 10, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestCacheFailsWhenEmptyAndHubDown(t *testing.T) {
	lister := &fakeLister{err: errors.New("hub down")}
	cache := NewCache(openTestDB(t), lister, time.Hour, nil)

	_, err := cache.Entries(context.Background(), 10, false)
	assert.Error(t, err)
}
