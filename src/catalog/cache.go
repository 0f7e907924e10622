package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/parleychat/parley/src/chatsdk"
)

// DefaultTTL is how long a cached catalog page is served before refetching.
const DefaultTTL = 15 * time.Minute

// Lister fetches one page of the remote participant catalog.
// *hubclient.Client satisfies it.
type Lister interface {
	ListCatalog(ctx context.Context, limit int) (*chatsdk.CatalogPage, error)
}

// row is the sqlite representation of a catalog entry. FetchLimit records
// the limit the page was fetched with, so a later, larger request is not
// served a truncated page.
type row struct {
	ID          string    `db:"id"`
	RemoteID    int       `db:"remote_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   string    `db:"created_at"`
	FetchedAt   time.Time `db:"fetched_at"`
	FetchLimit  int       `db:"fetch_limit"`
}

func (r row) entry() chatsdk.CatalogEntry {
	return chatsdk.CatalogEntry{
		ID:          r.RemoteID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}

// Cache serves the participant catalog from sqlite, refreshing from the hub
// when the stored page is older than the TTL.
type Cache struct {
	db     *DB
	lister Lister
	ttl    time.Duration
	logger *slog.Logger

	mu sync.Mutex
}

// NewCache creates a cache over db backed by lister. A zero ttl selects
// DefaultTTL.
func NewCache(db *DB, lister Lister, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		db:     db,
		lister: lister,
		ttl:    ttl,
		logger: logger.With("component", "catalog_cache"),
	}
}

// Entries returns up to limit catalog entries, hitting the hub only when the
// cached page is stale or forceRefresh is set.
func (c *Cache) Entries(ctx context.Context, limit int, forceRefresh bool) ([]chatsdk.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh {
		cached, err := c.load(ctx, limit)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			c.logger.Debug("serving catalog from cache", "entries", len(cached))
			return cached, nil
		}
	}

	page, err := c.lister.ListCatalog(ctx, limit)
	if err != nil {
		// A dead hub should not take the command down when we have any
		// cached rows at all, even stale ones.
		stale, loadErr := c.loadAny(ctx, limit)
		if loadErr == nil && len(stale) > 0 {
			c.logger.Warn("catalog fetch failed, serving stale cache", "error", err)
			return stale, nil
		}
		return nil, err
	}

	if err := c.store(ctx, page.Rows, limit); err != nil {
		c.logger.Warn("failed to persist catalog page", "error", err)
	}

	return page.Rows, nil
}

// load returns cached entries when the page is within the TTL and covers the
// requested limit, or nil when the cache is empty, stale, or was fetched with
// a smaller limit than the request.
func (c *Cache) load(ctx context.Context, limit int) ([]chatsdk.CatalogEntry, error) {
	var rows []row
	err := sqlscan.Select(ctx, c.db.DB(), &rows,
		"SELECT id, remote_id, name, description, status, created_by, created_at, fetched_at, fetch_limit FROM catalog_entries ORDER BY remote_id LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog cache: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Fewer rows than requested is fine only when the fetch that produced
	// them asked for at least this much; otherwise the page is truncated.
	if len(rows) < limit && rows[0].FetchLimit < limit {
		return nil, nil
	}

	for _, r := range rows {
		if time.Since(r.FetchedAt) > c.ttl {
			return nil, nil
		}
	}

	entries := make([]chatsdk.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// loadAny returns whatever is cached, regardless of age.
func (c *Cache) loadAny(ctx context.Context, limit int) ([]chatsdk.CatalogEntry, error) {
	var rows []row
	err := sqlscan.Select(ctx, c.db.DB(), &rows,
		"SELECT id, remote_id, name, description, status, created_by, created_at, fetched_at, fetch_limit FROM catalog_entries ORDER BY remote_id LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	entries := make([]chatsdk.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// store replaces the cached page with the freshly fetched one, recording the
// limit it was fetched with.
func (c *Cache) store(ctx context.Context, entries []chatsdk.CatalogEntry, limit int) error {
	tx, err := c.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_entries"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear catalog cache: %w", err)
	}

	now := time.Now().UTC()
	for _, e := range entries {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO catalog_entries (id, remote_id, name, description, status, created_by, created_at, fetched_at, fetch_limit) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			uuid.New().String(), e.ID, e.Name, e.Description, e.Status, e.CreatedBy, e.CreatedAt, now, limit)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert catalog entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog cache: %w", err)
	}
	return nil
}
