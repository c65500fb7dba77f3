package data

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// PageCache stores raw API responses keyed by URL so repeated runs against
// the same window replay locally instead of refetching. Cache failures are
// logged and ignored; the cache is an optimization, never a correctness
// dependency.
type PageCache struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPageCache(logger *slog.Logger, db *sqlx.DB) *PageCache {
	return &PageCache{db: db, logger: logger}
}

func (c *PageCache) Get(url string) ([]byte, bool) {
	var body []byte
	err := c.db.Get(&body, "SELECT body FROM pages WHERE url_hash = ?", hashURL(url))
	if err != nil {
		return nil, false
	}
	return body, true
}

func (c *PageCache) Put(url string, body []byte) {
	query := `
		INSERT INTO pages (url_hash, url, body, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (url_hash) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`

	_, err := c.db.Exec(query, hashURL(url), url, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		c.logger.Warn("cache write failed", "url", url, "error", err)
	}
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
