package explorer

import (
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
)

// Raw transaction bytes are immutable once confirmed, so the cache
// never needs invalidation.
const prefixTransactions = "txn:"

// Cache stores raw transactions on disk so repeat lookups don't touch
// the network.
type Cache struct {
	db *pebble.DB
}

// NewCache opens (creating if needed) a pebble database at path.
func NewCache(path string) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Transaction returns the cached raw transaction or false when the
// txid has not been seen.
func (c *Cache) Transaction(txid string) ([]byte, bool, error) {
	value, closer, err := c.db.Get([]byte(prefixTransactions + txid))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}
	defer closer.Close()

	raw := make([]byte, len(value))
	copy(raw, value)
	return raw, true, nil
}

// StoreTransaction records the raw bytes for a txid.
func (c *Cache) StoreTransaction(txid string, raw []byte) error {
	if err := c.db.Set([]byte(prefixTransactions+txid), raw, pebble.Sync); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
