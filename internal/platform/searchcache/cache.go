// Package searchcache stores upstream search responses in badger with a
// per-entry TTL.
package searchcache

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"paperpharmacy/internal/metrics"
)

// Cache is a TTL key/value store for raw search responses.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	prefix []byte
	owned  bool
}

// Open opens (or creates) an on-disk cache in dir.
func Open(dir string, ttl time.Duration) (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	c := New(db, "search:", ttl)
	c.owned = true
	return c, nil
}

// New wraps an existing database. Keys are stored under prefix.
func New(db *badger.DB, prefix string, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl, prefix: []byte(prefix)}
}

func (c *Cache) key(k string) []byte {
	out := make([]byte, 0, len(c.prefix)+len(k))
	out = append(out, c.prefix...)
	return append(out, k...)
}

// Get returns the cached value for k. A miss is (nil, false, nil).
func (c *Cache) Get(k string) ([]byte, bool, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(k))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		metrics.SearchCacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	case err != nil:
		metrics.SearchCacheLookups.WithLabelValues("error").Inc()
		return nil, false, err
	}
	metrics.SearchCacheLookups.WithLabelValues("hit").Inc()
	return val, true, nil
}

// Set stores v under k until the TTL passes.
func (c *Cache) Set(k string, v []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(c.key(k), v)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Close closes the database if the cache opened it.
func (c *Cache) Close() error {
	if !c.owned {
		return nil
	}
	return c.db.Close()
}
