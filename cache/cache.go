// Package cache memoizes parsed takeskip programs. Identical command
// strings recur across repeated calls; parsing is a pure function of the
// normalized string, so a cached tree is observationally identical to a
// fresh parse.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jolsten/takeskip/compiler"
)

// DefaultSize bounds the in-memory cache when the caller doesn't say
// otherwise.
const DefaultSize = 128

// Cache maps normalized command strings to parsed programs with LRU
// retention, optionally backed by a persistent Store. Programs are
// immutable, so a cached tree may be handed to any number of concurrent
// executions; racing lookups for the same key parse structurally equal
// trees and whichever lands last stays cached.
type Cache struct {
	memo  *lru.Cache[string, compiler.Program]
	store *Store
}

// New creates a cache bounded to size entries. Size must be positive.
func New(size int) (*Cache, error) {
	memo, err := lru.New[string, compiler.Program](size)
	if err != nil {
		return nil, err
	}
	return &Cache{memo: memo}, nil
}

// WithStore attaches a persistent store consulted on memory misses and
// written through on fresh parses. Returns the cache for chaining.
func (c *Cache) WithStore(store *Store) *Cache {
	c.store = store
	return c
}

// Get returns the parsed program for a command string, parsing and
// caching it on first sight. Parse failures are returned unwrapped and
// are never cached.
func (c *Cache) Get(command string) (compiler.Program, error) {
	key := compiler.Normalize(command)

	if prog, ok := c.memo.Get(key); ok {
		return prog, nil
	}

	if c.store != nil {
		if prog, err := c.store.Get(key); err == nil {
			c.memo.Add(key, prog)
			return prog, nil
		}
	}

	prog, err := compiler.Parse(key)
	if err != nil {
		return nil, err
	}
	c.memo.Add(key, prog)

	if c.store != nil {
		if err := c.store.Put(key, prog); err != nil {
			// The store is an optimization; a write failure must not
			// fail the call.
			log.Errorf("persisting program for %q: %s", key, err.Error())
		}
	}
	return prog, nil
}

// Len returns the number of programs held in memory.
func (c *Cache) Len() int {
	return c.memo.Len()
}

// Purge drops all in-memory entries. The persistent store is untouched.
func (c *Cache) Purge() {
	c.memo.Purge()
}
