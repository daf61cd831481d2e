// Package citecache persists answered remote citation queries between runs,
// so a re-run never re-issues a query the service already answered.
package citecache

import (
	"encoding/json"
	"fmt"
	"os"
)

// Key builds a namespaced cache key. Namespacing by source keeps two
// services that share an identifier space from colliding.
func Key(source, id string) string {
	return source + "_" + id
}

// Cache is an in-memory map of answered queries backed by a JSON file.
// It is loaded wholesale at startup and written back wholesale by Flush.
// Single mutator, no locking: the enrichment loop is strictly sequential.
type Cache struct {
	path    string
	entries map[string][]int
}

// Load reads the cache file at path. A missing file is an empty cache, not
// an error; a file that exists but cannot be parsed is an error, since
// silently discarding it would re-bill every cached query.
func Load(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string][]int),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("parsing cache file %s: %w", path, err)
	}
	return c, nil
}

// Get returns the stored years for key. The second result distinguishes a
// cached empty answer from a miss.
func (c *Cache) Get(key string) ([]int, bool) {
	years, ok := c.entries[key]
	return years, ok
}

// Put stores the years for key, overwriting any previous value. Empty
// answers are stored too: "no citations" is a valid, cacheable result.
func (c *Cache) Put(key string, years []int) {
	if years == nil {
		years = []int{}
	}
	c.entries[key] = years
}

// Len returns the number of cached queries.
func (c *Cache) Len() int { return len(c.entries) }

// Path returns the file the cache persists to.
func (c *Cache) Path() string { return c.path }

// Flush writes the full cache contents to its file, replacing any prior
// state. Callers must invoke it exactly once per run, on every exit path.
func (c *Cache) Flush() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}
