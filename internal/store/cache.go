package store

import (
	"encoding/json"
	"fmt"
)

// Cache is a file-backed lookup cache keyed by namespaced strings.
//
// Two value shapes share one flat JSON object: genre-label lists (keys like
// "track:<id>" and "artist:<name>") and single genre names (bare genre ids).
// Entries are monotonic: once written a key is never invalidated within a
// run, and nothing touches disk until [Cache.Save].
type Cache struct {
	path  string
	lists map[string][]string
	names map[string]string
}

// OpenCache loads the cache file at path, returning an empty cache if the
// file does not exist.
func OpenCache(path string) (*Cache, error) {
	c := &Cache{
		path:  path,
		lists: map[string][]string{},
		names: map[string]string{},
	}

	raw := map[string]json.RawMessage{}
	if err := ReadJSONFile(path, &raw); err != nil {
		return nil, err
	}

	for key, value := range raw {
		var name string
		if err := json.Unmarshal(value, &name); err == nil {
			c.names[key] = name
			continue
		}

		var labels []string
		if err := json.Unmarshal(value, &labels); err != nil {
			return nil, fmt.Errorf("cache %s: unexpected value for key %q", path, key)
		}
		if labels == nil {
			labels = []string{}
		}
		c.lists[key] = labels
	}

	return c, nil
}

// List returns the genre-label list for key. The second return reports
// whether the key is present, so a cached empty list still counts as a hit.
func (c *Cache) List(key string) ([]string, bool) {
	labels, ok := c.lists[key]
	return labels, ok
}

// SetList records a genre-label list for key.
func (c *Cache) SetList(key string, labels []string) {
	if labels == nil {
		labels = []string{}
	}
	c.lists[key] = labels
}

// Name returns the single-name entry for key.
func (c *Cache) Name(key string) (string, bool) {
	name, ok := c.names[key]
	return name, ok
}

// SetName records a single-name entry for key.
func (c *Cache) SetName(key, name string) {
	c.names[key] = name
}

// Len reports the total number of cached entries.
func (c *Cache) Len() int {
	return len(c.lists) + len(c.names)
}

// Save persists the cache to its backing file.
func (c *Cache) Save() error {
	merged := make(map[string]any, c.Len())
	for key, labels := range c.lists {
		merged[key] = labels
	}
	for key, name := range c.names {
		merged[key] = name
	}
	return WriteJSONFile(c.path, merged)
}
