package schema

import "sync"

// Cache holds loaded snapshots by connection id for the whole session.
// Entries are never evicted.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Snapshot
	loading map[string]bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Snapshot),
		loading: make(map[string]bool),
	}
}

// Get returns the cached snapshot for id.
func (c *Cache) Get(id string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[id]
	return s, ok
}

// Put stores a snapshot and clears the in-flight mark for id.
func (c *Cache) Put(id string, s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = s
	delete(c.loading, id)
}

// MarkLoading records that a load for id was dispatched. It returns false
// if id is already cached or already loading, in which case no new request
// should be sent.
func (c *Cache) MarkLoading(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; ok {
		return false
	}
	if c.loading[id] {
		return false
	}
	c.loading[id] = true
	return true
}

// MarkRefresh records a reload of id even when it is cached. The cached
// snapshot stays until the reply replaces it. It returns false while a load
// for id is in flight.
func (c *Cache) MarkRefresh(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading[id] {
		return false
	}
	c.loading[id] = true
	return true
}

// Loading reports whether a load for id is in flight.
func (c *Cache) Loading(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[id]
}

// Fail clears the in-flight mark after a failed load so a later open can
// retry.
func (c *Cache) Fail(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loading, id)
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
