package merchant

// Cache maps server ids to loaded entities. It tracks whether a full listing
// has been stored separately from whether it holds any entries, so an
// account with no resources is not re-listed on every call.
//
// A Cache is not safe for concurrent use.
type Cache[T any] struct {
	items  map[string]T
	loaded bool
}

// NewCache returns an empty, unloaded cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{items: make(map[string]T)}
}

// Get returns the entity cached under id.
func (c *Cache[T]) Get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// Put stores a single entity. It does not mark the cache as loaded.
func (c *Cache[T]) Put(id string, v T) {
	c.items[id] = v
}

// Load replaces the contents with a complete listing and marks the cache loaded.
func (c *Cache[T]) Load(items map[string]T) {
	c.items = make(map[string]T, len(items))
	for id, v := range items {
		c.items[id] = v
	}
	c.loaded = true
}

// Loaded reports whether a complete listing has been stored.
func (c *Cache[T]) Loaded() bool {
	return c.loaded
}

// All returns a copy of the id → entity mapping. The entities themselves
// are shared, not copied.
func (c *Cache[T]) All() map[string]T {
	out := make(map[string]T, len(c.items))
	for id, v := range c.items {
		out[id] = v
	}
	return out
}

func (c *Cache[T]) Len() int {
	return len(c.items)
}

// Invalidate drops every entry and the loaded flag.
func (c *Cache[T]) Invalidate() {
	c.items = make(map[string]T)
	c.loaded = false
}
