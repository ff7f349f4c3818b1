package utils

import (
	"os"
	"sync"
	"time"
)

// cacheEntry holds a value and, when backed by a file, the file's stat at store time
type cacheEntry[V any] struct {
	value   V
	modTime time.Time
	size    int64
	backed  bool
}

// Cache is a concurrency-safe keyed store. Entries stored with SetWithFileInfo
// are dropped on read once their backing file changes.
type Cache[K comparable, V any] struct {
	items map[K]*cacheEntry[V]
	mutex sync.RWMutex
}

// NewCache creates an empty cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*cacheEntry[V]),
	}
}

// Get retrieves an item without any file validation
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if item, exists := c.items[key]; exists {
		return item.value, true
	}

	var zero V
	return zero, false
}

// GetWithFileValidation retrieves an item stored with SetWithFileInfo.
// If the file is gone or its modification time or size differ, the item is
// removed and false is returned.
func (c *Cache[K, V]) GetWithFileValidation(key K, filePath string) (V, bool) {
	var zero V

	c.mutex.RLock()
	item, exists := c.items[key]
	c.mutex.RUnlock()

	if !exists || !item.backed {
		return zero, false
	}

	stat, err := os.Stat(filePath)
	if err == nil && stat.ModTime().Equal(item.modTime) && stat.Size() == item.size {
		return item.value, true
	}

	c.Delete(key)
	return zero, false
}

// Set stores an item
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &cacheEntry[V]{value: value}
}

// SetWithFileInfo stores an item along with filePath's current stat
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, filePath string) error {
	stat, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &cacheEntry[V]{
		value:   value,
		modTime: stat.ModTime(),
		size:    stat.Size(),
		backed:  true,
	}
	return nil
}

// Delete removes an item
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// DeleteFunc removes every item for which fn returns true and reports how many went
func (c *Cache[K, V]) DeleteFunc(fn func(key K, value V) bool) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key, item := range c.items {
		if fn(key, item.value) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Clear removes all items
func (c *Cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[K]*cacheEntry[V])
}

// Size returns the number of items
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}
