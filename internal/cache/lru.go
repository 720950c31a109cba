package cache

import (
	"container/list"
	"sync"
)

// LRU is a thread-safe byte cache with both an entry-count and a
// total-size bound, used to keep hot thumbnails out of the disk path.
type LRU struct {
	capacity int
	size     int64
	maxSize  int64
	items    map[string]*list.Element
	order    *list.List
	mu       sync.RWMutex
}

type entry struct {
	key  string
	data []byte
}

// NewLRU creates a cache holding at most capacity entries and maxSizeBytes
// total bytes.
func NewLRU(capacity int, maxSizeBytes int64) *LRU {
	return &LRU{
		capacity: capacity,
		maxSize:  maxSizeBytes,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves an item, marking it most recently used.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry).data, true
	}
	return nil, false
}

// Set adds or updates an item. Items larger than the size bound are not
// cached at all.
func (c *LRU) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dataSize := int64(len(data))
	if dataSize > c.maxSize {
		return
	}

	if elem, ok := c.items[key]; ok {
		old := elem.Value.(*entry)
		c.size -= int64(len(old.data))
		old.data = data
		c.size += dataSize
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity || (c.size+dataSize > c.maxSize && c.order.Len() > 0) {
		c.evictOldest()
	}

	elem := c.order.PushFront(&entry{key: key, data: data})
	c.items[key] = elem
	c.size += dataSize
}

// Delete removes an item.
func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// Len returns the number of cached items.
func (c *LRU) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Size returns the cached bytes total.
func (c *LRU) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

func (c *LRU) evictOldest() {
	if elem := c.order.Back(); elem != nil {
		c.remove(elem)
	}
}

func (c *LRU) remove(elem *list.Element) {
	e := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.items, e.key)
	c.size -= int64(len(e.data))
}
