package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
)

const defaultMaxEntries = 256

type pdfEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// InMemoryPDFCache implements PDFCache with a bounded LRU map.
// This is suitable for single-instance deployments and testing
type InMemoryPDFCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	order      *list.List
	entries    map[string]*list.Element
	now        func() time.Time
}

// NewInMemoryPDFCache creates a new in-memory PDF cache
func NewInMemoryPDFCache(ttl time.Duration, maxEntries int) *InMemoryPDFCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &InMemoryPDFCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns a cached PDF if present and not expired
func (c *InMemoryPDFCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*pdfEntry)
	if c.now().After(e.expiresAt) {
		c.remove(el)
		return nil, false, nil
	}
	c.order.MoveToFront(el)
	return e.data, true, nil
}

// Set stores a PDF, evicting the least recently used entry when full
func (c *InMemoryPDFCache) Set(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*pdfEntry)
		e.data = data
		e.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return nil
	}

	c.entries[key] = c.order.PushFront(&pdfEntry{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	})
	for c.order.Len() > c.maxEntries {
		c.remove(c.order.Back())
	}
	return nil
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryPDFCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *InMemoryPDFCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*pdfEntry).key)
}

// Ensure InMemoryPDFCache implements PDFCache
var _ appinv.PDFCache = (*InMemoryPDFCache)(nil)
