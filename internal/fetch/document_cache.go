package fetch

import (
	"container/list"
	"sync"
	"time"
)

// DocumentCache is an LRU cache of fetched documents whose entries also
// expire. A nil *DocumentCache is a valid cache that stores nothing.
type DocumentCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type documentCacheEntry struct {
	key       string
	doc       Document
	expiresAt time.Time
}

func NewDocumentCache(maxEntries int) *DocumentCache {
	if maxEntries <= 0 {
		return nil
	}

	return &DocumentCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *DocumentCache) Get(key string, now time.Time) (Document, bool) {
	if c == nil || key == "" {
		return Document{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return Document{}, false
	}

	entry, ok := elem.Value.(*documentCacheEntry)
	if !ok {
		return Document{}, false
	}

	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return Document{}, false
	}

	c.order.MoveToFront(elem)

	return entry.doc, true
}

func (c *DocumentCache) Set(key string, doc Document, expiresAt time.Time, now time.Time) {
	if c == nil || key == "" || doc.Text == "" || !expiresAt.After(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*documentCacheEntry)
		if !castOk {
			return
		}

		entry.doc = doc
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	c.entries[key] = c.order.PushFront(&documentCacheEntry{
		key:       key,
		doc:       doc,
		expiresAt: expiresAt,
	})

	c.pruneLocked(now)
	c.enforceSizeLimitLocked()
}

// Prune drops expired entries and returns how many were removed.
func (c *DocumentCache) Prune(now time.Time) int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pruneLocked(now)
}

func (c *DocumentCache) Len() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *DocumentCache) pruneLocked(now time.Time) int {
	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()

		if entry, ok := elem.Value.(*documentCacheEntry); ok && now.After(entry.expiresAt) {
			c.removeElement(elem)
			removed++
		}

		elem = prev
	}

	return removed
}

func (c *DocumentCache) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *DocumentCache) removeElement(elem *list.Element) {
	if entry, ok := elem.Value.(*documentCacheEntry); ok {
		delete(c.entries, entry.key)
	}
	c.order.Remove(elem)
}
