package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/glucoscreen/internal/extract"
)

// CacheItem is one extracted document with its expiry
type CacheItem struct {
	Document  *extract.Document
	ExpiresAt time.Time
}

// IsExpired checks if the cache item has expired
func (c *CacheItem) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Cache keeps extraction results for recently uploaded documents, keyed by
// content hash, so a re-uploaded report is not parsed twice.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*CacheItem
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
}

// NewCache creates a new cache with the specified TTL
func NewCache(ttl time.Duration) *Cache {
	cache := &Cache{
		items: make(map[string]*CacheItem),
		ttl:   ttl,
		done:  make(chan struct{}),
	}

	go cache.cleanup(5 * time.Minute)

	return cache
}

// cleanup removes expired items periodically
func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, item := range c.items {
		if item.IsExpired() {
			delete(c.items, key)
			evicted++
		}
	}
	return evicted
}

// Close stops the cleanup goroutine
func (c *Cache) Close() {
	c.once.Do(func() { close(c.done) })
}

// Key hashes document bytes into a cache key
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of a cached document
func (c *Cache) Get(key string) (*extract.Document, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if item.IsExpired() {
		c.Delete(key)
		return nil, false
	}

	return copyDocument(item.Document), true
}

// Set stores a copy of doc under key
func (c *Cache) Set(key string, doc *extract.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &CacheItem{
		Document:  copyDocument(doc),
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes an item from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*CacheItem)
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalItems := len(c.items)
	expiredItems := 0

	for _, item := range c.items {
		if item.IsExpired() {
			expiredItems++
		}
	}

	return map[string]interface{}{
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}

// Extract returns the cached extraction for data or runs extractor and caches
// a successful result. Parse failures are never cached.
func (c *Cache) Extract(data []byte, extractor *extract.Extractor) (doc *extract.Document, hit bool, err error) {
	key := Key(data)

	if doc, found := c.Get(key); found {
		slog.Debug("Extraction cache hit", "key", key[:8]+"...")
		return doc, true, nil
	}

	doc, err = extractor.ExtractDocument(data)
	if err != nil {
		return nil, false, err
	}

	c.Set(key, doc)
	slog.Debug("Extraction cached", "key", key[:8]+"...", "missing", len(doc.Missing))
	return doc, false, nil
}

func copyDocument(doc *extract.Document) *extract.Document {
	if doc == nil {
		return nil
	}

	out := *doc
	out.Missing = append([]string{}, doc.Missing...)
	out.Values = make(map[string]*float64, len(doc.Values))
	for k, v := range doc.Values {
		if v == nil {
			out.Values[k] = nil
			continue
		}
		val := *v
		out.Values[k] = &val
	}
	return &out
}
