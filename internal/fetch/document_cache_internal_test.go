package fetch

import (
	"testing"
	"time"
)

func TestDocumentCacheGetSet(t *testing.T) {
	cache := NewDocumentCache(2)
	if cache == nil {
		t.Fatalf("expected cache instance")
	}

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.Set("key", Document{Text: "value"}, now.Add(time.Hour), now)

	doc, ok := cache.Get("key", now)
	if !ok {
		t.Fatalf("expected cached document to be present")
	}

	if doc.Text != "value" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestDocumentCacheExpiresEntries(t *testing.T) {
	cache := NewDocumentCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.Set("key", Document{Text: "value"}, now.Add(time.Minute), now)

	if _, ok := cache.Get("key", now.Add(2*time.Minute)); ok {
		t.Fatalf("expected cache entry to expire")
	}

	if cache.Len() != 0 {
		t.Fatalf("expected expired cache entry to be removed")
	}
}

func TestDocumentCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewDocumentCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	expiresAt := now.Add(time.Hour)

	cache.Set("a", Document{Text: "doc-a"}, expiresAt, now)
	cache.Set("b", Document{Text: "doc-b"}, expiresAt, now)

	if _, ok := cache.Get("a", now); !ok {
		t.Fatalf("expected entry a to exist before eviction check")
	}

	cache.Set("c", Document{Text: "doc-c"}, expiresAt, now)

	if _, ok := cache.Get("a", now); !ok {
		t.Fatalf("expected entry a to remain after evicting least recently used")
	}

	if _, ok := cache.Get("b", now); ok {
		t.Fatalf("expected entry b to be evicted")
	}

	if _, ok := cache.Get("c", now); !ok {
		t.Fatalf("expected entry c to be cached")
	}
}

func TestDocumentCachePrune(t *testing.T) {
	cache := NewDocumentCache(4)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	cache.Set("short", Document{Text: "a"}, now.Add(time.Minute), now)
	cache.Set("long", Document{Text: "b"}, now.Add(time.Hour), now)

	if removed := cache.Prune(now.Add(30 * time.Minute)); removed != 1 {
		t.Fatalf("expected one pruned entry, got %d", removed)
	}

	if cache.Len() != 1 {
		t.Fatalf("expected one entry left, got %d", cache.Len())
	}
}

func TestDocumentCacheIgnoresEmptyAndNil(t *testing.T) {
	var nilCache *DocumentCache
	now := time.Now()

	nilCache.Set("key", Document{Text: "value"}, now.Add(time.Hour), now)
	if _, ok := nilCache.Get("key", now); ok || nilCache.Len() != 0 || nilCache.Prune(now) != 0 {
		t.Fatalf("expected nil cache to store nothing")
	}

	cache := NewDocumentCache(1)
	cache.Set("key", Document{}, now.Add(time.Hour), now)
	cache.Set("past", Document{Text: "value"}, now, now)

	if cache.Len() != 0 {
		t.Fatalf("expected empty and already expired documents to be skipped")
	}
}

func TestDocumentCacheToleratesForeignElements(t *testing.T) {
	cache := NewDocumentCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	cache.entries["foreign"] = cache.order.PushBack("not an entry")
	cache.Set("key", Document{Text: "value"}, now.Add(time.Minute), now)

	if _, ok := cache.Get("foreign", now); ok {
		t.Fatalf("expected foreign element to miss")
	}

	cache.Set("foreign", Document{Text: "other"}, now.Add(time.Hour), now)

	if removed := cache.Prune(now.Add(2 * time.Minute)); removed != 1 {
		t.Fatalf("expected one expired entry to be pruned, got %d", removed)
	}

	if _, ok := cache.Get("key", now); ok {
		t.Fatalf("expected expired entry to be gone")
	}
}
