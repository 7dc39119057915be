package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/clipvault/webclip/models"
)

func TestCache_SetGet(t *testing.T) {
	c := New(10)
	key := Key("https://example.com")

	if _, ok := c.Get(key, time.Minute); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Set(key, &models.WebContent{URL: "https://example.com"})

	got, ok := c.Get(key, time.Minute)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if got.URL != "https://example.com" {
		t.Errorf("URL = %q", got.URL)
	}
}

func TestCache_ZeroMaxAgeSkipsLookup(t *testing.T) {
	c := New(10)
	key := Key("https://example.com")
	c.Set(key, &models.WebContent{URL: "https://example.com"})

	if _, ok := c.Get(key, 0); ok {
		t.Error("maxAge <= 0 must never hit")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(10)
	key := Key("https://example.com")
	c.Set(key, &models.WebContent{URL: "https://example.com"})

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get(key, 5*time.Millisecond); ok {
		t.Error("entry older than maxAge must miss")
	}
}

func TestCache_CapacityEviction(t *testing.T) {
	c := New(3)
	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		c.Set(Key(url), &models.WebContent{URL: url})
	}

	c.mu.RLock()
	size := len(c.store)
	c.mu.RUnlock()
	if size > 3 {
		t.Errorf("store size = %d, want at most 3", size)
	}
}

func TestKey_Deterministic(t *testing.T) {
	if Key("https://a.com") != Key("https://a.com") {
		t.Error("Key must be deterministic")
	}
	if Key("https://a.com") == Key("https://b.com") {
		t.Error("different URLs must produce different keys")
	}
}

func TestCache_CloseStopsCleanup(t *testing.T) {
	c := New(10)
	c.Close()

	select {
	case <-c.done:
	default:
		t.Fatal("done channel still open after Close")
	}

	// Close is idempotent and the cache stays usable afterwards.
	c.Close()

	key := Key("https://example.com")
	c.Set(key, &models.WebContent{URL: "https://example.com"})
	if _, ok := c.Get(key, time.Minute); !ok {
		t.Error("Get missed a fresh entry after Close")
	}
}
