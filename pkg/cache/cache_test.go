package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before set
	if _, hit, _ := c.Get(ctx, "plate"); hit {
		t.Error("expected miss before Set")
	}

	// Round trip
	if err := c.Set(ctx, "plate", []byte("svg bytes"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "plate")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != "svg bytes" {
		t.Errorf("Get = %q, want %q", data, "svg bytes")
	}

	// Delete
	if err := c.Delete(ctx, "plate"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "plate"); hit {
		t.Error("expected miss after Delete")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "short", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	dk1 := k.DocumentKey("abc", DocumentKeyOpts{Mode: "grid", PageWidth: 2480, PageHeight: 3508})
	dk2 := k.DocumentKey("abc", DocumentKeyOpts{Mode: "puzzle", PageWidth: 2480, PageHeight: 3508})
	if dk1 == dk2 {
		t.Error("Different DocumentKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(dk1, "doc:") {
		t.Errorf("DocumentKey should carry the doc prefix, got %q", dk1)
	}

	ak1 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "pdf"})
	if ak1 == ak2 {
		t.Error("Different formats should produce different keys")
	}

	// Determinism
	if k.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"}) != ak1 {
		t.Error("keys should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "test:")

	key := scoped.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(key, "test:") {
		t.Errorf("scoped key should carry the prefix, got %q", key)
	}
	if strings.TrimPrefix(key, "test:") != inner.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"}) {
		t.Error("scoped key should wrap the inner key unchanged")
	}

	// Nil inner falls back to the default keyer
	fallback := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(fallback.DocumentKey("x", DocumentKeyOpts{}), "p:doc:") {
		t.Error("nil inner should default")
	}
}
