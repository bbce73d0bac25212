package cache

import (
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("工程完成35%後可請領第三期款")
	b := Key("工程完成35%後可請領第三期款")
	if a != b {
		t.Error("same text produced different keys")
	}
	if a == Key("other text") {
		t.Error("different text produced the same key")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := Key("condition")
	if _, found := c.Get(key); found {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := c.Set(key, []byte(`{"trigger":"progress-percentage"}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, found := c.Get(key)
	if !found {
		t.Fatal("expected hit after Set")
	}
	if string(data) != `{"trigger":"progress-percentage"}` {
		t.Errorf("got %q", data)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected miss after Delete")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	key := Key("condition")
	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, found := c.Get(key)
	if !found || string(data) != "payload" {
		t.Fatalf("Get = %q, %v; want payload, true", data, found)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected miss after Clear")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	key := Key("short-lived")
	if err := c.Set(key, []byte("payload"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected expired entry to miss")
	}
}
