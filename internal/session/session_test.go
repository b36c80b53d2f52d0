package session

import (
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	got := Key("u1", "sat-1", 3, "snapshot")
	want := "u1|sat-1|m3|snapshot"
	if got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}

func TestMemoryStoreBasics(t *testing.T) {
	s := NewMemoryStore(0)

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty store reported ok")
	}

	s.Set("k", []byte("v1"))
	if v, ok := s.Get("k"); !ok || string(v) != "v1" {
		t.Errorf("Get = (%q, %v)", v, ok)
	}

	s.Set("k", []byte("v2"))
	if v, _ := s.Get("k"); string(v) != "v2" {
		t.Errorf("overwrite: Get = %q", v)
	}

	s.Remove("k")
	if _, ok := s.Get("k"); ok {
		t.Error("Get after Remove reported ok")
	}
	s.Remove("k") // removing twice is fine
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore(20 * time.Millisecond)
	s.Set("k", []byte("v"))

	if _, ok := s.Get("k"); !ok {
		t.Fatal("entry expired immediately")
	}
	time.Sleep(40 * time.Millisecond)
	if _, ok := s.Get("k"); ok {
		t.Error("entry survived past TTL")
	}
}
