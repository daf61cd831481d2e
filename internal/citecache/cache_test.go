package citecache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsEmptyCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLoad_CorruptFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() on corrupt file should fail")
	}
}

func TestCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	key := Key("openalex", "10.1000/x")
	c.Put(key, []int{2015, 2018, 2018})
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	years, ok := reloaded.Get(key)
	if !ok {
		t.Fatalf("Get(%q) missing after reload", key)
	}
	if len(years) != 3 || years[0] != 2015 || years[1] != 2018 || years[2] != 2018 {
		t.Errorf("Get(%q) = %v, want [2015 2018 2018]", key, years)
	}
}

func TestCache_EmptyAnswerIsCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")

	c, _ := Load(path)
	key := Key("openalex", "10.1000/uncited")
	c.Put(key, nil)

	years, ok := c.Get(key)
	if !ok {
		t.Fatal("empty answer should still be a cache hit")
	}
	if len(years) != 0 {
		t.Errorf("Get() = %v, want empty", years)
	}

	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if _, ok := reloaded.Get(key); !ok {
		t.Error("empty answer lost across flush/reload")
	}
}

func TestCache_FlushOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")

	c, _ := Load(path)
	c.Put(Key("openalex", "a"), []int{2001})
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	c2, _ := Load(path)
	c2.Put(Key("openalex", "b"), []int{2002})
	if err := c2.Flush(); err != nil {
		t.Fatal(err)
	}

	final, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if final.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (full contents persisted)", final.Len())
	}
}

func TestKey_Namespacing(t *testing.T) {
	a := Key("openalex", "10.1/x")
	b := Key("crossref", "10.1/x")
	if a == b {
		t.Errorf("keys for different sources collide: %q", a)
	}
	if a != "openalex_10.1/x" {
		t.Errorf("Key() = %q, want openalex_10.1/x", a)
	}
}
