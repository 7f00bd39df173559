package cache

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jolsten/takeskip/compiler"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "programs.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreMissing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get("t4")
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("Get on empty store = %v, want ErrProgramNotFound", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)

	prog, err := compiler.Parse("(t2s2)3p1-4,8-5d101")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put("(t2s2)3p1-4,8-5d101", prog); err != nil {
		t.Fatalf("Put: %v", err)
	}

	back, err := store.Get("(t2s2)3p1-4,8-5d101")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !prog.Equal(back) {
		t.Errorf("round trip: %s != %s", prog, back)
	}
}

func TestStoreReplace(t *testing.T) {
	store := openTestStore(t)

	first, err := compiler.Parse("t4")
	if err != nil {
		t.Fatal(err)
	}
	second, err := compiler.Parse("s4")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Put("key", first); err != nil {
		t.Fatal(err)
	}
	if err := store.Put("key", second); err != nil {
		t.Fatal(err)
	}

	back, err := store.Get("key")
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(second) {
		t.Errorf("Get after replace = %s, want %s", back, second)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.db")

	store, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	prog, err := compiler.Parse("t4r4")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put("t4r4", prog); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	back, err := reopened.Get("t4r4")
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(prog) {
		t.Errorf("program did not survive reopen: %s != %s", back, prog)
	}
}

func TestCacheWithStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.db")

	store, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	c.WithStore(store)

	prog, err := c.Get("(t1s1)4")
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	// A second cache over the same store resolves from disk, not the
	// parser, but the result must be structurally identical either way.
	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	fromDisk, err := reopened.Get("(t1s1)4")
	if err != nil {
		t.Fatalf("Get from persisted store: %v", err)
	}
	if !fromDisk.Equal(prog) {
		t.Errorf("persisted program differs: %s != %s", fromDisk, prog)
	}
}
