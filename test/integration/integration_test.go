package integration_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jolsten/takeskip"
	"github.com/jolsten/takeskip/bits"
	"github.com/jolsten/takeskip/config"
	"github.com/jolsten/takeskip/vm"
)

// ---------------------------------------------------------------------------
// Integration test helpers
// ---------------------------------------------------------------------------

// newConfiguredEngine builds an Engine the way the CLI does: load a
// takeskip.toml, then wire cache size and store path from it.
func newConfiguredEngine(t *testing.T, dir string) (*takeskip.Engine, *config.Config) {
	t.Helper()

	cfg, err := config.FindAndLoad(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	opts := []takeskip.Option{takeskip.WithCacheSize(cfg.Cache.Size)}
	if cfg.Cache.Path != "" {
		opts = append(opts, takeskip.WithStore(filepath.Join(cfg.Dir, cfg.Cache.Path)))
	}

	e, err := takeskip.New(opts...)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, cfg
}

// ---------------------------------------------------------------------------
// 1. Config-driven engine end to end
// ---------------------------------------------------------------------------

func TestIntegrationConfiguredEngine(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "takeskip.toml"), []byte(`
[execute]
remnant = "keep"

[cache]
size = 16
path = "programs.db"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	e, cfg := newConfiguredEngine(t, dir)

	remnant, err := takeskip.ParseRemnant(cfg.Execute.Remnant)
	if err != nil {
		t.Fatalf("remnant %q: %v", cfg.Execute.Remnant, err)
	}

	out, err := e.Execute("s2t4", bits.MustParse("10110011"), remnant)
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "110011" {
		t.Errorf("s2t4 keep = %s, want 110011", out)
	}

	if _, err := os.Stat(filepath.Join(dir, "programs.db")); err != nil {
		t.Errorf("store file not created: %v", err)
	}
}

// ---------------------------------------------------------------------------
// 2. Parsed programs survive an engine restart via the store
// ---------------------------------------------------------------------------

func TestIntegrationStoreAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.db")
	input := bits.MustParse("101100111010")

	e1, err := takeskip.New(takeskip.WithStore(path))
	if err != nil {
		t.Fatal(err)
	}
	first, err := e1.Execute("(t2s1)3p1-3", input, takeskip.RemnantRemove)
	if err != nil {
		t.Fatal(err)
	}
	if err := e1.Close(); err != nil {
		t.Fatal(err)
	}

	e2, err := takeskip.New(takeskip.WithStore(path))
	if err != nil {
		t.Fatal(err)
	}
	defer e2.Close()

	second, err := e2.Execute("(t2s1)3p1-3", input, takeskip.RemnantRemove)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Equal(first) {
		t.Errorf("restarted engine produced %s, first produced %s", second, first)
	}
}

// ---------------------------------------------------------------------------
// 3. Frame extraction: rows of telemetry through one command string
// ---------------------------------------------------------------------------

func TestIntegrationRowPipeline(t *testing.T) {
	e, err := takeskip.New()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	// Strip a 4-bit sync word, keep the 8-bit payload, append parity
	// padding. Every row is the same width, so every output is too.
	rows := []bits.Bits{
		bits.MustParse("101110110011"),
		bits.MustParse("101100000000"),
		bits.MustParse("101111111111"),
	}
	out, err := e.ExecuteRows("s4t8z2", rows, takeskip.RemnantRemove)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"1011001100", "0000000000", "1111111100"}
	for i, w := range want {
		if out[i].String() != w {
			t.Errorf("row %d = %s, want %s", i, out[i], w)
		}
	}
}

// ---------------------------------------------------------------------------
// 4. Errors surface through every layer with position context
// ---------------------------------------------------------------------------

func TestIntegrationErrorPropagation(t *testing.T) {
	e, err := takeskip.New()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	_, err = e.Execute("t4(s2t4)2", bits.MustParse("1011001110110"), takeskip.RemnantRemove)
	var be *vm.BoundsError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want BoundsError", err)
	}
	if be.Path != "command 2 > pass 2 > command 2" {
		t.Errorf("Path = %q, want %q", be.Path, "command 2 > pass 2 > command 2")
	}
}
