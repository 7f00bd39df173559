// Package takeskip transforms fixed-length bit sequences through a
// compact, declarative command notation.
//
// A command string is a sequence of command elements, each an opcode
// letter followed by its payload:
//
//	t<n>       take n bits
//	s<n>       skip n bits
//	r<n>       reverse the order of n bits
//	i<n>       invert n bits (0<->1)
//	ri<n>      reverse and invert n bits
//	b<n>       back the cursor up n positions
//	z<n>       pad with n zeros
//	n<n>       pad with n ones
//	d<bits>    pad with a literal bit pattern, e.g. d101
//	p<list>    permute: comma-separated 1-based positions or ranges
//	(...)N     repeat the grouped commands N times
//
// Commands are case insensitive and ignore whitespace. "s2t4" skips two
// bits then takes four; "(t1s1)4" takes every other bit of an
// eight-bit input; "p1-4,8-5" reads positions 1 through 4 ascending then
// 8 down to 5.
//
// Execution walks the parsed command tree against the input with a
// single read cursor, then applies a remnant policy to whatever the
// cursor left unconsumed. Parsed trees are immutable and memoized per
// engine, keyed by the normalized command string.
package takeskip

import (
	"fmt"
	"sync"

	"github.com/jolsten/takeskip/bits"
	"github.com/jolsten/takeskip/cache"
	"github.com/jolsten/takeskip/vm"
)

// Remnant policies, re-exported for callers of the facade.
type Remnant = vm.Remnant

const (
	RemnantRemove = vm.RemnantRemove
	RemnantKeep   = vm.RemnantKeep
	RemnantPad    = vm.RemnantPad
)

// ParseRemnant resolves a remnant policy name: "remove", "keep", or
// "pad".
func ParseRemnant(s string) (Remnant, error) {
	return vm.ParseRemnant(s)
}

// Engine parses and executes command strings, memoizing parsed trees.
// An Engine is safe for concurrent use.
type Engine struct {
	cache *cache.Cache
	store *cache.Store
}

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	cacheSize int
	storePath string
}

// WithCacheSize bounds the in-memory parse cache.
func WithCacheSize(n int) Option {
	return func(s *settings) { s.cacheSize = n }
}

// WithStore attaches a persistent SQLite-backed parse cache at the given
// path. Purely a performance layer; results are identical with or
// without it.
func WithStore(path string) Option {
	return func(s *settings) { s.storePath = path }
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	s := settings{cacheSize: cache.DefaultSize}
	for _, opt := range opts {
		opt(&s)
	}

	c, err := cache.New(s.cacheSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{cache: c}
	if s.storePath != "" {
		store, err := cache.OpenStore(s.storePath)
		if err != nil {
			return nil, err
		}
		e.store = store
		c.WithStore(store)
	}
	return e, nil
}

// Close releases the persistent store, if any.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Execute applies a command string to one bit sequence. The returned
// sequence is newly allocated; the input is never mutated. The remnant
// policy is validated before any parsing or execution work.
func (e *Engine) Execute(command string, input bits.Bits, remnant Remnant) (bits.Bits, error) {
	if !remnant.Valid() {
		return nil, &vm.ConfigError{Value: remnant.String()}
	}
	prog, err := e.cache.Get(command)
	if err != nil {
		return nil, err
	}
	return vm.Run(prog, input, remnant)
}

// ExecuteRows applies a command string independently to each row,
// parsing it once. All rows share one command tree, so rows of equal
// length produce outputs of equal length. A failure in any row aborts
// with an error naming that row.
func (e *Engine) ExecuteRows(command string, rows []bits.Bits, remnant Remnant) ([]bits.Bits, error) {
	if !remnant.Valid() {
		return nil, &vm.ConfigError{Value: remnant.String()}
	}
	prog, err := e.cache.Get(command)
	if err != nil {
		return nil, err
	}

	out := make([]bits.Bits, len(rows))
	for i, row := range rows {
		res, err := vm.Run(prog, row, remnant)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = res
	}
	return out, nil
}

// defaultEngine serves the package-level convenience functions.
var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := New()
	if err != nil {
		panic(err)
	}
	return e
})

// Execute applies a command string to one bit sequence using a shared
// process-wide engine.
func Execute(command string, input bits.Bits, remnant Remnant) (bits.Bits, error) {
	return defaultEngine().Execute(command, input, remnant)
}

// ExecuteRows applies a command string to each row using a shared
// process-wide engine.
func ExecuteRows(command string, rows []bits.Bits, remnant Remnant) ([]bits.Bits, error) {
	return defaultEngine().ExecuteRows(command, rows, remnant)
}
