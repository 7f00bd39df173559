package vm

import "fmt"

// ---------------------------------------------------------------------------
// Remnant policy: what happens to unconsumed input
// ---------------------------------------------------------------------------

// Remnant selects how the executor treats the bits between the final
// cursor position and the end of the input.
type Remnant int

const (
	// RemnantRemove discards unconsumed input. The default.
	RemnantRemove Remnant = iota
	// RemnantKeep appends unconsumed input verbatim to the output.
	RemnantKeep
	// RemnantPad appends zero bits until the output is as long as the
	// input. Outputs already that long or longer are left alone.
	RemnantPad
)

var remnantNames = map[Remnant]string{
	RemnantRemove: "remove",
	RemnantKeep:   "keep",
	RemnantPad:    "pad",
}

func (r Remnant) String() string {
	if name, ok := remnantNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Remnant(%d)", int(r))
}

// Valid reports whether r is one of the three defined policies.
func (r Remnant) Valid() bool {
	_, ok := remnantNames[r]
	return ok
}

// ParseRemnant resolves a policy name. Unknown names are a configuration
// error.
func ParseRemnant(s string) (Remnant, error) {
	switch s {
	case "remove":
		return RemnantRemove, nil
	case "keep":
		return RemnantKeep, nil
	case "pad":
		return RemnantPad, nil
	default:
		return 0, &ConfigError{Value: s}
	}
}

// ConfigError reports an invalid remnant policy, raised before any
// parsing or execution work.
type ConfigError struct {
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid remnant policy %q; must be \"remove\", \"keep\", or \"pad\"", e.Value)
}
