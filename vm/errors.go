package vm

import "fmt"

// BoundsError reports a command that would move the cursor outside
// [0, len(input)], a permute selector resolving past the end of the
// input, or a pad count too large to materialize. Cmd is the offending
// command in source notation; Path locates it within the command tree,
// innermost last (for example "command 2 > pass 3 > command 1").
type BoundsError struct {
	Cmd     string
	Path    string
	Pointer int // offending cursor position, or 1-based permute position
	Length  int // input length
	Msg     string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Cmd, e.Path, e.Msg)
}
