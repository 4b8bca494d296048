package blocklog

import "strings"

// RenderState tracks how many blocks are currently open. It lives as long as
// its renderer and is not reset between records or batches. RenderState is
// not synchronized; Renderer serializes access to its own state.
type RenderState struct {
	depth int
}

func (s *RenderState) Depth() int {
	return s.depth
}

// Opens a block and returns the new depth.
func (s *RenderState) Down() int {
	s.depth++
	return s.depth
}

// Closes a block and returns the new depth. Closing at depth 0 keeps the
// depth at 0 and returns ErrUnbalancedClose.
func (s *RenderState) Up() (int, error) {
	if s.depth == 0 {
		return 0, ErrUnbalancedClose
	}
	s.depth--
	return s.depth, nil
}

// Indentation for the current depth: marker repeated depth times.
func (s *RenderState) Indent(marker string) string {
	return strings.Repeat(marker, s.depth)
}
