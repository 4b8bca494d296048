package blocklog

import (
	"fmt"
	"strings"
)

// print writes prefix + indentation + text as one line. Every line break in
// text is followed by prefix + indentation again so multi-line bodies stay
// aligned under the current block. One Write call per line, no buffering
// between calls.
func (r *Renderer) print(text, prefix string) error {
	lead := prefix + r.state.Indent(r.offset)
	r.linebuf.Reset()
	r.linebuf.WriteString(lead)
	r.linebuf.WriteString(strings.ReplaceAll(text, "\n", "\n"+lead))
	r.linebuf.WriteByte('\n')
	n, err := r.linebuf.WriteTo(r.out)
	if err != nil {
		return fmt.Errorf(_ERROR_MESSAGE_WRITE_FAILED+" (%d bytes written): %w", n, err)
	}
	return nil
}
