package blocklog

import "strings"

// Directive is the result of inspecting a record body for block markers:
// one of Plain, Open or Close.
type Directive interface {
	isDirective()
}

// Plain is a body without markers, rendered as a single labelled line.
type Plain struct {
	Value Value
}

// Open starts a nested block. Remainder is printed verbatim inside the new
// block unless empty.
type Open struct {
	Remainder Text
}

// Close ends the innermost block after Inner has been rendered as a full
// record (so Inner may carry markers itself).
type Close struct {
	Inner Text
}

func (Plain) isDirective() {}
func (Open) isDirective()  {}
func (Close) isDirective() {}

// Strips a leading block marker from text bodies. Non-text bodies are always
// Plain.
func ParseMarker(v Value) Directive {
	t, ok := v.(Text)
	if !ok {
		return Plain{Value: v}
	}
	switch {
	case strings.HasPrefix(string(t), MARKER_OPEN):
		return Open{Remainder: t[len(MARKER_OPEN):]}
	case strings.HasPrefix(string(t), MARKER_CLOSE):
		return Close{Inner: t[len(MARKER_CLOSE):]}
	default:
		return Plain{Value: t}
	}
}

// Body opening a block with an optional title line.
func BeginBlock(title string) Text {
	return Text(MARKER_OPEN + title)
}

// Body closing a block. The summary is rendered as a regular line first,
// an empty summary still prints the label.
func EndBlock(summary string) Text {
	return Text(MARKER_CLOSE + summary)
}
