package blocklog

/*
types.go

Defines the data handed over by the host framework:
  - Record: one immutable log entry
  - TraceFrame: a single call-site of the record's trace
  - Value: the polymorphic record body (text, error or structured data)
  - Dumper: the exporter turning structured data into debug text
*/

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Record is a single log entry as collected by the host. The renderer never
// modifies records; a close marker is rendered from a copy with a new body.
type Record struct {
	Body        Value        // message body
	Level       LogLevel     // severity flag
	Category    string       // category, printed as the line label
	Timestamp   float64      // seconds since epoch with microsecond fraction
	Trace       []TraceFrame // optional call trace, passed through untouched
	MemoryUsage int64        // memory usage in bytes at the logging moment
}

// TraceFrame is one call-site of a record trace.
type TraceFrame struct {
	File     string
	Line     int
	Function string
}

// Value is a record body. Each variant knows how to turn itself into text,
// structured data delegates to the provided Dumper.
type Value interface {
	Serialize(d Dumper) (string, error)
}

// Text is a plain textual body. Only text bodies may carry block markers.
type Text string

func (t Text) Serialize(Dumper) (string, error) { return string(t), nil }

// ErrorValue is an error-like body rendered with its Error() text.
type ErrorValue struct {
	Err error
}

func (e ErrorValue) Serialize(Dumper) (string, error) {
	if e.Err == nil {
		return "<nil>", nil
	}
	return e.Err.Error(), nil
}

// DataValue is any other body; it is serialized by the Dumper (DefaultDumper
// if nil). Nil data is printed as "<nil>" without calling the dumper.
type DataValue struct {
	Data any
}

func (v DataValue) Serialize(d Dumper) (string, error) {
	if v.Data == nil {
		return "<nil>", nil
	}
	if d == nil {
		d = DefaultDumper
	}
	return d.Dump(v.Data)
}

// Wraps an arbitrary Go value into the matching Value variant: strings become
// Text, errors become ErrorValue, everything else DataValue.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return Text(x)
	case error:
		return ErrorValue{Err: x}
	default:
		return DataValue{Data: x}
	}
}

// Dumper exports structured values as human readable debug text.
type Dumper interface {
	Dump(v any) (string, error)
}

// DumperFunc adapts a plain function to the Dumper interface.
type DumperFunc func(v any) (string, error)

func (f DumperFunc) Dump(v any) (string, error) { return f(v) }

// SpewDumper dumps values with go-spew. Pointer addresses and capacities are
// omitted and map keys are sorted so equal values always dump equally.
type SpewDumper struct {
	cfg *spew.ConfigState
}

func NewSpewDumper(indent string) *SpewDumper {
	return &SpewDumper{cfg: &spew.ConfigState{
		Indent:                  indent,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}}
}

func (s *SpewDumper) Dump(v any) (string, error) {
	if s == nil || s.cfg == nil {
		return "", fmt.Errorf("spew dumper is not initialized")
	}
	return strings.TrimRight(s.cfg.Sdump(v), "\n"), nil
}

// DefaultDumper is used for DataValue bodies when no other dumper is set.
var DefaultDumper Dumper = NewSpewDumper("    ")
