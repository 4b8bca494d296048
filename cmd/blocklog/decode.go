package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/abyssdigger/blocklog"
	"github.com/valyala/fastjson"
)

/*
Records arrive as newline-delimited JSON objects:

	{"body": ">>import", "level": "info", "category": "app/import",
	 "timestamp": 1700000000.123456, "memory": 4194304,
	 "trace": [{"file": "import.go", "line": 42, "function": "run"}]}

"body" may be any JSON value; strings stay text (and may carry block
markers), everything else is dumped as structured data. An "exception"
string replaces the body with an error value. "level" is a level name or
its numeric flag (info when missing); a missing timestamp means now.
*/

// recordDecoder turns JSON lines into records. Not safe for concurrent use.
type recordDecoder struct {
	parser fastjson.Parser
	now    func() time.Time
}

func newRecordDecoder() *recordDecoder {
	return &recordDecoder{now: time.Now}
}

func (d *recordDecoder) Decode(line []byte) (blocklog.Record, error) {
	var rec blocklog.Record
	v, err := d.parser.ParseBytes(line)
	if err != nil {
		return rec, fmt.Errorf("invalid JSON: %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return rec, fmt.Errorf("record must be a JSON object, got %s", v.Type())
	}

	if rec.Level, err = decodeLevel(v.Get("level")); err != nil {
		return rec, err
	}
	rec.Category = string(v.GetStringBytes("category"))
	rec.MemoryUsage = v.GetInt64("memory")

	if ts := v.Get("timestamp"); ts != nil && ts.Type() == fastjson.TypeNumber {
		rec.Timestamp = ts.GetFloat64()
	} else {
		rec.Timestamp = float64(d.now().UnixMicro()) / 1e6
	}

	if exc := v.Get("exception"); exc != nil && exc.Type() == fastjson.TypeString {
		rec.Body = blocklog.ErrorValue{Err: errors.New(string(exc.GetStringBytes()))}
	} else if body := v.Get("body"); body != nil {
		rec.Body = blocklog.ValueOf(toNative(body))
	} else {
		rec.Body = blocklog.Text("")
	}

	for _, frame := range v.GetArray("trace") {
		rec.Trace = append(rec.Trace, blocklog.TraceFrame{
			File:     string(frame.GetStringBytes("file")),
			Line:     frame.GetInt("line"),
			Function: string(frame.GetStringBytes("function")),
		})
	}
	return rec, nil
}

func decodeLevel(v *fastjson.Value) (blocklog.LogLevel, error) {
	if v == nil {
		return blocklog.LVL_INFO, nil
	}
	switch v.Type() {
	case fastjson.TypeString:
		return blocklog.ParseLevelName(string(v.GetStringBytes()))
	case fastjson.TypeNumber:
		n, err := v.Int()
		if err != nil {
			return 0, fmt.Errorf("invalid level: %w", err)
		}
		return blocklog.LogLevel(n), nil
	default:
		return 0, fmt.Errorf("invalid level type %s", v.Type())
	}
}

// Converts a parsed JSON value into plain Go values (copying all strings,
// the parser reuses its memory).
func toNative(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		if n, err := v.Int64(); err == nil {
			return n
		}
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeArray:
		arr := v.GetArray()
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			out = append(out, toNative(item))
		}
		return out
	case fastjson.TypeObject:
		out := map[string]any{}
		v.GetObject().Visit(func(key []byte, item *fastjson.Value) {
			out[string(key)] = toNative(item)
		})
		return out
	default:
		return nil
	}
}
