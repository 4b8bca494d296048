package blocklog

/*
proceed.go

The record rendering pipeline, run with the renderer mutex held:
 - resolve the line prefix (level code, time, context)
 - split the body into a Plain/Open/Close directive
 - print banners and labelled lines, moving the block depth

Block depth transitions:
 - Open: banner at the current depth, then depth+1
 - Close: inner record at the current depth, then depth-1, banner at the new depth
*/

import (
	"errors"
	"fmt"

	"github.com/mattn/go-runewidth"
)

// renderRecord recovers panics from dumpers and writers so one bad record
// can't take the batch down; the panic is returned as an error.
func (r *Renderer) renderRecord(rec Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(_ERROR_MESSAGE_RENDER_PANIC + panicDesc(p))
		}
	}()
	return r.proceed(rec)
}

func (r *Renderer) proceed(rec Record) error {
	prefix := r.linePrefix(rec)
	body := rec.Body
	if body == nil {
		body = DataValue{}
	}
	switch d := ParseMarker(body).(type) {
	case Open:
		if err := r.print(BANNER_OPEN, prefix); err != nil {
			return err
		}
		r.state.Down()
		if d.Remainder == "" {
			return nil
		}
		return r.printValue(rec.Category, d.Remainder, prefix)
	case Close:
		inner := rec
		inner.Body = d.Inner
		innerErr := r.proceed(inner)
		_, upErr := r.state.Up()
		return errors.Join(innerErr, upErr, r.print(BANNER_CLOSE, prefix))
	case Plain:
		return r.printValue(rec.Category, d.Value, prefix)
	default:
		return fmt.Errorf("unknown directive %T", d)
	}
}

func (r *Renderer) linePrefix(rec Record) string {
	context := ""
	if r.prefixFn != nil {
		context = r.prefixFn(rec)
	}
	return r.prefixer.Render(r.codes.Name(rec.Level), rec.Timestamp, context)
}

// Prints "<label padded to labelWidth><delimiter><serialized value>".
func (r *Renderer) printValue(label string, v Value, prefix string) error {
	text, err := v.Serialize(r.dumper)
	if err != nil {
		return fmt.Errorf("error serializing %T: %w", v, err)
	}
	return r.print(runewidth.FillRight(label, r.labelWidth)+r.delimiter+text, prefix)
}
