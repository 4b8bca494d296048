// A console log renderer. Filters categorized records with wildcard
// precedence and prints them as prefixed, hierarchically indented lines.
// Blocks are opened and closed by ">>" and "<<" markers at the start of text
// bodies and may span any number of records and batches.
package blocklog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"sync"
)

// PrefixFunc returns the per-record context substituted for %prefix%.
type PrefixFunc func(rec Record) string

// Renderer is the console target. It owns the block depth and writes every
// line synchronously to its output.
//
// Render and Export are serialized by a mutex, so a renderer may be shared
// between goroutines; records of concurrent callers interleave line by line.
type Renderer struct {
	mutex      sync.Mutex
	state      RenderState
	out        io.Writer
	fallbck    io.Writer // receives per-record errors reported by Export
	prefixer   *Prefixer
	codes      LevelCodes
	dumper     Dumper
	prefixFn   PrefixFunc
	filter     FilterSpec
	offset     string
	labelWidth int
	delimiter  string
	linebuf    *bytes.Buffer // reused while building a printed line
}

// Creates a renderer with default settings writing to out ([os.Stdout] if
// nil) and reporting errors to [os.Stderr].
//
// Usage example:
//
//	r := New(os.Stdout).SetOffsetMarker("  ")
//	r.Export(records)
func New(out io.Writer) *Renderer {
	r := &Renderer{
		prefixer:   mustPrefixer(DEFAULT_PREFIX_TEMPLATE, DEFAULT_PREFIX_WIDTH, nil),
		codes:      maps.Clone(DefaultLevelCodes),
		offset:     DEFAULT_OFFSET_MARKER,
		labelWidth: DEFAULT_LABEL_WIDTH,
		delimiter:  DEFAULT_LABEL_DELIMITER,
		linebuf:    bytes.NewBuffer(make([]byte, 0, DEFAULT_OUT_BUFF)),
	}
	r.SetOutput(out)
	r.SetFallback(os.Stderr)
	return r
}

// Builds a renderer from a validated configuration.
func NewFromConfig(cfg *Config, out, fallback io.Writer) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	prefixer, err := NewPrefixer(cfg.PrefixTemplate, cfg.PrefixWidth, loc)
	if err != nil {
		return nil, err
	}
	codes, err := cfg.Codes()
	if err != nil {
		return nil, err
	}
	filter, err := cfg.FilterSpec()
	if err != nil {
		return nil, err
	}
	r := New(out).
		SetFallback(fallback).
		SetPrefixer(prefixer).
		SetLevelCodes(codes).
		SetFilter(filter).
		SetOffsetMarker(cfg.OffsetMarker).
		SetLabel(cfg.LabelWidth, cfg.LabelDelimiter)
	return r, nil
}

// The next set of functions change settings under the renderer mutex and
// return the renderer for chaining.

// Sets the output; nil means [os.Stdout].
func (r *Renderer) SetOutput(out io.Writer) *Renderer {
	return r.change(func() {
		if out == nil {
			out = os.Stdout
		}
		r.out = out
	})
}

// Sets the writer for error reports, io.Discard is used instead of nil to
// silently drop them.
func (r *Renderer) SetFallback(f io.Writer) *Renderer {
	return r.change(func() {
		if f == nil {
			f = io.Discard
		}
		r.fallbck = f
	})
}

func (r *Renderer) SetPrefixer(p *Prefixer) *Renderer {
	return r.change(func() {
		if p != nil {
			r.prefixer = p
		}
	})
}

// Replaces the level code table (a copy is kept).
func (r *Renderer) SetLevelCodes(codes LevelCodes) *Renderer {
	return r.change(func() { r.codes = maps.Clone(codes) })
}

// Sets the structured value exporter; nil restores DefaultDumper.
func (r *Renderer) SetDumper(d Dumper) *Renderer {
	return r.change(func() { r.dumper = d })
}

func (r *Renderer) SetPrefixFunc(f PrefixFunc) *Renderer {
	return r.change(func() { r.prefixFn = f })
}

// Sets the filter applied by Export (Render never filters).
func (r *Renderer) SetFilter(spec FilterSpec) *Renderer {
	return r.change(func() { r.filter = spec })
}

func (r *Renderer) SetOffsetMarker(marker string) *Renderer {
	return r.change(func() { r.offset = marker })
}

// Sets the minimal label width (in terminal columns) and the delimiter
// between label and text.
func (r *Renderer) SetLabel(width int, delimiter string) *Renderer {
	return r.change(func() {
		r.labelWidth = max(width, 0)
		r.delimiter = delimiter
	})
}

func (r *Renderer) change(f func()) *Renderer {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	f()
	return r
}

// Current number of open blocks.
func (r *Renderer) Depth() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state.Depth()
}

func (r *Renderer) Filter() FilterSpec {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.filter
}

// Renders one record (without filtering). Returns unbalanced close, dumper
// and write errors; the record's lines that could be printed are printed.
func (r *Renderer) Render(rec Record) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.renderRecord(rec)
}

// Filters a batch with the renderer's FilterSpec and renders the admitted
// records in order. A failing record never stops the batch: each error is
// reported to the fallback writer and all of them are returned joined.
// Errors name the record by its index in records.
func (r *Renderer) Export(records []Record) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var errs []error
	for i, rec := range records {
		if !r.filter.Admits(rec) {
			continue
		}
		if err := r.renderRecord(rec); err != nil {
			err = fmt.Errorf("record #%d (%s): %w", i, rec.Category, err)
			r.handleWriteError(err.Error())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Writes a single-line error report to the fallback writer.
func (r *Renderer) handleWriteError(errormsg string) {
	if r.fallbck != nil {
		r.fallbck.Write([]byte(errormsg + "\n"))
	}
}
