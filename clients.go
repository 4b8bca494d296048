package blocklog

import (
	"errors"
	"time"
)

/*
clients.go

A Client is a thin per-category handle for code that produces records itself
instead of handing over collected batches. Every call builds one Record
(timestamped with the client's clock) and renders it immediately, so the
renderer's filter and block depth apply exactly as for exported batches.

Methods suffixed with _with_err return render errors; the others report them
to the renderer's fallback writer.
*/

type Client struct {
	renderer *Renderer
	category string
	curLevel LogLevel // level used by Write
	now      func() time.Time
}

// Creates a client logging under category. Write uses level until changed
// with Lvl.
func (r *Renderer) NewClient(category string, level LogLevel) *Client {
	return &Client{renderer: r, category: category, curLevel: level, now: time.Now}
}

func (c *Client) Category() string { return c.category }

func (c *Client) Log_with_err(level LogLevel, body Value) error {
	if c.renderer == nil {
		return errors.New(_ERROR_MESSAGE_CLIENT_IS_NIL)
	}
	rec := Record{
		Body:      body,
		Level:     level,
		Category:  c.category,
		Timestamp: float64(c.now().UnixMicro()) / 1e6,
	}
	return c.renderer.emit(rec)
}

// Log renders body at the given level, errors go to the fallback writer.
func (c *Client) Log(level LogLevel, body Value) {
	if err := c.Log_with_err(level, body); err != nil && c.renderer != nil {
		c.renderer.mutex.Lock()
		c.renderer.handleWriteError(err.Error())
		c.renderer.mutex.Unlock()
	}
}

func (c *Client) LogError(s string) { c.Log(LVL_ERROR, Text(s)) }
func (c *Client) LogWarn(s string)  { c.Log(LVL_WARNING, Text(s)) }
func (c *Client) LogInfo(s string)  { c.Log(LVL_INFO, Text(s)) }
func (c *Client) LogTrace(s string) { c.Log(LVL_TRACE, Text(s)) }

// LogErr logs an error value at LVL_ERROR.
func (c *Client) LogErr(e error) { c.Log(LVL_ERROR, ErrorValue{Err: e}) }

// Dump logs any Go value at LVL_TRACE through the renderer's dumper.
func (c *Client) Dump(v any) { c.Log(LVL_TRACE, DataValue{Data: v}) }

// Begin opens a block at LVL_INFO, title may be empty.
func (c *Client) Begin(title string) { c.Log(LVL_INFO, BeginBlock(title)) }

// End closes the innermost block at LVL_INFO.
func (c *Client) End(summary string) { c.Log(LVL_INFO, EndBlock(summary)) }

/////////////////////////////////////////////////////////////////////////////////////
// io.Writer interface implementation
//
// Write renders p as a text body at the client's current level, so a client
// can back fmt.Fprintf or a standard library *log.Logger:
//
//	fmt.Fprintf(client.Lvl(LVL_WARNING), "disk low: %d%%", percent)
//
// One trailing newline is dropped, log.Logger always appends one.

// Lvl sets the level used by Write and returns the client for chaining.
func (c *Client) Lvl(level LogLevel) *Client {
	c.curLevel = level
	return c
}

func (c *Client) Write(p []byte) (n int, err error) {
	if p == nil {
		return 0, nil
	}
	text := string(p)
	if l := len(text); l > 0 && text[l-1] == '\n' {
		text = text[:l-1]
	}
	if err = c.Log_with_err(c.curLevel, Text(text)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// emit renders a single record if the renderer's filter admits it.
func (r *Renderer) emit(rec Record) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.filter.Admits(rec) {
		return nil
	}
	return r.renderRecord(rec)
}
