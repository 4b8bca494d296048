package blocklog

import (
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noonClient(r *Renderer, category string) *Client {
	c := r.NewClient(category, LVL_INFO)
	c.now = func() time.Time { return time.Unix(43200, 0) }
	return c
}

func TestClient_Log(t *testing.T) {
	out := &FakeWriter{}
	ferr := &FakeWriter{}
	r := New(out).SetFallback(ferr)
	c := noonClient(r, "svc")
	assert.Equal(t, "svc", c.Category())

	c.Begin("start")
	c.LogWarn("careful")
	c.LogErr(errors.New("failed"))
	c.LogTrace("details")
	c.Dump([]string{"a"})
	c.End("")
	c.LogError("top")

	want := lines(
		infoNoon+BANNER_OPEN,
		infoNoon+"|svc         : start",
		"W 12:00:00.000000 |svc         : careful",
		"E 12:00:00.000000 |svc         : failed",
		"T 12:00:00.000000 |svc         : details",
		"T 12:00:00.000000 |svc         : ([]string) (len=1) {",
		"T 12:00:00.000000 |    (string) (len=1) \"a\"",
		"T 12:00:00.000000 |}",
		infoNoon+"|svc         : ",
		infoNoon+BANNER_CLOSE,
		"E 12:00:00.000000 svc         : top",
	)
	assert.Equal(t, want, out.String())
	assert.Empty(t, ferr.buffer)
}

func TestClient_Filtered(t *testing.T) {
	out := &FakeWriter{}
	r := New(out).SetFilter(FilterSpec{LevelMask: LVL_ERROR, Include: []string{"svc*"}})
	noonClient(r, "svc/a").LogInfo("dropped by level")
	noonClient(r, "other").LogError("dropped by category")
	noonClient(r, "svc/a").LogError("kept")
	assert.Equal(t, lines("E 12:00:00.000000 svc/a       : kept"), out.String())
}

func TestClient_Errors(t *testing.T) {
	ferr := &FakeWriter{}
	r := New(&ErrorWriter{}).SetFallback(ferr)
	c := noonClient(r, "svc")

	assert.ErrorContains(t, c.Log_with_err(LVL_INFO, Text("x")), errorStr)
	assert.Empty(t, ferr.buffer)

	c.LogInfo("x")
	assert.Contains(t, ferr.String(), errorStr)

	ferr.Clear()
	c.End("unbalanced")
	assert.Contains(t, ferr.String(), _ERROR_MESSAGE_UNBALANCED_CLOSE)

	var orphan Client
	assert.ErrorContains(t, orphan.Log_with_err(LVL_INFO, Text("x")), _ERROR_MESSAGE_CLIENT_IS_NIL)
	assert.NotPanics(t, func() { orphan.LogInfo("x") })
}

func TestClient_Write(t *testing.T) {
	out := &FakeWriter{}
	r := New(out)
	c := noonClient(r, "io")

	n, err := fmt.Fprintf(c.Lvl(LVL_WARNING), "disk low: %d%%", 5)
	require.NoError(t, err)
	assert.Equal(t, len("disk low: 5%"), n)

	n, err = c.Write(nil)
	assert.NoError(t, err)
	assert.Zero(t, n)

	stdlog := log.New(c.Lvl(LVL_INFO), "", 0)
	stdlog.Print(">>from log")
	stdlog.Print("<<")

	want := lines(
		"W 12:00:00.000000 io          : disk low: 5%",
		infoNoon+BANNER_OPEN,
		infoNoon+"|io          : from log",
		infoNoon+"|io          : ",
		infoNoon+BANNER_CLOSE,
	)
	assert.Equal(t, want, out.String())

	n, err = New(&ErrorWriter{}).NewClient("io", LVL_INFO).Write([]byte("x"))
	assert.Error(t, err)
	assert.Zero(t, n)
}
