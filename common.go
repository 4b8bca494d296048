package blocklog

/*
Package-wide constants, enums and small helpers used by the renderer:
  - log level flags (combinable into a level mask)
  - default formatting values
  - block markers and banners
  - error messages (kept as constants so tests can match them)
*/

import (
	"errors"
	"strings"
)

type LogLevel int // Record severity, a single bit flag (several flags form a mask)

const (
	// Level flags. Profile begin/end share the PROFILE bit so a mask of
	// LVL_PROFILE admits all three profiling levels.
	LVL_ERROR         LogLevel = 0x01
	LVL_WARNING       LogLevel = 0x02
	LVL_INFO          LogLevel = 0x04
	LVL_TRACE         LogLevel = 0x08
	LVL_PROFILE       LogLevel = 0x40
	LVL_PROFILE_BEGIN LogLevel = 0x50
	LVL_PROFILE_END   LogLevel = 0x60
)

const (
	// Default values for a renderer built with New()
	DEFAULT_OFFSET_MARKER   = "|"
	DEFAULT_PREFIX_TEMPLATE = "%level% %time%"
	DEFAULT_PREFIX_WIDTH    = 18
	DEFAULT_LABEL_WIDTH     = 12
	DEFAULT_LABEL_DELIMITER = ": "
	DEFAULT_OUT_BUFF        = 256 // initial buffer size for a printed line
	LEVEL_UNKNOWN_CODE      = "UNKNOWN"
)

const (
	// Block markers recognized at the start of a text body
	MARKER_OPEN  = ">>"
	MARKER_CLOSE = "<<"
)

var (
	BANNER_OPEN  = "<!" + strings.Repeat("-", 72)
	BANNER_CLOSE = strings.Repeat("-", 72) + "!>"
)

const (
	// Prefix template placeholders (without the surrounding '%')
	TAG_PREFIX = "prefix"
	TAG_LEVEL  = "level"
	TAG_TIME   = "time"
	TAG_DELIM  = "%"
)

const (
	_ERROR_MESSAGE_UNBALANCED_CLOSE = "block close marker without matching open"
	_ERROR_MESSAGE_INVALID_TEMPLATE = "invalid prefix template"
	_ERROR_MESSAGE_UNKNOWN_LEVEL    = "unknown level name"
	_ERROR_MESSAGE_WRITE_FAILED     = "error writing log line to output"
	_ERROR_MESSAGE_RENDER_PANIC     = "panic rendering record"
	_ERROR_MESSAGE_CLIENT_IS_NIL    = "client has no renderer"
	_ERROR_UNKNOWN_PANIC_TEXT       = "[no panic description]"
)

var (
	ErrUnbalancedClose  = errors.New(_ERROR_MESSAGE_UNBALANCED_CLOSE)
	ErrInvalidTemplate  = errors.New(_ERROR_MESSAGE_INVALID_TEMPLATE)
	ErrUnknownLevelName = errors.New(_ERROR_MESSAGE_UNKNOWN_LEVEL)
)

// Converts a panic value into a compact readable string (used when
// translating panics into errors)
func panicDesc(panic any) (errtext string) {
	switch v := panic.(type) {
	case string:
		errtext = ": `" + v + "`"
	case error:
		errtext = ": (error) `" + v.Error() + "`"
	default:
		errtext = " " + _ERROR_UNKNOWN_PANIC_TEXT
	}
	return errtext
}
