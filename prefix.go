package blocklog

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/valyala/fasttemplate"
)

const (
	TIME_LAYOUT   = "15:04:05.000000"
	maxTimestamp  = 253402300800 // 10000-01-01T00:00:00Z
	microsPerUnit = 1e6
)

// Prefixer renders the per-line prefix from a template with %prefix%,
// %level% and %time% placeholders. Every other '%' is literal text, so
// "50% %level%" and "%pid%" are printed as written.
type Prefixer struct {
	tmpl   *fasttemplate.Template
	source string
	width  int
	loc    *time.Location
}

// Parses the template once. The result is padded with spaces to at least
// width display columns and never truncated. A nil loc means UTC.
func NewPrefixer(template string, width int, loc *time.Location) (*Prefixer, error) {
	t, err := fasttemplate.NewTemplate(escapeTemplate(template), TAG_DELIM, TAG_DELIM)
	if err != nil {
		return nil, fmt.Errorf("%w `%s`: %v", ErrInvalidTemplate, template, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Prefixer{tmpl: t, source: template, width: max(width, 0), loc: loc}, nil
}

func mustPrefixer(template string, width int, loc *time.Location) *Prefixer {
	p, err := NewPrefixer(template, width, loc)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Prefixer) Template() string { return p.source }

func (p *Prefixer) Width() int { return p.width }

// Resolves the template for one record. context fills %prefix%.
func (p *Prefixer) Render(levelCode string, timestamp float64, context string) string {
	s := p.tmpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		switch tag {
		case TAG_PREFIX:
			return io.WriteString(w, context)
		case TAG_LEVEL:
			return io.WriteString(w, levelCode)
		case TAG_TIME:
			return io.WriteString(w, FormatTime(timestamp, p.loc))
		default:
			// only the empty tag of an escaped literal '%' gets here
			return io.WriteString(w, TAG_DELIM)
		}
	})
	return padRight(s, p.width)
}

var placeholders = []string{
	TAG_DELIM + TAG_PREFIX + TAG_DELIM,
	TAG_DELIM + TAG_LEVEL + TAG_DELIM,
	TAG_DELIM + TAG_TIME + TAG_DELIM,
}

// escapeTemplate rewrites every '%' that does not start a known placeholder
// into "%%", the empty tag Render prints as a single '%'. The result always
// has paired delimiters.
func escapeTemplate(template string) string {
	var sb strings.Builder
	sb.Grow(len(template) + 8)
	for i := 0; i < len(template); {
		if template[i] != TAG_DELIM[0] {
			sb.WriteByte(template[i])
			i++
			continue
		}
		known := ""
		for _, ph := range placeholders {
			if strings.HasPrefix(template[i:], ph) {
				known = ph
				break
			}
		}
		if known != "" {
			sb.WriteString(known)
			i += len(known)
			continue
		}
		sb.WriteString(TAG_DELIM + TAG_DELIM)
		i++
	}
	return sb.String()
}

// Formats epoch seconds as HH:MM:SS.ffffff in loc. Values that are not a
// valid epoch time (NaN, infinities, negative, past year 9999) are returned
// as the raw number.
func FormatTime(timestamp float64, loc *time.Location) string {
	if math.IsNaN(timestamp) || math.IsInf(timestamp, 0) || timestamp < 0 || timestamp >= maxTimestamp {
		return strconv.FormatFloat(timestamp, 'f', -1, 64)
	}
	if loc == nil {
		loc = time.UTC
	}
	sec, frac := math.Modf(timestamp)
	usec := int64(math.Round(frac * microsPerUnit))
	if usec >= microsPerUnit {
		sec++
		usec -= microsPerUnit
	}
	return time.Unix(int64(sec), usec*int64(time.Microsecond)).In(loc).Format(TIME_LAYOUT)
}

// Pads s with spaces up to width terminal columns.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
