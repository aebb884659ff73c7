package transform

import (
	"strings"
	"time"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

func init() {
	register(Info{
		Name:    "to_datetime",
		Summary: "parse text as a datetime with a strftime format or by inference",
		Params:  []string{"format"},
	}, newToDatetime)
	register(Info{
		Name:    "to_isoformat",
		Summary: "format datetimes as YYYY-MM-DD HH:MM:SS",
	}, newToISOFormat)
}

// inferLayouts are tried in order when no format is configured. Numeric
// dates are read month first, falling back to day first.
var inferLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2006.01.02",
	"20060102150405",
	"20060102",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"2.1.2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon Jan 2 15:04:05 2006",
	time.RFC1123,
	time.RFC850,
}

type toDatetime struct {
	layouts []string
}

func newToDatetime(params Params) (Transform, error) {
	r := newParamReader("to_datetime", params)
	format := r.String("format", "")
	if err := r.Done(); err != nil {
		return nil, err
	}
	if format == "" {
		return &toDatetime{layouts: inferLayouts}, nil
	}

	layouts, err := strftimeLayouts(format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "transform to_datetime: bad format").
			WithDetail("transform", "to_datetime").
			WithDetail("format", format)
	}
	return &toDatetime{layouts: layouts}, nil
}

func (t *toDatetime) Name() string { return "to_datetime" }

func (t *toDatetime) Apply(col table.Column) table.Column {
	return mapCells(col, func(v table.Value) table.Value {
		if _, ok := v.AsTime(); ok {
			return v
		}
		s := strings.TrimSpace(v.String())
		for _, layout := range t.layouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return table.Time(ts)
			}
		}
		return table.Null()
	})
}

type toISOFormat struct{}

func newToISOFormat(params Params) (Transform, error) {
	if err := newParamReader("to_isoformat", params).Done(); err != nil {
		return nil, err
	}
	return toISOFormat{}, nil
}

func (toISOFormat) Name() string { return "to_isoformat" }

func (toISOFormat) Apply(col table.Column) table.Column {
	return mapCells(col, func(v table.Value) table.Value {
		ts, ok := v.AsTime()
		if !ok {
			return table.Null()
		}
		return table.Text(ts.Format(table.DateTimeLayout))
	})
}

// strftimeDirective maps a directive to its zero-padded and its loose Go
// layout token. Loose tokens accept one or two digits when parsing.
type strftimeDirective struct {
	padded string
	loose  string
}

var strftimeDirectives = map[byte]strftimeDirective{
	'Y': {"2006", "2006"},
	'y': {"06", "06"},
	'm': {"01", "1"},
	'd': {"02", "2"},
	'H': {"15", "15"},
	'I': {"03", "3"},
	'M': {"04", "4"},
	'S': {"05", "5"},
	'p': {"PM", "PM"},
	'b': {"Jan", "Jan"},
	'h': {"Jan", "Jan"},
	'B': {"January", "January"},
	'a': {"Mon", "Mon"},
	'A': {"Monday", "Monday"},
	'z': {"-0700", "-0700"},
	'Z': {"MST", "MST"},
	'j': {"002", "__2"},
}

// layoutWords are substrings Go reads as layout elements; they cannot appear
// in the literal text of a format.
var layoutWords = []string{"Jan", "Mon", "MST", "PM", "pm", "Z07", "-07", "_2"}

// strftimeLayouts converts a strftime format to Go layouts: the zero-padded
// form first, then a loose form when it differs.
func strftimeLayouts(format string) ([]string, error) {
	var padded, loose, literal strings.Builder

	flushLiteral := func() error {
		lit := literal.String()
		literal.Reset()
		for i := 0; i < len(lit); i++ {
			if lit[i] >= '0' && lit[i] <= '9' {
				return errors.Newf(errors.ErrorTypeConfig, "literal digits %q are not supported", lit)
			}
		}
		for _, w := range layoutWords {
			if strings.Contains(lit, w) {
				return errors.Newf(errors.ErrorTypeConfig, "literal text %q collides with a layout element", lit)
			}
		}
		padded.WriteString(lit)
		loose.WriteString(lit)
		return nil
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			literal.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return nil, errors.New(errors.ErrorTypeConfig, "format ends with a lone %")
		}
		i++
		d := format[i]
		switch d {
		case '%':
			literal.WriteByte('%')
			continue
		case 'f':
			// Fractional seconds follow the separator that precedes them.
			lit := literal.String()
			if lit == "" || (lit[len(lit)-1] != '.' && lit[len(lit)-1] != ',') {
				return nil, errors.New(errors.ErrorTypeConfig, "%f must follow a '.' or ','")
			}
			if err := flushLiteral(); err != nil {
				return nil, err
			}
			padded.WriteString("999999999")
			loose.WriteString("999999999")
			continue
		case 'T':
			if err := flushLiteral(); err != nil {
				return nil, err
			}
			padded.WriteString("15:04:05")
			loose.WriteString("15:4:5")
			continue
		}

		dir, ok := strftimeDirectives[d]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported directive %%%c", d)
		}
		if err := flushLiteral(); err != nil {
			return nil, err
		}
		padded.WriteString(dir.padded)
		loose.WriteString(dir.loose)
	}
	if err := flushLiteral(); err != nil {
		return nil, err
	}

	layouts := []string{padded.String()}
	if loose.String() != padded.String() {
		layouts = append(layouts, loose.String())
	}

	// A layout whose elements run into each other cannot read back its own
	// output.
	ref := time.Date(2009, time.November, 17, 20, 34, 58, 0, time.UTC)
	if _, err := time.Parse(layouts[0], ref.Format(layouts[0])); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "format is ambiguous")
	}
	return layouts, nil
}
