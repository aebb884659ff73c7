package transform

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

func init() {
	register(Info{
		Name:    "normalize_text",
		Summary: "collapse whitespace, lowercase and strip accents",
		Params:  []string{"trim", "lowercase", "strip_accents"},
	}, newNormalizeText)
	register(Info{
		Name:    "remove_pattern",
		Summary: "remove every case-insensitive match of a regular expression",
		Params:  []string{"pattern"},
	}, newRemovePattern)
	register(Info{
		Name:    "trim",
		Summary: "strip leading and trailing whitespace",
	}, newTrim)
	register(Info{
		Name:    "strip_leading_zeros",
		Summary: "drop leading zeros from all-digit values",
	}, newStripLeadingZeros)
}

// collapseSpace trims s and replaces every run of whitespace with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type normalizeText struct {
	trim         bool
	lowercase    bool
	stripAccents bool
}

func newNormalizeText(params Params) (Transform, error) {
	r := newParamReader("normalize_text", params)
	t := &normalizeText{
		trim:         r.Bool("trim", true),
		lowercase:    r.Bool("lowercase", true),
		stripAccents: r.Bool("strip_accents", true),
	}
	if err := r.Done(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *normalizeText) Name() string { return "normalize_text" }

func (t *normalizeText) Apply(col table.Column) table.Column {
	// Casers and transformer chains carry state; build them per call.
	var lower cases.Caser
	if t.lowercase {
		lower = cases.Lower(language.Und)
	}
	var unaccent xtransform.Transformer
	if t.stripAccents {
		unaccent = xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	}

	return mapCells(col, func(v table.Value) table.Value {
		s := v.String()
		if t.trim {
			s = collapseSpace(s)
		}
		if t.lowercase {
			s = lower.String(s)
		}
		if t.stripAccents {
			if out, _, err := xtransform.String(unaccent, s); err == nil {
				s = out
			}
		}
		if t.trim {
			s = collapseSpace(s)
		}
		return table.Text(s)
	})
}

type removePattern struct {
	re *regexp.Regexp
}

func newRemovePattern(params Params) (Transform, error) {
	r := newParamReader("remove_pattern", params)
	pattern := r.RequiredString("pattern")
	if err := r.Done(); err != nil {
		return nil, err
	}
	re, err := compileInsensitive("remove_pattern", pattern)
	if err != nil {
		return nil, err
	}
	return &removePattern{re: re}, nil
}

func (t *removePattern) Name() string { return "remove_pattern" }

func (t *removePattern) Apply(col table.Column) table.Column {
	return mapCells(col, func(v table.Value) table.Value {
		return table.Text(collapseSpace(t.re.ReplaceAllString(v.String(), "")))
	})
}

// compileInsensitive compiles pattern with case-insensitive matching.
func compileInsensitive(transform, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "transform "+transform+": invalid pattern").
			WithDetail("transform", transform).
			WithDetail("pattern", pattern)
	}
	return re, nil
}

type trimSpace struct{}

func newTrim(params Params) (Transform, error) {
	if err := newParamReader("trim", params).Done(); err != nil {
		return nil, err
	}
	return trimSpace{}, nil
}

func (trimSpace) Name() string { return "trim" }

func (trimSpace) Apply(col table.Column) table.Column {
	return mapCells(col, func(v table.Value) table.Value {
		return table.Text(strings.TrimSpace(v.String()))
	})
}

type stripLeadingZeros struct{}

func newStripLeadingZeros(params Params) (Transform, error) {
	if err := newParamReader("strip_leading_zeros", params).Done(); err != nil {
		return nil, err
	}
	return stripLeadingZeros{}, nil
}

func (stripLeadingZeros) Name() string { return "strip_leading_zeros" }

func (stripLeadingZeros) Apply(col table.Column) table.Column {
	return mapCells(col, func(v table.Value) table.Value {
		s := v.String()
		if !isASCIIDigits(s) {
			return v
		}
		s = strings.TrimLeft(s, "0")
		if s == "" {
			s = "0"
		}
		return table.Text(s)
	})
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
