package transform

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

func init() {
	register(Info{
		Name:    "regex_extract",
		Summary: "extract a capture group of the first case-insensitive match",
		Params:  []string{"pattern", "group", "as_type"},
	}, newRegexExtract)
}

type regexExtract struct {
	re    *regexp.Regexp
	group int // negative when the named group does not exist
	asInt bool
}

func newRegexExtract(params Params) (Transform, error) {
	r := newParamReader("regex_extract", params)
	pattern := r.RequiredString("pattern")
	group, groupName := r.IntOrString("group", 1)
	asType := r.String("as_type", "")
	if err := r.Done(); err != nil {
		return nil, err
	}

	var asInt bool
	switch strings.ToLower(asType) {
	case "", "str", "string", "text":
	case "int", "integer":
		asInt = true
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "transform regex_extract: unsupported as_type %q", asType).
			WithDetail("transform", "regex_extract").
			WithDetail("parameter", "as_type")
	}

	re, err := compileInsensitive("regex_extract", pattern)
	if err != nil {
		return nil, err
	}
	if groupName != "" {
		group = re.SubexpIndex(groupName)
	}
	return &regexExtract{re: re, group: group, asInt: asInt}, nil
}

func (t *regexExtract) Name() string { return "regex_extract" }

func (t *regexExtract) Apply(col table.Column) table.Column {
	if t.group < 0 || t.group > t.re.NumSubexp() {
		return table.NullColumn(len(col))
	}
	return mapCells(col, func(v table.Value) table.Value {
		s := v.String()
		loc := t.re.FindStringSubmatchIndex(s)
		if loc == nil || loc[2*t.group] < 0 {
			return table.Null()
		}
		match := s[loc[2*t.group]:loc[2*t.group+1]]
		if !t.asInt {
			return table.Text(match)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(match), 10, 64)
		if err != nil {
			return table.Null()
		}
		return table.Int(n)
	})
}
