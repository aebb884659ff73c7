package transform

import (
	"strings"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

func init() {
	register(Info{
		Name:    "split_by",
		Summary: "split on a delimiter and keep one trimmed segment",
		Params:  []string{"delimiter", "index"},
	}, newSplitBy)
	register(Info{
		Name:    "split_by_rest",
		Summary: "split on a delimiter and join the segments from start_index on",
		Params:  []string{"delimiter", "start_index", "join_with"},
	}, newSplitByRest)
}

const defaultDelimiter = ">"

func splitTrimmed(s, delimiter string) []string {
	parts := strings.Split(s, delimiter)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func emptyDelimiter(transform string) error {
	return errors.Newf(errors.ErrorTypeConfig, "transform %s: delimiter must not be empty", transform).
		WithDetail("transform", transform).
		WithDetail("parameter", "delimiter")
}

type splitBy struct {
	delimiter string
	index     int
}

func newSplitBy(params Params) (Transform, error) {
	r := newParamReader("split_by", params)
	t := &splitBy{
		delimiter: r.String("delimiter", defaultDelimiter),
		index:     r.Int("index", 0),
	}
	if err := r.Done(); err != nil {
		return nil, err
	}
	if t.delimiter == "" {
		return nil, emptyDelimiter("split_by")
	}
	return t, nil
}

func (t *splitBy) Name() string { return "split_by" }

func (t *splitBy) Apply(col table.Column) table.Column {
	return mapCells(col, func(v table.Value) table.Value {
		parts := splitTrimmed(v.String(), t.delimiter)
		i := t.index
		if i < 0 {
			i += len(parts)
		}
		if i < 0 || i >= len(parts) {
			return table.Null()
		}
		return table.Text(parts[i])
	})
}

type splitByRest struct {
	delimiter  string
	startIndex int
	joinWith   string
}

func newSplitByRest(params Params) (Transform, error) {
	r := newParamReader("split_by_rest", params)
	t := &splitByRest{
		delimiter:  r.String("delimiter", defaultDelimiter),
		startIndex: r.Int("start_index", 2),
		joinWith:   r.String("join_with", " > "),
	}
	if err := r.Done(); err != nil {
		return nil, err
	}
	if t.delimiter == "" {
		return nil, emptyDelimiter("split_by_rest")
	}
	if t.startIndex < 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "transform split_by_rest: start_index must not be negative").
			WithDetail("transform", "split_by_rest").
			WithDetail("parameter", "start_index")
	}
	return t, nil
}

func (t *splitByRest) Name() string { return "split_by_rest" }

func (t *splitByRest) Apply(col table.Column) table.Column {
	return mapCells(col, func(v table.Value) table.Value {
		parts := splitTrimmed(v.String(), t.delimiter)
		if len(parts) <= t.startIndex {
			return table.Null()
		}
		return table.Text(strings.Join(parts[t.startIndex:], t.joinWith))
	})
}
