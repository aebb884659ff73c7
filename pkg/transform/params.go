package transform

import (
	"fmt"
	"math"
	"sort"

	"github.com/ajitpratap0/tabclean/pkg/errors"
)

// paramReader reads typed options out of Params, remembering which keys were
// consumed so that leftovers can be reported. The first problem found sticks.
type paramReader struct {
	transform string
	params    Params
	used      map[string]struct{}
	err       error
}

func newParamReader(transform string, params Params) *paramReader {
	return &paramReader{
		transform: transform,
		params:    params,
		used:      make(map[string]struct{}, len(params)),
	}
}

// lookup returns the raw value for key. A YAML null counts as absent.
func (r *paramReader) lookup(key string) (interface{}, bool) {
	r.used[key] = struct{}{}
	v, ok := r.params[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *paramReader) fail(key string, format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	r.err = errors.New(errors.ErrorTypeConfig, fmt.Sprintf("transform %s: parameter %s: %s", r.transform, key, fmt.Sprintf(format, args...))).
		WithDetail("transform", r.transform).
		WithDetail("parameter", key)
}

func (r *paramReader) Bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, isBool := v.(bool)
	if !isBool {
		r.fail(key, "want a boolean, got %T", v)
		return def
	}
	return b
}

func (r *paramReader) String(key, def string) string {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	s, isString := v.(string)
	if !isString {
		r.fail(key, "want a string, got %T", v)
		return def
	}
	return s
}

func (r *paramReader) RequiredString(key string) string {
	if _, ok := r.lookup(key); !ok {
		r.fail(key, "is required")
		return ""
	}
	return r.String(key, "")
}

func (r *paramReader) Int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, isInt := toInt(v)
	if !isInt {
		r.fail(key, "want an integer, got %v", v)
		return def
	}
	return n
}

// IntOrString reads a value that may be either an integer or a name.
func (r *paramReader) IntOrString(key string, def int) (n int, name string) {
	v, ok := r.lookup(key)
	if !ok {
		return def, ""
	}
	if s, isString := v.(string); isString {
		if s == "" {
			r.fail(key, "empty name")
		}
		return 0, s
	}
	n, isInt := toInt(v)
	if !isInt {
		r.fail(key, "want an integer or a name, got %v", v)
		return def, ""
	}
	return n, ""
}

// Done reports the first parsing error, or an error naming the keys that were
// never read.
func (r *paramReader) Done() error {
	if r.err != nil {
		return r.err
	}
	var unknown []string
	for key := range r.params {
		if _, ok := r.used[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("transform %s: unknown parameters %v", r.transform, unknown)).
		WithDetail("transform", r.transform).
		WithDetail("parameters", unknown)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
