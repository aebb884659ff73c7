package transform

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

func init() {
	register(Info{
		Name:    "cast_type",
		Summary: "convert cells to text, integer or decimal",
		Params:  []string{"to"},
	}, newCastType)
}

// CastTarget is the kind a cast_type transform produces.
type CastTarget string

const (
	CastText    CastTarget = "string"
	CastInt     CastTarget = "int"
	CastDecimal CastTarget = "decimal"
)

var castAliases = map[string]CastTarget{
	"string":  CastText,
	"text":    CastText,
	"str":     CastText,
	"int":     CastInt,
	"integer": CastInt,
	"float":   CastDecimal,
	"decimal": CastDecimal,
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

type castType struct {
	to CastTarget
}

func newCastType(params Params) (Transform, error) {
	r := newParamReader("cast_type", params)
	to := r.String("to", string(CastText))
	if err := r.Done(); err != nil {
		return nil, err
	}
	target, ok := castAliases[strings.ToLower(to)]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "transform cast_type: unsupported target type %q", to).
			WithDetail("transform", "cast_type").
			WithDetail("parameter", "to")
	}
	return &castType{to: target}, nil
}

func (t *castType) Name() string { return "cast_type" }

func (t *castType) Apply(col table.Column) table.Column {
	switch t.to {
	case CastInt:
		return mapCells(col, CastToInt)
	case CastDecimal:
		return mapCells(col, CastToDecimal)
	default:
		return mapCells(col, func(v table.Value) table.Value {
			return table.Text(v.String())
		})
	}
}

// CastToDecimal converts v to a decimal cell, or null when v is not numeric.
func CastToDecimal(v table.Value) table.Value {
	if d, ok := toDecimal(v); ok {
		return table.Decimal(d)
	}
	return table.Null()
}

// CastToInt converts v to an integer cell, or null when v is not numeric,
// not integral or out of range.
func CastToInt(v table.Value) table.Value {
	if _, ok := v.AsInt(); ok {
		return v
	}
	d, ok := toDecimal(v)
	if !ok || !d.IsInteger() || d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
		return table.Null()
	}
	return table.Int(d.IntPart())
}

func toDecimal(v table.Value) (decimal.Decimal, bool) {
	if d, ok := v.Numeric(); ok {
		return d, true
	}
	if b, ok := v.AsBool(); ok {
		if b {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	}
	if _, ok := v.AsTime(); ok {
		return decimal.Decimal{}, false
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
