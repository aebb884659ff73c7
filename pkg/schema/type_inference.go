// Package schema detects column types in freshly read tables.
package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/table"
)

// Inferred column types.
const (
	TypeEmpty   = "empty"
	TypeInteger = "integer"
	TypeDecimal = "decimal"
	TypeString  = "string"
)

// TypeInferenceEngine converts text columns whose every non-null cell is a
// number into integer or decimal columns. Anything else stays text.
type TypeInferenceEngine struct {
	logger *zap.Logger

	integerPattern *regexp.Regexp
	decimalPattern *regexp.Regexp
}

// InferredType describes what a column holds.
type InferredType struct {
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	Nullable    bool    `json:"nullable"`
	Cardinality int     `json:"cardinality"`
}

// NewTypeInferenceEngine creates a new type inference engine
func NewTypeInferenceEngine(logger *zap.Logger) *TypeInferenceEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeInferenceEngine{
		logger: logger,
		// Leading zeros mark identifiers such as postal codes, which must
		// keep their text form.
		integerPattern: regexp.MustCompile(`^[+-]?(0|[1-9][0-9]*)$`),
		decimalPattern: regexp.MustCompile(`^[+-]?(0|[1-9][0-9]*)?\.[0-9]+$|^[+-]?(0|[1-9][0-9]*)\.$`),
	}
}

// InferType infers the type of a column from its cells
func (e *TypeInferenceEngine) InferType(col table.Column) *InferredType {
	counts := make(map[string]int)
	unique := make(map[string]struct{})
	nonNull, nulls := 0, 0

	for _, v := range col {
		if v.IsNull() {
			nulls++
			continue
		}
		nonNull++
		unique[v.Key()] = struct{}{}
		counts[e.detectValueType(v)]++
	}

	inferred := &InferredType{
		Type:        TypeEmpty,
		Nullable:    nulls > 0,
		Cardinality: len(unique),
	}
	if nonNull == 0 {
		return inferred
	}

	// Integers widen to decimals; any other mix is text.
	switch {
	case counts[TypeInteger] == nonNull:
		inferred.Type = TypeInteger
	case counts[TypeInteger]+counts[TypeDecimal] == nonNull:
		inferred.Type = TypeDecimal
	default:
		inferred.Type = TypeString
	}

	dominant := 0
	for _, n := range counts {
		if n > dominant {
			dominant = n
		}
	}
	inferred.Confidence = float64(dominant) / float64(nonNull)
	return inferred
}

// detectValueType detects the type of a single value
func (e *TypeInferenceEngine) detectValueType(v table.Value) string {
	switch v.Kind() {
	case table.KindInt:
		return TypeInteger
	case table.KindDecimal:
		return TypeDecimal
	case table.KindText:
		s, _ := v.AsText()
		s = strings.TrimSpace(s)
		if e.isInteger(s) {
			return TypeInteger
		}
		if e.isDecimal(s) {
			return TypeDecimal
		}
	}
	return TypeString
}

func (e *TypeInferenceEngine) isInteger(s string) bool {
	if !e.integerPattern.MatchString(s) {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func (e *TypeInferenceEngine) isDecimal(s string) bool {
	return e.decimalPattern.MatchString(s)
}

// Apply returns t with every numeric column converted. Columns that do not
// change are shared with t.
func (e *TypeInferenceEngine) Apply(t *table.Table) *table.Table {
	out := t
	for _, name := range t.Names() {
		col, _ := t.Column(name)
		inferred := e.InferType(col)

		var converted table.Column
		switch inferred.Type {
		case TypeInteger:
			converted = convert(col, e.toInt)
		case TypeDecimal:
			converted = convert(col, toDecimal)
		default:
			continue
		}

		next, err := out.WithColumn(name, converted)
		if err != nil {
			e.logger.Warn("failed to replace inferred column", zap.String("column", name), zap.Error(err))
			continue
		}
		out = next
		e.logger.Debug("column type inferred",
			zap.String("column", name),
			zap.String("type", inferred.Type),
			zap.Int("cardinality", inferred.Cardinality))
	}
	return out
}

func convert(col table.Column, fn func(table.Value) table.Value) table.Column {
	out := make(table.Column, len(col))
	for i, v := range col {
		if v.IsNull() {
			out[i] = v
			continue
		}
		out[i] = fn(v)
	}
	return out
}

func (e *TypeInferenceEngine) toInt(v table.Value) table.Value {
	if _, ok := v.AsInt(); ok {
		return v
	}
	s, _ := v.AsText()
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return v
	}
	return table.Int(i)
}

func toDecimal(v table.Value) table.Value {
	if d, ok := v.Numeric(); ok {
		return table.Decimal(d)
	}
	s, _ := v.AsText()
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return v
	}
	return table.Decimal(d)
}
