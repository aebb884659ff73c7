package table

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInt
	KindDecimal
	KindTime
	KindBool
	KindBytes
)

// DateTimeLayout is the canonical text form of datetime cells.
const DateTimeLayout = "2006-01-02 15:04:05"

var kindNames = [...]string{
	KindNull:    "null",
	KindText:    "text",
	KindInt:     "integer",
	KindDecimal: "decimal",
	KindTime:    "datetime",
	KindBool:    "boolean",
	KindBytes:   "bytes",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a single nullable cell. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	d    decimal.Decimal
	t    time.Time
	b    bool
	raw  []byte
}

// Null returns the null cell.
func Null() Value { return Value{} }

// Text returns a text cell. The empty string is a valid, non-null value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Int returns an integer cell.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Decimal returns a decimal cell.
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }

// Time returns a datetime cell.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Bytes returns a raw byte cell. The slice is not copied.
func Bytes(b []byte) Value { return Value{kind: KindBytes, raw: b} }

// Kind returns the kind of the cell.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsText returns the text payload and whether the cell is text.
func (v Value) AsText() (string, bool) { return v.s, v.kind == KindText }

// AsInt returns the integer payload and whether the cell is an integer.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsDecimal returns the decimal payload and whether the cell is a decimal.
func (v Value) AsDecimal() (decimal.Decimal, bool) { return v.d, v.kind == KindDecimal }

// AsTime returns the datetime payload and whether the cell is a datetime.
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == KindTime }

// AsBool returns the boolean payload and whether the cell is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsBytes returns the raw payload and whether the cell holds bytes.
func (v Value) AsBytes() ([]byte, bool) { return v.raw, v.kind == KindBytes }

// Numeric returns the cell as a decimal when it is an integer or a decimal.
func (v Value) Numeric() (decimal.Decimal, bool) {
	switch v.kind {
	case KindInt:
		return decimal.NewFromInt(v.i), true
	case KindDecimal:
		return v.d, true
	}
	return decimal.Decimal{}, false
}

// String renders the cell as text. Null renders as the empty string; use
// IsNull to tell the two apart.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return v.d.String()
	case KindTime:
		return v.t.Format(DateTimeLayout)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindBytes:
		if utf8.Valid(v.raw) {
			return string(v.raw)
		}
		return strings.ToValidUTF8(string(v.raw), "")
	}
	return ""
}

// Interface returns the payload as a plain Go value, nil for null. Decimals
// are returned as decimal.Decimal.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return v.i
	case KindDecimal:
		return v.d
	case KindTime:
		return v.t
	case KindBool:
		return v.b
	case KindBytes:
		return v.raw
	}
	return nil
}

// Key returns a canonical string such that two cells have equal keys exactly
// when they are considered the same value for grouping and membership.
// Integers and decimals with the same numeric value share a key; all nulls
// share a key.
func (v Value) Key() string {
	switch v.kind {
	case KindNull:
		return "\x00"
	case KindText:
		return "s\x00" + v.s
	case KindInt:
		return "n\x00" + strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return "n\x00" + v.d.String()
	case KindTime:
		return "t\x00" + v.t.UTC().Format(time.RFC3339Nano)
	case KindBool:
		return "b\x00" + strconv.FormatBool(v.b)
	case KindBytes:
		return "x\x00" + string(v.raw)
	}
	return ""
}

// Equal reports whether a and b have the same key.
func Equal(a, b Value) bool {
	if a.kind == KindInt && b.kind == KindInt {
		return a.i == b.i
	}
	return a.Key() == b.Key()
}

// rank orders kinds for cross-kind comparison. Null sorts before everything
// and numbers share a rank.
func (v Value) rank() int {
	switch v.kind {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt, KindDecimal:
		return 2
	case KindTime:
		return 3
	case KindText:
		return 4
	default:
		return 5
	}
}

// Compare orders two cells. Nulls sort first, numbers compare numerically,
// datetimes chronologically and text lexicographically. Cells of unrelated
// kinds are ordered by kind.
func Compare(a, b Value) int {
	ra, rb := a.rank(), b.rank()
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch a.kind {
	case KindNull:
		return 0
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindInt, KindDecimal:
		if a.kind == KindInt && b.kind == KindInt {
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			}
			return 0
		}
		ad, _ := a.Numeric()
		bd, _ := b.Numeric()
		return ad.Cmp(bd)
	case KindTime:
		return a.t.Compare(b.t)
	case KindText:
		return strings.Compare(a.s, b.s)
	}
	return strings.Compare(string(a.raw), string(b.raw))
}
