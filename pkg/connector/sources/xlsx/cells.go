package xlsx

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ajitpratap0/tabclean/pkg/table"
)

// isoLayouts are the forms excelize stores in t="d" cells.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// cellReader turns raw cell text into typed values using the cell's type
// attribute and number format.
type cellReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	// style index -> number format is a date
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) (*cellReader, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, err
	}
	r := &cellReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r, nil
}

func (r *cellReader) value(col, row int, raw string) (table.Value, error) {
	if raw == "" {
		return table.Null(), nil
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return table.Null(), err
	}
	typ, err := r.f.GetCellType(r.sheet, ref)
	if err != nil {
		return table.Null(), err
	}

	switch typ {
	case excelize.CellTypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return table.Bool(b), nil
		}
	case excelize.CellTypeDate:
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return table.Time(t.UTC()), nil
			}
		}
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return r.number(ref, raw)
	}
	return table.Text(raw), nil
}

func (r *cellReader) number(ref, raw string) (table.Value, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return table.Text(raw), nil
	}

	style, err := r.f.GetCellStyle(r.sheet, ref)
	if err != nil {
		return table.Null(), err
	}
	isDate, err := r.isDateStyle(style)
	if err != nil {
		return table.Null(), err
	}
	if isDate {
		serial, _ := d.Float64()
		if t, err := excelize.ExcelDateToTime(serial, r.date1904); err == nil {
			return table.Time(t), nil
		}
		// negative serials have no date; keep the number
	}

	if d.IsInteger() {
		if i := d.BigInt(); i.IsInt64() {
			return table.Int(i.Int64()), nil
		}
	}
	return table.Decimal(d), nil
}

func (r *cellReader) isDateStyle(idx int) (bool, error) {
	if idx == 0 {
		return false, nil
	}
	if v, ok := r.dateStyles[idx]; ok {
		return v, nil
	}
	style, err := r.f.GetStyle(idx)
	if err != nil {
		return false, err
	}
	v := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		v = isDateFormatCode(*style.CustomNumFmt)
	}
	r.dateStyles[idx] = v
	return v, nil
}

// isDateNumFmt reports whether a built-in number format id renders a date or
// a time, including the East Asian locale ids.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58,
		id >= 71 && id <= 81:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code has date or time
// tokens in its first section. Quoted literals, escaped characters and
// bracketed colour or locale tags are ignored.
func isDateFormatCode(code string) bool {
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			switch ch | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}
