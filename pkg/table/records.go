package table

import (
	"strconv"
	"strings"
)

// DefaultNAValues are the cell texts read as null, matching the tokens
// spreadsheet tooling conventionally treats as missing.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

// RecordOptions controls how raw string records become cells.
type RecordOptions struct {
	// NAValues are additional cell texts read as null.
	NAValues []string
	// KeepDefaultNA adds DefaultNAValues to NAValues. When false only the
	// empty string and NAValues are null.
	KeepDefaultNA bool
}

// DefaultRecordOptions returns options with the default null tokens.
func DefaultRecordOptions() RecordOptions {
	return RecordOptions{KeepDefaultNA: true}
}

func (o RecordOptions) naSet() map[string]struct{} {
	set := map[string]struct{}{"": {}}
	if o.KeepDefaultNA {
		for _, s := range DefaultNAValues {
			set[s] = struct{}{}
		}
	}
	for _, s := range o.NAValues {
		set[s] = struct{}{}
	}
	return set
}

// FromRecords builds a text table from a header row and data rows. Short rows
// are padded with nulls and extra trailing cells are dropped. Header names are
// made unique: blanks become "Unnamed: <i>" and repeats get ".1", ".2"
// suffixes.
func FromRecords(header []string, rows [][]string, opts RecordOptions) *Table {
	return build(header, len(rows), opts, func(r, c int) Value {
		if c >= len(rows[r]) {
			return Null()
		}
		return Text(rows[r][c])
	})
}

// FromCells is FromRecords for sources that already carry typed cells. Only
// text cells are matched against the null tokens.
func FromCells(header []string, rows [][]Value, opts RecordOptions) *Table {
	return build(header, len(rows), opts, func(r, c int) Value {
		if c >= len(rows[r]) {
			return Null()
		}
		return rows[r][c]
	})
}

func build(header []string, n int, opts RecordOptions, cell func(r, c int) Value) *Table {
	names := UniqueHeader(header)
	na := opts.naSet()

	cols := make([]Column, len(names))
	for c := range cols {
		cols[c] = make(Column, n)
	}
	for r := 0; r < n; r++ {
		for c := range names {
			v := cell(r, c)
			if s, ok := v.AsText(); ok {
				if _, isNA := na[s]; isNA {
					continue
				}
			}
			cols[c][r] = v
		}
	}

	t := New(n)
	for c, name := range names {
		// names are unique and lengths match by construction
		_ = t.AddColumn(name, cols[c])
	}
	return t
}

// UniqueHeader returns header names made unique.
func UniqueHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimPrefix(h, "\ufeff")
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		names[i] = name
	}

	used := make(map[string]struct{}, len(names))
	for _, n := range names {
		used[n] = struct{}{}
	}
	out := make([]string, len(names))
	for i, name := range names {
		count, dup := seen[name]
		seen[name] = count + 1
		if !dup {
			out[i] = name
			continue
		}
		candidate := name + "." + strconv.Itoa(count)
		for {
			if _, taken := used[candidate]; !taken {
				break
			}
			count++
			candidate = name + "." + strconv.Itoa(count)
		}
		seen[name] = count + 1
		used[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}
