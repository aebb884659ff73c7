package quality

import (
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// Sentinel replaces values outside a column's allowed set.
const Sentinel = "otro"

// EnforceAllowedValues replaces every non-null cell of column whose value is
// not in allowed with the Sentinel text, and returns the new table with the
// number of cells replaced. Null cells and allowed cells are never touched.
func EnforceAllowedValues(t *table.Table, column string, allowed []table.Value) (*table.Table, int) {
	col, ok := t.Column(column)
	if !ok {
		return t, 0
	}

	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v.Key()] = struct{}{}
	}

	var out table.Column
	replaced := 0
	for i, v := range col {
		if v.IsNull() {
			continue
		}
		if _, ok := set[v.Key()]; ok {
			continue
		}
		if out == nil {
			out = col.Clone()
		}
		out[i] = table.Text(Sentinel)
		replaced++
	}
	if replaced == 0 {
		return t, 0
	}

	result, err := t.WithColumn(column, out)
	if err != nil {
		// Same length as the column it replaces.
		return t, 0
	}
	return result, replaced
}
