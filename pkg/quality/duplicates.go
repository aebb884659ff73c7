// Package quality enforces data-quality rules on mapped tables and reports
// what it changed.
//
// Every operator returns a new table and leaves its input untouched. A rule
// that names a column the table does not have is a no-op that reports zero.
package quality

import (
	"sort"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// CountDuplicates returns the number of rows whose key already appeared in
// an earlier row. Null keys are equal to each other.
func CountDuplicates(keys table.Column) int {
	seen := make(map[string]struct{}, len(keys))
	dups := 0
	for _, k := range keys {
		key := k.Key()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// ResolveDuplicates applies rule to t and returns the resulting table with
// the number of duplicate rows found in t. The count is reported for every
// action, including a keep_latest that is skipped because its tie-break
// column is not configured or not present.
func ResolveDuplicates(t *table.Table, rule config.DuplicateRule) (*table.Table, int) {
	keys, ok := t.Column(rule.Key)
	if !ok {
		return t, 0
	}
	found := CountDuplicates(keys)

	switch rule.Action {
	case config.ActionKeepLatest:
		by, ok := t.Column(rule.LatestBy)
		if rule.LatestBy == "" || !ok {
			return t, found
		}
		return t.SelectRows(keepLatest(keys, by)), found

	case config.ActionDrop:
		return t.SelectRows(firstOccurrences(keys)), found

	case config.ActionMark:
		name := rule.MarkColumn
		if name == "" {
			name = config.DefaultMarkColumn
		}
		// The flag column has the key column's length, so this cannot fail.
		marked, err := t.WithColumn(name, repeatFlags(keys))
		if err != nil {
			return t, found
		}
		return marked, found
	}
	return t, found
}

// keepLatest orders rows by the tie-break column, ascending and stable, and
// keeps the last row of each key in that order. The kept rows stay sorted.
func keepLatest(keys, by table.Column) []int {
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return table.Compare(by[order[a]], by[order[b]]) < 0
	})

	last := make(map[string]int, len(keys))
	for pos, row := range order {
		last[keys[row].Key()] = pos
	}

	kept := make([]int, 0, len(last))
	for pos, row := range order {
		if last[keys[row].Key()] == pos {
			kept = append(kept, row)
		}
	}
	return kept
}

// firstOccurrences returns the first row of each key in original order.
func firstOccurrences(keys table.Column) []int {
	seen := make(map[string]struct{}, len(keys))
	kept := make([]int, 0, len(keys))
	for row, k := range keys {
		key := k.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	return kept
}

// repeatFlags is true for every row whose key appeared earlier.
func repeatFlags(keys table.Column) table.Column {
	seen := make(map[string]struct{}, len(keys))
	flags := make(table.Column, len(keys))
	for row, k := range keys {
		key := k.Key()
		_, dup := seen[key]
		seen[key] = struct{}{}
		flags[row] = table.Bool(dup)
	}
	return flags
}
