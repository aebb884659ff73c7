package quality

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	jsonpool "github.com/ajitpratap0/tabclean/pkg/json"
)

// Section titles and headers of the text report.
const (
	titleSummary = "RESUMEN"
	titleNulls   = "NULOS POR COLUMNA"
	titleInvalid = "FUERA DE CATÁLOGO"
)

// ColumnCount is one entry of a per-column count listing.
type ColumnCount struct {
	Column string
	Count  int
}

// SortedCounts lists counts by descending count, then by column name.
func SortedCounts(counts map[string]int) []ColumnCount {
	out := make([]ColumnCount, 0, len(counts))
	for column, n := range counts {
		out = append(out, ColumnCount{Column: column, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// RenderText writes the report as three tables. Styling follows what w
// supports, so redirected output stays plain.
func (r *Report) RenderText(w io.Writer) error {
	renderer := lipgloss.NewRenderer(w)
	title := renderer.NewStyle().Bold(true)
	header := renderer.NewStyle().Bold(true).Padding(0, 1).Align(lipgloss.Center)
	cell := renderer.NewStyle().Padding(0, 1)
	number := cell.Align(lipgloss.Right)

	newTable := func(headers ...string) *table.Table {
		return table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(renderer.NewStyle().Faint(true)).
			Headers(headers...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return header
				case col > 0:
					return number
				}
				return cell
			})
	}

	summary := newTable("registros_totales", "duplicados_eliminados_o_marcados").
		Row(strconv.Itoa(r.RowsTotal), strconv.Itoa(r.DuplicatesFound))

	nulls := newTable("columna", "nulos")
	for _, c := range SortedCounts(r.NullCountsByColumn) {
		nulls.Row(c.Column, strconv.Itoa(c.Count))
	}

	invalid := newTable("columna", "fuera_de_catalogo")
	for _, c := range SortedCounts(r.InvalidValuesByColumn) {
		invalid.Row(c.Column, strconv.Itoa(c.Count))
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n\n%s\n%s\n\n%s\n%s\n",
		title.Render("=== "+titleSummary+" ==="), summary.String(),
		title.Render("=== "+titleNulls+" ==="), nulls.String(),
		title.Render("=== "+titleInvalid+" ==="), invalid.String(),
	)
	return err
}

// JSON encodes the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return jsonpool.MarshalIndent(r, "", "  ")
}
