// Package xlsx writes tables to a single-sheet Excel workbook.
package xlsx

import (
	"context"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/destinations/compressed"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

const dateTimeFormat = "yyyy-mm-dd hh:mm:ss"

func init() {
	_ = registry.RegisterDestination(config.FormatXLSX, NewXLSXDestination)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        config.FormatXLSX,
		Type:        core.ConnectorTypeDestination,
		Description: "Excel workbook with one sheet, header in the first row",
		Extensions:  []string{".xlsx"},
	})
}

// XLSXDestination writes workbooks.
type XLSXDestination struct {
	sheet  string
	logger *zap.Logger
}

// NewXLSXDestination creates an XLSX destination.
func NewXLSXDestination(cfg config.OutputConfig, log *zap.Logger) (core.Destination, error) {
	sheet := cfg.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := config.ValidateSheetName(sheet); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &XLSXDestination{
		sheet:  sheet,
		logger: log.With(zap.String("component", "xlsx_destination")),
	}, nil
}

// Write replaces the workbook at path with t. Integers, decimals, booleans
// and datetimes are stored as native spreadsheet values.
func (d *XLSXDestination) Write(ctx context.Context, path string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if d.sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", d.sheet); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to name sheet").WithDetail("sheet", d.sheet)
		}
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: stringPtr(dateTimeFormat)})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create date style")
	}

	sw, err := f.NewStreamWriter(d.sheet)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to open sheet writer")
	}

	header := make([]interface{}, t.Width())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write header").WithDetail("path", path)
	}

	row := make([]interface{}, t.Width())
	for r := 0; r < t.Rows(); r++ {
		if r%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for c := range row {
			row[c] = cellValue(t.ColumnAt(c)[r], dateStyle)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "too many rows for a worksheet").WithDetail("path", path)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write row").
				WithDetail("path", path).
				WithDetail("row", r)
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush sheet").WithDetail("path", path)
	}

	out, err := compressed.Create(path)
	if err != nil {
		return err
	}
	defer out.Abort()
	if err := f.Write(out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write workbook").WithDetail("path", path)
	}
	if err := out.Commit(); err != nil {
		return err
	}

	d.logger.Debug("workbook written",
		zap.String("path", path),
		zap.String("sheet", d.sheet),
		zap.Int("rows", t.Rows()))
	return nil
}

func cellValue(v table.Value, dateStyle int) interface{} {
	switch v.Kind() {
	case table.KindNull:
		return nil
	case table.KindInt:
		i, _ := v.AsInt()
		return i
	case table.KindDecimal:
		d, _ := v.AsDecimal()
		return d.InexactFloat64()
	case table.KindBool:
		b, _ := v.AsBool()
		return b
	case table.KindTime:
		ts, _ := v.AsTime()
		return excelize.Cell{StyleID: dateStyle, Value: ts}
	}
	return v.String()
}

func stringPtr(s string) *string { return &s }
