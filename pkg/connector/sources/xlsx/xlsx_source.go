// Package xlsx reads the first (or a named) worksheet of an Excel workbook.
package xlsx

import (
	"context"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/schema"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

func init() {
	_ = registry.RegisterSource("xlsx", NewXLSXSource)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "xlsx",
		Type:        core.ConnectorTypeSource,
		Description: "Excel 2007+ workbooks, one worksheet per file",
		Extensions:  []string{".xlsx", ".xlsm"},
	})
}

// XLSXSource reads worksheets into typed tables.
type XLSXSource struct {
	cfg    config.InputConfig
	logger *zap.Logger
}

// NewXLSXSource creates an XLSX source.
func NewXLSXSource(cfg config.InputConfig, log *zap.Logger) (core.Source, error) {
	if log == nil {
		log = zap.NewNop()
	}
	return &XLSXSource{
		cfg:    cfg,
		logger: log.With(zap.String("component", "xlsx_source")),
	}, nil
}

// Read loads the configured sheet. Numeric cells become integers or decimals,
// numbers under a date format become datetimes and boolean cells become
// booleans. Everything else is read as text.
func (s *XLSXSource) Read(ctx context.Context, path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open workbook").
			WithDetail("path", path)
	}
	defer f.Close()

	sheet := s.cfg.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return table.New(0), nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read worksheet").
			WithDetail("path", path).
			WithDetail("sheet", sheet)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return table.New(0), nil
	}

	cells, err := newCellReader(f, sheet)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read workbook properties").
			WithDetail("path", path)
	}

	data := make([][]table.Value, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		values := make([]table.Value, len(row))
		for c, raw := range row {
			// rows[0] is the header, so data row i sits on sheet row i+2
			v, err := cells.value(c+1, i+2, raw)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read cell").
					WithDetail("path", path).
					WithDetail("sheet", sheet).
					WithDetail("row", i+2).
					WithDetail("column", c+1)
			}
			values[c] = v
		}
		data = append(data, values)
	}

	t := table.FromCells(rows[0], data, table.RecordOptions{
		NAValues:      s.cfg.NAValues,
		KeepDefaultNA: s.cfg.KeepDefaultNAValues(),
	})
	if s.cfg.InferTypes {
		t = schema.NewTypeInferenceEngine(s.logger).Apply(t)
	}

	s.logger.Debug("worksheet read",
		zap.String("path", path),
		zap.String("sheet", sheet),
		zap.Int("rows", t.Rows()),
		zap.Int("columns", t.Width()))
	return t, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
