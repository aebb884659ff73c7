// Package csv writes tables as delimited text.
//
// The header row carries the column names, null cells are written empty and
// every other cell uses its canonical text form. A ".gz" or ".zst" suffix on
// the target path compresses the output.
//
// # Example Usage
//
//	dest, err := csv.NewCSVDestination(config.OutputConfig{Delimiter: ";"}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := dest.Write(ctx, "clientes_clean.csv", tbl); err != nil {
//	    log.Fatal(err)
//	}
package csv

import (
	"context"
	"encoding/csv"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/destinations/compressed"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// flushInterval is the number of rows between checks of the context.
const flushInterval = 1000

// CSVDestination writes CSV files.
type CSVDestination struct {
	delimiter rune
	logger    *zap.Logger
}

// NewCSVDestination creates a new CSV destination connector
func NewCSVDestination(cfg config.OutputConfig, log *zap.Logger) (core.Destination, error) {
	delimiter := ';'
	if cfg.Delimiter != "" {
		runes := []rune(cfg.Delimiter)
		if len(runes) != 1 || runes[0] == '"' || runes[0] == '\n' || runes[0] == '\r' {
			return nil, errors.Newf(errors.ErrorTypeConfig, "invalid CSV delimiter %q", cfg.Delimiter)
		}
		delimiter = runes[0]
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CSVDestination{
		delimiter: delimiter,
		logger:    log.With(zap.String("component", "csv_destination")),
	}, nil
}

// Write replaces the file at path with t.
func (d *CSVDestination) Write(ctx context.Context, path string, t *table.Table) error {
	out, err := compressed.Create(path)
	if err != nil {
		return err
	}
	defer out.Abort()

	writer := csv.NewWriter(out)
	writer.Comma = d.delimiter

	if err := writer.Write(t.Names()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write header").WithDetail("path", path)
	}

	record := make([]string, t.Width())
	for r := 0; r < t.Rows(); r++ {
		if r%flushInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for c := range record {
			record[c] = t.ColumnAt(c)[r].String()
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write row").
				WithDetail("path", path).
				WithDetail("row", r)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush CSV writer").WithDetail("path", path)
	}
	if err := out.Commit(); err != nil {
		return err
	}

	d.logger.Debug("csv file written",
		zap.String("path", path),
		zap.Int("rows", t.Rows()),
		zap.Int("columns", t.Width()))
	return nil
}
