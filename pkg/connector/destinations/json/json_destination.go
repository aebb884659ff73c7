// Package json writes tables as a JSON array of objects or as JSON Lines.
package json

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/destinations/compressed"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	jsonpool "github.com/ajitpratap0/tabclean/pkg/json"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// JSONDestination writes one object per row, keyed by column name in column
// order.
type JSONDestination struct {
	lines  bool
	logger *zap.Logger
}

// NewJSONDestination creates a destination writing a single JSON array.
func NewJSONDestination(_ config.OutputConfig, log *zap.Logger) (core.Destination, error) {
	return newJSONDestination(false, log), nil
}

// NewJSONLinesDestination creates a destination writing one object per line.
func NewJSONLinesDestination(_ config.OutputConfig, log *zap.Logger) (core.Destination, error) {
	return newJSONDestination(true, log), nil
}

func newJSONDestination(lines bool, log *zap.Logger) *JSONDestination {
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONDestination{
		lines:  lines,
		logger: log.With(zap.String("component", "json_destination"), zap.Bool("lines", lines)),
	}
}

// Write replaces the file at path with t.
func (d *JSONDestination) Write(ctx context.Context, path string, t *table.Table) error {
	out, err := compressed.Create(path)
	if err != nil {
		return err
	}
	defer out.Abort()

	enc, err := jsonpool.NewRowEncoder(out, t.Names(), !d.lines)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to start JSON output").WithDetail("path", path)
	}

	row := make([]table.Value, t.Width())
	for r := 0; r < t.Rows(); r++ {
		if r%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for c := range row {
			row[c] = t.ColumnAt(c)[r]
		}
		if err := enc.Encode(row); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to encode row").
				WithDetail("path", path).
				WithDetail("row", r)
		}
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to finish JSON output").WithDetail("path", path)
	}
	if err := out.Commit(); err != nil {
		return err
	}

	d.logger.Debug("json file written", zap.String("path", path), zap.Int("rows", t.Rows()))
	return nil
}
