// Package avro writes tables as Avro object container files.
//
// The record schema is derived from the table: every field is a union of
// null and the single type its non-null cells share. Integers mixed with
// decimals become doubles, datetimes are timestamp-millis and any other mix
// is written as strings. Column names are rewritten into valid Avro names
// and the original name is kept in the field's "doc".
package avro

import (
	"context"
	"strconv"
	"strings"

	"github.com/linkedin/goavro/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/destinations/compressed"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	jsonpool "github.com/ajitpratap0/tabclean/pkg/json"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

func init() {
	_ = registry.RegisterDestination(config.FormatAvro, NewAvroDestination)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        config.FormatAvro,
		Type:        core.ConnectorTypeDestination,
		Description: "Avro object container file, deflate compressed, schema derived from the columns",
		Extensions:  []string{".avro"},
	})
}

// Avro types used for fields.
const (
	typeString    = "string"
	typeLong      = "long"
	typeDouble    = "double"
	typeBoolean   = "boolean"
	typeBytes     = "bytes"
	typeTimestamp = "long.timestamp-millis"
)

// AvroDestination writes Avro files.
type AvroDestination struct {
	logger *zap.Logger
}

// NewAvroDestination creates an Avro destination.
func NewAvroDestination(_ config.OutputConfig, log *zap.Logger) (core.Destination, error) {
	if log == nil {
		log = zap.NewNop()
	}
	return &AvroDestination{logger: log.With(zap.String("component", "avro_destination"))}, nil
}

type field struct {
	name   string
	column string
	typ    string
}

// Write replaces the file at path with t.
func (d *AvroDestination) Write(ctx context.Context, path string, t *table.Table) error {
	fields := deriveFields(t)
	schema, err := schemaJSON(fields)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to build Avro schema")
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create Avro codec")
	}

	out, err := compressed.Create(path)
	if err != nil {
		return err
	}
	defer out.Abort()

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               out,
		Codec:           codec,
		CompressionName: goavro.CompressionDeflateLabel,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Avro writer").WithDetail("path", path)
	}

	const batchSize = 1000
	batch := make([]interface{}, 0, batchSize)
	for r := 0; r < t.Rows(); r++ {
		record := make(map[string]interface{}, len(fields))
		for c, f := range fields {
			record[f.name] = native(t.ColumnAt(c)[r], f.typ)
		}
		batch = append(batch, record)

		if len(batch) == batchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := ocf.Append(batch); err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Avro records").WithDetail("path", path)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := ocf.Append(batch); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Avro records").WithDetail("path", path)
		}
	}
	if err := out.Commit(); err != nil {
		return err
	}

	d.logger.Debug("avro file written", zap.String("path", path), zap.Int("rows", t.Rows()))
	return nil
}

func deriveFields(t *table.Table) []field {
	fields := make([]field, t.Width())
	used := make(map[string]int, t.Width())
	for i, column := range t.Names() {
		base := avroName(column)
		name := base
		for n := used[base]; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = base + "_" + strconv.Itoa(n+1)
			used[base] = n + 1
		}
		used[name] = 0
		fields[i] = field{name: name, column: column, typ: columnType(t.ColumnAt(i))}
	}
	return fields
}

func columnType(col table.Column) string {
	kinds := make(map[table.Kind]bool)
	for _, v := range col {
		if !v.IsNull() {
			kinds[v.Kind()] = true
		}
	}
	if len(kinds) == 2 && kinds[table.KindInt] && kinds[table.KindDecimal] {
		return typeDouble
	}
	if len(kinds) != 1 {
		return typeString
	}
	for k := range kinds {
		switch k {
		case table.KindInt:
			return typeLong
		case table.KindDecimal:
			return typeDouble
		case table.KindBool:
			return typeBoolean
		case table.KindBytes:
			return typeBytes
		case table.KindTime:
			return typeTimestamp
		}
	}
	return typeString
}

// avroName maps a column name onto [A-Za-z_][A-Za-z0-9_]*.
func avroName(column string) string {
	var b strings.Builder
	for _, r := range column {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func schemaJSON(fields []field) (string, error) {
	type avroField struct {
		Name    string        `json:"name"`
		Doc     string        `json:"doc,omitempty"`
		Type    []interface{} `json:"type"`
		Default interface{}   `json:"default"`
	}
	out := struct {
		Type   string      `json:"type"`
		Name   string      `json:"name"`
		Fields []avroField `json:"fields"`
	}{Type: "record", Name: "Row", Fields: make([]avroField, len(fields))}

	for i, f := range fields {
		var typ interface{} = f.typ
		if f.typ == typeTimestamp {
			typ = map[string]string{"type": "long", "logicalType": "timestamp-millis"}
		}
		out.Fields[i] = avroField{Name: f.name, Type: []interface{}{"null", typ}}
		if f.name != f.column {
			out.Fields[i].Doc = f.column
		}
	}

	data, err := jsonpool.Marshal(out)
	return string(data), err
}

func native(v table.Value, typ string) interface{} {
	if v.IsNull() {
		return nil
	}
	switch typ {
	case typeLong:
		i, _ := v.AsInt()
		return goavro.Union(typ, i)
	case typeDouble:
		d, _ := v.Numeric()
		return goavro.Union(typ, d.InexactFloat64())
	case typeBoolean:
		b, _ := v.AsBool()
		return goavro.Union(typ, b)
	case typeBytes:
		raw, _ := v.AsBytes()
		return goavro.Union(typ, raw)
	case typeTimestamp:
		ts, _ := v.AsTime()
		return goavro.Union(typ, ts)
	}
	return goavro.Union(typeString, v.String())
}
