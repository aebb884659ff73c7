// Package json wraps goccy/go-json with pooled buffers and an encoder for
// table rows that keeps column order.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/tabclean/pkg/table"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// RowEncoder writes table rows as JSON objects whose keys follow column
// order. In array mode the rows form a single JSON array; otherwise each row
// is written on its own line.
type RowEncoder struct {
	writer  io.Writer
	isArray bool
	first   bool
	names   [][]byte
}

// NewRowEncoder creates an encoder for rows with the given column names.
func NewRowEncoder(w io.Writer, names []string, isArray bool) (*RowEncoder, error) {
	encoded := make([][]byte, len(names))
	for i, name := range names {
		key, err := gojson.Marshal(name)
		if err != nil {
			return nil, err
		}
		encoded[i] = key
	}

	e := &RowEncoder{writer: w, isArray: isArray, first: true, names: encoded}
	if isArray {
		if _, err := w.Write([]byte{'['}); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Encode writes one row. row must have one cell per column.
func (e *RowEncoder) Encode(row []table.Value) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if e.isArray && !e.first {
		buf.WriteByte(',')
	}
	e.first = false

	buf.WriteByte('{')
	for i, v := range row {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(e.names[i])
		buf.WriteByte(':')
		data, err := gojson.Marshal(cellValue(v))
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	if !e.isArray {
		buf.WriteByte('\n')
	}

	_, err := e.writer.Write(buf.Bytes())
	return err
}

// Close finalizes the encoding
func (e *RowEncoder) Close() error {
	if !e.isArray {
		return nil
	}
	_, err := e.writer.Write([]byte("]\n"))
	return err
}

// cellValue maps a cell to the Go value it is encoded from. Decimals become
// JSON numbers and datetimes use the canonical text form.
func cellValue(v table.Value) interface{} {
	switch v.Kind() {
	case table.KindDecimal:
		d, _ := v.AsDecimal()
		return gojson.Number(d.String())
	case table.KindTime, table.KindBytes:
		return v.String()
	}
	return v.Interface()
}
