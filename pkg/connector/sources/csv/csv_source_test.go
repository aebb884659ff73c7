package csv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
	"github.com/ajitpratap0/tabclean/pkg/testutil"
)

func read(t *testing.T, cfg config.InputConfig, path string) *table.Table {
	t.Helper()
	src, err := NewCSVSource(cfg, testutil.TestLogger(t))
	require.NoError(t, err)
	tbl, err := src.Read(context.Background(), path)
	require.NoError(t, err)
	return tbl
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		line     string
		expected rune
	}{
		{"a,b,c", ','},
		{"a;b;c", ';'},
		{"a\tb\tc", '\t'},
		{"a|b|c", '|'},
		{`"x;y",b`, ','},
		{"single", ','},
		{"a,b;c", ','},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SniffDelimiter(tt.line), tt.line)
	}
}

func TestReadSemicolonFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "clientes.csv", testutil.CSV(";",
		[]string{"id", "nombre", "cp"},
		[]string{"1", "Ana", "01001"},
		[]string{"2", "NA", ""},
	))

	tbl := read(t, config.InputConfig{}, path)

	assert.Equal(t, []string{"id", "nombre", "cp"}, tbl.Names())
	assert.Equal(t, 2, tbl.Rows())
	nombre, _ := tbl.Column("nombre")
	assert.Equal(t, []string{"Ana", "<nil>"}, testutil.Strings(nombre))
	cp, _ := tbl.Column("cp")
	assert.Equal(t, []string{"01001", "<nil>"}, testutil.Strings(cp))
}

func TestReadRaggedRowsAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "ragged.csv", "a,b,c\n1,2\n\n4,5,6,7\n")

	tbl := read(t, config.InputConfig{}, path)

	assert.Equal(t, 2, tbl.Rows())
	c, _ := tbl.Column("c")
	assert.Equal(t, []string{"<nil>", "6"}, testutil.Strings(c))
}

func TestReadWithTypeInference(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "n.csv", "id,cp\n1,007\n2,010\n")

	tbl := read(t, config.InputConfig{InferTypes: true}, path)

	id, _ := tbl.Column("id")
	assert.Equal(t, testutil.Ints(1, 2), id)
	cp, _ := tbl.Column("cp")
	assert.Equal(t, table.KindText, cp[0].Kind())
}

func TestReadGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("id|name\n1|x\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "data.csv.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	tbl := read(t, config.InputConfig{}, path)
	name, _ := tbl.Column("name")
	assert.Equal(t, []string{"x"}, testutil.Strings(name))
}

func TestReadLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("ciudad\nMálaga\n")
	require.NoError(t, err)
	path := testutil.WriteFile(t, t.TempDir(), "latin.csv", encoded)

	tbl := read(t, config.InputConfig{Encoding: "latin-1"}, path)
	ciudad, _ := tbl.Column("ciudad")
	assert.Equal(t, []string{"Málaga"}, testutil.Strings(ciudad))
}

func TestReadMissingFile(t *testing.T) {
	src, err := NewCSVSource(config.InputConfig{}, nil)
	require.NoError(t, err)

	_, err = src.Read(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestUnknownEncoding(t *testing.T) {
	_, err := NewCSVSource(config.InputConfig{Encoding: "klingon"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestRegistered(t *testing.T) {
	assert.True(t, registry.GetRegistry().HasSource("csv"))

	for _, path := range []string{"a.csv", "A.CSV", "a.csv.gz", "a.txt"} {
		name, ok := registry.SourceForPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, "csv", name, path)
	}
}
