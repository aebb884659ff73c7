package table

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabclean/pkg/errors"
)

func TestValueString(t *testing.T) {
	ts := time.Date(2025, 7, 25, 13, 15, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), ""},
		{"text", Text("hola"), "hola"},
		{"int", Int(-42), "-42"},
		{"decimal", Decimal(decimal.RequireFromString("1.50")), "1.5"},
		{"time", Time(ts), "2025-07-25 13:15:00"},
		{"bool", Bool(true), "true"},
		{"bytes", Bytes([]byte("abc")), "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestValueZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
	assert.False(t, Text("").IsNull(), "empty text is a value, not null")
}

func TestValueKey(t *testing.T) {
	assert.Equal(t, Int(1).Key(), Decimal(decimal.RequireFromString("1.0")).Key())
	assert.NotEqual(t, Int(1).Key(), Text("1").Key())
	assert.Equal(t, Null().Key(), Null().Key())
	assert.NotEqual(t, Null().Key(), Text("").Key())
	assert.True(t, Equal(Int(3), Int(3)))
	assert.False(t, Equal(Int(3), Text("3")))
}

func TestCompare(t *testing.T) {
	early := Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := Time(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, -1, Compare(Null(), Int(0)))
	assert.Equal(t, 0, Compare(Null(), Null()))
	assert.Equal(t, -1, Compare(Int(2), Int(10)))
	assert.Equal(t, 1, Compare(Decimal(decimal.RequireFromString("2.5")), Int(2)))
	assert.Equal(t, 0, Compare(Int(2), Decimal(decimal.RequireFromString("2.0"))))
	assert.Equal(t, -1, Compare(early, late))
	assert.Equal(t, -1, Compare(Text("a"), Text("b")))
	assert.Equal(t, -1, Compare(Bool(false), Bool(true)))
}

func TestAddColumn(t *testing.T) {
	tbl := New(2)
	require.NoError(t, tbl.AddColumn("a", TextColumn("x", "y")))

	err := tbl.AddColumn("b", TextColumn("only-one"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))

	err = tbl.AddColumn("a", TextColumn("x", "y"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")

	assert.Equal(t, []string{"a"}, tbl.Names())
	assert.Equal(t, 2, tbl.Rows())
}

func TestWithColumnDoesNotMutateReceiver(t *testing.T) {
	tbl, err := FromColumns([]string{"a", "b"}, []Column{TextColumn("1", "2"), TextColumn("3", "4")})
	require.NoError(t, err)

	replaced, err := tbl.WithColumn("a", TextColumn("x", "y"))
	require.NoError(t, err)
	added, err := tbl.WithColumn("c", NullColumn(2))
	require.NoError(t, err)

	orig, _ := tbl.Column("a")
	assert.Equal(t, "1", orig[0].String())
	assert.False(t, tbl.Has("c"))

	got, _ := replaced.Column("a")
	assert.Equal(t, "x", got[0].String())
	assert.Equal(t, []string{"a", "b"}, replaced.Names())
	assert.Equal(t, []string{"a", "b", "c"}, added.Names())
}

func TestSelectRows(t *testing.T) {
	tbl, err := FromColumns([]string{"k", "v"}, []Column{
		{Int(1), Int(2), Int(3)},
		TextColumn("a", "b", "c"),
	})
	require.NoError(t, err)

	sel := tbl.SelectRows([]int{2, 0})
	assert.Equal(t, 2, sel.Rows())
	assert.Equal(t, []Value{Int(3), Text("c")}, sel.Row(0))
	assert.Equal(t, []Value{Int(1), Text("a")}, sel.Row(1))
	assert.Equal(t, 3, tbl.Rows())
}

func TestNullCounts(t *testing.T) {
	tbl, err := FromColumns([]string{"a", "b"}, []Column{
		{Null(), Text("x"), Null()},
		{Int(1), Int(2), Int(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 0}, tbl.NullCounts())
}

func TestFromRecords(t *testing.T) {
	header := []string{"\ufeffid", "name", "name", "", "name"}
	rows := [][]string{
		{"1", "Ana", "A", "x", "a"},
		{"2", "NA", ""},
		{"3", "Luis", "L", "y", "l", "extra"},
	}

	tbl := FromRecords(header, rows, DefaultRecordOptions())

	assert.Equal(t, []string{"id", "name", "name.1", "Unnamed: 3", "name.2"}, tbl.Names())
	assert.Equal(t, 3, tbl.Rows())

	name, _ := tbl.Column("name")
	assert.True(t, name[1].IsNull(), "NA token reads as null")
	short, _ := tbl.Column("name.2")
	assert.True(t, short[1].IsNull(), "short rows are padded with null")
	assert.Equal(t, "l", short[2].String())
}

func TestFromRecordsWithoutDefaultNA(t *testing.T) {
	opts := RecordOptions{KeepDefaultNA: false, NAValues: []string{"-"}}
	tbl := FromRecords([]string{"a"}, [][]string{{"NA"}, {"-"}, {""}}, opts)

	col, _ := tbl.Column("a")
	assert.Equal(t, Text("NA"), col[0])
	assert.True(t, col[1].IsNull())
	assert.True(t, col[2].IsNull())
}

func TestFromCells(t *testing.T) {
	ts := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)
	rows := [][]Value{
		{Int(1), Time(ts), Text("NA"), Bool(true)},
		{Decimal(decimal.RequireFromString("1234.5")), Null()},
	}

	tbl := FromCells([]string{"n", "fecha", "nota", "ok"}, rows, DefaultRecordOptions())

	require.Equal(t, 2, tbl.Rows())
	n, _ := tbl.Column("n")
	assert.Equal(t, Int(1), n[0])
	assert.Equal(t, KindDecimal, n[1].Kind())
	fecha, _ := tbl.Column("fecha")
	assert.Equal(t, Time(ts), fecha[0])
	assert.True(t, fecha[1].IsNull())
	nota, _ := tbl.Column("nota")
	assert.True(t, nota[0].IsNull(), "text cells still honour null tokens")
	ok, _ := tbl.Column("ok")
	assert.Equal(t, Bool(true), ok[0])
	assert.True(t, ok[1].IsNull(), "short rows are padded with null")
}
