package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// requiredParams holds the minimum options each transform needs to build.
var requiredParams = map[string]Params{
	"remove_pattern": {"pattern": `\d+`},
	"regex_extract":  {"pattern": `(\d+)`},
}

func mustBuild(t *testing.T, name string, params Params) Transform {
	t.Helper()
	tr, err := Build(name, params)
	require.NoError(t, err)
	require.Equal(t, name, tr.Name())
	return tr
}

func apply(t *testing.T, name string, params Params, cells ...table.Value) table.Column {
	t.Helper()
	return mustBuild(t, name, params).Apply(table.Column(cells))
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, []string{
		"cast_type", "normalize_text", "reencode", "regex_extract", "remove_pattern",
		"split_by", "split_by_rest", "strip_leading_zeros", "to_datetime", "to_isoformat", "trim",
	}, Names())

	info, ok := Describe("split_by_rest")
	require.True(t, ok)
	assert.Equal(t, []string{"delimiter", "start_index", "join_with"}, info.Params)
	assert.NotEmpty(t, info.Summary)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("upper_case")
	var unknown *UnknownTransformError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "upper_case", unknown.Name)

	_, err = Build("upper_case", nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
	require.ErrorAs(t, err, &unknown)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register("trim", newTrim)
	})
}

func TestBuildRejectsBadParams(t *testing.T) {
	tests := []struct {
		name      string
		transform string
		params    Params
		contains  string
	}{
		{"unknown key", "trim", Params{"both": true}, "unknown parameters [both]"},
		{"wrong type", "normalize_text", Params{"lowercase": "yes"}, "want a boolean"},
		{"missing pattern", "remove_pattern", nil, "pattern: is required"},
		{"invalid regex", "remove_pattern", Params{"pattern": "(unclosed"}, "invalid pattern"},
		{"lookahead unsupported", "regex_extract", Params{"pattern": `a(?=b)`}, "invalid pattern"},
		{"bad as_type", "regex_extract", Params{"pattern": "(a)", "as_type": "float"}, "as_type"},
		{"fractional index", "split_by", Params{"index": 1.5}, "want an integer"},
		{"empty delimiter", "split_by", Params{"delimiter": ""}, "delimiter must not be empty"},
		{"negative start", "split_by_rest", Params{"start_index": -1}, "must not be negative"},
		{"cast target", "cast_type", Params{"to": "datetime"}, "unsupported target type"},
		{"unknown encoding", "reencode", Params{"from_enc": "klingon-8"}, "unknown encoding"},
		{"unsupported directive", "to_datetime", Params{"format": "%Y-%Q"}, "unsupported directive"},
		{"literal digits", "to_datetime", Params{"format": "%Y-01-%d"}, "literal digits"},
		{"dangling percent", "to_datetime", Params{"format": "%Y%"}, "lone %"},
		{"misplaced fraction", "to_datetime", Params{"format": "%S%f"}, "%f must follow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.transform, tt.params)
			require.Error(t, err)
			assert.True(t, errors.IsConfig(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestNullPassesThroughEveryTransform(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			out := apply(t, name, requiredParams[name], table.Null(), table.Null())
			require.Len(t, out, 2)
			assert.True(t, out[0].IsNull())
			assert.True(t, out[1].IsNull())
		})
	}
}

func TestTransformsKeepLengthAndInput(t *testing.T) {
	in := table.Column{table.Text(" A > b "), table.Null(), table.Int(7), table.Text("")}
	snapshot := in.Clone()

	for _, name := range Names() {
		out := apply(t, name, requiredParams[name], in...)
		assert.Len(t, out, len(in), name)
	}
	assert.Equal(t, snapshot, in)
}

func TestNormalizeText(t *testing.T) {
	out := apply(t, "normalize_text", nil,
		table.Text(" Héllo  Wörld "),
		table.Text("ÁRBOL\tÑandú"),
		table.Int(42),
	)
	assert.Equal(t, table.Text("hello world"), out[0])
	assert.Equal(t, table.Text("arbol nandu"), out[1])
	assert.Equal(t, table.Text("42"), out[2])

	keepCase := apply(t, "normalize_text", Params{"lowercase": false, "strip_accents": false}, table.Text("  Café   Olé "))
	assert.Equal(t, table.Text("Café Olé"), keepCase[0])

	noTrim := apply(t, "normalize_text", Params{"trim": false}, table.Text("  A  B "))
	assert.Equal(t, table.Text("  a  b "), noTrim[0])
}

func TestNormalizeTextIsIdempotent(t *testing.T) {
	inputs := []string{" Héllo  Wörld ", "é ́ x", "  ÇA   va\n", "ǅemal", ""}
	tr := mustBuild(t, "normalize_text", nil)

	for _, s := range inputs {
		once := tr.Apply(table.Column{table.Text(s)})
		twice := tr.Apply(once)
		assert.Equal(t, once, twice, "input %q", s)
	}
}

func TestRemovePattern(t *testing.T) {
	out := apply(t, "remove_pattern", Params{"pattern": `\d+`}, table.Text("abc123def"))
	assert.Equal(t, table.Text("abcdef"), out[0])

	out = apply(t, "remove_pattern", Params{"pattern": "codigo"}, table.Text("  CODIGO  producto  Codigo x "))
	assert.Equal(t, table.Text("producto x"), out[0])
}

func TestRegexExtract(t *testing.T) {
	out := apply(t, "regex_extract", Params{"pattern": `(\d+)`, "as_type": "int"},
		table.Text("foo123bar"), table.Text("no digits"))
	assert.Equal(t, table.Int(123), out[0])
	assert.True(t, out[1].IsNull())

	out = apply(t, "regex_extract", Params{"pattern": `(\d+)`}, table.Text("no digits"), table.Text("a7b8"))
	assert.True(t, out[0].IsNull())
	assert.Equal(t, table.Text("7"), out[1])
}

func TestRegexExtractGroups(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		in     string
		want   table.Value
	}{
		{"case insensitive", Params{"pattern": `SKU-(\w+)`}, "sku-ab12", table.Text("ab12")},
		{"group zero", Params{"pattern": `\d+`, "group": 0}, "x42y", table.Text("42")},
		{"named group", Params{"pattern": `(?P<code>\d{3})`, "group": "code"}, "id 555", table.Text("555")},
		{"unknown name", Params{"pattern": `(?P<code>\d{3})`, "group": "zip"}, "id 555", table.Null()},
		{"group out of range", Params{"pattern": `(\d)`, "group": 3}, "1", table.Null()},
		{"group did not participate", Params{"pattern": `(a)|(b)`, "group": 1}, "b", table.Null()},
		{"int coercion fails", Params{"pattern": `(\w+)`, "as_type": "int"}, "abc", table.Null()},
		{"no match on empty text", Params{"pattern": `(\d+)`, "as_type": "integer"}, "", table.Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := apply(t, "regex_extract", tt.params, table.Text(tt.in))
			assert.Equal(t, tt.want, out[0])
		})
	}

	out := apply(t, "regex_extract", Params{"pattern": `(\d+)`, "as_type": "int"}, table.Int(2024))
	assert.Equal(t, table.Int(2024), out[0])
}

func TestToDatetimeWithFormat(t *testing.T) {
	out := apply(t, "to_datetime", Params{"format": "%d/%m/%Y"},
		table.Text("25/07/2025"),
		table.Text("5/7/2025"),
		table.Text("2025-07-25"),
	)
	assert.Equal(t, table.Time(time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)), out[0])
	assert.Equal(t, table.Time(time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)), out[1])
	assert.True(t, out[2].IsNull())

	out = apply(t, "to_datetime", Params{"format": "%Y-%m-%dT%H:%M:%S.%f"}, table.Text("2025-07-25T13:15:00.250"))
	ts, ok := out[0].AsTime()
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, time.Duration(ts.Nanosecond()))

	out = apply(t, "to_datetime", Params{"format": "%d de %B de %Y"}, table.Text("3 de March de 2024"))
	assert.Equal(t, table.Time(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)), out[0])
}

func TestToDatetimeInference(t *testing.T) {
	want := time.Date(2025, 7, 25, 13, 15, 0, 0, time.UTC)
	already := table.Time(want)

	out := apply(t, "to_datetime", nil,
		table.Text("2025-07-25 13:15:00"),
		table.Text("2025-07-25T13:15:00Z"),
		table.Text("07/25/2025 13:15"),
		table.Text("25/07/2025"),
		table.Text("no es fecha"),
		already,
	)
	assert.Equal(t, table.Time(want), out[0])
	assert.True(t, want.Equal(mustTime(t, out[1])))
	assert.Equal(t, table.Time(want), out[2])
	assert.Equal(t, table.Time(time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)), out[3])
	assert.True(t, out[4].IsNull())
	assert.Equal(t, already, out[5])
}

func mustTime(t *testing.T, v table.Value) time.Time {
	t.Helper()
	ts, ok := v.AsTime()
	require.True(t, ok, "want datetime, got %s", v.Kind())
	return ts
}

func TestToISOFormat(t *testing.T) {
	out := apply(t, "to_isoformat", nil,
		table.Time(time.Date(2025, 7, 25, 9, 5, 3, 0, time.UTC)),
		table.Text("2025-07-25"),
	)
	assert.Equal(t, table.Text("2025-07-25 09:05:03"), out[0])
	assert.True(t, out[1].IsNull())
}

func TestTrim(t *testing.T) {
	out := apply(t, "trim", nil, table.Text("  a  b \n"), table.Int(3))
	assert.Equal(t, table.Text("a  b"), out[0])
	assert.Equal(t, table.Text("3"), out[1])
}

func TestCastType(t *testing.T) {
	ints := apply(t, "cast_type", Params{"to": "int"},
		table.Text(" 42 "), table.Text("4.0"), table.Text("4.5"), table.Text("abc"), table.Bool(true),
		table.Text("99999999999999999999"),
	)
	assert.Equal(t, table.Int(42), ints[0])
	assert.Equal(t, table.Int(4), ints[1])
	assert.True(t, ints[2].IsNull())
	assert.True(t, ints[3].IsNull())
	assert.Equal(t, table.Int(1), ints[4])
	assert.True(t, ints[5].IsNull())

	decs := apply(t, "cast_type", Params{"to": "float"}, table.Text("1.50"), table.Int(3), table.Text("n/a"))
	assert.Equal(t, table.KindDecimal, decs[0].Kind())
	assert.Equal(t, "1.5", decs[0].String())
	assert.Equal(t, "3", decs[1].String())
	assert.True(t, decs[2].IsNull())

	texts := apply(t, "cast_type", nil, table.Int(5), table.Text("x"))
	assert.Equal(t, table.Text("5"), texts[0])
	assert.Equal(t, table.Text("x"), texts[1])
}

func TestStripLeadingZeros(t *testing.T) {
	out := apply(t, "strip_leading_zeros", nil,
		table.Text("000123"), table.Text("0000"), table.Text("0a1"), table.Text(" 01"), table.Int(0), table.Text(""),
	)
	assert.Equal(t, table.Text("123"), out[0])
	assert.Equal(t, table.Text("0"), out[1])
	assert.Equal(t, table.Text("0a1"), out[2])
	assert.Equal(t, table.Text(" 01"), out[3])
	assert.Equal(t, table.Text("0"), out[4])
	assert.Equal(t, table.Text(""), out[5])
}

func TestSplitBy(t *testing.T) {
	in := []table.Value{table.Text("Hogar > Cocina > Ollas"), table.Text("solo")}

	first := apply(t, "split_by", nil, in...)
	assert.Equal(t, table.Text("Hogar"), first[0])
	assert.Equal(t, table.Text("solo"), first[1])

	second := apply(t, "split_by", Params{"index": 1}, in...)
	assert.Equal(t, table.Text("Cocina"), second[0])
	assert.True(t, second[1].IsNull())

	last := apply(t, "split_by", Params{"index": -1}, in...)
	assert.Equal(t, table.Text("Ollas"), last[0])
	assert.Equal(t, table.Text("solo"), last[1])

	far := apply(t, "split_by", Params{"index": -4}, in...)
	assert.True(t, far[0].IsNull())

	pipes := apply(t, "split_by", Params{"delimiter": "|", "index": 1}, table.Text("a| b |c"))
	assert.Equal(t, table.Text("b"), pipes[0])
}

func TestSplitByRest(t *testing.T) {
	out := apply(t, "split_by_rest", nil, table.Text("a>b>c>d"), table.Text("onlyone"), table.Text("a > b"))
	assert.Equal(t, table.Text("c > d"), out[0])
	assert.True(t, out[1].IsNull())
	assert.True(t, out[2].IsNull(), "segments equal to start_index give null")

	custom := apply(t, "split_by_rest", Params{"delimiter": "/", "start_index": 1, "join_with": "-"}, table.Text("x/ y /z"))
	assert.Equal(t, table.Text("y-z"), custom[0])
}

func TestReencode(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	raw, err := enc.Bytes([]byte("héllo"))
	require.NoError(t, err)

	out := apply(t, "reencode", nil, table.Bytes(raw), table.Text("plain"))
	assert.Equal(t, table.Text("héllo"), out[0])
	assert.Equal(t, table.Text("plain"), out[1])

	latin := apply(t, "reencode", Params{"from_enc": "utf-8", "to_enc": "latin-1"}, table.Text("café 日本"))
	assert.Equal(t, table.Text("café "), latin[0])

	invalid := apply(t, "reencode", Params{"from_enc": "utf-8"}, table.Bytes([]byte("ok\xffok")))
	assert.Equal(t, table.Text("okok"), invalid[0])
}
