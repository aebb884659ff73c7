package mapping

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
	"github.com/ajitpratap0/tabclean/pkg/testutil"
	"github.com/ajitpratap0/tabclean/pkg/transform"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustParse(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

const productConfig = `
mappings:
  producto:
    source: Producto
    transforms:
      - name: normalize_text
      - name: remove_pattern
        pattern: '\bref\s*\d+'
  codigo:
    source: Producto
    transforms:
      - name: regex_extract
        pattern: 'ref\s*(\d+)'
        as_type: int
  ausente:
    source: NoExiste
    transforms:
      - trim
  categoria:
    source: Ruta
    transforms:
      - split_by_rest
`

func sourceTable(t *testing.T) *table.Table {
	return testutil.Table(t,
		"Producto", table.Column{table.Text("  Café  Molido REF 0042 "), table.Null(), table.Text("Té verde")},
		"Ruta", table.TextColumn("Hogar > Cocina > Café > Molido", "Hogar", "Bebidas>Té>Verde"),
		"Ignorada", table.TextColumn("x", "y", "z"),
	)
}

func TestEngineApply(t *testing.T) {
	cfg := mustParse(t, productConfig)
	engine, err := Compile(cfg.Mappings, Options{Workers: 2, Logger: testutil.TestLogger(t)})
	require.NoError(t, err)

	in := sourceTable(t)
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	out, err := engine.Apply(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, []string{"producto", "codigo", "ausente", "categoria"}, out.Names())
	assert.Equal(t, in.Rows(), out.Rows())

	producto, _ := out.Column("producto")
	assert.Equal(t, []string{"cafe molido", "<nil>", "te verde"}, testutil.Strings(producto))

	codigo, _ := out.Column("codigo")
	assert.Equal(t, table.Column{table.Int(42), table.Null(), table.Null()}, codigo)

	ausente, _ := out.Column("ausente")
	assert.Equal(t, table.NullColumn(3), ausente)

	categoria, _ := out.Column("categoria")
	assert.Equal(t, []string{"Café > Molido", "<nil>", "Verde"}, testutil.Strings(categoria))
}

func TestEngineLeavesInputUntouched(t *testing.T) {
	cfg := mustParse(t, productConfig+`
  copia:
    source: Ignorada
`)
	engine, err := Compile(cfg.Mappings, Options{Logger: testutil.TestLogger(t)})
	require.NoError(t, err)

	in := sourceTable(t)
	before := in.Clone()

	out, err := engine.Apply(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, before, in)

	// A chain without steps copies its source.
	copia, _ := out.Column("copia")
	copia[0] = table.Text("changed")
	orig, _ := in.Column("Ignorada")
	assert.Equal(t, table.Text("x"), orig[0])
}

func TestEngineOrderIsDeclarationOrder(t *testing.T) {
	doc := "mappings:\n"
	var want []string
	for i := 30; i > 0; i-- {
		target := fmt.Sprintf("col_%02d", i)
		want = append(want, target)
		doc += fmt.Sprintf("  %s:\n    source: src\n    transforms: [normalize_text]\n", target)
	}
	cfg := mustParse(t, doc)

	engine, err := Compile(cfg.Mappings, Options{Workers: 4, Logger: testutil.TestLogger(t)})
	require.NoError(t, err)

	out, err := engine.Apply(context.Background(), testutil.Table(t, "src", table.TextColumn(" A ", "B")))
	require.NoError(t, err)
	assert.Equal(t, want, out.Names())
	for _, name := range want {
		col, _ := out.Column(name)
		assert.Equal(t, []string{"a", "b"}, testutil.Strings(col))
	}
}

func TestEngineZeroRows(t *testing.T) {
	cfg := mustParse(t, productConfig)
	engine, err := Compile(cfg.Mappings, Options{Logger: testutil.TestLogger(t)})
	require.NoError(t, err)

	out, err := engine.Apply(context.Background(), table.New(0))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rows())
	assert.Equal(t, 4, out.Width())
}

func TestCompileUnknownTransform(t *testing.T) {
	mappings := config.Mappings{
		{Target: "a", Source: "A", Transforms: []config.TransformSpec{{Name: "trim"}, {Name: "titlecase"}}},
	}
	_, err := Compile(mappings, Options{Logger: testutil.TestLogger(t)})
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
	assert.Contains(t, err.Error(), "mapping a: step 2")

	var unknown *transform.UnknownTransformError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "titlecase", unknown.Name)
}

func TestCompileBadParameter(t *testing.T) {
	mappings := config.Mappings{
		{Target: "a", Source: "A", Transforms: []config.TransformSpec{
			{Name: "split_by", Params: transform.Params{"idx": 1}},
		}},
	}
	_, err := Compile(mappings, Options{Logger: testutil.TestLogger(t)})
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
	assert.Contains(t, err.Error(), "unknown parameters [idx]")
}

func TestEngineCancelled(t *testing.T) {
	cfg := mustParse(t, productConfig)
	engine, err := Compile(cfg.Mappings, Options{Workers: 1, Logger: testutil.TestLogger(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Apply(ctx, sourceTable(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineObserve(t *testing.T) {
	cfg := mustParse(t, productConfig)

	var mu sync.Mutex
	calls := map[string]int{}
	engine, err := Compile(cfg.Mappings, Options{
		Logger: testutil.TestLogger(t),
		Observe: func(name string, elapsed time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			calls[name]++
			assert.GreaterOrEqual(t, elapsed, time.Duration(0))
		},
	})
	require.NoError(t, err)

	_, err = engine.Apply(context.Background(), sourceTable(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"normalize_text": 1,
		"remove_pattern": 1,
		"regex_extract":  1,
		"trim":           1,
		"split_by_rest":  1,
	}, calls)
}

func TestChainSteps(t *testing.T) {
	chain, err := NewChain(config.Mapping{
		Target: "x",
		Source: "X",
		Transforms: []config.TransformSpec{
			{Name: "trim"},
			{Name: "cast_type", Params: transform.Params{"to": "int"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"trim", "cast_type"}, chain.Steps())

	out := chain.Apply(table.TextColumn(" 7 ", "x"), nil)
	assert.Equal(t, table.Column{table.Int(7), table.Null()}, out)
}
