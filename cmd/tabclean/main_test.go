package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabclean/pkg/testutil"
)

const cliConfig = `
mappings:
  codigo:
    source: Código
    transforms:
      - name: regex_extract
        pattern: 'C-(\d+)'
        as_type: int
  ciudad:
    source: Ciudad
    transforms:
      - normalize_text
output:
  format: csv
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteFile(t, dir, "cfg.yaml", cliConfig)

	out, err := execute(t, "validate", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 columns, output format csv")

	out, err = execute(t, "validate", "-c", cfgPath, "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "suffix: _clean")
	assert.Less(t, bytes.Index([]byte(out), []byte("codigo:")), bytes.Index([]byte(out), []byte("ciudad:")))
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfgPath := testutil.WriteFile(t, t.TempDir(), "cfg.yaml", `
mappings:
  a:
    source: A
    transforms:
      - name: split_by
        delimiter: ","
        index: first
`)
	_, err := execute(t, "validate", "-c", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split_by")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteFile(t, dir, "cfg.yaml", cliConfig)
	input := testutil.WriteFile(t, dir, "datos.csv", "Código;Ciudad\nC-001;Málaga\nX;  SEVILLA\n")
	output := filepath.Join(dir, "out", "limpio.csv")
	reportPath := filepath.Join(dir, "informe.json")
	metricsPath := filepath.Join(dir, "tabclean.prom")

	_, err := execute(t, "run", "-c", cfgPath, "-i", input, "-o", output,
		"--report-format", "json", "--report-file", reportPath, "--metrics-file", metricsPath, "--workers", "1")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "codigo;ciudad\n1;malaga\n;sevilla\n", string(data))

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), `"rows_total": 2`)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "tabclean_files_processed_total{status=\"success\"} 1")
}

func TestRunEnvironmentOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteFile(t, dir, "cfg.yaml", cliConfig)
	input := testutil.WriteFile(t, dir, "datos.csv", "Código,Ciudad\nC-2,Cádiz\n")
	t.Setenv("TABCLEAN_REPORT_FORMAT", "json")

	out, err := execute(t, "run", "-c", cfgPath, "-i", input, "--format", "jsonl")
	require.NoError(t, err)
	assert.Contains(t, out, `"duplicates_found": 0`)

	data, err := os.ReadFile(filepath.Join(dir, "datos_clean.jsonl"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"codigo":2,"ciudad":"cadiz"}`, string(data))
}

func TestRunFailsWhenAFileFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteFile(t, dir, "cfg.yaml", cliConfig)
	broken := testutil.WriteFile(t, dir, "roto.xlsx", "not a workbook")

	_, err := execute(t, "run", "-c", cfgPath, "-i", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files failed")
}

func TestListingCommands(t *testing.T) {
	out, err := execute(t, "transforms")
	require.NoError(t, err)
	for _, name := range []string{"normalize_text", "regex_extract", "to_datetime", "cast_type", "reencode"} {
		assert.Contains(t, out, name)
	}

	out, err = execute(t, "connectors")
	require.NoError(t, err)
	assert.Contains(t, out, ".csv.gz")
	assert.Contains(t, out, "xlsx")
	assert.Contains(t, out, "avro")
	assert.Contains(t, out, "jsonl")
	assert.Less(t, strings.Index(out, "source"), strings.Index(out, "destination"), "sources listed first")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tabclean v"+version)
}
