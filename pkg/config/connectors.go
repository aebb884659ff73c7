package config

import (
	"strings"
	"unicode/utf8"

	"github.com/ajitpratap0/tabclean/pkg/errors"
)

// Output formats.
const (
	FormatXLSX  = "xlsx"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatAvro  = "avro"
)

// InputConfig controls how input files are read.
type InputConfig struct {
	// Delimiter of CSV input. Empty means detect it from the header line.
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// Encoding is the character set of CSV input.
	Encoding string `yaml:"encoding" json:"encoding"`
	// Sheet of XLSX input. Empty means the first sheet.
	Sheet string `yaml:"sheet" json:"sheet"`
	// NAValues are extra cell texts read as null.
	NAValues []string `yaml:"na_values" json:"na_values"`
	// KeepDefaultNA also treats the usual spreadsheet null tokens as null.
	KeepDefaultNA *bool `yaml:"keep_default_na" json:"keep_default_na"`
	// InferTypes converts all-integer and all-decimal columns on read.
	InferTypes bool `yaml:"infer_types" json:"infer_types"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Format string `yaml:"format" json:"format"`
	// FileName is the output path of a single-input run.
	FileName string `yaml:"file_name" json:"file_name"`
	// Dir receives batch outputs. Empty means next to each input.
	Dir string `yaml:"dir" json:"dir"`
	// Suffix is appended to the input stem in batch mode.
	Suffix    string `yaml:"suffix" json:"suffix"`
	SheetName string `yaml:"sheet_name" json:"sheet_name"`
	// Delimiter of CSV output.
	Delimiter string `yaml:"delimiter" json:"delimiter"`
}

func (c *InputConfig) applyDefaults() {
	if c.Encoding == "" {
		c.Encoding = "utf-8"
	}
	if c.KeepDefaultNA == nil {
		keep := true
		c.KeepDefaultNA = &keep
	}
}

// KeepDefaultNAValues reports whether the default null tokens apply.
func (c *InputConfig) KeepDefaultNAValues() bool {
	return c.KeepDefaultNA == nil || *c.KeepDefaultNA
}

func (c *InputConfig) validate() error {
	if len([]rune(c.Delimiter)) > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "input delimiter %q must be a single character", c.Delimiter)
	}
	return nil
}

func (c *OutputConfig) applyDefaults() {
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = FormatXLSX
	}
	if c.Suffix == "" {
		c.Suffix = "_clean"
	}
	if c.SheetName == "" {
		c.SheetName = "Sheet1"
	}
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
}

func (c *OutputConfig) validate() error {
	switch c.Format {
	case FormatXLSX, FormatCSV, FormatJSON, FormatJSONL, FormatAvro:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported output format %q", c.Format).
			WithDetail("format", c.Format)
	}
	if len([]rune(c.Delimiter)) != 1 {
		return errors.Newf(errors.ErrorTypeConfig, "output delimiter %q must be a single character", c.Delimiter)
	}
	return ValidateSheetName(c.SheetName)
}

// ValidateSheetName checks the worksheet naming rules of Excel: 1 to 31
// characters, none of :\/?*[] and no leading or trailing apostrophe.
func ValidateSheetName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > 31 || strings.ContainsAny(name, `:\/?*[]`) ||
		strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return errors.Newf(errors.ErrorTypeConfig, "invalid sheet name %q", name).
			WithDetail("sheet", name)
	}
	return nil
}

// Extension returns the file extension of the output format, with the dot.
func (c *OutputConfig) Extension() string {
	return "." + c.Format
}
