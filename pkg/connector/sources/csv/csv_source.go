// Package csv reads delimited text files, optionally gzip-compressed, into
// tables.
//
// The delimiter is detected from the header line unless configured, the
// character set is converted to UTF-8 on the fly, and the usual spreadsheet
// null tokens become null cells.
package csv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	xtransform "golang.org/x/text/transform"

	"github.com/ajitpratap0/tabclean/pkg/charset"
	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/schema"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// candidateDelimiters are tried, in order of preference, when sniffing.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// sniffWindow bounds how much of the file is inspected to find the header
// line.
const sniffWindow = 64 * 1024

// CSVSource reads CSV files.
type CSVSource struct {
	cfg    config.InputConfig
	logger *zap.Logger
}

// NewCSVSource creates a CSV source. The encoding is checked here so that a
// bad name fails before any file is opened.
func NewCSVSource(cfg config.InputConfig, log *zap.Logger) (core.Source, error) {
	if cfg.Encoding != "" {
		if _, err := charset.Lookup(cfg.Encoding); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CSVSource{
		cfg:    cfg,
		logger: log.With(zap.String("component", "csv_source")),
	}, nil
}

// Read loads the whole file.
func (s *CSVSource) Read(ctx context.Context, path string) (*table.Table, error) {
	file, err := os.Open(path) //nolint:gosec // G304: input paths come from the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open CSV file").
			WithDetail("path", path)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open gzip stream").
				WithDetail("path", path)
		}
		defer gz.Close()
		r = gz
	}

	if s.cfg.Encoding != "" {
		enc, err := charset.Lookup(s.cfg.Encoding)
		if err != nil {
			return nil, err
		}
		if !charset.IsUTF8(enc) {
			r = xtransform.NewReader(r, enc.NewDecoder())
		}
	}

	t, err := s.parse(ctx, bufio.NewReaderSize(r, sniffWindow))
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) {
			return nil, e.WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read CSV file").
			WithDetail("path", path)
	}

	s.logger.Debug("csv file read",
		zap.String("path", path),
		zap.Int("rows", t.Rows()),
		zap.Int("columns", t.Width()))
	return t, nil
}

func (s *CSVSource) parse(ctx context.Context, br *bufio.Reader) (*table.Table, error) {
	delimiter, err := s.delimiter(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return table.New(0), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read header")
	}

	var rows [][]string
	for {
		if len(rows)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read row")
		}
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}

	opts := table.RecordOptions{
		NAValues:      s.cfg.NAValues,
		KeepDefaultNA: s.cfg.KeepDefaultNAValues(),
	}
	t := table.FromRecords(header, rows, opts)
	if s.cfg.InferTypes {
		t = schema.NewTypeInferenceEngine(s.logger).Apply(t)
	}
	return t, nil
}

// delimiter returns the configured delimiter or sniffs one from the first
// line.
func (s *CSVSource) delimiter(br *bufio.Reader) (rune, error) {
	if s.cfg.Delimiter != "" {
		return []rune(s.cfg.Delimiter)[0], nil
	}

	head, err := br.Peek(sniffWindow)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, errors.Wrap(err, errors.ErrorTypeFile, "failed to read header line")
	}
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	return SniffDelimiter(string(head)), nil
}

// SniffDelimiter picks the candidate delimiter occurring most often outside
// quotes in line. Ties go to the earlier candidate; a line with none of them
// is read as comma separated.
func SniffDelimiter(line string) rune {
	counts := make(map[rune]int, len(candidateDelimiters))
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, c := range candidateDelimiters {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
