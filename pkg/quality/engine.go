package quality

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/logger"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// Report summarizes a quality run over one table.
type Report struct {
	RowsTotal             int            `json:"rows_total"`
	DuplicatesFound       int            `json:"duplicates_found"`
	InvalidValuesByColumn map[string]int `json:"invalid_values_by_column"`
	NullCountsByColumn    map[string]int `json:"null_counts_by_column"`
}

type allowedSet struct {
	column string
	values []table.Value
}

// Engine runs the configured quality rules: duplicate resolution first, then
// the allowed-value rules in configured order.
type Engine struct {
	duplicates *config.DuplicateRule
	allowed    []allowedSet
	logger     *zap.Logger
}

// NewEngine prepares the rules of cfg.
func NewEngine(cfg config.QualityConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = logger.Get()
	}
	e := &Engine{
		duplicates: cfg.Duplicates,
		allowed:    make([]allowedSet, 0, len(cfg.AllowedValues)),
		logger:     log.With(zap.String("component", "quality_engine")),
	}
	for _, rule := range cfg.AllowedValues {
		e.allowed = append(e.allowed, allowedSet{column: rule.Column, values: rule.Cells()})
	}
	return e
}

// Run applies the rules to t and returns the resulting table and its report.
// Null counts and the row total describe the returned table. Every
// allowed-value rule appears in the report, with zero when its column is
// missing.
func (e *Engine) Run(ctx context.Context, t *table.Table) (*table.Table, *Report) {
	log := logger.FromContext(ctx, e.logger)
	report := &Report{
		InvalidValuesByColumn: make(map[string]int, len(e.allowed)),
	}

	if d := e.duplicates; d != nil {
		if !t.Has(d.Key) {
			log.Debug("duplicate key column missing, rule skipped", zap.String("key", d.Key))
		} else if d.Action == config.ActionKeepLatest && !t.Has(d.LatestBy) {
			log.Debug("tie-break column missing, duplicates counted but kept",
				zap.String("key", d.Key),
				zap.String("latest_by", d.LatestBy))
		}

		var found int
		t, found = ResolveDuplicates(t, *d)
		report.DuplicatesFound = found
		log.Debug("duplicates resolved",
			zap.String("key", d.Key),
			zap.String("action", string(d.Action)),
			zap.Int("found", found))
	}

	for _, rule := range e.allowed {
		if !t.Has(rule.column) {
			log.Debug("allowed-value column missing, rule skipped", zap.String("column", rule.column))
		}
		var replaced int
		t, replaced = EnforceAllowedValues(t, rule.column, rule.values)
		report.InvalidValuesByColumn[rule.column] = replaced
	}

	report.RowsTotal = t.Rows()
	report.NullCountsByColumn = t.NullCounts()
	return t, report
}
