package config

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/transform"
)

// Config is a complete pipeline definition: where the data comes from, how
// each output column is derived, which quality rules apply and where the
// result goes.
type Config struct {
	// InputFiles lists files or directories processed in batch mode.
	InputFiles []string `yaml:"input_files" json:"input_files"`

	Input InputConfig `yaml:"input" json:"input"`

	// Mappings define the output columns in output order.
	Mappings Mappings `yaml:"mappings" json:"mappings"`

	Quality QualityConfig `yaml:"quality" json:"quality"`

	Output OutputConfig `yaml:"output" json:"output"`
}

// Mapping derives one output column from one source column.
type Mapping struct {
	Target     string          `json:"target"`
	Source     string          `yaml:"source" json:"source"`
	Transforms []TransformSpec `yaml:"transforms" json:"transforms"`
}

// TransformSpec names a catalog transform and its parameters.
type TransformSpec struct {
	Name   string           `json:"name"`
	Params transform.Params `json:"params,omitempty"`
}

// QualityConfig holds the data-quality rules applied after mapping.
type QualityConfig struct {
	Duplicates    *DuplicateRule `yaml:"duplicates" json:"duplicates,omitempty"`
	AllowedValues AllowedValues  `yaml:"allowed_values" json:"allowed_values,omitempty"`
}

// DuplicateAction selects how repeated keys are resolved.
type DuplicateAction string

const (
	// ActionKeepLatest keeps the row with the greatest tie-break value per key.
	ActionKeepLatest DuplicateAction = "keep_latest"
	// ActionDrop keeps the first row per key.
	ActionDrop DuplicateAction = "drop"
	// ActionMark keeps every row and flags the repeats.
	ActionMark DuplicateAction = "mark"
)

// DefaultMarkColumn is the flag column added by the mark action.
const DefaultMarkColumn = "duplicado"

// DuplicateRule configures duplicate resolution.
type DuplicateRule struct {
	Key        string          `yaml:"key" json:"key"`
	Action     DuplicateAction `yaml:"action" json:"action"`
	LatestBy   string          `yaml:"latest_by" json:"latest_by,omitempty"`
	MarkColumn string          `yaml:"mark_column" json:"mark_column,omitempty"`
}

// AllowedRule restricts a column to a closed vocabulary. Values keep the
// scalar types the YAML decoder produced.
type AllowedRule struct {
	Column string        `json:"column"`
	Values []interface{} `json:"values"`
}

// ApplyDefaults fills unset options with their defaults.
func (c *Config) ApplyDefaults() {
	c.Input.applyDefaults()
	c.Output.applyDefaults()
	if d := c.Quality.Duplicates; d != nil && d.MarkColumn == "" {
		d.MarkColumn = DefaultMarkColumn
	}
}

// Validate checks the structure of the config. Transform parameters are
// checked when the mappings are compiled.
func (c *Config) Validate() error {
	if len(c.Mappings) == 0 {
		return errors.New(errors.ErrorTypeConfig, "no mappings defined")
	}

	seen := make(map[string]struct{}, len(c.Mappings))
	for _, m := range c.Mappings {
		if strings.TrimSpace(m.Target) == "" {
			return errors.New(errors.ErrorTypeConfig, "mapping with empty target column")
		}
		if _, dup := seen[m.Target]; dup {
			return errors.Newf(errors.ErrorTypeConfig, "target column %q mapped twice", m.Target).
				WithDetail("target", m.Target)
		}
		seen[m.Target] = struct{}{}

		if m.Source == "" {
			return errors.Newf(errors.ErrorTypeConfig, "mapping %q has no source column", m.Target).
				WithDetail("target", m.Target)
		}
		for i, t := range m.Transforms {
			if t.Name == "" {
				return errors.Newf(errors.ErrorTypeConfig, "mapping %q: transform %d has no name", m.Target, i).
					WithDetail("target", m.Target)
			}
		}
	}

	if err := c.Quality.validate(); err != nil {
		return err
	}
	if err := c.Input.validate(); err != nil {
		return err
	}
	return c.Output.validate()
}

func (q *QualityConfig) validate() error {
	if d := q.Duplicates; d != nil {
		if d.Key == "" {
			return errors.New(errors.ErrorTypeConfig, "duplicates: key is required")
		}
		switch d.Action {
		case ActionKeepLatest, ActionDrop, ActionMark:
		default:
			return errors.Newf(errors.ErrorTypeConfig, "unknown duplicate action %q", d.Action).
				WithDetail("action", string(d.Action))
		}
	}

	seen := make(map[string]struct{}, len(q.AllowedValues))
	for _, rule := range q.AllowedValues {
		if _, dup := seen[rule.Column]; dup {
			return errors.Newf(errors.ErrorTypeConfig, "allowed_values: column %q listed twice", rule.Column)
		}
		seen[rule.Column] = struct{}{}
		for _, v := range rule.Values {
			if _, err := cellFromScalar(v); err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("allowed_values: column %s", rule.Column))
			}
		}
	}
	return nil
}

// Targets returns the output column names in order.
func (c *Config) Targets() []string {
	names := make([]string, len(c.Mappings))
	for i, m := range c.Mappings {
		names[i] = m.Target
	}
	return names
}
