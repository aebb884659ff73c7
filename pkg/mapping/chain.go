// Package mapping turns a source table into the output schema by running
// each configured transform chain over its source column.
package mapping

import (
	"fmt"
	"time"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
	"github.com/ajitpratap0/tabclean/pkg/transform"
)

// Chain is a compiled mapping rule: one output column computed from one
// source column by an ordered list of transforms.
type Chain struct {
	Target string
	Source string
	steps  []transform.Transform
}

// NewChain builds every transform of rule. Any problem is a configuration
// error naming the target column.
func NewChain(rule config.Mapping) (*Chain, error) {
	c := &Chain{
		Target: rule.Target,
		Source: rule.Source,
		steps:  make([]transform.Transform, 0, len(rule.Transforms)),
	}
	for i, spec := range rule.Transforms {
		t, err := transform.Build(spec.Name, spec.Params)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("mapping %s: step %d", rule.Target, i+1)).
				WithDetail("target", rule.Target).
				WithDetail("transform", spec.Name)
		}
		c.steps = append(c.steps, t)
	}
	return c, nil
}

// Steps returns the names of the chain's transforms in order.
func (c *Chain) Steps() []string {
	names := make([]string, len(c.steps))
	for i, t := range c.steps {
		names[i] = t.Name()
	}
	return names
}

// Apply runs the transforms left to right. observe, when not nil, receives
// the time spent in each step.
func (c *Chain) Apply(col table.Column, observe func(step string, elapsed time.Duration)) table.Column {
	for _, t := range c.steps {
		start := time.Now()
		col = t.Apply(col)
		if observe != nil {
			observe(t.Name(), time.Since(start))
		}
	}
	return col
}
