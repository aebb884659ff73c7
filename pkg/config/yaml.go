package config

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
	"github.com/ajitpratap0/tabclean/pkg/transform"
)

// Mappings keeps the declaration order of the YAML mapping it is read from.
type Mappings []Mapping

// UnmarshalYAML decodes a target → rule mapping in document order.
func (m *Mappings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nodeError(node, "mappings must be a mapping of target column to rule")
	}

	out := make(Mappings, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if valueNode.Kind != yaml.MappingNode {
			return nodeError(valueNode, fmt.Sprintf("mapping %s must be a mapping with source and transforms", keyNode.Value))
		}
		for j := 0; j+1 < len(valueNode.Content); j += 2 {
			switch k := valueNode.Content[j].Value; k {
			case "source", "transforms":
			default:
				return nodeError(valueNode.Content[j], fmt.Sprintf("mapping %s: unknown field %q", keyNode.Value, k))
			}
		}

		var rule struct {
			Source     string          `yaml:"source"`
			Transforms []TransformSpec `yaml:"transforms"`
		}
		if err := valueNode.Decode(&rule); err != nil {
			return fmt.Errorf("mapping %s: %w", keyNode.Value, err)
		}
		out = append(out, Mapping{
			Target:     keyNode.Value,
			Source:     rule.Source,
			Transforms: rule.Transforms,
		})
	}
	*m = out
	return nil
}

// UnmarshalYAML accepts either a bare transform name or a mapping holding
// "name" plus the transform's parameters.
func (t *TransformSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.Name = node.Value
		return nil
	case yaml.MappingNode:
	default:
		return nodeError(node, "transform must be a name or a mapping")
	}

	t.Params = make(transform.Params)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if key == "name" {
			t.Name = value.Value
			continue
		}
		var v interface{}
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("transform parameter %s: %w", key, err)
		}
		t.Params[key] = v
	}
	if len(t.Params) == 0 {
		t.Params = nil
	}
	return nil
}

// AllowedValues keeps the declaration order of the YAML mapping it is read
// from.
type AllowedValues []AllowedRule

// UnmarshalYAML decodes a column → values mapping in document order.
func (a *AllowedValues) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nodeError(node, "allowed_values must be a mapping of column to values")
	}

	out := make(AllowedValues, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var values []interface{}
		if err := valueNode.Decode(&values); err != nil {
			return fmt.Errorf("allowed_values %s: %w", keyNode.Value, err)
		}
		out = append(out, AllowedRule{Column: keyNode.Value, Values: values})
	}
	*a = out
	return nil
}

func nodeError(node *yaml.Node, msg string) error {
	return errors.New(errors.ErrorTypeConfig, msg).
		WithDetail("line", node.Line).
		WithDetail("column", node.Column)
}

// Cells returns the allowed values as table cells.
func (r AllowedRule) Cells() []table.Value {
	cells := make([]table.Value, 0, len(r.Values))
	for _, v := range r.Values {
		// Validate has already rejected unsupported values.
		if c, err := cellFromScalar(v); err == nil {
			cells = append(cells, c)
		}
	}
	return cells
}

// cellFromScalar converts a decoded YAML scalar to a cell, so that numbers
// in the config match numeric cells and strings match text.
func cellFromScalar(v interface{}) (table.Value, error) {
	switch x := v.(type) {
	case nil:
		return table.Null(), nil
	case string:
		return table.Text(x), nil
	case bool:
		return table.Bool(x), nil
	case int:
		return table.Int(int64(x)), nil
	case int64:
		return table.Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return table.Decimal(decimal.RequireFromString(fmt.Sprint(x))), nil
		}
		return table.Int(int64(x)), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return table.Value{}, errors.Newf(errors.ErrorTypeConfig, "unsupported value %v", x)
		}
		return table.Decimal(decimal.NewFromFloat(x)), nil
	case time.Time:
		return table.Time(x), nil
	}
	return table.Value{}, errors.Newf(errors.ErrorTypeConfig, "unsupported value %v of type %T", v, v)
}

// MarshalYAML encodes the mappings as a target → rule mapping.
func (m Mappings) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, mapping := range m {
		rule := struct {
			Source     string          `yaml:"source"`
			Transforms []TransformSpec `yaml:"transforms,omitempty"`
		}{mapping.Source, mapping.Transforms}

		var value yaml.Node
		if err := value.Encode(rule); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalarNode(mapping.Target), &value)
	}
	return node, nil
}

// MarshalYAML encodes the spec as a mapping with "name" first.
func (t TransformSpec) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	node.Content = append(node.Content, scalarNode("name"), scalarNode(t.Name))

	keys := make([]string, 0, len(t.Params))
	for k := range t.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var value yaml.Node
		if err := value.Encode(t.Params[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalarNode(k), &value)
	}
	return node, nil
}

// MarshalYAML encodes the rules as a column → values mapping.
func (a AllowedValues) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, rule := range a {
		var value yaml.Node
		if err := value.Encode(rule.Values); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalarNode(rule.Column), &value)
	}
	return node, nil
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
