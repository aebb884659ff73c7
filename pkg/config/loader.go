package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tabclean/pkg/errors"
)

// Load reads a pipeline config from a YAML file, substituting ${VAR}
// references from the environment, applying defaults and validating it.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file").
			WithDetail("path", filePath)
	}

	cfg, err := Parse(data)
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) {
			e.WithDetail("path", filePath)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a pipeline config from YAML. Unknown top-level fields are
// rejected.
func Parse(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(content)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		if errors.IsConfig(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes a config as YAML, keeping mapping order.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to marshal YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to marshal YAML")
	}
	return buf.Bytes(), nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// ${VAR_NAME:-default} falls back to default when the variable is unset or
// empty.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		expr := content[start+2 : end]
		name, def, hasDefault := strings.Cut(expr, ":-")
		value := os.Getenv(name)
		if value == "" && hasDefault {
			value = def
		}
		b.WriteString(content[:start])
		b.WriteString(value)
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
