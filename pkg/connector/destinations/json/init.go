package json

import (
	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination(config.FormatJSON, NewJSONDestination)
	_ = registry.RegisterDestination(config.FormatJSONL, NewJSONLinesDestination)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        config.FormatJSON,
		Type:        core.ConnectorTypeDestination,
		Description: "JSON array of row objects",
		Extensions:  []string{".json.gz", ".json"},
	})
	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        config.FormatJSONL,
		Type:        core.ConnectorTypeDestination,
		Description: "JSON Lines, one row object per line",
		Extensions:  []string{".jsonl.gz", ".jsonl"},
	})
}
