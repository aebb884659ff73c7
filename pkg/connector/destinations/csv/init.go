package csv

import (
	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination(config.FormatCSV, NewCSVDestination)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        config.FormatCSV,
		Type:        core.ConnectorTypeDestination,
		Description: "Delimited text output, semicolon separated unless configured",
		Extensions:  []string{".csv.gz", ".csv.zst", ".csv"},
	})
}
