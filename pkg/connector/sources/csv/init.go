package csv

import (
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("csv", NewCSVSource)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "csv",
		Type:        core.ConnectorTypeSource,
		Description: "Delimited text files, plain or gzip-compressed, with delimiter detection",
		Extensions:  []string{".csv.gz", ".csv", ".tsv", ".txt"},
	})
}
