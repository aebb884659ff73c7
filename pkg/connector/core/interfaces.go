// Package core defines the interfaces implemented by tabclean's file
// connectors.
package core

import (
	"context"

	"github.com/ajitpratap0/tabclean/pkg/table"
)

// ConnectorType represents the type of connector
type ConnectorType string

const (
	ConnectorTypeSource      ConnectorType = "source"
	ConnectorTypeDestination ConnectorType = "destination"
)

// Source reads a whole file into a table. Every cell of the result is text
// or null unless the source was asked to infer column types.
type Source interface {
	Read(ctx context.Context, path string) (*table.Table, error)
}

// Destination writes a whole table to a file, replacing any existing file.
type Destination interface {
	Write(ctx context.Context, path string, t *table.Table) error
}
