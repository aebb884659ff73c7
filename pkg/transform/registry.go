// Package transform holds the catalog of column transforms that mapping
// rules chain together.
//
// Every transform maps a column to a new column of the same length, cell by
// cell. Null cells pass through unchanged and a cell that cannot be converted
// becomes null; transforms never fail at run time. Configuration problems,
// such as an unknown name or an invalid regular expression, are reported by
// Build before any data is touched.
//
// The catalog is filled by this package's init functions and is read-only
// afterwards.
package transform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// Transform applies one column operation.
type Transform interface {
	// Name returns the catalog name of the transform.
	Name() string
	// Apply returns a new column of the same length. It must not modify col
	// and must be safe to call concurrently.
	Apply(col table.Column) table.Column
}

// Params are the options given to a transform in the config, keyed by name.
// Values are the scalars produced by the YAML decoder.
type Params map[string]interface{}

// Factory builds a transform from its parameters.
type Factory func(params Params) (Transform, error)

// Info describes a catalog entry.
type Info struct {
	Name    string
	Summary string
	Params  []string
}

// UnknownTransformError is returned when a name is not in the catalog.
type UnknownTransformError struct {
	Name string
}

func (e *UnknownTransformError) Error() string {
	return fmt.Sprintf("unknown transform %q", e.Name)
}

type entry struct {
	factory Factory
	info    Info
}

var (
	mu       sync.RWMutex
	registry = make(map[string]entry)
)

// Register adds a transform factory under name. It panics when the name is
// already taken, which can only happen through a programming error during
// package initialization.
func Register(name string, factory Factory) {
	register(Info{Name: name}, factory)
}

func register(info Info, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[info.Name]; exists {
		panic(fmt.Sprintf("transform %s already registered", info.Name))
	}
	registry[info.Name] = entry{factory: factory, info: info}
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	mu.RLock()
	e, ok := registry[name]
	mu.RUnlock()

	if !ok {
		return nil, &UnknownTransformError{Name: name}
	}
	return e.factory, nil
}

// Build looks up name and builds the transform with params. All failures are
// configuration errors; an unknown name can be recovered with errors.As as an
// *UnknownTransformError.
func Build(name string, params Params) (Transform, error) {
	factory, err := Lookup(name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "resolve transform").
			WithDetail("transform", name)
	}

	t, err := factory(params)
	if err != nil {
		if errors.IsConfig(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("build transform %s", name)).
			WithDetail("transform", name)
	}
	return t, nil
}

// Names returns the registered transform names in alphabetical order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the catalog entry for name.
func Describe(name string) (Info, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := registry[name]
	return e.info, ok
}

// mapCells applies fn to every non-null cell of col.
func mapCells(col table.Column, fn func(table.Value) table.Value) table.Column {
	out := make(table.Column, len(col))
	for i, v := range col {
		if v.IsNull() {
			continue
		}
		out[i] = fn(v)
	}
	return out
}
