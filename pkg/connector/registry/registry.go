package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/logger"
)

// Registry manages connector registration and instantiation
type Registry struct {
	sources      map[string]SourceFactory
	destinations map[string]DestinationFactory
	mu           sync.RWMutex
	logger       *zap.Logger
}

// SourceFactory creates a source connector from the input settings.
type SourceFactory func(cfg config.InputConfig, log *zap.Logger) (core.Source, error)

// DestinationFactory creates a destination connector from the output settings.
type DestinationFactory func(cfg config.OutputConfig, log *zap.Logger) (core.Destination, error)

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new connector registry
func NewRegistry() *Registry {
	return &Registry{
		sources:      make(map[string]SourceFactory),
		destinations: make(map[string]DestinationFactory),
		logger:       logger.Get().With(zap.String("component", "connector_registry")),
	}
}

// RegisterSource registers a source connector factory
func (r *Registry) RegisterSource(name string, factory SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("source connector %s already registered", name))
	}

	r.sources[name] = factory
	r.logger.Debug("source connector registered", zap.String("name", name))
	return nil
}

// RegisterDestination registers a destination connector factory
func (r *Registry) RegisterDestination(name string, factory DestinationFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.destinations[name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("destination connector %s already registered", name))
	}

	r.destinations[name] = factory
	r.logger.Debug("destination connector registered", zap.String("name", name))
	return nil
}

// CreateSource creates a source connector instance
func (r *Registry) CreateSource(name string, cfg config.InputConfig, log *zap.Logger) (core.Source, error) {
	r.mu.RLock()
	factory, exists := r.sources[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("source connector %s not found", name))
	}

	source, err := factory(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create source connector %s", name))
	}

	return source, nil
}

// CreateDestination creates a destination connector instance
func (r *Registry) CreateDestination(name string, cfg config.OutputConfig, log *zap.Logger) (core.Destination, error) {
	r.mu.RLock()
	factory, exists := r.destinations[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("destination connector %s not found", name))
	}

	destination, err := factory(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create destination connector %s", name))
	}

	return destination, nil
}

// ListSources returns the registered source connectors, sorted
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]string, 0, len(r.sources))
	for name := range r.sources {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

// ListDestinations returns the registered destination connectors, sorted
func (r *Registry) ListDestinations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	destinations := make([]string, 0, len(r.destinations))
	for name := range r.destinations {
		destinations = append(destinations, name)
	}
	sort.Strings(destinations)
	return destinations
}

// HasSource checks if a source connector is registered
func (r *Registry) HasSource(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.sources[name]
	return exists
}

// HasDestination checks if a destination connector is registered
func (r *Registry) HasDestination(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.destinations[name]
	return exists
}

// Global registry functions

// RegisterSource registers a source connector in the global registry
func RegisterSource(name string, factory SourceFactory) error {
	return globalRegistry.RegisterSource(name, factory)
}

// RegisterDestination registers a destination connector in the global registry
func RegisterDestination(name string, factory DestinationFactory) error {
	return globalRegistry.RegisterDestination(name, factory)
}

// CreateSource creates a source connector from the global registry
func CreateSource(name string, cfg config.InputConfig, log *zap.Logger) (core.Source, error) {
	return globalRegistry.CreateSource(name, cfg, log)
}

// CreateDestination creates a destination connector from the global registry
func CreateDestination(name string, cfg config.OutputConfig, log *zap.Logger) (core.Destination, error) {
	return globalRegistry.CreateDestination(name, cfg, log)
}

// ListSources returns registered sources from the global registry
func ListSources() []string {
	return globalRegistry.ListSources()
}

// ListDestinations returns registered destinations from the global registry
func ListDestinations() []string {
	return globalRegistry.ListDestinations()
}

// GetRegistry returns the global registry instance.
func GetRegistry() *Registry {
	return globalRegistry
}

// ConnectorInfo provides information about a connector
type ConnectorInfo struct {
	Name        string             `json:"name"`
	Type        core.ConnectorType `json:"type"`
	Description string             `json:"description"`
	// Extensions are the lower-case file suffixes the connector handles,
	// longest first, e.g. ".csv.gz" before ".csv".
	Extensions []string `json:"extensions"`
}

// ConnectorCatalog manages connector metadata
type ConnectorCatalog struct {
	connectors map[string]*ConnectorInfo
	mu         sync.RWMutex
}

// NewConnectorCatalog creates a new connector catalog
func NewConnectorCatalog() *ConnectorCatalog {
	return &ConnectorCatalog{
		connectors: make(map[string]*ConnectorInfo),
	}
}

func catalogKey(t core.ConnectorType, name string) string {
	return string(t) + "/" + name
}

// Register adds a connector to the catalog
func (c *ConnectorCatalog) Register(info *ConnectorInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := catalogKey(info.Type, info.Name)
	if _, exists := c.connectors[key]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("connector %s already in catalog", key))
	}

	c.connectors[key] = info
	return nil
}

// Get retrieves connector information
func (c *ConnectorCatalog) Get(t core.ConnectorType, name string) (*ConnectorInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, exists := c.connectors[catalogKey(t, name)]
	if !exists {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("connector %s not found in catalog", catalogKey(t, name)))
	}

	return info, nil
}

// Match returns the connector of type t that handles path, judged by its
// extension.
func (c *ConnectorCatalog) Match(t core.ConnectorType, path string) (*ConnectorInfo, bool) {
	lower := strings.ToLower(filepath.Base(path))
	best, bestLen := (*ConnectorInfo)(nil), 0

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, info := range c.connectors {
		if info.Type != t {
			continue
		}
		for _, ext := range info.Extensions {
			if strings.HasSuffix(lower, ext) && len(ext) > bestLen {
				best, bestLen = info, len(ext)
			}
		}
	}
	return best, best != nil
}

// Global catalog instance
var globalCatalog = NewConnectorCatalog()

// RegisterConnectorInfo registers connector information in the global catalog
func RegisterConnectorInfo(info *ConnectorInfo) error {
	return globalCatalog.Register(info)
}

// GetConnectorInfo retrieves connector information from the global catalog
func GetConnectorInfo(t core.ConnectorType, name string) (*ConnectorInfo, error) {
	return globalCatalog.Get(t, name)
}

// SourceForPath returns the name of the source connector that reads path.
func SourceForPath(path string) (string, bool) {
	info, ok := globalCatalog.Match(core.ConnectorTypeSource, path)
	if !ok {
		return "", false
	}
	return info.Name, true
}
