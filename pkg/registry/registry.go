// Package registry provides the node handler registry: factories by
// node type, config-schema validation, and plugin loading.
package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"plugin"
	"strings"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger        *slog.Logger
	nodeFactories map[string]protocol.NodeFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:        log,
		nodeFactories: make(map[string]protocol.NodeFactory),
	}
}

// RegisterNode registers a node factory under its type id.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.nodeFactories[factory.ID()] = factory
}

// AvailableNodeTypes returns the registered node type ids.
func (r *Registry) AvailableNodeTypes() []string {
	types := make([]string, 0, len(r.nodeFactories))
	for nodeType := range r.nodeFactories {
		types = append(types, nodeType)
	}

	return types
}

// NodeFactory returns the factory for a node type, if registered.
func (r *Registry) NodeFactory(nodeType string) (protocol.NodeFactory, bool) {
	factory, ok := r.nodeFactories[nodeType]

	return factory, ok
}

// HealthCheck reports whether the registry is usable.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.nodeFactories) == 0 {
		return "No node types registered", false
	}

	return fmt.Sprintf("%d node types registered", len(r.nodeFactories)), true
}

// CreateNodeInstance resolves the factory for the node's type,
// validates the node's configuration against the factory's schema, and
// creates a handler instance.
func (r *Registry) CreateNodeInstance(ctx context.Context, node *models.WorkflowNode) (protocol.NodeHandler, error) {
	factory, ok := r.nodeFactories[string(node.Type)]
	if !ok {
		return nil, fmt.Errorf("node type '%s' not registered", node.Type)
	}

	if schema := factory.Schema(); schema != nil {
		if err := validateConfig(node.Config, schema); err != nil {
			return nil, fmt.Errorf("invalid configuration for node %s: %w", node.ID, err)
		}
	}

	return factory.Create(ctx, node)
}

// validateConfig validates a node configuration against a JSON schema.
func validateConfig(config, schema map[string]any) error {
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(descriptions, "; "))
	}

	return nil
}

// LoadNodePlugins loads NodeFactory symbols from .so files under
// {pluginsPath}/nodes and registers them.
func (r *Registry) LoadNodePlugins(pluginsPath string) ([]protocol.NodeFactory, error) {
	factories, err := loadPlugin[protocol.NodeFactory](r.logger, pluginsPath, "Node")
	if err != nil {
		return nil, err
	}

	for _, factory := range factories {
		r.RegisterNode(factory)
	}

	return factories, nil
}

func loadPlugin[T any](logger *slog.Logger, pluginsPath string, symbolName string) ([]T, error) {
	rootPath := pluginsPath + "/" + strings.ToLower(symbolName) + "s"
	root := os.DirFS(rootPath)

	pluginPathList, err := fs.Glob(root, "**/*.so")
	if err != nil {
		return nil, err
	}

	l := logger.With(slog.String("path", pluginsPath), slog.String("type", symbolName))
	l.Info("Loading plugins")

	pluginList := make([]T, 0, len(pluginPathList))

	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %s: %w", p, err)
		}

		v, err := plg.Lookup(symbolName)
		if err != nil {
			return nil, fmt.Errorf("plugin %s does not export %s: %w", p, symbolName, err)
		}

		castV, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("plugin %s exports %s with the wrong type", p, symbolName)
		}

		pluginList = append(pluginList, castV)

		l.Info("Loaded node plugin", slog.String("plugin", p))
	}

	return pluginList, nil
}
