package cmd

import (
	"log/slog"

	"github.com/flowgent/flowgent/pkg/registry"
)

// NewRegistry builds the node handler registry with all built-in node
// types plus any .so plugins found under pluginsPath.
func NewRegistry(logger *slog.Logger, pluginsPath string) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes()

	if pluginsPath != "" {
		if _, err := reg.LoadNodePlugins(pluginsPath); err != nil {
			logger.Warn("Failed to load node plugins", "path", pluginsPath, "error", err)
		}
	}

	return reg
}
