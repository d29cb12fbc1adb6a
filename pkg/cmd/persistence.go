// Package cmd provides common initialization for the command-line
// binaries: persistence, event bus, and registry wiring.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowgent/flowgent/pkg/persistence"
	"github.com/flowgent/flowgent/pkg/persistence/file"
	"github.com/flowgent/flowgent/pkg/persistence/memory"
	"github.com/flowgent/flowgent/pkg/persistence/postgresql"
)

// NewPersistence selects a persistence backend from the database URL
// scheme: postgres URLs get PostgreSQL, "memory://" gets the in-memory
// store, and anything else is treated as a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(err)
		}

		return p
	case strings.HasPrefix(databaseURL, "memory://"):
		return memory.NewPersistence()
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}
