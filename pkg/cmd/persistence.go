package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vidlens/vidlens/pkg/persistence"
	"github.com/vidlens/vidlens/pkg/persistence/file"
	"github.com/vidlens/vidlens/pkg/persistence/postgresql"
)

// NewPersistence selects a persistence backend from the database URL scheme.
// postgres:// and postgresql:// URLs get the SQL backend, anything else the
// file-per-record backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch provider {
	case "postgres", "postgresql":
		return "postgresql"
	default:
		return "file"
	}
}
