package postgresql

import (
	"context"
	"fmt"
)

const currentSchemaVersion = 1

// migrations maps schema versions to the statement that reaches them.
var migrations = map[int]string{
	1: `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			video_url TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			language_code TEXT NOT NULL DEFAULT '',
			transcript TEXT NOT NULL DEFAULT '',
			sentiment TEXT NOT NULL DEFAULT '',
			sentiment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			tone TEXT NOT NULL DEFAULT '',
			key_points TEXT[] NOT NULL DEFAULT '{}',
			status TEXT NOT NULL,
			errors TEXT[] NOT NULL DEFAULT '{}'
		);
		CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses (status);
	`,
}

func (p *Persistence) migrate(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Starting database migrations")

	const createMigrationsSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	if _, err := p.db.ExecContext(ctx, createMigrationsSQL); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var version int
	if err := p.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return fmt.Errorf("failed to query current schema version: %w", err)
	}

	for next := version + 1; next <= currentSchemaVersion; next++ {
		statement, ok := migrations[next]
		if !ok {
			return fmt.Errorf("missing migration for version %d", next)
		}

		if _, err := p.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", next, err)
		}

		if _, err := p.db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", next); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", next, err)
		}

		p.logger.InfoContext(ctx, "Applied migration", "version", next)
	}

	return nil
}
