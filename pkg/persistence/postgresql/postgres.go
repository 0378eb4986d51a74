// Package postgresql provides PostgreSQL persistence for analysis records.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lib/pq"

	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/persistence"
)

type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, pings and migrates the database.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Persistence{
		db:     database,
		logger: logger,
	}

	if err := p.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return p, nil
}

func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Persistence) SaveAnalysis(ctx context.Context, analysis *models.Analysis) error {
	const query = `
		INSERT INTO analyses (
			id, video_url, created_at, updated_at,
			title, duration_seconds, language_code, transcript,
			sentiment, sentiment_score, tone, key_points,
			status, errors
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			title = EXCLUDED.title,
			duration_seconds = EXCLUDED.duration_seconds,
			language_code = EXCLUDED.language_code,
			transcript = EXCLUDED.transcript,
			sentiment = EXCLUDED.sentiment,
			sentiment_score = EXCLUDED.sentiment_score,
			tone = EXCLUDED.tone,
			key_points = EXCLUDED.key_points,
			status = EXCLUDED.status,
			errors = EXCLUDED.errors`

	_, err := p.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.VideoURL,
		analysis.CreatedAt,
		analysis.UpdatedAt,
		analysis.Title,
		analysis.DurationSeconds,
		analysis.LanguageCode,
		analysis.Transcript,
		string(analysis.Sentiment),
		analysis.SentimentScore,
		analysis.Tone,
		pq.Array(analysis.KeyPoints),
		string(analysis.Status),
		pq.Array(analysis.Errors),
	)
	if err != nil {
		return fmt.Errorf("saving analysis %s: %w", analysis.ID, err)
	}

	return nil
}

func (p *Persistence) AnalysisByID(ctx context.Context, id string) (*models.Analysis, error) {
	const query = `
		SELECT id, video_url, created_at, updated_at,
			title, duration_seconds, language_code, transcript,
			sentiment, sentiment_score, tone, key_points,
			status, errors
		FROM analyses WHERE id = $1`

	analysis, err := scanAnalysis(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrAnalysisNotFound
		}

		return nil, fmt.Errorf("fetching analysis %s: %w", id, err)
	}

	return analysis, nil
}

func (p *Persistence) ListAnalyses(ctx context.Context, opts persistence.ListAnalysesOptions) (*persistence.ListAnalysesResult, error) {
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}

	if !slices.Contains(persistence.SortableFields, sortBy) {
		return nil, persistence.ErrInvalidSortField
	}

	sortOrder := opts.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		return nil, persistence.ErrInvalidSortOrder
	}

	where := ""
	args := []any{}

	if opts.Status != nil {
		where = "WHERE status = $1"
		args = append(args, string(*opts.Status))
	}

	var total int64
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting analyses: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	// sortBy and sortOrder come from the allowlists above, never from raw input.
	query := fmt.Sprintf(`
		SELECT id, video_url, created_at, updated_at,
			title, duration_seconds, language_code, transcript,
			sentiment, sentiment_score, tone, key_points,
			status, errors
		FROM analyses %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`,
		where, sortBy, sortOrder, len(args)+1, len(args)+2)

	args = append(args, limit, opts.Offset)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]*models.Analysis, 0, limit)

	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning analysis row: %w", err)
		}

		analyses = append(analyses, analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analyses: %w", err)
	}

	return &persistence.ListAnalysesResult{
		Analyses:    analyses,
		TotalCount:  total,
		HasNextPage: int64(opts.Offset+len(analyses)) < total,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var (
		analysis  models.Analysis
		sentiment string
		status    string
		keyPoints pq.StringArray
		errs      pq.StringArray
	)

	err := row.Scan(
		&analysis.ID,
		&analysis.VideoURL,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
		&analysis.Title,
		&analysis.DurationSeconds,
		&analysis.LanguageCode,
		&analysis.Transcript,
		&sentiment,
		&analysis.SentimentScore,
		&analysis.Tone,
		&keyPoints,
		&status,
		&errs,
	)
	if err != nil {
		return nil, err
	}

	analysis.Sentiment = models.Sentiment(sentiment)
	analysis.Status = models.Status(status)
	analysis.KeyPoints = []string(keyPoints)
	analysis.Errors = []string(errs)

	return &analysis, nil
}
