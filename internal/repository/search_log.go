package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
)

// ErrSearchNotFound is returned when feedback names an unknown search
var ErrSearchNotFound = errors.New("search not found")

// SearchLog is one recorded federated search
type SearchLog struct {
	SearchID          string
	Filters           *model.SearchFilters
	SourcesOK         []string
	SourcesFailed     []string
	ResultCount       int
	DuplicatesRemoved int
	ResponseTimeMs    int64
}

// SearchLogRepository records searches in the search_logs table
type SearchLogRepository struct {
	db *sqlx.DB
}

// NewSearchLogRepository connects to the database holding search_logs
func NewSearchLogRepository(dsn string) (*SearchLogRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to search log database: %w", err)
	}
	db.SetMaxOpenConns(2)
	return &SearchLogRepository{db: db}, nil
}

// NewSearchLogRepositoryWithDB wraps an existing handle
func NewSearchLogRepositoryWithDB(db *sqlx.DB) *SearchLogRepository {
	return &SearchLogRepository{db: db}
}

// Close closes the database connection
func (r *SearchLogRepository) Close() error {
	return r.db.Close()
}

// EnsureTable creates search_logs when it does not exist
func (r *SearchLogRepository) EnsureTable(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS search_logs (
			search_id UUID PRIMARY KEY,
			filters JSONB,
			sources_ok TEXT[],
			sources_failed TEXT[],
			result_count INTEGER NOT NULL,
			duplicates_removed INTEGER NOT NULL,
			response_time_ms BIGINT NOT NULL,
			clicked_source TEXT,
			clicked_property TEXT,
			action TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create search_logs: %w", err)
	}
	return nil
}

// LogSearch logs a search
func (r *SearchLogRepository) LogSearch(ctx context.Context, entry *SearchLog) error {
	query := `
		INSERT INTO search_logs (search_id, filters, sources_ok, sources_failed, result_count, duplicates_removed, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.SearchID,
		entry.Filters,
		pq.Array(entry.SourcesOK),
		pq.Array(entry.SourcesFailed),
		entry.ResultCount,
		entry.DuplicatesRemoved,
		entry.ResponseTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback logs user feedback/action on a listing returned by a search
func (r *SearchLogRepository) LogFeedback(ctx context.Context, searchID, sourceID, propertyName, action string) error {
	query := `
		UPDATE search_logs
		SET clicked_source = $2, clicked_property = $3, action = $4
		WHERE search_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, searchID, sourceID, propertyName, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSearchNotFound
	}
	return nil
}
